package core

import "errors"

var (
	// ErrInvalidFormat is returned for a malformed identifier
	ErrInvalidFormat = errors.New("invalid identifier format")
	// ErrInvalidAmount is returned for a non-positive or non-finite amount
	ErrInvalidAmount = errors.New("invalid transaction amount")
	// ErrInvalidReport is returned for a scam report missing required fields
	ErrInvalidReport = errors.New("invalid scam report")
	// ErrOracleUnavailable means the AI oracle failed, timed out or is not configured
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrStoreUnavailable means the report store could not be read
	ErrStoreUnavailable = errors.New("report store unavailable")
	// ErrNotFound is returned when a cache entry does not exist or has expired
	ErrNotFound = errors.New("not found")
)
