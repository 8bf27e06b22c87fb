package upi

import (
	"fmt"
	"strings"

	"github.com/mikey/upi-risk-engine/internal/core"
)

// Identifier is a normalized VPA split into its parts
type Identifier struct {
	Raw    string
	Local  string
	Domain string
}

// String returns the normalized local@domain form
func (id Identifier) String() string {
	return id.Local + "@" + id.Domain
}

// ParseIdentifier lower-cases and validates a VPA. It does not repair input:
// anything other than exactly one '@' with non-empty parts is rejected.
func ParseIdentifier(raw string) (Identifier, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Identifier{}, fmt.Errorf("%w: identifier is empty", core.ErrInvalidFormat)
	}
	if strings.Count(normalized, "@") != 1 {
		return Identifier{}, fmt.Errorf("%w: %q must contain exactly one '@'", core.ErrInvalidFormat, raw)
	}

	local, domain, _ := strings.Cut(normalized, "@")
	if local == "" || domain == "" {
		return Identifier{}, fmt.Errorf("%w: %q has an empty local-part or domain", core.ErrInvalidFormat, raw)
	}

	return Identifier{Raw: raw, Local: local, Domain: domain}, nil
}
