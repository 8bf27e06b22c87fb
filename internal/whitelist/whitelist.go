package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker answers exact-match membership for a fixed set of UPI identifiers.
// Each entry carries the confidence a match is reported with.
type Checker struct {
	name    string
	entries map[string]float64
	logger  *zap.Logger
}

// NewChecker creates a checker over entries. extra identifiers are added with
// extraConfidence unless already present.
func NewChecker(name string, entries map[string]float64, extra []string, extraConfidence float64, logger *zap.Logger) *Checker {
	normalized := make(map[string]float64, len(entries)+len(extra))
	for id, conf := range entries {
		normalized[normalize(id)] = conf
	}
	added := 0
	for _, id := range extra {
		id = normalize(id)
		if id == "" {
			continue
		}
		if _, ok := normalized[id]; !ok {
			normalized[id] = extraConfidence
			added++
		}
	}

	if logger != nil {
		logger.Info("Initialized identifier list",
			zap.String("list", name),
			zap.Int("entries", len(normalized)),
			zap.Int("from_config", added))
	}

	return &Checker{
		name:    name,
		entries: normalized,
		logger:  logger,
	}
}

// Lookup returns the confidence for identifier if it is listed
func (c *Checker) Lookup(identifier string) (float64, bool) {
	if c == nil || len(c.entries) == 0 {
		return 0, false
	}
	conf, ok := c.entries[normalize(identifier)]
	if ok && c.logger != nil {
		c.logger.Debug("Identifier is listed",
			zap.String("list", c.name),
			zap.String("identifier", identifier))
	}
	return conf, ok
}

// Contains reports whether identifier is listed
func (c *Checker) Contains(identifier string) bool {
	_, ok := c.Lookup(identifier)
	return ok
}

// Len returns the number of listed identifiers
func (c *Checker) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
