package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Exclusions decides which requests bypass the gate entirely. Two rule
// shapes, both evaluated per request:
//
//   - path prefixes, matched against the URL path only
//   - regular expressions, matched against "METHOD:path" so a rule can
//     pin down the verb ("GET:/posts$" exempts listing but not POST)
//
// CORS preflight (OPTIONS) is always excluded; the gate handles that
// bypass itself, so Match also honoring it here just keeps direct
// callers consistent.
type Exclusions struct {
	prefixes []string
	patterns []*regexp.Regexp
}

// NewExclusions compiles the rule set. Patterns that do not compile are
// construction errors, not silent no-ops.
func NewExclusions(prefixes, patterns []string) (*Exclusions, error) {
	e := &Exclusions{prefixes: prefixes}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("exclusion pattern %q: %w", p, err)
		}
		e.patterns = append(e.patterns, re)
	}
	return e, nil
}

// Match reports whether the request is exempt from authentication.
func (e *Exclusions) Match(method, path string) bool {
	if method == "OPTIONS" {
		return true
	}

	for _, prefix := range e.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	target := method + ":" + path
	for _, re := range e.patterns {
		if re.MatchString(target) {
			return true
		}
	}
	return false
}
