// Package keyfilter excludes storage keys by glob pattern.
package keyfilter

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultPatterns are always applied. AppleDouble files carry image
// extensions but are not images.
var defaultPatterns = []string{"._*"}

type pattern struct {
	glob      string
	matchPath bool // true = match against the full key; false = match against the base name only
}

// Matcher checks object keys against exclude patterns.
// Patterns without '/' match against the key's base name only.
// Patterns with '/' match against the full key; "**" spans directories.
type Matcher struct {
	patterns []pattern
}

// New creates a Matcher from raw pattern strings plus the defaults.
// Blank lines, lines starting with '#' and invalid globs are skipped.
func New(rawPatterns []string) *Matcher {
	var patterns []pattern
	for _, raw := range append(append([]string{}, defaultPatterns...), rawPatterns...) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		glob := strings.TrimPrefix(raw, "/")
		if !doublestar.ValidatePattern(glob) {
			continue
		}
		patterns = append(patterns, pattern{
			glob:      glob,
			matchPath: strings.Contains(raw, "/"),
		})
	}
	return &Matcher{patterns: patterns}
}

// Match reports whether key should be excluded. A nil Matcher excludes nothing.
func (m *Matcher) Match(key string) bool {
	if m == nil {
		return false
	}
	key = strings.TrimPrefix(key, "/")
	base := path.Base(key)

	for _, p := range m.patterns {
		target := base
		if p.matchPath {
			target = key
		}
		if doublestar.MatchUnvalidated(p.glob, target) {
			return true
		}
	}
	return false
}

// Parse reads one pattern per line from r.
func Parse(r io.Reader) ([]string, error) {
	var patterns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading exclude patterns: %w", err)
	}
	return patterns, nil
}
