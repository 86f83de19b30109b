// Package utm assembles campaign-tracking links.
package utm

import (
	"errors"
	"strings"
)

var (
	ErrMissingBase = errors.New("please enter a base URL")
	ErrNoParams    = errors.New("please enter at least one UTM parameter (source/medium/campaign)")
)

// Params are the five tracking values. Blank values are skipped.
type Params struct {
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Campaign string `json:"campaign"`
	Term     string `json:"term"`
	Content  string `json:"content"`
}

func (p Params) pairs() [][2]string {
	return [][2]string{
		{"utm_source", p.Source},
		{"utm_medium", p.Medium},
		{"utm_campaign", p.Campaign},
		{"utm_term", p.Term},
		{"utm_content", p.Content},
	}
}

// Build appends the non-empty parameters to base. The base URL itself is not
// checked for well-formedness.
func Build(base string, p Params) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", ErrMissingBase
	}

	parts := make([]string, 0, 5)
	for _, kv := range p.pairs() {
		v := strings.TrimSpace(kv[1])
		if v == "" {
			continue
		}
		parts = append(parts, EscapeComponent(kv[0])+"="+EscapeComponent(v))
	}
	if len(parts) == 0 {
		return "", ErrNoParams
	}

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + strings.Join(parts, "&"), nil
}

const upperhex = "0123456789ABCDEF"

// EscapeComponent percent-encodes s the way browsers encode a URI component:
// everything outside A-Z a-z 0-9 - _ . ! ~ * ' ( ) is escaped byte by byte.
func EscapeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
