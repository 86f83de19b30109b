package util

import (
	"math/rand/v2"
	"net/url"
	"strings"
)

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

// CodeLength is the length of generated short codes.
const CodeLength = 6

// ValidateURL accepts absolute, parseable URLs. Web schemes also need a host,
// so the slashless "http:example.com" that browsers repair is rejected.
func ValidateURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if !u.IsAbs() {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ws", "wss", "ftp":
		if u.Host == "" {
			return false
		}
	}
	return true
}

// CodeGenerator returns a fresh short code. Codes are not checked for uniqueness.
type CodeGenerator func() string

// NewCodeGenerator returns a generator drawing from r, or from the global
// source when r is nil. A non-nil r must not be shared between goroutines.
func NewCodeGenerator(r *rand.Rand) CodeGenerator {
	intN := rand.IntN
	if r != nil {
		intN = r.IntN
	}
	return func() string {
		b := make([]byte, CodeLength)
		for i := range b {
			b[i] = base36Chars[intN(len(base36Chars))]
		}
		return string(b)
	}
}

// IsCode reports whether s looks like a generated code.
func IsCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(base36Chars, s[i]) < 0 {
			return false
		}
	}
	return true
}

// StripLocation drops the query and fragment from raw, leaving origin + path.
func StripLocation(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Clamp coerces v into [lo, hi].
func Clamp[T int | float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
