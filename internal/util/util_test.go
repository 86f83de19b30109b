package util

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"https://example.com/page", true},
		{"  http://example.com  ", true},
		{"mailto:someone@example.com", true},
		{"not a url", false},
		{"example.com/page", false},
		{"http:example.com", false},
		{"/relative/path", false},
		{"", false},
		{"http://", false},
		{"https://exa mple.com", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ValidateURL(c.in), c.in)
	}
}

func TestNewCodeGeneratorSeeded(t *testing.T) {
	gen := NewCodeGenerator(rand.New(rand.NewPCG(1, 2)))
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := gen()
		assert.True(t, IsCode(code), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90)

	a := NewCodeGenerator(rand.New(rand.NewPCG(7, 7)))
	b := NewCodeGenerator(rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, a(), b())
}

func TestNewCodeGeneratorGlobal(t *testing.T) {
	gen := NewCodeGenerator(nil)
	for i := 0; i < 20; i++ {
		assert.True(t, IsCode(gen()))
	}
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode("abc123"))
	assert.False(t, IsCode("ABC123"))
	assert.False(t, IsCode("abc12"))
	assert.False(t, IsCode("abc12-"))
}

func TestStripLocation(t *testing.T) {
	assert.Equal(t, "https://example.com/tool/", StripLocation("https://example.com/tool/?x=1#abc123"))
	assert.Equal(t, "https://example.com/", StripLocation("https://example.com/#zz"))
	assert.Equal(t, "http://localhost:8080", StripLocation("http://localhost:8080"))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1200, Clamp(9999, 200, 1200))
	assert.Equal(t, 200, Clamp(10, 200, 1200))
	assert.Equal(t, 0.45, Clamp(0.9, 0.05, 0.45))
	assert.Equal(t, 7, Clamp(7, 0, 50))
}
