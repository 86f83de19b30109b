package utm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		base string
		p    Params
		want string
	}{
		{
			name: "question mark separator",
			base: "https://example.com/landing",
			p:    Params{Source: "newsletter", Medium: "email", Campaign: "spring"},
			want: "https://example.com/landing?utm_source=newsletter&utm_medium=email&utm_campaign=spring",
		},
		{
			name: "ampersand when base has a query",
			base: "https://example.com/?ref=1",
			p:    Params{Campaign: "launch"},
			want: "https://example.com/?ref=1&utm_campaign=launch",
		},
		{
			name: "values are trimmed and encoded",
			base: "  https://example.com  ",
			p:    Params{Source: " face book ", Term: "a&b=c", Content: "it's (ok)!"},
			want: "https://example.com?utm_source=face%20book&utm_term=a%26b%3Dc&utm_content=it's%20(ok)!",
		},
		{
			name: "whitespace-only values are skipped",
			base: "https://example.com",
			p:    Params{Source: "   ", Medium: "cpc"},
			want: "https://example.com?utm_medium=cpc",
		},
		{
			name: "base is not validated",
			base: "whatever",
			p:    Params{Source: "x"},
			want: "whatever?utm_source=x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.base, tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	_, err := Build("   ", Params{Source: "x"})
	assert.ErrorIs(t, err, ErrMissingBase)

	_, err = Build("https://example.com", Params{Source: " ", Medium: "\t"})
	assert.ErrorIs(t, err, ErrNoParams)

	_, err = Build("", Params{})
	assert.ErrorIs(t, err, ErrMissingBase)
}

func TestEscapeComponent(t *testing.T) {
	assert.Equal(t, "caf%C3%A9", EscapeComponent("café"))
	assert.Equal(t, "a%2Fb%3Fc%23d", EscapeComponent("a/b?c#d"))
	assert.Equal(t, "-_.!~*'()", EscapeComponent("-_.!~*'()"))
	assert.Equal(t, "%2B%20", EscapeComponent("+ "))
}
