package qr

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHex(t *testing.T) {
	assert.Equal(t, "#ff0000", ToHex("ff0000", "#000000"))
	assert.Equal(t, "#ABCDEF", ToHex("#ABCDEF", "#000000"))
	assert.Equal(t, "#123456", ToHex("  123456 ", "#000000"))
	assert.Equal(t, "#000000", ToHex("zzz", "#000000"))
	assert.Equal(t, "#000000", ToHex("", "#000000"))
	assert.Equal(t, "#000000", ToHex("#12345", "#000000"))
	assert.Equal(t, "#000000", ToHex("##123456", "#000000"))
}

func TestColorFieldSync(t *testing.T) {
	f := ColorField{Text: "#111111", Picker: "#111111"}

	f.SetText("ff0000")
	assert.Equal(t, "ff0000", f.Text)
	assert.Equal(t, "#ff0000", f.Picker)

	f.SetText("zzz")
	assert.Equal(t, "zzz", f.Text)
	assert.Equal(t, "#ff0000", f.Picker, "picker keeps the last valid value")

	f.SetPicker("#00ff00")
	assert.Equal(t, "#00ff00", f.Text)
	assert.Equal(t, "#00ff00", f.Picker)
}

func TestParseHex(t *testing.T) {
	c, err := parseHex("#1a2B3c")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 0xff}, c)

	_, err = parseHex("nope")
	assert.Error(t, err)
}
