package qr

import (
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

var hexPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// ToHex returns v as a #rrggbb color, or fallback when v is not six hex digits.
func ToHex(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" || !hexPattern.MatchString(v) {
		return fallback
	}
	if strings.HasPrefix(v, "#") {
		return v
	}
	return "#" + v
}

// ColorField pairs a free-text color input with a color picker.
type ColorField struct {
	Text   string `json:"text"`
	Picker string `json:"picker"`
}

// SetText records typed input. The picker only follows valid values.
func (f *ColorField) SetText(v string) {
	f.Text = v
	f.Picker = ToHex(v, f.Picker)
}

// SetPicker mirrors the picker into the text input.
func (f *ColorField) SetPicker(v string) {
	f.Picker = v
	f.Text = v
}

func parseHex(s string) (color.RGBA, error) {
	if !hexPattern.MatchString(s) {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}
