package qr

import (
	"bytes"
	"encoding/json"
	"strings"

	"linkkit/internal/util"
)

const (
	MinSize       = 200
	MaxSize       = 1200
	MaxMargin     = 50
	MinLogoRatio  = 0.05
	MaxLogoRatio  = 0.45
	MaxLogoMargin = 40

	defaultSize       = 420
	defaultMargin     = 4
	defaultLogoSize   = 22
	defaultLogoMargin = 6

	defaultForeground = "#111111"
	defaultBackground = "#ffffff"

	// placeholder keeps the encoder fed when there is no payload yet.
	placeholder = " "
)

// Config is what the renderer draws. Every value is already clamped.
type Config struct {
	Width              int
	Height             int
	Data               string
	ECLevel            ECLevel
	Margin             int
	Foreground         string
	Background         string
	Dots               DotStyle
	CornerSquare       CornerSquareStyle
	CornerDot          CornerDotStyle
	Logo               string
	LogoSize           float64
	LogoMargin         int
	HideBackgroundDots bool
}

// NumberField is a free-form numeric input. JSON accepts a string or a number.
type NumberField string

func (n *NumberField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumberField(s)
		return nil
	}
	if string(b) == "null" {
		*n = ""
		return nil
	}
	*n = NumberField(b)
	return nil
}

// Int parses the leading integer of the field; trailing junk is ignored.
func (n NumberField) Int() (int, bool) {
	s := strings.TrimSpace(string(n))
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	v := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		if v < 1<<30 {
			v = v*10 + int(s[i]-'0')
		}
		i++
	}
	if i == start {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// intOr falls back to def when the field is unparseable or zero.
func (n NumberField) intOr(def int) int {
	if v, ok := n.Int(); ok && v != 0 {
		return v
	}
	return def
}

// Form is the raw state of the customizer inputs.
type Form struct {
	Data               string      `json:"data"`
	Foreground         ColorField  `json:"foreground"`
	Background         ColorField  `json:"background"`
	DotsType           string      `json:"dots_type"`
	CornerSquareType   string      `json:"corner_square_type"`
	CornerDotType      string      `json:"corner_dot_type"`
	Size               NumberField `json:"size"`
	Margin             NumberField `json:"margin"`
	ECLevel            string      `json:"ec_level"`
	LogoSize           NumberField `json:"logo_size"`
	LogoMargin         NumberField `json:"logo_margin"`
	HideBackgroundDots bool        `json:"hide_background_dots"`
}

// DefaultForm is the state of a freshly opened customizer.
func DefaultForm() Form {
	return Form{
		Foreground:         ColorField{Text: defaultForeground, Picker: defaultForeground},
		Background:         ColorField{Text: defaultBackground, Picker: defaultBackground},
		DotsType:           string(DotSquare),
		CornerSquareType:   string(CornerSquareSquare),
		CornerDotType:      string(CornerDotSquare),
		Size:               "420",
		Margin:             "4",
		ECLevel:            string(ECMedium),
		LogoSize:           "22",
		LogoMargin:         "6",
		HideBackgroundDots: true,
	}
}

// Config clamps the form into a renderer config. logo is a data URL or "".
func (f Form) Config(logo string) Config {
	size := util.Clamp(f.Size.intOr(defaultSize), MinSize, MaxSize)
	margin := util.Clamp(f.Margin.intOr(defaultMargin), 0, MaxMargin)
	ratio := util.Clamp(float64(f.LogoSize.intOr(defaultLogoSize))/100, MinLogoRatio, MaxLogoRatio)
	logoMargin := util.Clamp(f.LogoMargin.intOr(defaultLogoMargin), 0, MaxLogoMargin)

	data := strings.TrimSpace(f.Data)
	if data == "" {
		data = placeholder
	}

	return Config{
		Width:              size,
		Height:             size,
		Data:               data,
		ECLevel:            ParseECLevel(f.ECLevel),
		Margin:             margin,
		Foreground:         ToHex(f.Foreground.Text, defaultForeground),
		Background:         ToHex(f.Background.Text, defaultBackground),
		Dots:               ParseDotStyle(f.DotsType),
		CornerSquare:       ParseCornerSquareStyle(f.CornerSquareType),
		CornerDot:          ParseCornerDotStyle(f.CornerDotType),
		Logo:               logo,
		LogoSize:           ratio,
		LogoMargin:         logoMargin,
		HideBackgroundDots: f.HideBackgroundDots,
	}
}
