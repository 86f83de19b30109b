package qr

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// ECLevel is the error-correction tier of the code.
type ECLevel string

const (
	ECLow      ECLevel = "L"
	ECMedium   ECLevel = "M"
	ECQuartile ECLevel = "Q"
	ECHigh     ECLevel = "H"
)

// ParseECLevel maps L/M/Q/H (any case) to a level. Anything else is Medium.
func ParseECLevel(s string) ECLevel {
	switch ECLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case ECLow:
		return ECLow
	case ECQuartile:
		return ECQuartile
	case ECHigh:
		return ECHigh
	default:
		return ECMedium
	}
}

func (l ECLevel) recovery() qrcode.RecoveryLevel {
	switch l {
	case ECLow:
		return qrcode.Low
	case ECQuartile:
		return qrcode.High
	case ECHigh:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// DotStyle is the shape of the data modules.
type DotStyle string

const (
	DotSquare        DotStyle = "square"
	DotDots          DotStyle = "dots"
	DotRounded       DotStyle = "rounded"
	DotExtraRounded  DotStyle = "extra-rounded"
	DotClassy        DotStyle = "classy"
	DotClassyRounded DotStyle = "classy-rounded"
)

func ParseDotStyle(s string) DotStyle {
	switch d := DotStyle(strings.ToLower(strings.TrimSpace(s))); d {
	case DotDots, DotRounded, DotExtraRounded, DotClassy, DotClassyRounded:
		return d
	default:
		return DotSquare
	}
}

// radius is the corner radius of a module of side cell.
func (d DotStyle) radius(cell float64) float64 {
	switch d {
	case DotDots:
		return cell / 2
	case DotRounded:
		return cell * 0.25
	case DotExtraRounded:
		return cell * 0.45
	case DotClassy:
		return cell * 0.15
	case DotClassyRounded:
		return cell * 0.35
	default:
		return 0
	}
}

// CornerSquareStyle is the shape of the 7x7 finder ring.
type CornerSquareStyle string

const (
	CornerSquareSquare       CornerSquareStyle = "square"
	CornerSquareDot          CornerSquareStyle = "dot"
	CornerSquareExtraRounded CornerSquareStyle = "extra-rounded"
)

func ParseCornerSquareStyle(s string) CornerSquareStyle {
	switch c := CornerSquareStyle(strings.ToLower(strings.TrimSpace(s))); c {
	case CornerSquareDot, CornerSquareExtraRounded:
		return c
	default:
		return CornerSquareSquare
	}
}

func (c CornerSquareStyle) radius(side float64) float64 {
	switch c {
	case CornerSquareDot:
		return side / 2
	case CornerSquareExtraRounded:
		return side * 0.3
	default:
		return 0
	}
}

// CornerDotStyle is the shape of the 3x3 finder center.
type CornerDotStyle string

const (
	CornerDotSquare CornerDotStyle = "square"
	CornerDotDot    CornerDotStyle = "dot"
)

func ParseCornerDotStyle(s string) CornerDotStyle {
	if CornerDotStyle(strings.ToLower(strings.TrimSpace(s))) == CornerDotDot {
		return CornerDotDot
	}
	return CornerDotSquare
}

func (c CornerDotStyle) radius(side float64) float64 {
	if c == CornerDotDot {
		return side / 2
	}
	return 0
}

// Format is an export file type.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatSVG  Format = "svg"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "image/png"
	}
}

// Ext is the file extension without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}
