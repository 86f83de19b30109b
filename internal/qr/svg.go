package qr

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
)

type svgCanvas struct {
	b strings.Builder
}

func newSVGCanvas(w, h int) *svgCanvas {
	c := &svgCanvas{}
	fmt.Fprintf(&c.b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">`, w, h, w, h)
	return c
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func svgColor(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

func (c *svgCanvas) fill(col [3]uint8) {
	fmt.Fprintf(&c.b, `<rect x="0" y="0" width="100%%" height="100%%" fill="%s"/>`, svgColor(col))
}

func (c *svgCanvas) roundRect(x, y, w, h, r float64, col [3]uint8) {
	r = math.Min(r, math.Min(w, h)/2)
	switch {
	case r <= 0:
		fmt.Fprintf(&c.b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
			num(x), num(y), num(w), num(h), svgColor(col))
	case w == h && r >= w/2:
		fmt.Fprintf(&c.b, `<circle cx="%s" cy="%s" r="%s" fill="%s"/>`,
			num(x+w/2), num(y+h/2), num(w/2), svgColor(col))
	default:
		fmt.Fprintf(&c.b, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s" fill="%s"/>`,
			num(x), num(y), num(w), num(h), num(r), num(r), svgColor(col))
	}
}

func (c *svgCanvas) ring(x, y, side, r, stroke float64, col [3]uint8) {
	// The stroke is centered on the path, so the path runs half a stroke inside.
	half := stroke / 2
	inner := side - stroke
	if r >= side/2 {
		fmt.Fprintf(&c.b, `<circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-width="%s"/>`,
			num(x+side/2), num(y+side/2), num(inner/2), svgColor(col), num(stroke))
		return
	}
	fmt.Fprintf(&c.b, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="none" stroke="%s" stroke-width="%s"/>`,
		num(x+half), num(y+half), num(inner), num(inner), num(math.Max(r-half, 0)), svgColor(col), num(stroke))
}

func (c *svgCanvas) logo(b box, dataURL string) error {
	if _, _, err := ParseDataURL(dataURL); err != nil {
		return err
	}
	href := html.EscapeString(dataURL)
	fmt.Fprintf(&c.b, `<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="xMidYMid meet" href="%s" xlink:href="%s"/>`,
		num(b.x), num(b.y), num(b.side), num(b.side), href, href)
	return nil
}

func (c *svgCanvas) bytes() []byte {
	return []byte(c.b.String() + "</svg>")
}
