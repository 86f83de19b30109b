package qr

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

type rasterCanvas struct {
	img *image.RGBA
}

func newRasterCanvas(w, h int) *rasterCanvas {
	return &rasterCanvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func rgba(c [3]uint8) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff}
}

func (c *rasterCanvas) fill(col [3]uint8) {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: rgba(col)}, image.Point{}, draw.Src)
}

func (c *rasterCanvas) roundRect(x, y, w, h, r float64, col [3]uint8) {
	c.paint(x, y, w, h, col, func(px, py float64) bool {
		return insideRoundRect(px, py, x, y, w, h, r)
	})
}

func (c *rasterCanvas) ring(x, y, side, r, stroke float64, col [3]uint8) {
	in := side - 2*stroke
	ir := math.Max(r-stroke, 0)
	c.paint(x, y, side, side, col, func(px, py float64) bool {
		return insideRoundRect(px, py, x, y, side, side, r) &&
			!insideRoundRect(px, py, x+stroke, y+stroke, in, in, ir)
	})
}

// paint sets every pixel of the bounding box whose center passes inside.
func (c *rasterCanvas) paint(x, y, w, h float64, col [3]uint8, inside func(px, py float64) bool) {
	b := c.img.Bounds()
	x0 := max(int(math.Floor(x)), b.Min.X)
	y0 := max(int(math.Floor(y)), b.Min.Y)
	x1 := min(int(math.Ceil(x+w)), b.Max.X)
	y1 := min(int(math.Ceil(y+h)), b.Max.Y)
	fill := rgba(col)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			if inside(float64(px)+0.5, float64(py)+0.5) {
				c.img.SetRGBA(px, py, fill)
			}
		}
	}
}

func insideRoundRect(px, py, x, y, w, h, r float64) bool {
	if px < x || py < y || px >= x+w || py >= y+h {
		return false
	}
	r = math.Min(r, math.Min(w, h)/2)
	if r <= 0 {
		return true
	}
	cx := math.Max(x+r, math.Min(px, x+w-r))
	cy := math.Max(y+r, math.Min(py, y+h-r))
	dx, dy := px-cx, py-cy
	return dx*dx+dy*dy <= r*r
}

func (c *rasterCanvas) logo(b box, dataURL string) error {
	src, err := decodeLogo(dataURL)
	if err != nil {
		return err
	}
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return ErrBadLogo
	}
	scale := math.Min(b.side/float64(sb.Dx()), b.side/float64(sb.Dy()))
	w := float64(sb.Dx()) * scale
	h := float64(sb.Dy()) * scale
	x := b.x + (b.side-w)/2
	y := b.y + (b.side-h)/2
	dst := image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+w)), int(math.Round(y+h)))
	xdraw.CatmullRom.Scale(c.img, dst, src, sb, xdraw.Over, nil)
	return nil
}
