package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"sync"

	qrcode "github.com/skip2/go-qrcode"
)

var ErrNotRendered = errors.New("qr: nothing rendered yet")

// Renderer draws a configured code. Update replaces the configuration,
// Export produces a file in the requested format.
type Renderer interface {
	Update(cfg Config) error
	Config() Config
	Export(format Format) ([]byte, error)
}

// StyledRenderer encodes with go-qrcode and draws the module matrix itself so
// that dot shapes, colors, margin and logo can be applied.
type StyledRenderer struct {
	mu      sync.Mutex
	cfg     Config
	modules [][]bool
}

func NewStyledRenderer() *StyledRenderer {
	return &StyledRenderer{}
}

func (r *StyledRenderer) Update(cfg Config) error {
	q, err := qrcode.New(cfg.Data, cfg.ECLevel.recovery())
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true
	modules := q.Bitmap()

	r.mu.Lock()
	r.cfg = cfg
	r.modules = modules
	r.mu.Unlock()
	return nil
}

func (r *StyledRenderer) Config() Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// Render is Update followed by Export.
func (r *StyledRenderer) Render(cfg Config, format Format) ([]byte, error) {
	if err := r.Update(cfg); err != nil {
		return nil, err
	}
	return r.Export(format)
}

func (r *StyledRenderer) Export(format Format) ([]byte, error) {
	r.mu.Lock()
	cfg, modules := r.cfg, r.modules
	r.mu.Unlock()
	if modules == nil {
		return nil, ErrNotRendered
	}

	if format == FormatSVG {
		c := newSVGCanvas(cfg.Width, cfg.Height)
		if err := paintCode(c, cfg, modules); err != nil {
			return nil, err
		}
		return c.bytes(), nil
	}

	c := newRasterCanvas(cfg.Width, cfg.Height)
	if err := paintCode(c, cfg, modules); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, c.img, &jpeg.Options{Quality: 92}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case FormatPNG:
		if err := png.Encode(&buf, c.img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return buf.Bytes(), nil
}

// box is an axis-aligned square area in pixels.
type box struct {
	x, y, side float64
}

func (b box) grow(d float64) box {
	return box{x: b.x - d, y: b.y - d, side: b.side + 2*d}
}

func (b box) overlaps(x, y, w, h float64) bool {
	return x < b.x+b.side && x+w > b.x && y < b.y+b.side && y+h > b.y
}

type canvas interface {
	fill(c [3]uint8)
	roundRect(x, y, w, h, r float64, c [3]uint8)
	// ring strokes the inside of a square of the given side.
	ring(x, y, side, r, stroke float64, c [3]uint8)
	logo(b box, dataURL string) error
}

// finderOrigins are the top-left module coordinates (row, col) of the
// three position patterns.
func finderOrigins(n int) [3][2]int {
	return [3][2]int{{0, 0}, {0, n - 7}, {n - 7, 0}}
}

func inFinder(row, col, n int) bool {
	for _, o := range finderOrigins(n) {
		if row >= o[0] && row < o[0]+7 && col >= o[1] && col < o[1]+7 {
			return true
		}
	}
	return false
}

func paintCode(c canvas, cfg Config, modules [][]bool) error {
	fg, err := parseHex(cfg.Foreground)
	if err != nil {
		return err
	}
	bg, err := parseHex(cfg.Background)
	if err != nil {
		return err
	}
	fgc := [3]uint8{fg.R, fg.G, fg.B}
	bgc := [3]uint8{bg.R, bg.G, bg.B}

	n := len(modules)
	size := float64(cfg.Width)
	margin := float64(cfg.Margin)
	cell := (size - 2*margin) / float64(n)

	c.fill(bgc)

	var logoBox box
	var hole *box
	if cfg.Logo != "" {
		side := (size - 2*margin) * cfg.LogoSize
		logoBox = box{x: (size - side) / 2, y: (size - side) / 2, side: side}
		if cfg.HideBackgroundDots {
			h := logoBox.grow(float64(cfg.LogoMargin))
			hole = &h
		}
	}

	radius := cfg.Dots.radius(cell)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if !modules[row][col] || inFinder(row, col, n) {
				continue
			}
			x := margin + float64(col)*cell
			y := margin + float64(row)*cell
			if hole != nil && hole.overlaps(x, y, cell, cell) {
				continue
			}
			c.roundRect(x, y, cell, cell, radius, fgc)
		}
	}

	for _, o := range finderOrigins(n) {
		x := margin + float64(o[1])*cell
		y := margin + float64(o[0])*cell
		outer := 7 * cell
		c.ring(x, y, outer, cfg.CornerSquare.radius(outer), cell, fgc)
		inner := 3 * cell
		c.roundRect(x+2*cell, y+2*cell, inner, inner, cfg.CornerDot.radius(inner), fgc)
	}

	if cfg.Logo != "" {
		if err := c.logo(logoBox, cfg.Logo); err != nil {
			return err
		}
	}
	return nil
}
