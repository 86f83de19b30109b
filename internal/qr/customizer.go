package qr

import (
	"fmt"
	"io"
	"net/http"
	"sync"

	"linkkit/internal/utm"

	"github.com/sirupsen/logrus"
)

// Channel selects one of the two color inputs.
type Channel int

const (
	ChannelForeground Channel = iota
	ChannelBackground
)

// Customizer owns the state of one QR customizer: the form, the renderer and
// the current logo. All methods are safe for concurrent use.
type Customizer struct {
	mu       sync.Mutex
	form     Form
	renderer Renderer
	logo     string
	logoSeq  uint64
	log      logrus.FieldLogger
}

// NewCustomizer starts from DefaultForm and performs the initial render.
func NewCustomizer(r Renderer, log logrus.FieldLogger) *Customizer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Customizer{
		form:     DefaultForm(),
		renderer: r,
		log:      log.WithField("component", "qr"),
	}
	if err := c.Generate(); err != nil {
		c.log.WithError(err).Warn("initial render failed")
	}
	return c
}

func (c *Customizer) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Customizer) Logo() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logo
}

// Config is the configuration the renderer currently holds.
func (c *Customizer) Config() Config {
	return c.renderer.Config()
}

// Generate pushes the current form to the renderer.
func (c *Customizer) Generate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

func (c *Customizer) renderLocked() error {
	cfg := c.form.Config(c.logo)
	if err := c.renderer.Update(cfg); err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{
		"size":   cfg.Width,
		"ec":     cfg.ECLevel,
		"dots":   cfg.Dots,
		"logo":   cfg.Logo != "",
		"length": len(cfg.Data),
	}).Debug("qr rendered")
	return nil
}

// commitLocked renders the current state. When the renderer rejects it,
// form and logo go back to prevForm and prevLogo.
func (c *Customizer) commitLocked(prevForm Form, prevLogo string) error {
	if err := c.renderLocked(); err != nil {
		c.form, c.logo = prevForm, prevLogo
		return err
	}
	return nil
}

// Apply edits the form and re-renders. A rejected edit is undone.
func (c *Customizer) Apply(edit func(*Form)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.form
	edit(&c.form)
	return c.commitLocked(prev, c.logo)
}

func (c *Customizer) field(ch Channel) *ColorField {
	if ch == ChannelBackground {
		return &c.form.Background
	}
	return &c.form.Foreground
}

// SetColorText records typed color input; the picker keeps its value when
// the text is not a valid color.
func (c *Customizer) SetColorText(ch Channel, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.field(ch).SetText(v)
}

func (c *Customizer) SetColorPicker(ch Channel, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.field(ch).SetPicker(v)
}

// BuildUTM assembles a tracking link, makes it the payload and re-renders.
// On a validation or render error the payload is left as it was.
func (c *Customizer) BuildUTM(base string, p utm.Params) (string, error) {
	link, err := utm.Build(base, p)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.form
	c.form.Data = link
	if err := c.commitLocked(prev, c.logo); err != nil {
		return link, err
	}
	return link, nil
}

// BeginLogo reserves the sequence number for a new logo read.
func (c *Customizer) BeginLogo() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logoSeq++
	return c.logoSeq
}

// CompleteLogo installs a finished read. Reads that are no longer the latest
// are dropped and report false.
func (c *Customizer) CompleteLogo(seq uint64, dataURL string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.logoSeq {
		c.log.WithFields(logrus.Fields{"seq": seq, "latest": c.logoSeq}).Debug("stale logo read dropped")
		return false, nil
	}
	prev := c.logo
	c.logo = dataURL
	return true, c.commitLocked(c.form, prev)
}

// LoadLogo reads r in the background and installs it as the logo when the
// read is still the most recent one. The channel yields at most one error.
func (c *Customizer) LoadLogo(r io.Reader, mime string) <-chan error {
	seq := c.BeginLogo()
	done := make(chan error, 1)
	go func() {
		defer close(done)
		data, err := io.ReadAll(r)
		if err != nil {
			done <- fmt.Errorf("read logo: %w", err)
			return
		}
		if mime == "" {
			mime = http.DetectContentType(data)
		}
		if _, err := c.CompleteLogo(seq, EncodeDataURL(mime, data)); err != nil {
			done <- err
		}
	}()
	return done
}

// ClearLogo removes the logo and invalidates reads still in flight.
func (c *Customizer) ClearLogo() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logoSeq++
	c.logo = ""
}

// Download exports the current render.
func (c *Customizer) Download(format Format) ([]byte, error) {
	return c.renderer.Export(format)
}
