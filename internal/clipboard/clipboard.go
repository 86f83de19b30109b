// Package clipboard copies text to the system clipboard and reports the
// outcome through one Notifier.
package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
)

var ErrNothingToCopy = errors.New("no URL to copy")

// Writer puts text on a clipboard.
type Writer interface {
	WriteAll(text string) error
}

type Outcome int

const (
	Succeeded Outcome = iota
	Failed
)

func (o Outcome) String() string {
	if o == Succeeded {
		return "succeeded"
	}
	return "failed"
}

// Notifier tells the user how a copy went.
type Notifier interface {
	Notify(o Outcome, msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(o Outcome, msg string)

func (f NotifierFunc) Notify(o Outcome, msg string) { f(o, msg) }

// Messages shown for each outcome.
const (
	CopiedMessage = "Copied URL to clipboard"
	FailedMessage = "Could not copy"
)

// Copy writes text through w and notifies n of the result. n may be nil.
func Copy(w Writer, text string, n Notifier) Outcome {
	notify := func(o Outcome, msg string) Outcome {
		if n != nil {
			n.Notify(o, msg)
		}
		return o
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return notify(Failed, ErrNothingToCopy.Error())
	}
	if err := w.WriteAll(text); err != nil {
		return notify(Failed, fmt.Sprintf("%s: %v", FailedMessage, err))
	}
	return notify(Succeeded, CopiedMessage)
}

// System uses the native clipboard. When that is unavailable (no display,
// no xclip/xsel, remote shell) and Terminal is set, it falls back to an
// OSC 52 escape asking the terminal emulator to set the selection.
type System struct {
	Terminal io.Writer
	native   func(string) error
}

func NewSystem(terminal io.Writer) *System {
	return &System{Terminal: terminal, native: clipboard.WriteAll}
}

func (s *System) WriteAll(text string) error {
	native := s.native
	if native == nil {
		native = clipboard.WriteAll
	}
	err := native(text)
	if err == nil {
		return nil
	}
	if s.Terminal == nil {
		return err
	}
	if _, werr := io.WriteString(s.Terminal, osc52(text)); werr != nil {
		return fmt.Errorf("clipboard: %w", errors.Join(err, werr))
	}
	return nil
}

func osc52(text string) string {
	return "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
}
