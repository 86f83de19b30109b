// Package export stores rendered QR images somewhere they can be fetched
// again: a local directory or an S3-compatible bucket.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrNoSink = errors.New("no export destination configured")

// Sink saves one exported image and returns where it ended up.
type Sink interface {
	Save(ctx context.Context, ext, contentType string, data []byte) (string, error)
}

// ObjectName returns a fresh, collision-free name with the given extension.
func ObjectName(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return "qr-" + uuid.NewString()
	}
	return "qr-" + uuid.NewString() + "." + ext
}

// FileSink writes exports into Dir.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		return nil, errors.New("export dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &FileSink{Dir: dir}, nil
}

func (f *FileSink) Save(ctx context.Context, ext, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := filepath.Join(f.Dir, ObjectName(ext))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return p, nil
}
