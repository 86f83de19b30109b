package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	a := ObjectName("png")
	b := ObjectName(".png")
	assert.True(t, strings.HasPrefix(a, "qr-"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.True(t, strings.HasSuffix(b, ".png"))
	assert.False(t, strings.HasSuffix(b, "..png"))
	assert.NotEqual(t, a, b)
	assert.NotContains(t, ObjectName(""), ".")
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	s, err := NewFileSink(dir)
	require.NoError(t, err)

	loc, err := s.Save(context.Background(), "svg", "image/svg+xml", []byte("<svg/>"))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(loc))
	assert.Equal(t, ".svg", filepath.Ext(loc))

	got, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(got))
}

func TestFileSinkCanceled(t *testing.T) {
	s, err := NewFileSink(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Save(ctx, "png", "image/png", []byte{1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFileSinkEmptyDir(t *testing.T) {
	_, err := NewFileSink("")
	assert.Error(t, err)
}

func TestNewMinioSinkRequiresEndpoint(t *testing.T) {
	_, err := NewMinioSink(context.Background(), MinioConfig{Bucket: "qr"})
	assert.Error(t, err)
	_, err = NewMinioSink(context.Background(), MinioConfig{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}
