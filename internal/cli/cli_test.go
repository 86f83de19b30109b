package cli

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"linkkit/internal/clipboard"
	"linkkit/internal/export"
	"linkkit/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memClipboard struct{ text string }

func (m *memClipboard) WriteAll(text string) error {
	m.text = text
	return nil
}

func run(t *testing.T, clip clipboard.Writer, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	if clip == nil {
		clip = &memClipboard{}
	}
	root := newRoot(&app{out: &out, errOut: &errOut, clip: clip})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestUTM(t *testing.T) {
	clip := &memClipboard{}
	out, errOut, err := run(t, clip, "utm", "--base", "https://example.com", "--source", "news", "--campaign", "q4 sale", "--copy")
	require.NoError(t, err)
	want := "https://example.com?utm_source=news&utm_campaign=q4%20sale"
	assert.Equal(t, want+"\n", out)
	assert.Equal(t, want, clip.text)
	assert.Contains(t, errOut, clipboard.CopiedMessage)
}

func TestUTMErrors(t *testing.T) {
	_, _, err := run(t, nil, "utm", "--source", "x")
	assert.EqualError(t, err, "please enter a base URL")

	_, _, err = run(t, nil, "utm", "--base", "https://example.com")
	assert.Error(t, err)
}

func TestShortenAndOpen(t *testing.T) {
	store := filepath.Join(t.TempDir(), "links.json")

	out, _, err := run(t, nil, "shorten", "https://example.com/page", "--store", store, "--base", "https://go.example/")
	require.NoError(t, err)
	link := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(link, "https://go.example/#"), link)

	out, _, err = run(t, nil, "open", link, "--store", store)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page\n", out)

	out, _, err = run(t, nil, "list", "--store", store, "--base", "https://go.example/")
	require.NoError(t, err)
	assert.Equal(t, link+"\thttps://example.com/page\n", out)
}

func TestShortenInvalid(t *testing.T) {
	store := filepath.Join(t.TempDir(), "links.json")
	_, _, err := run(t, nil, "shorten", "not a url", "--store", store)
	assert.ErrorIs(t, err, service.ErrInvalidURL)
	_, statErr := os.Stat(store)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestOpenUnknown(t *testing.T) {
	store := filepath.Join(t.TempDir(), "links.json")
	out, _, err := run(t, nil, "open", "https://go.example/?x=1#nope00", "--store", store)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Contains(t, out, "URL Not Found")
	assert.Contains(t, out, "https://go.example/\n")

	out, _, err = run(t, nil, "open", "https://go.example/", "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "no short code")
}

func TestQRToFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "code.png")

	_, errOut, err := run(t, nil, "qr", "--data", "https://example.com", "--size", "5000", "--dots", "dots", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, errOut, "wrote")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())
}

func TestQRSVGToStdout(t *testing.T) {
	out, _, err := run(t, nil, "qr", "--utm-base", "https://example.com", "--utm-source", "poster", "--fg", "00ff00", "--format", "svg", "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "#00ff00")
}

func TestQRLogoFile(t *testing.T) {
	dir := t.TempDir()
	// any PNG works as a logo
	logo, _, err := run(t, nil, "qr", "--data", "x", "--size", "200", "-o", "-")
	require.NoError(t, err)
	logoPath := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(logoPath, []byte(logo), 0o644))

	_, _, err = run(t, nil, "qr", "--data", "https://example.com", "--logo", logoPath, "--ec", "H", "-o", filepath.Join(dir, "out.jpg"), "--format", "jpg")
	require.NoError(t, err)

	_, _, err = run(t, nil, "qr", "--logo", filepath.Join(dir, "missing.png"), "-o", "-")
	assert.Error(t, err)
}

func TestQRUploadWithoutDestination(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MINIO_ENDPOINT", "")
	t.Setenv("EXPORT_DIR", "")
	_, _, err := run(t, nil, "qr", "--upload")
	assert.ErrorIs(t, err, export.ErrNoSink)
}

func TestQRUploadToDir(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	t.Setenv("MINIO_ENDPOINT", "")
	t.Setenv("EXPORT_DIR", dir)
	out, _, err := run(t, nil, "qr", "--data", "x", "--format", "svg", "--upload")
	require.NoError(t, err)
	loc := strings.TrimSpace(out)
	assert.Equal(t, dir, filepath.Dir(loc))
	assert.Equal(t, ".svg", filepath.Ext(loc))
}

func TestQRBadFormat(t *testing.T) {
	_, _, err := run(t, nil, "qr", "--format", "gif")
	assert.Error(t, err)
}
