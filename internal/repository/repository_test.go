package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behavior every BlobStore must share.
func exerciseStore(t *testing.T, s BlobStore) {
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Update(ctx, "k", func(old []byte) ([]byte, error) {
		assert.Nil(t, old)
		return []byte(`{"a":"1"}`), nil
	})
	require.NoError(t, err)

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"1"}`, string(v))

	boom := errors.New("boom")
	err = s.Update(ctx, "k", func(old []byte) ([]byte, error) {
		assert.JSONEq(t, `{"a":"1"}`, string(old))
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"1"}`, string(v), "a failed update writes nothing")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreConcurrentUpdates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, "n", func(old []byte) ([]byte, error) {
				return append(old, 'x'), nil
			})
		}()
	}
	wg.Wait()
	v, err := s.Get(ctx, "n")
	require.NoError(t, err)
	assert.Len(t, v, 50)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "links.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	exerciseStore(t, s)

	// a second handle on the same file sees the data
	again, err := NewFileStore(path)
	require.NoError(t, err)
	v, err := again.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"1"}`, string(v))
}

func TestFileStoreRejectsNonJSON(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "links.json"))
	require.NoError(t, err)
	err = s.Update(context.Background(), "k", func([]byte) ([]byte, error) {
		return []byte("not json"), nil
	})
	assert.Error(t, err)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))
	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
