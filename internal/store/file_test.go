package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T, secret string) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.enc")
	s, err := NewFileStore(path, []byte(secret))
	require.NoError(t, err)
	return s
}

func TestFileStoreRequiresSecretAndPath(t *testing.T) {
	_, err := NewFileStore("", []byte("secret"))
	assert.Error(t, err)

	_, err = NewFileStore(filepath.Join(t.TempDir(), "f"), nil)
	assert.Error(t, err)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t, "test-secret")

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "accessToken", "A"))
	require.NoError(t, s.Set(ctx, "refreshToken", "R"))

	v, err := s.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, "A", v)

	require.NoError(t, s.Delete(ctx, "accessToken"))
	_, err = s.Get(ctx, "accessToken")
	assert.ErrorIs(t, err, ErrNotFound)

	v, err = s.Get(ctx, "refreshToken")
	require.NoError(t, err)
	assert.Equal(t, "R", v)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.enc")

	first, err := NewFileStore(path, []byte("secret"))
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", "v"))

	second, err := NewFileStore(path, []byte("secret"))
	require.NoError(t, err)
	v, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestFileStoreWrongSecretFailsToOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.enc")

	s, err := NewFileStore(path, []byte("right"))
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "v"))

	other, err := NewFileStore(path, []byte("wrong"))
	require.NoError(t, err)
	_, err = other.Get(ctx, "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStoreFileIsNotPlaintext(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.enc")

	s, err := NewFileStore(path, []byte("secret"))
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "accessToken", "very-secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "very-secret-token")
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s := newTestFileStore(t, "secret")
	_, err := s.Get(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNotFound)
}
