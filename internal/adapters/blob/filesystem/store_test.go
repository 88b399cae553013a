package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minato-cat-support/internal/ports/blob"
)

func TestStore_Put(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "/photos/")
	require.NoError(t, err)

	ref, err := s.Put(context.Background(), "reports/r1/urgent.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	assert.Equal(t, "/photos/reports/r1/urgent.png", ref)

	got, err := os.ReadFile(filepath.Join(dir, "reports", "r1", "urgent.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got)
}

func TestStore_PutRejects(t *testing.T) {
	s, err := New(t.TempDir(), "")
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "a.png", "image/png", nil)
	assert.ErrorIs(t, err, blob.ErrEmptyObject)

	// path traversal queda contenido en el directorio
	ref, err := s.Put(context.Background(), "../../etc/x", "text/plain", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "/etc/x", ref)
	_, err = os.Stat(filepath.Join(s.Dir(), "etc", "x"))
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Put(ctx, "b.png", "image/png", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
