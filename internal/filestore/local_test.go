package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Open(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "a.pdf"), []byte("%PDF-1.4"), 0o600))

	l := NewLocal(root)
	obj, err := l.Open(context.Background(), "docs/a.pdf")
	require.NoError(t, err)
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))
	assert.Equal(t, int64(8), obj.Size)
	assert.Equal(t, "application/pdf", obj.ContentType)
}

func TestLocal_OpenMissingAndEscapes(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "store")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("x"), 0o600))

	l := NewLocal(root)
	ctx := context.Background()

	for _, key := range []string{"missing.pdf", "../secret.txt", "", "/"} {
		_, err := l.Open(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound, key)
	}
}

func TestLocal_URLIsEmpty(t *testing.T) {
	u, err := NewLocal(t.TempDir()).URL(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Empty(t, u)
}
