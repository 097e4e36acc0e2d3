package objstore_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecontrarian/image-gateway/pkg/objstore"
)

func newFileStore(t *testing.T) (*objstore.FileStore, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "originals", "test"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "originals", "test", "photo.jpg"), []byte("jpeg-bytes"), 0644))

	store, err := objstore.NewFileStore(root)
	require.NoError(t, err)
	return store, root
}

func TestFileStoreGet(t *testing.T) {
	store, _ := newFileStore(t)

	obj, err := store.Get(context.Background(), "originals/test/photo.jpg")
	require.NoError(t, err)
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, int64(len(data)), obj.ContentLength)
	assert.NotEmpty(t, obj.ETag)
}

func TestFileStoreMiss(t *testing.T) {
	store, _ := newFileStore(t)

	_, err := store.Get(context.Background(), "originals/test/absent.jpg")
	assert.ErrorIs(t, err, objstore.ErrNotFound)
}

func TestFileStoreConfinedToRoot(t *testing.T) {
	store, root := newFileStore(t)

	// Plant a file next to the root that must never be reachable.
	outside := filepath.Join(filepath.Dir(root), "secret.jpg")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0644))

	_, err := store.Get(context.Background(), "../secret.jpg")
	assert.ErrorIs(t, err, objstore.ErrNotFound)
}

func TestFileStoreDirectoryKey(t *testing.T) {
	store, _ := newFileStore(t)

	_, err := store.Get(context.Background(), "originals/test")
	assert.ErrorIs(t, err, objstore.ErrNotFound)
}

func TestNewFileStoreRejectsMissingRoot(t *testing.T) {
	_, err := objstore.NewFileStore(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
