package objstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thecontrarian/image-gateway/pkg/imagepath"
)

// FileStore serves objects from a local directory tree. Used for
// development so the gateway can run without bucket credentials.
type FileStore struct {
	root string
}

// NewFileStore creates a file-backed store rooted at root.
func NewFileStore(root string) (*FileStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat storage root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage root %q is not a directory", root)
	}
	return &FileStore{root: root}, nil
}

// Get opens the file under key. Keys arrive pre-validated by the path
// resolver, but the join is still confined to the root as a backstop.
func (f *FileStore) Get(ctx context.Context, key string) (*Object, error) {
	full := filepath.Join(f.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(f.root, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, ErrNotFound
	}

	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open object %q: %w", key, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat object %q: %w", key, err)
	}
	if info.IsDir() {
		file.Close()
		return nil, ErrNotFound
	}

	contentType := ""
	if mime, ok := imagepath.MIMEForExtension(filepath.Ext(key)); ok {
		contentType = mime
	}

	return &Object{
		Body:          file,
		ContentType:   contentType,
		ETag:          fmt.Sprintf("%x-%x", info.ModTime().UnixNano(), info.Size()),
		ContentLength: info.Size(),
	}, nil
}
