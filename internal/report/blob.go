package report

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

// BlobStore reads stored report files
type BlobStore interface {
	Read(path string) ([]byte, error)
}

// DirStore serves blobs from a directory on local disk or a mounted volume
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Read returns the file at path relative to the store root. Paths that would
// leave the root are rejected as not found.
func (s *DirStore) Read(path string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if !filepath.IsLocal(clean) {
		return nil, errors.Wrapf(domain.ErrNotFound, "blob %q", path)
	}

	data, err := os.ReadFile(filepath.Join(s.root, clean))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(domain.ErrNotFound, "blob %q", path)
		}
		return nil, errors.Wrap(err, "failed to read blob")
	}
	return data, nil
}
