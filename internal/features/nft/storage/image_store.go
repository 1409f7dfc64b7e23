package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ImageStore writes uploaded images to a directory served under urlPrefix.
type ImageStore struct {
	dir       string
	urlPrefix string
}

func NewImageStore(dir, urlPrefix string) *ImageStore {
	return &ImageStore{dir: dir, urlPrefix: urlPrefix}
}

// Save stores data as <name><ext> and returns its public URL. The extension
// comes from the sniffed content type; non-image payloads are rejected.
func (s *ImageStore) Save(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image is empty")
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("unsupported image type %s", mt.String())
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := name + mt.Extension()
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path.Join(s.urlPrefix, filename), nil
}

// Remove deletes a previously saved file by URL. Missing files are ignored.
func (s *ImageStore) Remove(url string) error {
	err := os.Remove(filepath.Join(s.dir, path.Base(url)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *ImageStore) Dir() string {
	return s.dir
}
