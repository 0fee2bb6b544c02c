package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Folder names partitioning the asset root by semantic file type.
const (
	ImagesFolder = "images"
	PDFsFolder   = "pdfs"
)

// Store writes, reads and deletes asset files under a local root directory.
// Files are addressed by the paths it returns; callers decide names, the
// store only guarantees the physical operations.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Hash returns the hex encoded SHA-256 digest of data. It is the
// deduplication key for file backed assets.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Save writes data under <root>/<folder>/<name>, creating the folder when
// absent, and returns the normalized forward-slash path. A failed write
// must abort the enclosing operation.
func (s *Store) Save(data []byte, folder, name string) (string, error) {
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create asset directory %s: %w", dir, err)
	}

	dst := filepath.Join(dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write asset file %s: %w", dst, err)
	}

	return filepath.ToSlash(dst), nil
}

// Remove deletes the file at path. A missing file is not an error; delete
// is idempotent.
func (s *Store) Remove(path string) error {
	if err := os.Remove(filepath.FromSlash(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove asset file %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a file is present at path.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(filepath.FromSlash(path))
	return err == nil
}
