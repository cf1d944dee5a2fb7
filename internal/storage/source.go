package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const sha256HexLength = 64

// SourceStore reads media bytes out of the hash-sharded content store an
// upstream pipeline keeps populated: the first three byte pairs of the hex
// digest are nested directories and the final segment is digest.file_type.
type SourceStore struct {
	root string
}

// NewSourceStore opens a source store rooted at the media directory.
func NewSourceStore(root string) (*SourceStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("media root unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("media root is not a directory: %s", root)
	}

	return &SourceStore{root: root}, nil
}

// Path returns the sharded location for the given content digest and file
// type.
func (s *SourceStore) Path(sha256Hex, fileType string) (string, error) {
	if len(sha256Hex) != sha256HexLength {
		return "", fmt.Errorf("invalid sha256 digest: %q", sha256Hex)
	}

	path := filepath.Join(
		s.root,
		sha256Hex[0:2],
		sha256Hex[2:4],
		sha256Hex[4:6],
		sha256Hex+"."+fileType,
	)

	// Security: prevent directory traversal
	if !filepath.HasPrefix(filepath.Clean(path), filepath.Clean(s.root)) {
		return "", fmt.Errorf("invalid media path: traversal detected")
	}

	return path, nil
}

// Open returns a seekable reader for the media item's bytes. The caller
// verifies length and digest against the media record; the store itself
// trusts its layout.
func (s *SourceStore) Open(sha256Hex, fileType string) (io.ReadSeekCloser, error) {
	path, err := s.Path(sha256Hex, fileType)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("media file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open media file: %w", err)
	}

	return file, nil
}
