package report

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/dirharvest/internal/model"
	"golang.org/x/crypto/sha3"
)

// WriteFile writes doc as JSON to path and returns the bytes written.
//
// Parent directories are created as needed. The document is first written
// to a temporary file in the destination directory and then renamed over
// path, so an interrupted write never leaves a truncated document behind.
// Any failure is wrapped in ErrWrite.
func WriteFile(path string, doc *model.AggregateDocument, opts ...JSONWriterOption) ([]byte, error) {
	w := NewJSONWriter(nil, opts...)
	data, err := w.marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("%w: failed to create directory %s: %w", ErrWrite, dir, err)
	}

	// CreateTemp opens the file with 0600 permissions
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create temporary file: %w", ErrWrite, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, fmt.Errorf("%w: failed to replace %s: %w", ErrWrite, path, err)
	}

	return data, nil
}

// Digest returns the hex-encoded SHA3-256 hash of data.
// Two runs producing the same document have the same digest.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
