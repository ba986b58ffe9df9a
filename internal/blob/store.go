// Package blob persists uploaded audio and rendered report artifacts on the
// local filesystem, addressed by keys relative to a root directory.
package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Subdirectories under the blob root.
const (
	AudioDir   = "audio"
	ReportsDir = "reports"
)

// allowedExtensions is the audio format allow-list checked on upload.
var allowedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".webm": true,
}

// ValidationError reports a rejected upload (bad extension or oversize).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Store is a key-addressed file store rooted at a single directory.
type Store struct {
	root     string
	maxBytes int64
}

// New creates a Store rooted at dir, rejecting uploads larger than maxBytes.
func New(dir string, maxBytes int64) (*Store, error) {
	for _, sub := range []string{AudioDir, ReportsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("creating blob directory: %w", err)
		}
	}
	return &Store{root: dir, maxBytes: maxBytes}, nil
}

// SaveAudio validates and stores an uploaded audio file. The key is a fresh
// uuid with the original extension, never derived from the original name.
// The file is written to a temp path and renamed, so a partially written
// blob is never visible under a committed key.
func (s *Store) SaveAudio(originalName string, r io.Reader) (key string, size int64, err error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if originalName == "" || !allowedExtensions[ext] {
		return "", 0, &ValidationError{Reason: fmt.Sprintf(
			"invalid file format %q, allowed formats: mp3, wav, m4a, ogg, webm", ext)}
	}

	key = filepath.Join(AudioDir, uuid.New().String()+ext)
	dst := filepath.Join(s.root, key)

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	// Copy one byte past the ceiling so oversize is detectable.
	size, err = io.Copy(tmp, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("closing upload: %w", err)
	}
	if size > s.maxBytes {
		return "", 0, &ValidationError{Reason: fmt.Sprintf(
			"file too large, maximum size: %dMB", s.maxBytes/(1024*1024))}
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", 0, fmt.Errorf("committing upload: %w", err)
	}
	return key, size, nil
}

// SaveArtifact writes a rendered report artifact at its deterministic key
// and returns that key. Re-saving overwrites the previous artifact.
func (s *Store) SaveArtifact(reportID int64, format string, data []byte) (string, error) {
	key := ArtifactKey(reportID, format)
	if err := os.WriteFile(filepath.Join(s.root, key), data, 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return key, nil
}

// ArtifactKey derives the fixed artifact key for a report id and format
// ("pdf" or "md"). The same inputs always yield the same key, which is what
// makes export idempotent and re-downloadable.
func ArtifactKey(reportID int64, format string) string {
	return filepath.Join(ReportsDir, fmt.Sprintf("report_%d.%s", reportID, format))
}

// Read returns the contents of the blob at key.
func (s *Store) Read(key string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, key))
}

// Path returns the absolute filesystem path for a key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.root, key)
}

// Delete removes the blob at key. Returns false if the blob was absent;
// a missing blob is a no-op, never an error.
func (s *Store) Delete(key string) bool {
	if key == "" {
		return false
	}
	return os.Remove(filepath.Join(s.root, key)) == nil
}
