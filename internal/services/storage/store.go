package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"bearwatch/internal/logger"
)

// ErrUnsupportedExtension is returned for uploads whose extension is not allowed.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// allowedExtensions is the upload allow-list.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// UploadStore persists uploaded images under a managed directory with
// collision-resistant names and serves them back by filename. Files are
// append-only from this service's perspective.
type UploadStore struct {
	dir    string
	logger *logger.Logger
}

// NewUploadStore creates an UploadStore and ensures the directory exists.
func NewUploadStore(dir string, logger *logger.Logger) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &UploadStore{dir: dir, logger: logger}, nil
}

// Dir returns the managed upload directory.
func (s *UploadStore) Dir() string {
	return s.dir
}

// Allowed reports whether the filename carries an allowed image extension.
func (s *UploadStore) Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Save writes the upload to disk under a unique generated name
// ("<uuid>_<sanitized original>") and returns that filename.
func (s *UploadStore) Save(src io.Reader, originalName string) (string, error) {
	if !s.Allowed(originalName) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedExtension, originalName)
	}

	filename := uuid.New().String() + "_" + sanitizeFilename(originalName)
	path := filepath.Join(s.dir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	s.logger.Info("Stored upload %s", filename)
	return filename, nil
}

// Path resolves a stored filename to its full path. Names that would
// escape the upload directory are rejected.
func (s *UploadStore) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}

// DirectorySize returns the total size in bytes of all stored files.
func (s *UploadStore) DirectorySize() (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload directory: %w", err)
	}

	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// sanitizeFilename strips path components and replaces characters that
// are unsafe in filenames.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return unsafeChars.ReplaceAllString(base, "_")
}
