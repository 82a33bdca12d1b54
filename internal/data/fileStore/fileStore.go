package fileStore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var ErrFileTooLarge = errors.New("file too large")

// FileStore keeps uploads on local disk until they are ingested.
type FileStore struct {
	dir    string
	logger *logger_i.Logger
}

// New creates dir when needed. An empty dir means config.UploadDirName under the working directory.
func New(dir string) (*FileStore, error) {
	if dir == "" {
		root, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("storage error: %w", err)
		}
		dir = filepath.Join(root, config.UploadDirName)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage error: %w", err)
	}
	return &FileStore{dir: dir, logger: logger_i.NewLogger("FileStore")}, nil
}

func (s *FileStore) Dir() string { return s.dir }

// Save copies at most maxBytes from r into a uniquely named file and returns its path and size.
// The partial file is removed when the limit is exceeded.
func (s *FileStore) Save(filename string, r io.Reader, maxBytes int64) (string, int64, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitize(filename))
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", 0, fmt.Errorf("storage error: %w", err)
	}

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()

	switch {
	case copyErr != nil:
		s.Remove(path)
		return "", 0, fmt.Errorf("write error: %w", copyErr)
	case closeErr != nil:
		s.Remove(path)
		return "", 0, fmt.Errorf("write error: %w", closeErr)
	case maxBytes > 0 && n > maxBytes:
		s.Remove(path)
		return "", 0, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, filename, maxBytes)
	}
	return path, n, nil
}

// Remove deletes a stored upload. Missing files are ignored.
func (s *FileStore) Remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Error("Error removing file", "path", path, "error", err)
	}
}

func sanitize(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	return base
}
