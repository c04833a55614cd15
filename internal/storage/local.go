package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SavedFile describes a stored upload.
type SavedFile struct {
	Name string
	Path string
	Type string
}

// FileStore persists uploads and reads them back as text for grading.
type FileStore interface {
	Save(ctx context.Context, category, originalName string, r io.Reader) (SavedFile, error)
	ReadText(ctx context.Context, path string) (string, error)
}

// LocalStore keeps uploads on the local filesystem under a root directory.
type LocalStore struct {
	root    string
	allowed []string
	logger  zerolog.Logger
}

// NewLocalStore builds a store rooted at dir.
func NewLocalStore(dir string, logger zerolog.Logger) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload dir must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &LocalStore{
		root:    dir,
		allowed: []string{"text/plain", "application/pdf", "application/zip", "application/x-zip-compressed"},
		logger:  logger.With().Str("component", "file_store").Logger(),
	}, nil
}

// Save writes the upload under root/category with a collision-free name and
// screens its detected MIME type.
func (s *LocalStore) Save(_ context.Context, category, originalName string, r io.Reader) (SavedFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return SavedFile{}, fmt.Errorf("read upload: %w", err)
	}

	mime := mimetype.Detect(data)
	if !s.typeAllowed(mime) {
		return SavedFile{}, fmt.Errorf("unsupported file type: %s", mime.String())
	}

	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SavedFile{}, fmt.Errorf("create category dir: %w", err)
	}

	name := uuid.NewString() + "_" + filepath.Base(originalName)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return SavedFile{}, fmt.Errorf("write upload: %w", err)
	}

	s.logger.Debug().Str("path", path).Msg("upload stored")

	return SavedFile{
		Name: name,
		Path: path,
		Type: fileExtension(originalName),
	}, nil
}

// ReadText loads a previously stored file back as text.
func (s *LocalStore) ReadText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", path, err)
	}
	return string(data), nil
}

func (s *LocalStore) typeAllowed(mime *mimetype.MIME) bool {
	for _, a := range s.allowed {
		if mime.Is(a) {
			return true
		}
	}
	return false
}

func fileExtension(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return strings.ToLower(ext)
}
