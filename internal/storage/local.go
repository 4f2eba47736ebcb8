package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LocalStore keeps uploads on the local filesystem and serves them
// under a URL prefix (the HTTP layer mounts the directory as static).
type LocalStore struct {
	basePath  string
	urlPrefix string
}

func NewLocalStore(basePath, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	return &LocalStore{basePath: abs, urlPrefix: urlPrefix}, nil
}

// Save writes the payload under a uuid-based name, keeping the original
// extension. The write goes through a temp file and an atomic rename so
// a half-written upload is never served.
func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (*SavedFile, error) {
	filename := uuid.NewString() + filepath.Ext(originalName)
	path := filepath.Join(s.basePath, filename)

	tmp, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("store upload: %w", err)
	}

	log.Info().Str("module", "storage").Str("file", filename).Msg("upload stored")
	return &SavedFile{
		URL:      s.urlPrefix + "/" + filename,
		Path:     path,
		Filename: filename,
	}, nil
}
