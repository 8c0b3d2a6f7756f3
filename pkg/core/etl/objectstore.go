package etl

import (
	"context"
	"os"
	"path/filepath"

	"aegis/pkg/core/apperr"
)

// LocalObjectStore implements ObjectStore against a directory on disk.
// Production deployments back ObjectStore with S3 or an equivalent
// object store (spec.md §1 Non-goal: the backend itself is out of
// scope); LocalObjectStore exists so the ETL framework is exercisable
// without one.
type LocalObjectStore struct {
	BaseDir string
}

func NewLocalObjectStore(baseDir string) *LocalObjectStore {
	return &LocalObjectStore{BaseDir: baseDir}
}

func (s *LocalObjectStore) Upload(ctx context.Context, key string, content []byte) (string, error) {
	path := filepath.Join(s.BaseDir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", apperr.Upstream("etl.objectstore", "failed to create object store directory", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", apperr.Upstream("etl.objectstore", "failed to write object", err)
	}
	return "file://" + path, nil
}
