package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/presentia/backend/internal/pkg/logger"
)

// LocalStore keeps blobs on the local filesystem. It is the development
// stand-in for the S3 store; keys map directly to paths under basePath.
type LocalStore struct {
	basePath string
	baseURL  string
}

// NewLocalStore creates a filesystem-backed store rooted at basePath.
// baseURL, when set, is prepended to returned locations so they resolve
// through the static file route.
func NewLocalStore(basePath, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}

	return &LocalStore{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// Put writes data under the key's path and returns an accessible location.
func (ls *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dstPath), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	if err := os.WriteFile(dstPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", key, err)
	}

	if ls.baseURL != "" {
		return strings.TrimRight(ls.baseURL, "/") + "/" + key, nil
	}
	return key, nil
}

// Delete removes the file under key. A missing file counts as deleted.
func (ls *LocalStore) Delete(_ context.Context, key string) error {
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(key))

	if _, err := os.Stat(dstPath); os.IsNotExist(err) {
		logger.Warn().Str("key", key).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(dstPath); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", key, err)
	}

	return nil
}
