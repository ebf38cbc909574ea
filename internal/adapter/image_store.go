package adapter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ImageStore persists an uploaded event image and returns its public URL.
type ImageStore interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// LocalImageStore writes images under a directory served by the HTTP server.
type LocalImageStore struct {
	dir     string
	baseURL string
	create  func(path string) (io.WriteCloser, error)
	logger  *zap.Logger
}

// NewLocalImageStore creates dir if needed. baseURL is the public prefix the directory is served at.
func NewLocalImageStore(dir, baseURL string, logger *zap.Logger) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &LocalImageStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		create:  func(path string) (io.WriteCloser, error) { return os.Create(path) },
		logger:  logger,
	}, nil
}

// Put stores the image as events/<unix-ms>_<basename>.
func (s *LocalImageStore) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fileName := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sanitizeFileName(name))
	path := filepath.Join(s.dir, fileName)

	f, err := s.create(path)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	n, err := io.Copy(f, body)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close image file: %w", err)
	}

	url := s.baseURL + "/" + fileName
	s.logger.Info("image stored",
		zap.String("url", url),
		zap.String("content_type", contentType),
		zap.Int64("bytes", n),
	)
	return url, nil
}

func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "image"
	}
	return base
}
