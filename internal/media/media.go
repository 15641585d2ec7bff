// Package media stores uploaded post images.
package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"yatube/internal/config"

	"github.com/google/uuid"
)

// Storage saves files and resolves their public URLs. Keys are relative
// paths such as "posts/<uuid>-<name>".
type Storage interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
	URL(key string) string
}

// New builds the backend selected by cfg.
func New(cfg *config.MediaConfig) (Storage, error) {
	switch cfg.Backend {
	case config.MediaLocal:
		return NewLocalStorage(cfg.Root, cfg.URL)
	case config.MediaS3:
		return NewS3Storage(cfg.S3Bucket, cfg.S3Region)
	}
	return nil, fmt.Errorf("unsupported media backend %q", cfg.Backend)
}

// postKey places uploads under posts/ with a unique prefix.
func postKey(name string, now time.Time) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		name = "image"
	}
	return path.Join("posts", now.Format("2006/01"), uuid.NewString()+"-"+name)
}
