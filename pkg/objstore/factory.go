package objstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thecontrarian/image-gateway/pkg/config"
	"github.com/thecontrarian/image-gateway/pkg/logging"
)

// New creates the object store selected by configuration: the S3/R2
// backend in production, the file backend for development.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "s3":
		store, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 store: %w", err)
		}
		logging.Logger.Info("Initialized S3 object store",
			zap.String("bucket", cfg.Bucket),
			zap.String("endpoint", cfg.Endpoint))
		return store, nil
	case "file":
		store, err := NewFileStore(cfg.FileRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to create file store: %w", err)
		}
		logging.Logger.Info("Initialized file object store for development",
			zap.String("root", cfg.FileRoot))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
