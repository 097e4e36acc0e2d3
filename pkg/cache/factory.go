package cache

import (
	"go.uber.org/zap"

	"github.com/thecontrarian/image-gateway/pkg/config"
	"github.com/thecontrarian/image-gateway/pkg/logging"
)

// NewDocumentCache creates the cache for rendered lightbox documents.
// The file backend persists across restarts (for dev); memory otherwise.
func NewDocumentCache(cfg config.CacheConfig) Cache {
	if cfg.Backend == "file" && cfg.FilePath != "" {
		fileCache, err := NewFileCache(cfg.FilePath)
		if err != nil {
			logging.Logger.Warn("Failed to create file-based document cache, falling back to memory cache",
				zap.String("path", cfg.FilePath),
				zap.Error(err))
			return NewMemoryCache()
		}
		logging.Logger.Info("Initialized file-based document cache",
			zap.String("path", cfg.FilePath))
		return fileCache
	}

	logging.Logger.Info("Initialized in-memory document cache")
	return NewMemoryCache()
}
