package source

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/shutter/internal/adapter"
	"github.com/mmcdole/shutter/internal/adapter/source/flickr"
	"github.com/mmcdole/shutter/internal/domain"
)

// PhotoSource combines everything a photo backend must implement:
// list fetches for the gallery and poll job, and thumbnail downloads for the worker.
type PhotoSource interface {
	domain.GalleryRepository
	domain.ThumbnailSource
}

// SourceConfig contains the configuration needed to create a PhotoSource
type SourceConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a new PhotoSource
func NewClient(cfg *SourceConfig, logger *slog.Logger) (PhotoSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source config is nil")
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	return flickr.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout, logger), nil
}

// NewClientFromConfig creates a PhotoSource from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (PhotoSource, error) {
	return NewClient(&SourceConfig{
		BaseURL: cfg.Flickr.BaseURL,
		APIKey:  cfg.Flickr.APIKey,
		Timeout: cfg.Flickr.Timeout,
	}, logger)
}
