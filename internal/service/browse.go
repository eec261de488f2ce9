package service

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/shutter/internal/domain"
)

// launcher abstracts opening URLs in an external program (consumer-defined interface)
type launcher interface {
	Launch(url string) error
}

// BrowseService opens photo pages outside the terminal
type BrowseService struct {
	launcher launcher
	logger   *slog.Logger
}

// NewBrowseService creates a new browse service
func NewBrowseService(launcher launcher, logger *slog.Logger) *BrowseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowseService{
		launcher: launcher,
		logger:   logger,
	}
}

// Open launches the photo page of item
func (s *BrowseService) Open(item domain.GalleryItem) error {
	if item.ID == "" || item.Owner == "" {
		return fmt.Errorf("photo %q has no page", item.DisplayTitle())
	}
	url := item.PageURL()
	s.logger.Info("opening photo page", "title", item.DisplayTitle(), "id", item.ID)
	if err := s.launcher.Launch(url); err != nil {
		s.logger.Error("failed to open photo page", "url", url, "error", err)
		return err
	}
	return nil
}
