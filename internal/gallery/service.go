package gallery

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/shutter/internal/domain"
)

// Service orchestrates list fetches and the stored search query.
type Service struct {
	fetcher *Fetcher
	store   domain.PrefsStore
	logger  *slog.Logger
}

// NewService creates a new gallery service.
func NewService(repo domain.GalleryRepository, store domain.PrefsStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: NewFetcher(repo, logger),
		store:   store,
		logger:  logger,
	}
}

// StoredQuery returns the query the gallery (and the poll job) currently follows.
func (s *Service) StoredQuery() string {
	return s.store.StoredQuery()
}

// Search persists query and starts loading its results, replacing any
// fetch still in flight. An empty query selects the default feed.
func (s *Service) Search(ctx context.Context, query string) *Call {
	query = strings.TrimSpace(query)
	if err := s.store.SetStoredQuery(query); err != nil {
		s.logger.Error("failed to save search query", "error", err)
	}
	s.logger.Info("search submitted", "query", query)
	return s.fetcher.Fetch(ctx, query)
}

// Refresh reloads the list for the stored query.
func (s *Service) Refresh(ctx context.Context) *Call {
	return s.fetcher.Fetch(ctx, s.store.StoredQuery())
}

// Clear resets the query to the default feed.
func (s *Service) Clear(ctx context.Context) *Call {
	return s.Search(ctx, "")
}

// Close cancels any fetch still in flight.
func (s *Service) Close() {
	s.fetcher.CancelInFlight()
}
