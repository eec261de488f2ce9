// Package poll checks the remote feed for new content and announces it.
package poll

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/notify"
)

// Outcome is the terminal state of one poll cycle.
type Outcome int

const (
	NoData Outcome = iota
	Unchanged
	Changed
)

func (o Outcome) String() string {
	switch o {
	case NoData:
		return "no_data"
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	default:
		return "unknown"
	}
}

// Dispatcher delivers the new-content notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, requestCode int, n domain.Notification) notify.Delivery
}

// Poller runs poll cycles against the gallery repository. It only touches the
// preference store, the repository and the dispatcher, so it is safe to run
// on a scheduler goroutine.
type Poller struct {
	repo       domain.GalleryRepository
	store      domain.PrefsStore
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewPoller(repo domain.GalleryRepository, store domain.PrefsStore, dispatcher Dispatcher, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		repo:       repo,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RunPoll fetches the list for query and compares its leading item with the
// last one seen. A fetch error or an empty list counts as no data.
func (p *Poller) RunPoll(ctx context.Context, query string) Outcome {
	start := time.Now()

	items, err := p.repo.FetchList(ctx, query)
	if err != nil {
		p.logger.Warn("poll fetch failed", "query", query, "error", err)
		return NoData
	}
	if len(items) == 0 {
		p.logger.Debug("poll returned no items", "query", query)
		return NoData
	}

	newID := items[0].ID
	lastID := p.store.LastResultID()
	if newID == lastID {
		p.logger.Info("found stale result", "id", newID, "duration", time.Since(start))
		return Unchanged
	}

	p.logger.Info("found new result", "id", newID, "previous", lastID, "duration", time.Since(start))
	if err := p.store.SetLastResultID(newID); err != nil {
		p.logger.Error("failed to persist last result id", "id", newID, "error", err)
	}

	delivery := p.dispatcher.Dispatch(ctx, domain.NewPhotosRequestCode, domain.NewPhotosNotification(query))
	if delivery.SuppressedBy != "" {
		p.logger.Debug("new result notification suppressed", "by", delivery.SuppressedBy)
	}
	return Changed
}

// Job is the scheduler entry point. It polls the stored query and always
// reports success so a failing fetch never turns into scheduler retries.
func (p *Poller) Job(ctx context.Context) error {
	query := p.store.StoredQuery()
	outcome := p.RunPoll(ctx, query)
	p.logger.Debug("poll cycle done", "query", query, "outcome", outcome.String())
	return nil
}
