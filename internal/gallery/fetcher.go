// Package gallery loads the photo list shown by the UI: one in-flight list
// request per consumer, replaced whenever a new query is submitted.
package gallery

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mmcdole/shutter/internal/domain"
)

// Call is a cancelable, asynchronous list fetch.
type Call struct {
	Query string

	done   chan struct{}
	once   sync.Once
	items  []domain.GalleryItem
	err    error
	cancel context.CancelFunc
}

func newCall(query string, cancel context.CancelFunc) *Call {
	return &Call{Query: query, done: make(chan struct{}), cancel: cancel}
}

// Done is closed once the call has resolved, failed or been canceled.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Result returns the outcome. Only meaningful after Done is closed.
func (c *Call) Result() ([]domain.GalleryItem, error) {
	select {
	case <-c.done:
		return c.items, c.err
	default:
		return nil, nil
	}
}

// Wait blocks until the call resolves or ctx ends.
func (c *Call) Wait(ctx context.Context) ([]domain.GalleryItem, error) {
	select {
	case <-c.done:
		return c.items, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel aborts the request. Canceling a resolved or canceled call is a no-op.
func (c *Call) Cancel() {
	if c.finish(nil, domain.ErrCanceled) {
		c.cancel()
	}
}

// Canceled reports whether the call ended by cancellation.
func (c *Call) Canceled() bool {
	_, err := c.Result()
	return errors.Is(err, domain.ErrCanceled)
}

func (c *Call) finish(items []domain.GalleryItem, err error) (won bool) {
	c.once.Do(func() {
		c.items, c.err = items, err
		close(c.done)
		won = true
	})
	return won
}

// Fetcher issues list fetches for a single logical consumer.
// Starting a fetch cancels the one before it.
type Fetcher struct {
	repo   domain.GalleryRepository
	logger *slog.Logger

	mu      sync.Mutex
	current *Call
}

// NewFetcher creates a fetcher over repo.
func NewFetcher(repo domain.GalleryRepository, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{repo: repo, logger: logger}
}

// Fetch starts loading the list for query and replaces any outstanding call.
func (f *Fetcher) Fetch(ctx context.Context, query string) *Call {
	callCtx, cancel := context.WithCancel(ctx)
	call := newCall(query, cancel)

	f.mu.Lock()
	prev := f.current
	f.current = call
	f.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}

	go func() {
		defer cancel()
		items, err := f.repo.FetchList(callCtx, query)
		if err != nil {
			if callCtx.Err() != nil {
				err = domain.ErrCanceled
			} else {
				f.logger.Debug("failed to fetch photos", "query", query, "error", err)
			}
		}
		if call.finish(items, err) && err == nil {
			f.logger.Debug("fetched photos", "query", query, "count", len(items))
		}
	}()

	return call
}

// CancelInFlight cancels the outstanding call, if any.
func (f *Fetcher) CancelInFlight() {
	f.mu.Lock()
	call := f.current
	f.current = nil
	f.mu.Unlock()

	if call != nil {
		call.Cancel()
	}
}
