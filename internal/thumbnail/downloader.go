package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mmcdole/shutter/internal/domain"
)

// DefaultQueueSize is the capacity of the worker task channel.
const DefaultQueueSize = 256

// ErrStopped is returned when starting a downloader that was already stopped.
var ErrStopped = errors.New("thumbnail downloader stopped")

// LoadedFunc receives a resolved thumbnail on the response context.
type LoadedFunc[T comparable] func(target T, img image.Image)

// Options tunes a Downloader. Zero values fall back to defaults.
type Options struct {
	CacheSize int
	QueueSize int
	Logger    *slog.Logger
}

// Downloader resolves thumbnails for reusable display targets.
//
// Requests are recorded per target in a Registry and processed FIFO by one
// worker goroutine. Results are posted to the response context, where the
// registry is checked again: a target that was reassigned to another URL, or
// cleared, silently drops the result. After Stop returns no callback runs.
type Downloader[T comparable] struct {
	source   domain.ThumbnailSource
	response Poster
	onLoaded LoadedFunc[T]
	logger   *slog.Logger

	cache    *LRU[string, image.Image]
	registry *Registry[T]
	tasks    chan T

	// deliverMu serializes callback delivery against Stop.
	deliverMu sync.Mutex
	stopped   atomic.Bool

	startOnce sync.Once
	stopOnce  sync.Once
	cancelMu  sync.Mutex
	cancel    context.CancelFunc
}

// New creates a stopped downloader. Call Start (or use Open/Run) before
// expecting results; requests queued earlier are processed once it starts.
func New[T comparable](source domain.ThumbnailSource, response Poster, onLoaded LoadedFunc[T], opts Options) *Downloader[T] {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Downloader[T]{
		source:   source,
		response: response,
		onLoaded: onLoaded,
		logger:   opts.Logger,
		cache:    NewLRU[string, image.Image](opts.CacheSize),
		registry: NewRegistry[T](),
		tasks:    make(chan T, opts.QueueSize),
	}
}

// Open creates and starts a downloader.
func Open[T comparable](ctx context.Context, source domain.ThumbnailSource, response Poster, onLoaded LoadedFunc[T], opts Options) (*Downloader[T], error) {
	d := New(source, response, onLoaded, opts)
	if err := d.Start(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Run opens a downloader, passes it to fn and stops it when fn returns,
// whether fn succeeds, fails or panics.
func Run[T comparable](ctx context.Context, source domain.ThumbnailSource, response Poster, onLoaded LoadedFunc[T], opts Options, fn func(*Downloader[T]) error) error {
	d, err := Open(ctx, source, response, onLoaded, opts)
	if err != nil {
		return err
	}
	defer d.Stop()
	return fn(d)
}

// Start launches the worker goroutine. Calling it again is a no-op.
// The worker exits when ctx is canceled or Stop is called.
func (d *Downloader[T]) Start(ctx context.Context) error {
	if d.stopped.Load() {
		return ErrStopped
	}
	d.startOnce.Do(func() {
		workerCtx, cancel := context.WithCancel(ctx)
		d.cancelMu.Lock()
		d.cancel = cancel
		d.cancelMu.Unlock()

		d.logger.Debug("thumbnail worker started", "queue", cap(d.tasks), "cache", d.cache.Cap())
		go d.loop(workerCtx)
	})
	return nil
}

// Stop tears the downloader down. It is idempotent and safe to call while
// results are in flight: once it returns, no completion callback will run.
// It does not wait for the worker goroutine, and must not be called from
// inside the completion callback.
func (d *Downloader[T]) Stop() {
	d.stopOnce.Do(func() {
		d.deliverMu.Lock()
		d.stopped.Store(true)
		d.deliverMu.Unlock()

		d.cancelMu.Lock()
		if d.cancel != nil {
			d.cancel()
		}
		d.cancelMu.Unlock()

		d.ClearPending()
		d.logger.Debug("thumbnail worker stopped")
	})
}

// Close implements io.Closer.
func (d *Downloader[T]) Close() error {
	d.Stop()
	return nil
}

// QueueThumbnail requests the image at url for target.
//
// A cache hit is delivered synchronously on the calling goroutine and
// supersedes any request still pending for target. A miss is handed to the
// worker via Enqueue.
func (d *Downloader[T]) QueueThumbnail(target T, url string) {
	if d.stopped.Load() {
		return
	}
	if img, ok := d.cache.Get(url); ok {
		d.registry.Remove(target)
		d.onLoaded(target, img)
		return
	}
	d.Enqueue(target, url)
}

// Enqueue records url as target's pending request and queues a task for the
// worker. It never blocks: when the queue is full the request is dropped and
// the caller may ask again later.
func (d *Downloader[T]) Enqueue(target T, url string) {
	if d.stopped.Load() {
		return
	}
	d.registry.Set(target, url)

	select {
	case d.tasks <- target:
	default:
		d.registry.Resolve(target, url)
		d.logger.Warn("dropping thumbnail request", "url", url, "error", domain.ErrQueueFull)
	}
}

// ClearPending forgets every pending request and drops queued tasks.
// Work already in flight resolves as stale.
func (d *Downloader[T]) ClearPending() {
	d.registry.Clear()
	for {
		select {
		case <-d.tasks:
		default:
			return
		}
	}
}

// Cached reports whether url is in the thumbnail cache without touching its recency.
func (d *Downloader[T]) Cached(url string) bool {
	_, ok := d.cache.Peek(url)
	return ok
}

// CacheLen returns the number of cached thumbnails.
func (d *Downloader[T]) CacheLen() int {
	return d.cache.Len()
}

// Pending returns the number of targets still waiting for a result.
func (d *Downloader[T]) Pending() int {
	return d.registry.Len()
}

func (d *Downloader[T]) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case target := <-d.tasks:
			d.handleRequest(ctx, target)
		}
	}
}

func (d *Downloader[T]) handleRequest(ctx context.Context, target T) {
	url, ok := d.registry.Get(target)
	if !ok {
		return
	}

	img, ok := d.cache.Get(url)
	if !ok {
		img = d.source.FetchThumbnail(ctx, url)
		if img == nil {
			// No retry: the caller may request it again.
			d.registry.Resolve(target, url)
			d.logger.Debug("thumbnail unavailable", "url", url)
			return
		}
		if evicted := d.cache.Set(url, img); evicted {
			d.logger.Debug("thumbnail cache evicted entry", "size", d.cache.Len())
		}
	}

	if d.stopped.Load() {
		return
	}
	d.response.Post(func() { d.deliver(target, url, img) })
}

func (d *Downloader[T]) deliver(target T, url string, img image.Image) {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	if d.stopped.Load() {
		return
	}
	if !d.registry.Resolve(target, url) {
		d.logger.Debug("dropping stale thumbnail", "url", url, "target", fmt.Sprint(target))
		return
	}
	d.onLoaded(target, img)
}
