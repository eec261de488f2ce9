// Package notify delivers the "new content" notification through an ordered
// chain: consumers that are currently visible see the signal first and may
// abort it; otherwise a final handler posts it to the desktop surface.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/shutter/internal/domain"
)

// Signal is one dispatched notification travelling through the chain.
type Signal struct {
	RequestCode  int
	Notification domain.Notification

	mu      sync.Mutex
	aborted bool
}

// Abort marks the signal as consumed; the surface will not be posted to.
func (s *Signal) Abort() {
	s.mu.Lock()
	s.aborted = true
	s.mu.Unlock()
}

func (s *Signal) clearAbort() {
	s.mu.Lock()
	s.aborted = false
	s.mu.Unlock()
}

// Aborted reports whether an interceptor aborted the signal.
func (s *Signal) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// Interceptor is called for every dispatched signal while registered.
type Interceptor func(ctx context.Context, sig *Signal)

// Delivery describes what happened to a dispatched notification.
type Delivery struct {
	Posted       bool
	SuppressedBy string // Name of the interceptor that aborted it
	Err          error  // Surface error, if posting failed
}

type registration struct {
	id   uint64
	name string
	fn   Interceptor
}

// Dispatcher routes notifications through registered interceptors to a Surface.
type Dispatcher struct {
	surface Surface
	logger  *slog.Logger

	mu     sync.Mutex
	nextID uint64
	chain  []registration
}

// NewDispatcher creates a dispatcher whose default handler posts to surface.
func NewDispatcher(surface Surface, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{surface: surface, logger: logger}
}

// Register adds an interceptor at the end of the chain and returns the
// function that removes it. The returned function is safe to call twice.
func (d *Dispatcher) Register(name string, fn Interceptor) (unregister func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.chain = append(d.chain, registration{id: id, name: name, fn: fn})
	d.mu.Unlock()

	d.logger.Debug("notification interceptor registered", "name", name)

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			for i, r := range d.chain {
				if r.id == id {
					d.chain = append(d.chain[:i:i], d.chain[i+1:]...)
					break
				}
			}
			d.mu.Unlock()
			d.logger.Debug("notification interceptor unregistered", "name", name)
		})
	}
}

// WhileVisible registers a consumer that suppresses every notification for
// as long as fn runs. The registration is removed on every exit path; a
// dispatch still in flight when fn returns is no longer suppressed by it.
func (d *Dispatcher) WhileVisible(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	unregister := d.Register(name, Suppress)
	defer unregister()
	return fn(ctx)
}

// Suppress is the interceptor of a visible consumer: it cancels the notification.
func Suppress(_ context.Context, sig *Signal) {
	sig.Abort()
}

func (d *Dispatcher) registered(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.chain {
		if r.id == id {
			return true
		}
	}
	return false
}

// Active returns the number of registered interceptors.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.chain)
}

// Dispatch sends the notification through the chain. Interceptors run in
// registration order and the first abort ends the chain. An interceptor
// unregistered before or while it runs cannot suppress the notification. If nobody aborts,
// the notification is posted to the surface keyed by requestCode, so a
// repeat dispatch replaces the previous one.
func (d *Dispatcher) Dispatch(ctx context.Context, requestCode int, n domain.Notification) Delivery {
	sig := &Signal{RequestCode: requestCode, Notification: n}

	d.mu.Lock()
	chain := make([]registration, len(d.chain))
	copy(chain, d.chain)
	d.mu.Unlock()

	for _, r := range chain {
		if !d.registered(r.id) {
			continue
		}
		r.fn(ctx, sig)
		if !sig.Aborted() {
			continue
		}
		if !d.registered(r.id) {
			// Unregistered while it ran: its visible window is over.
			sig.clearAbort()
			d.logger.Debug("ignoring abort from closed consumer", "interceptor", r.name)
			continue
		}
		d.logger.Info("canceling notification", "requestCode", requestCode, "interceptor", r.name)
		return Delivery{SuppressedBy: r.name}
	}

	if err := d.surface.Post(ctx, requestCode, n); err != nil {
		d.logger.Error("failed to post notification", "requestCode", requestCode, "error", err)
		return Delivery{Err: err}
	}
	d.logger.Info("notification posted", "requestCode", requestCode, "title", n.Title)
	return Delivery{Posted: true}
}
