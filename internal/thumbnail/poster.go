package thumbnail

import "sync"

// Poster hands a function to the single context allowed to invoke completion
// callbacks. Post must not run fn synchronously on the caller's goroutine.
type Poster interface {
	Post(fn func())
}

// Looper is a response context backed by one dedicated goroutine.
// Posted functions run one at a time in the order they were posted.
// Post never blocks; functions posted after Close are dropped.
type Looper struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewLooper starts a looper goroutine.
func NewLooper() *Looper {
	l := &Looper{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.loop()
	return l
}

// Post queues fn to run on the looper goroutine.
func (l *Looper) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until everything posted before the call has run.
// It returns immediately once the looper is closed.
func (l *Looper) Flush() {
	ran := make(chan struct{})
	l.Post(func() { close(ran) })
	select {
	case <-ran:
	case <-l.done:
	}
}

// Close stops the looper after the function currently running, if any.
// Queued functions that have not started are discarded. Must not be called
// from a function running on the looper.
func (l *Looper) Close() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
		close(l.quit)
	})
	<-l.done
}

func (l *Looper) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || len(l.queue) == 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn
}

func (l *Looper) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case <-l.wake:
		}
		for fn := l.next(); fn != nil; fn = l.next() {
			fn()
		}
	}
}
