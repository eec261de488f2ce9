package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/shutter/internal/adapter"
	"github.com/mmcdole/shutter/internal/domain"
)

func newTestDispatcher() (*Dispatcher, *LogSurface) {
	surface := NewLogSurface(adapter.NullLogger())
	return NewDispatcher(surface, adapter.NullLogger()), surface
}

func TestDispatch_PostsWithoutInterceptors(t *testing.T) {
	d, surface := newTestDispatcher()
	n := domain.NewPhotosNotification("cats")

	got := d.Dispatch(context.Background(), domain.NewPhotosRequestCode, n)

	assert.True(t, got.Posted)
	assert.Empty(t, got.SuppressedBy)
	assert.Equal(t, 1, surface.Posts())
	latest, ok := surface.Latest(domain.NewPhotosRequestCode)
	require.True(t, ok)
	assert.Equal(t, n, latest)
}

func TestDispatch_VisibleConsumerSuppresses(t *testing.T) {
	d, surface := newTestDispatcher()
	unregister := d.Register("gallery", Suppress)

	got := d.Dispatch(context.Background(), domain.NewPhotosRequestCode, domain.NewPhotosNotification(""))

	assert.False(t, got.Posted)
	assert.Equal(t, "gallery", got.SuppressedBy)
	assert.Equal(t, 0, surface.Posts())

	unregister()
	got = d.Dispatch(context.Background(), domain.NewPhotosRequestCode, domain.NewPhotosNotification(""))
	assert.True(t, got.Posted)
	assert.Equal(t, 1, surface.Posts())
}

func TestDispatch_InterceptorsRunInOrder(t *testing.T) {
	d, surface := newTestDispatcher()
	var order []string

	d.Register("observer", func(_ context.Context, sig *Signal) {
		order = append(order, "observer")
	})
	d.Register("consumer", func(_ context.Context, sig *Signal) {
		order = append(order, "consumer")
		sig.Abort()
	})
	d.Register("late", func(_ context.Context, sig *Signal) {
		order = append(order, "late")
	})

	got := d.Dispatch(context.Background(), 3, domain.Notification{Title: "x"})

	assert.Equal(t, []string{"observer", "consumer"}, order)
	assert.Equal(t, "consumer", got.SuppressedBy)
	assert.Equal(t, 0, surface.Posts())
}

func TestRegister_UnregisterIsIdempotent(t *testing.T) {
	d, _ := newTestDispatcher()
	first := d.Register("a", Suppress)
	d.Register("b", Suppress)
	require.Equal(t, 2, d.Active())

	first()
	first()

	assert.Equal(t, 1, d.Active())
}

func TestWhileVisible_UnregistersOnReturn(t *testing.T) {
	d, surface := newTestDispatcher()
	boom := errors.New("boom")

	err := d.WhileVisible(context.Background(), "gallery", func(ctx context.Context) error {
		got := d.Dispatch(ctx, domain.NewPhotosRequestCode, domain.NewPhotosNotification(""))
		assert.False(t, got.Posted)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, d.Active())
	assert.Equal(t, 0, surface.Posts())

	got := d.Dispatch(context.Background(), domain.NewPhotosRequestCode, domain.NewPhotosNotification(""))
	assert.True(t, got.Posted)
}

func TestDispatch_AbortAfterUnregisterIsIgnored(t *testing.T) {
	d, surface := newTestDispatcher()

	var unregister func()
	unregister = d.Register("gallery", func(_ context.Context, sig *Signal) {
		unregister()
		sig.Abort()
	})

	got := d.Dispatch(context.Background(), domain.NewPhotosRequestCode, domain.NewPhotosNotification(""))

	assert.True(t, got.Posted)
	assert.Empty(t, got.SuppressedBy)
	assert.Equal(t, 1, surface.Posts())
	assert.Equal(t, 0, d.Active())
}

func TestDispatch_SkipsConsumerUnregisteredEarlierInChain(t *testing.T) {
	d, surface := newTestDispatcher()

	var closeGallery func()
	d.Register("observer", func(context.Context, *Signal) {
		closeGallery()
	})
	closeGallery = d.Register("gallery", Suppress)

	got := d.Dispatch(context.Background(), domain.NewPhotosRequestCode, domain.NewPhotosNotification(""))

	assert.True(t, got.Posted)
	assert.Equal(t, 1, surface.Posts())
}

func TestWhileVisible_UnregistersOnPanic(t *testing.T) {
	d, _ := newTestDispatcher()

	assert.Panics(t, func() {
		_ = d.WhileVisible(context.Background(), "gallery", func(context.Context) error {
			panic("closed")
		})
	})
	assert.Equal(t, 0, d.Active())
}

func TestDispatch_SurfaceErrorIsReported(t *testing.T) {
	boom := errors.New("no daemon")
	d := NewDispatcher(SurfaceFunc(func(context.Context, int, domain.Notification) error {
		return boom
	}), adapter.NullLogger())

	got := d.Dispatch(context.Background(), 0, domain.Notification{})

	assert.False(t, got.Posted)
	assert.ErrorIs(t, got.Err, boom)
}
