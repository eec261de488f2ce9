package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mmcdole/shutter/internal/adapter"
	"github.com/mmcdole/shutter/internal/adapter/source"
	"github.com/mmcdole/shutter/internal/gallery"
	"github.com/mmcdole/shutter/internal/notify"
	"github.com/mmcdole/shutter/internal/poll"
	"github.com/mmcdole/shutter/internal/scheduler"
	"github.com/mmcdole/shutter/internal/service"
	"github.com/mmcdole/shutter/internal/store"
	"github.com/mmcdole/shutter/internal/thumbnail"
)

// probeTimeout bounds the connectivity check before each poll
const probeTimeout = 5 * time.Second

// app holds the wired services shared by every command
type app struct {
	cfg    *adapter.Config
	logger *slog.Logger

	prefs      *store.PrefsStore
	source     source.PhotoSource
	dispatcher *notify.Dispatcher
	poller     *poll.Poller
	sched      *scheduler.Scheduler
	polling    *service.PollingService
	gallery    *gallery.Service
	browse     *service.BrowseService
}

// loadConfig reads the config and installs the file logger as the default.
// The returned closer flushes the log file; it is a no-op closer when file
// logging failed.
func loadConfig(path string) (*adapter.Config, *slog.Logger, io.Closer, error) {
	cfg, err := adapter.LoadConfig(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
		closer = nopCloser{}
	}
	slog.SetDefault(logger)
	return cfg, logger, closer, nil
}

// newApp wires the store, the photo source and the background services
func newApp(cfg *adapter.Config, logger *slog.Logger) (*app, error) {
	prefs, err := store.NewPrefsStore(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}

	client, err := source.NewClientFromConfig(cfg, logger)
	if err != nil {
		prefs.Close()
		return nil, fmt.Errorf("failed to create photo client: %w", err)
	}

	var surface notify.Surface
	if cfg.Notifications.Desktop {
		surface = notify.NewDesktopSurface(cfg.Notifications.AppName, nil, logger)
	} else {
		surface = notify.NewLogSurface(logger)
	}
	dispatcher := notify.NewDispatcher(surface, logger)

	poller := poll.NewPoller(client, prefs, dispatcher, logger)
	sched, err := scheduler.New(scheduler.DialProbe{
		Address: cfg.Polling.ProbeAddress,
		Timeout: probeTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		prefs:      prefs,
		source:     client,
		dispatcher: dispatcher,
		poller:     poller,
		sched:      sched,
		polling:    service.NewPollingService(prefs, sched, poller.Job, cfg.Polling, logger),
		gallery:    gallery.NewService(client, prefs, logger),
		browse:     service.NewBrowseService(adapter.NewLauncher(cfg.Browser, logger), logger),
	}, nil
}

func (a *app) thumbnailOptions() thumbnail.Options {
	return thumbnail.Options{
		CacheSize: a.cfg.Thumbnails.CacheSize,
		QueueSize: a.cfg.Thumbnails.QueueSize,
		Logger:    a.logger,
	}
}

// Close stops background work and releases the store
func (a *app) Close() {
	a.sched.Stop()
	a.gallery.Close()
	if err := a.prefs.Close(); err != nil {
		a.logger.Error("failed to close preferences", "error", err)
	}
	a.logger.Info("shutting down")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
