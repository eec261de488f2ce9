package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/gallery"
	"github.com/mmcdole/shutter/internal/notify"
	"github.com/mmcdole/shutter/internal/service"
	"github.com/mmcdole/shutter/internal/thumbnail"
	"github.com/mmcdole/shutter/internal/tui/components"
)

// visibleConsumer names the interceptor registered while the gallery is on screen
const visibleConsumer = "gallery"

// Deps are the services the gallery view runs on
type Deps struct {
	Gallery    *gallery.Service
	Polling    *service.PollingService
	Browse     *service.BrowseService
	Thumbnails domain.ThumbnailSource
	Dispatcher *notify.Dispatcher
	Options    thumbnail.Options
	Logger     *slog.Logger
}

// Run shows the gallery until the user quits or ctx ends. While it runs,
// new-photo notifications are suppressed and the thumbnail downloader is
// alive; both are torn down on every exit path.
func Run(ctx context.Context, deps Deps) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	grid := components.NewPhotoGrid()
	poster := &ProgramPoster{}

	return deps.Dispatcher.WhileVisible(ctx, visibleConsumer, func(ctx context.Context) error {
		return thumbnail.Run[int](ctx, deps.Thumbnails, poster, grid.SetThumbnail, deps.Options,
			func(d *thumbnail.Downloader[int]) error {
				defer deps.Gallery.Close()

				m := NewModel(ctx, deps.Gallery, deps.Polling, deps.Browse, d, grid)
				p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
				poster.Attach(p)

				logger.Info("gallery opened")
				_, err := p.Run()
				logger.Info("gallery closed", "cached", d.CacheLen())

				if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
					return nil
				}
				return err
			})
	})
}
