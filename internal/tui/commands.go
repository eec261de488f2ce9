package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/gallery"
	"github.com/mmcdole/shutter/internal/service"
)

// Command factories for async operations

// listTimeout bounds how long the UI waits for a list fetch
const listTimeout = 60 * time.Second

// WaitPhotosCmd waits for a list fetch. A call canceled by a newer search
// produces no message.
func WaitPhotosCmd(call *gallery.Call) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()

		items, err := call.Wait(ctx)
		if errors.Is(err, domain.ErrCanceled) {
			return nil
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "loading photos"}
		}
		return PhotosLoadedMsg{Query: call.Query, Items: items}
	}
}

// TogglePollingCmd flips the background poll preference
func TogglePollingCmd(svc *service.PollingService) tea.Cmd {
	return func() tea.Msg {
		enabled, err := svc.Toggle()
		if err != nil {
			return ErrMsg{Err: err, Context: "toggling polling"}
		}
		return PollingToggledMsg{Enabled: enabled}
	}
}

// OpenPageCmd opens the photo page in the browser
func OpenPageCmd(svc *service.BrowseService, item domain.GalleryItem) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Open(item); err != nil {
			return ErrMsg{Err: err, Context: "opening photo page"}
		}
		return PageOpenedMsg{Item: item}
	}
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
