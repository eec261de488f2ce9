package tui

import "github.com/mmcdole/shutter/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PhotosLoadedMsg signals that a list fetch resolved
type PhotosLoadedMsg struct {
	Query string
	Items []domain.GalleryItem
}

// PollingToggledMsg reports the new polling preference
type PollingToggledMsg struct {
	Enabled bool
}

// PageOpenedMsg signals that a photo page was handed to the browser
type PageOpenedMsg struct {
	Item domain.GalleryItem
}

// postedMsg carries a function posted by a background worker; it runs inside Update
type postedMsg struct {
	fn func()
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
