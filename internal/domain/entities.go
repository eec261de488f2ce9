package domain

import (
	"net/url"
	"strings"
)

// photoPageBase is the public web page root for a photo owner
const photoPageBase = "https://www.flickr.com/photos/"

// GalleryItem is a single photo returned by a list fetch
type GalleryItem struct {
	ID    string // Server-specific unique identifier
	Title string // Display title (may be empty)
	URL   string // Small display image URL (url_s)
	Owner string // Owner NSID
}

// PageURL returns the public photo page for the item
func (g GalleryItem) PageURL() string {
	return photoPageBase + url.PathEscape(g.Owner) + "/" + url.PathEscape(g.ID)
}

// DisplayTitle returns the title, falling back to the ID for untitled photos
func (g GalleryItem) DisplayTitle() string {
	if t := strings.TrimSpace(g.Title); t != "" {
		return t
	}
	return g.ID
}

// PollState is the persisted state shared by the poll job and the query-initiating caller.
type PollState struct {
	LastResultID   string
	StoredQuery    string
	PollingEnabled bool
}

// NewPhotosRequestCode keys the single "new content" notification.
// A repeat dispatch with the same code replaces the previous notification.
const NewPhotosRequestCode = 0

// Notification is the user-visible "new content available" message
type Notification struct {
	Ticker string
	Title  string
	Text   string
	Link   string // Opened when the notification is activated (may be empty)
}

// NewPhotosNotification builds the notification announcing new results for a query
func NewPhotosNotification(query string) Notification {
	text := "You have new pictures in the gallery."
	if q := strings.TrimSpace(query); q != "" {
		text = "You have new pictures for \"" + q + "\"."
	}
	return Notification{
		Ticker: "New pictures",
		Title:  "New pictures",
		Text:   text,
	}
}
