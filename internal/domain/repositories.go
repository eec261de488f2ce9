package domain

import (
	"context"
	"image"
)

// GalleryRepository provides access to the remote photo feed
type GalleryRepository interface {
	// FetchList returns the default feed for an empty query, otherwise a keyword search.
	// Items without a display URL are filtered out.
	FetchList(ctx context.Context, query string) ([]GalleryItem, error)
}

// ThumbnailSource downloads and decodes a single image.
// Must only be called from a background goroutine; returns nil on any failure.
type ThumbnailSource interface {
	FetchThumbnail(ctx context.Context, url string) image.Image
}
