package flickr

import (
	"strings"

	"github.com/mmcdole/shutter/internal/domain"
)

// MapPhoto converts a flickr photo record to a domain GalleryItem
func MapPhoto(p Photo) domain.GalleryItem {
	return domain.GalleryItem{
		ID:    p.ID,
		Title: p.Title,
		URL:   p.URLS,
		Owner: p.Owner,
	}
}

// MapPhotos converts a page of photos, dropping records without a display URL.
// Order is preserved.
func MapPhotos(photos []Photo) []domain.GalleryItem {
	items := make([]domain.GalleryItem, 0, len(photos))
	for _, p := range photos {
		if strings.TrimSpace(p.URLS) == "" {
			continue
		}
		items = append(items, MapPhoto(p))
	}
	return items
}
