package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/shutter/internal/adapter"
	"github.com/mmcdole/shutter/internal/domain"
)

func TestBrowseService_OpenLaunchesPageURL(t *testing.T) {
	l := &recordingLauncher{}
	svc := NewBrowseService(l, adapter.NullLogger())

	require.NoError(t, svc.Open(domain.GalleryItem{ID: "42", Owner: "12@N01"}))

	assert.Equal(t, []string{"https://www.flickr.com/photos/12@N01/42"}, l.urls)
}

func TestBrowseService_OpenRejectsIncompleteItem(t *testing.T) {
	l := &recordingLauncher{}
	svc := NewBrowseService(l, adapter.NullLogger())

	assert.Error(t, svc.Open(domain.GalleryItem{ID: "42"}))
	assert.Empty(t, l.urls)
}

func TestBrowseService_OpenReturnsLaunchError(t *testing.T) {
	boom := errors.New("no browser")
	svc := NewBrowseService(&recordingLauncher{err: boom}, adapter.NullLogger())

	assert.ErrorIs(t, svc.Open(domain.GalleryItem{ID: "42", Owner: "me"}), boom)
}
