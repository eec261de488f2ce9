package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the photo service is unreachable
	ErrServerOffline = errors.New("photo service is unreachable")

	// ErrBadResponse indicates the photo service answered with something we could not map
	ErrBadResponse = errors.New("unexpected response from photo service")

	// ErrDecode indicates downloaded bytes were not a decodable image
	ErrDecode = errors.New("image could not be decoded")

	// ErrCanceled indicates a list fetch was canceled or replaced before it resolved
	ErrCanceled = errors.New("request canceled")

	// ErrQueueFull indicates the thumbnail worker queue had no room for a request
	ErrQueueFull = errors.New("thumbnail queue is full")
)
