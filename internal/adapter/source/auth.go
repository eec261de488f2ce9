package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/shutter/internal/adapter/source/flickr"
)

const authTimeout = 30 * time.Second

// ErrEmptyKey is returned when no API key was entered
var ErrEmptyKey = errors.New("API key is empty")

// KeyReader reads a secret without echoing it, e.g. term.ReadPassword
type KeyReader func() ([]byte, error)

// AuthFlow asks for a flickr API key and verifies it against the API
type AuthFlow struct {
	baseURL string
	out     io.Writer
	readKey KeyReader
	logger  *slog.Logger
}

// NewAuthFlow creates a new API key flow writing prompts to out
func NewAuthFlow(baseURL string, out io.Writer, readKey KeyReader, logger *slog.Logger) *AuthFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthFlow{
		baseURL: baseURL,
		out:     out,
		readKey: readKey,
		logger:  logger,
	}
}

// Run prompts for the key and returns it once flickr accepts it
func (f *AuthFlow) Run(ctx context.Context) (string, error) {
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "Flickr API key")
	fmt.Fprintln(f.out, "━━━━━━━━━━━━━━")
	fmt.Fprintln(f.out, "Create one at https://www.flickr.com/services/apps/create/")
	fmt.Fprint(f.out, "API key: ")

	raw, err := f.readKey()
	fmt.Fprintln(f.out) // Newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}

	key := strings.TrimSpace(string(raw))
	if key == "" {
		return "", ErrEmptyKey
	}

	fmt.Fprintln(f.out, "Verifying...")
	if err := Verify(ctx, f.baseURL, key, f.logger); err != nil {
		return "", err
	}

	fmt.Fprintln(f.out, "API key accepted!")
	return key, nil
}

// Verify checks key with a test call
func Verify(ctx context.Context, baseURL, key string, logger *slog.Logger) error {
	client := flickr.NewClient(baseURL, key, authTimeout, logger)
	if err := client.Echo(ctx); err != nil {
		return fmt.Errorf("API key rejected: %w", err)
	}
	return nil
}
