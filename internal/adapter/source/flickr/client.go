package flickr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	_ "golang.org/x/image/webp"

	"github.com/mmcdole/shutter/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Shutter/1.0"
	restPath       = "services/rest/"

	methodInteresting = "flickr.interestingness.getList"
	methodSearch      = "flickr.photos.search"
	methodEcho        = "flickr.test.echo"

	// maxBodyBytes bounds a single response body
	maxBodyBytes = 8 << 20
)

// Client implements domain.GalleryRepository and domain.ThumbnailSource for flickr
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new flickr API client
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// commonParams are added to every REST call
func (c *Client) commonParams(method string) url.Values {
	q := url.Values{}
	q.Set("method", method)
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")
	q.Set("extras", "url_s")
	q.Set("safesearch", "1")
	return q
}

// get performs a GET request and returns the body of a 200 response
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Debug("flickr request failed", "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("flickr request error", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", domain.ErrBadResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// FetchList returns the interestingness feed for an empty query, otherwise a text search
func (c *Client) FetchList(ctx context.Context, query string) ([]domain.GalleryItem, error) {
	var params url.Values
	query = strings.TrimSpace(query)
	if query == "" {
		params = c.commonParams(methodInteresting)
	} else {
		params = c.commonParams(methodSearch)
		params.Set("text", query)
	}

	c.logger.Debug("flickr list request", "method", params.Get("method"), "query", query)

	body, err := c.get(ctx, c.baseURL+restPath+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp APIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("%w: %v", domain.ErrBadResponse, err)
	}
	if resp.Stat != "ok" {
		return nil, fmt.Errorf("%w: flickr error %d: %s", domain.ErrBadResponse, resp.Code, resp.Message)
	}
	if resp.Photos == nil {
		return nil, nil
	}

	items := MapPhotos(resp.Photos.Photos)
	c.logger.Debug("flickr list response", "count", len(items), "raw", len(resp.Photos.Photos))
	return items, nil
}

// Echo calls flickr.test.echo, which fails when the API key is rejected
func (c *Client) Echo(ctx context.Context) error {
	body, err := c.get(ctx, c.baseURL+restPath+"?"+c.commonParams(methodEcho).Encode())
	if err != nil {
		return err
	}

	var resp APIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBadResponse, err)
	}
	if resp.Stat != "ok" {
		return fmt.Errorf("%w: flickr error %d: %s", domain.ErrBadResponse, resp.Code, resp.Message)
	}
	return nil
}

// FetchThumbnail downloads and decodes an image. Any failure yields nil.
func (c *Client) FetchThumbnail(ctx context.Context, imageURL string) image.Image {
	img, err := c.fetchImage(ctx, imageURL)
	if err != nil {
		c.logger.Debug("thumbnail fetch failed", "url", imageURL, "error", err)
		return nil
	}
	return img
}

func (c *Client) fetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	body, err := c.get(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	c.logger.Debug("decoded thumbnail", "url", imageURL, "format", format, "bytes", len(body))
	return img, nil
}
