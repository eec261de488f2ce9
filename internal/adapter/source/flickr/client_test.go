package flickr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/shutter/internal/adapter"
	"github.com/mmcdole/shutter/internal/domain"
)

const listBody = `{
  "photos": {"page": 1, "pages": 1, "perpage": 3, "photo": [
    {"id": "7", "owner": "12@N01", "title": "Harbour", "url_s": "https://live.staticflickr.com/7_s.jpg"},
    {"id": "6", "owner": "12@N01", "title": "No thumbnail"},
    {"id": "5", "owner": "34@N02", "title": "", "url_s": "https://live.staticflickr.com/5_s.jpg"}
  ]},
  "stat": "ok"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 5*time.Second, adapter.NullLogger())
}

func TestFetchList_DefaultFeed(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(listBody))
	})

	items, err := c.FetchList(context.Background(), "  ")
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/services/rest/", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "flickr.interestingness.getList", q.Get("method"))
	assert.Equal(t, "test-key", q.Get("api_key"))
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "1", q.Get("nojsoncallback"))
	assert.Equal(t, "url_s", q.Get("extras"))
	assert.Equal(t, "1", q.Get("safesearch"))
	assert.Empty(t, q.Get("text"))

	require.Len(t, items, 2, "photos without url_s are filtered")
	assert.Equal(t, domain.GalleryItem{ID: "7", Owner: "12@N01", Title: "Harbour", URL: "https://live.staticflickr.com/7_s.jpg"}, items[0])
	assert.Equal(t, "5", items[1].ID)
}

func TestFetchList_Search(t *testing.T) {
	var q map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		w.Write([]byte(`{"photos": {"photo": []}, "stat": "ok"}`))
	})

	items, err := c.FetchList(context.Background(), "sea lions")
	require.NoError(t, err)

	assert.Empty(t, items)
	assert.Equal(t, []string{"flickr.photos.search"}, q["method"])
	assert.Equal(t, []string{"sea lions"}, q["text"])
}

func TestFetchList_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"stat fail", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"stat": "fail", "code": 100, "message": "Invalid API Key"}`))
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`jsonFlickrApi({`))
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.FetchList(context.Background(), "")
			assert.ErrorIs(t, err, domain.ErrBadResponse)
		})
	}
}

func TestFetchList_Offline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, "k", time.Second, adapter.NullLogger())
	_, err := c.FetchList(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestFetchList_Canceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchList(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFetchThumbnail(t *testing.T) {
	pngBytes := encodePNG(t)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Write(pngBytes)
		case "/garbage.jpg":
			w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	})

	img := c.FetchThumbnail(context.Background(), c.baseURL+"ok.png")
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	assert.Nil(t, c.FetchThumbnail(context.Background(), c.baseURL+"garbage.jpg"))
	assert.Nil(t, c.FetchThumbnail(context.Background(), c.baseURL+"missing.jpg"))
}

func TestEcho(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			w.Write([]byte(`{"stat": "fail", "code": 100, "message": "Invalid API Key"}`))
			return
		}
		assert.Equal(t, "flickr.test.echo", r.URL.Query().Get("method"))
		w.Write([]byte(`{"method": {"_content": "flickr.test.echo"}, "stat": "ok"}`))
	})
	require.NoError(t, c.Echo(context.Background()))

	bad := NewClient(c.baseURL, "wrong", time.Second, adapter.NullLogger())
	assert.ErrorIs(t, bad.Echo(context.Background()), domain.ErrBadResponse)
}
