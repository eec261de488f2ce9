package gallery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/shutter/internal/adapter"
	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/store"
)

const waitFor = 2 * time.Second

// blockingRepo answers each query once its gate is released.
type blockingRepo struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	results map[string][]domain.GalleryItem
	queries []string
}

func newBlockingRepo() *blockingRepo {
	return &blockingRepo{
		gates:   make(map[string]chan struct{}),
		results: make(map[string][]domain.GalleryItem),
	}
}

func (r *blockingRepo) hold(query string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := make(chan struct{})
	r.gates[query] = g
	return g
}

func (r *blockingRepo) FetchList(ctx context.Context, query string) ([]domain.GalleryItem, error) {
	r.mu.Lock()
	r.queries = append(r.queries, query)
	gate := r.gates[query]
	items := r.results[query]
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return items, nil
}

func wait(t *testing.T, call *Call) ([]domain.GalleryItem, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	items, err := call.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return items, err
}

func TestFetcher_Resolves(t *testing.T) {
	repo := newBlockingRepo()
	repo.results["cats"] = []domain.GalleryItem{{ID: "1"}}
	f := NewFetcher(repo, adapter.NullLogger())

	call := f.Fetch(context.Background(), "cats")
	items, err := wait(t, call)

	require.NoError(t, err)
	assert.Equal(t, []domain.GalleryItem{{ID: "1"}}, items)
	assert.False(t, call.Canceled())
}

func TestFetcher_NewFetchCancelsPrevious(t *testing.T) {
	repo := newBlockingRepo()
	repo.hold("first")
	repo.results["second"] = []domain.GalleryItem{{ID: "2"}}
	f := NewFetcher(repo, adapter.NullLogger())

	first := f.Fetch(context.Background(), "first")
	second := f.Fetch(context.Background(), "second")

	_, err := wait(t, first)
	assert.ErrorIs(t, err, domain.ErrCanceled)
	assert.True(t, first.Canceled())

	items, err := wait(t, second)
	require.NoError(t, err)
	assert.Equal(t, "2", items[0].ID)
}

func TestCall_CancelAfterResolveIsNoop(t *testing.T) {
	repo := newBlockingRepo()
	repo.results[""] = []domain.GalleryItem{{ID: "1"}}
	f := NewFetcher(repo, adapter.NullLogger())

	call := f.Fetch(context.Background(), "")
	_, err := wait(t, call)
	require.NoError(t, err)

	call.Cancel()
	call.Cancel()

	items, err := call.Result()
	assert.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFetcher_CancelInFlight(t *testing.T) {
	repo := newBlockingRepo()
	repo.hold("slow")
	f := NewFetcher(repo, adapter.NullLogger())

	call := f.Fetch(context.Background(), "slow")
	f.CancelInFlight()
	f.CancelInFlight()

	_, err := wait(t, call)
	assert.ErrorIs(t, err, domain.ErrCanceled)
}

func TestCall_ResultBeforeDone(t *testing.T) {
	repo := newBlockingRepo()
	gate := repo.hold("slow")
	f := NewFetcher(repo, adapter.NullLogger())

	call := f.Fetch(context.Background(), "slow")
	items, err := call.Result()
	assert.Nil(t, items)
	assert.NoError(t, err)

	close(gate)
	_, err = wait(t, call)
	assert.NoError(t, err)
}

func TestService_SearchPersistsQuery(t *testing.T) {
	repo := newBlockingRepo()
	repo.results["cats"] = []domain.GalleryItem{{ID: "1"}}
	prefs, err := store.NewPrefsStore("")
	require.NoError(t, err)
	svc := NewService(repo, prefs, adapter.NullLogger())
	defer svc.Close()

	items, err := wait(t, svc.Search(context.Background(), "  cats "))
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "cats", svc.StoredQuery())

	_, err = wait(t, svc.Refresh(context.Background()))
	require.NoError(t, err)

	_, err = wait(t, svc.Clear(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, "", prefs.StoredQuery())

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, []string{"cats", "cats", ""}, repo.queries)
}

func TestService_CloseCancelsInFlight(t *testing.T) {
	repo := newBlockingRepo()
	repo.hold("slow")
	prefs, err := store.NewPrefsStore("")
	require.NoError(t, err)
	svc := NewService(repo, prefs, adapter.NullLogger())

	call := svc.Search(context.Background(), "slow")
	svc.Close()

	_, err = wait(t, call)
	assert.ErrorIs(t, err, domain.ErrCanceled)
}
