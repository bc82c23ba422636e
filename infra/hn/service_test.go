package hn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CrestNiraj12/hntui/domain"
	"github.com/CrestNiraj12/hntui/infra/cache"
)

type fakeAPI struct {
	mu     sync.Mutex
	items  map[int64]domain.Item
	top    []int64
	delay  map[int64]time.Duration
	status int
	calls  map[string]int
	total  atomic.Int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		items: map[int64]domain.Item{},
		delay: map[int64]time.Duration{},
		calls: map[string]int{},
	}
}

func (f *fakeAPI) put(it domain.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[it.ID] = it
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.total.Add(1)
	f.mu.Lock()
	f.calls[r.URL.Path]++
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		http.Error(w, "boom", status)
		return
	}

	if r.URL.Path == "/topstories.json" {
		f.mu.Lock()
		top := f.top
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(top)
		return
	}

	var id int64
	if _, err := fmt.Sscanf(r.URL.Path, "/item/%d.json", &id); err != nil {
		http.NotFound(w, r)
		return
	}
	f.mu.Lock()
	it, ok := f.items[id]
	d := f.delay[id]
	f.mu.Unlock()
	time.Sleep(d)
	if !ok {
		_, _ = w.Write([]byte("null"))
		return
	}
	_ = json.NewEncoder(w).Encode(it)
}

func newTestService(t *testing.T, api *fakeAPI, withDisk bool) (*Service, string) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	mem, err := cache.NewItemCache(100)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	var disk *cache.DiskCache
	if withDisk {
		disk, err = cache.NewDiskCache(dir, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
	}
	svc := NewService(NewClient(srv.URL, 5*time.Second), mem, disk, Options{
		Concurrency:          8,
		ChildConcurrency:     2,
		CommentPrefetchDepth: 1,
		MaxStale:             24 * time.Hour,
		TopIDsTTL:            30 * time.Second,
	})
	t.Cleanup(svc.Close)
	return svc, dir
}

func comment(id int64, text string, kids ...int64) domain.Item {
	return domain.Item{ID: id, Type: "comment", By: "u", Time: 1, Text: text, Kids: kids}
}

func writeDiskEntry(t *testing.T, dir string, it domain.Item, fetchedAt time.Time) {
	t.Helper()
	data, err := json.Marshal(cache.CachedItem{FetchedAt: fetchedAt.Unix(), Item: it})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "items", fmt.Sprintf("%d.json", it.ID))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestFetchItem_ConcurrentCallersShareOneRequest(t *testing.T) {
	api := newFakeAPI()
	api.put(comment(7, "hello"))
	api.delay[7] = 100 * time.Millisecond
	svc, _ := newTestService(t, api, true)

	const n = 16
	var wg sync.WaitGroup
	results := make([]domain.Item, n)
	errs := make([]error, n)
	for i := range n {
		wg.Go(func() {
			results[i], errs[i] = svc.FetchItem(context.Background(), 7)
		})
	}
	wg.Wait()

	for i := range n {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i].ID != 7 || results[i].Text != "hello" {
			t.Fatalf("caller %d got %+v", i, results[i])
		}
	}
	if got := api.count("/item/7.json"); got != 1 {
		t.Fatalf("network calls = %d, want 1", got)
	}
}

func TestFetchItem_ConcurrentCallersShareError(t *testing.T) {
	api := newFakeAPI()
	api.delay[9] = 50 * time.Millisecond
	svc, _ := newTestService(t, api, false)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Go(func() {
			_, errs[i] = svc.FetchItem(context.Background(), 9)
		})
	}
	wg.Wait()
	for i, err := range errs {
		if !errors.Is(err, domain.ErrItemNotFound) {
			t.Fatalf("caller %d: expected ErrItemNotFound, got %v", i, err)
		}
	}
}

func TestFetchItemsBatch_PreservesOrder(t *testing.T) {
	api := newFakeAPI()
	for _, id := range []int64{1, 2, 3} {
		api.put(comment(id, fmt.Sprintf("c%d", id)))
	}
	api.delay[3] = 60 * time.Millisecond
	api.delay[1] = 30 * time.Millisecond
	svc, _ := newTestService(t, api, false)

	items, err := svc.FetchItemsBatch(context.Background(), []int64{3, 1, 2})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	for i, want := range []int64{3, 1, 2} {
		if items[i].ID != want {
			t.Fatalf("items[%d].ID = %d, want %d", i, items[i].ID, want)
		}
	}
}

func TestFetchItem_FreshDiskSkipsNetwork(t *testing.T) {
	api := newFakeAPI()
	svc, dir := newTestService(t, api, true)
	writeDiskEntry(t, dir, comment(4, "cached"), time.Now())

	it, err := svc.FetchItem(context.Background(), 4)
	if err != nil || it.Text != "cached" {
		t.Fatalf("got %+v, %v", it, err)
	}
	if api.total.Load() != 0 {
		t.Fatalf("fresh disk hit must not touch the network")
	}
}

func TestFetchItem_StaleWithinWindowRevalidates(t *testing.T) {
	api := newFakeAPI()
	api.put(comment(5, "new"))
	svc, dir := newTestService(t, api, true)
	writeDiskEntry(t, dir, comment(5, "old"), time.Now().Add(-2*time.Hour))

	it, err := svc.FetchItem(context.Background(), 5)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if it.Text != "old" {
		t.Fatalf("expected stale copy returned immediately, got %q", it.Text)
	}

	svc.Close()
	if got := api.count("/item/5.json"); got != 1 {
		t.Fatalf("revalidation calls = %d, want 1", got)
	}
	it, err = svc.FetchItem(context.Background(), 5)
	if err != nil || it.Text != "new" {
		t.Fatalf("memory tier not refreshed: %+v, %v", it, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "items", "5.json"))
	if err != nil || !strings.Contains(string(data), `"new"`) {
		t.Fatalf("disk tier not refreshed: %s, %v", data, err)
	}
}

func TestFetchItem_BeyondMaxStaleFetchesSynchronously(t *testing.T) {
	api := newFakeAPI()
	api.put(comment(6, "new"))
	svc, dir := newTestService(t, api, true)
	writeDiskEntry(t, dir, comment(6, "ancient"), time.Now().Add(-48*time.Hour))

	it, err := svc.FetchItem(context.Background(), 6)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if it.Text != "new" {
		t.Fatalf("expected network copy, got %q", it.Text)
	}
}

func TestFetchItem_CorruptDiskEntryIsError(t *testing.T) {
	api := newFakeAPI()
	api.put(comment(8, "x"))
	svc, dir := newTestService(t, api, true)
	if err := os.WriteFile(filepath.Join(dir, "items", "8.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.FetchItem(context.Background(), 8); !errors.Is(err, domain.ErrCorruptCache) {
		t.Fatalf("expected ErrCorruptCache, got %v", err)
	}
}

func TestFetchItem_StatusError(t *testing.T) {
	api := newFakeAPI()
	api.status = http.StatusServiceUnavailable
	svc, _ := newTestService(t, api, false)

	_, err := svc.FetchItem(context.Background(), 1)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
}

func TestFetchTopStoryIDs_CachesUntilTTLUnlessForced(t *testing.T) {
	api := newFakeAPI()
	api.top = []int64{3, 2, 1}
	svc, _ := newTestService(t, api, false)
	now := time.Unix(1_700_000_000, 0)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	if _, err := svc.FetchTopStoryIDs(ctx); err != nil {
		t.Fatal(err)
	}
	api.mu.Lock()
	api.top = []int64{9}
	api.mu.Unlock()

	ids, _ := svc.FetchTopStoryIDs(ctx)
	if len(ids) != 3 || api.count("/topstories.json") != 1 {
		t.Fatalf("expected cached ids, got %v after %d calls", ids, api.count("/topstories.json"))
	}

	ids, _ = svc.FetchTopStoryIDsForce(ctx)
	if len(ids) != 1 || ids[0] != 9 {
		t.Fatalf("force must hit the network, got %v", ids)
	}

	api.mu.Lock()
	api.top = []int64{10, 11}
	api.mu.Unlock()
	now = now.Add(31 * time.Second)
	ids, _ = svc.FetchTopStoryIDs(ctx)
	if len(ids) != 2 || api.count("/topstories.json") != 3 {
		t.Fatalf("expired cache must refetch, got %v", ids)
	}
}

func TestFetchStoriesBatch_RejectsNonStory(t *testing.T) {
	api := newFakeAPI()
	api.put(comment(1, "not a story"))
	svc, _ := newTestService(t, api, false)

	if _, err := svc.FetchStoriesBatch(context.Background(), []int64{1}); !errors.Is(err, domain.ErrWrongItemKind) {
		t.Fatalf("expected ErrWrongItemKind, got %v", err)
	}
}

func TestFetchCommentNodes_BoundedDepth(t *testing.T) {
	api := newFakeAPI()
	api.put(comment(1, "a", 2))
	api.put(comment(2, "b", 3))
	api.put(comment(3, "c"))
	api.put(comment(4, "d"))
	svc, _ := newTestService(t, api, false)

	nodes, err := svc.FetchCommentNodes(context.Background(), []int64{1, 4}, 0, 1)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(nodes) != 2 || nodes[0].Comment.ID != 1 || nodes[1].Comment.ID != 4 {
		t.Fatalf("unexpected roots: %+v", nodes)
	}
	n1 := nodes[0]
	if !n1.Comment.ChildrenLoaded || len(n1.Children) != 1 || n1.Children[0].Comment.Depth != 1 {
		t.Fatalf("expected one prefetched child at depth 1: %+v", n1)
	}
	grand := n1.Children[0]
	if grand.Comment.ChildrenLoaded || len(grand.Children) != 0 {
		t.Fatalf("recursion must stop at extra depth 0: %+v", grand)
	}
	if nodes[1].Comment.ChildrenLoaded {
		t.Fatalf("leaf must not be marked loaded")
	}
	if api.count("/item/3.json") != 0 {
		t.Fatalf("grandchild must not be fetched")
	}
}

func TestFetchCommentChildren_Shallow(t *testing.T) {
	api := newFakeAPI()
	api.put(comment(5, "child", 6))
	svc, _ := newTestService(t, api, false)

	nodes, err := svc.FetchCommentChildren(context.Background(), []int64{5}, 1)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Comment.Depth != 1 || len(nodes[0].Children) != 0 {
		t.Fatalf("unexpected nodes: %+v", nodes)
	}
	if !nodes[0].Comment.Collapsed {
		t.Fatalf("node with replies must start collapsed")
	}
}

func TestStartJanitor_RemovesExpiredBeforeClose(t *testing.T) {
	svc, dir := newTestService(t, newFakeAPI(), true)
	writeDiskEntry(t, dir, comment(1, "old"), time.Now().Add(-10*24*time.Hour))
	writeDiskEntry(t, dir, comment(2, "recent"), time.Now())

	svc.StartJanitor(7 * 24 * time.Hour)
	svc.Close()

	if _, err := os.Stat(filepath.Join(dir, "items", "1.json")); !os.IsNotExist(err) {
		t.Fatalf("expired entry should be removed, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "items", "2.json")); err != nil {
		t.Fatalf("recent entry should survive: %v", err)
	}
}
