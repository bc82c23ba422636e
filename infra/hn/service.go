package hn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/op/go-logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/CrestNiraj12/hntui/domain"
	"github.com/CrestNiraj12/hntui/infra/cache"
)

var log = logging.MustGetLogger("hn")

// Options bounds the fan-out and staleness policy of a Service.
type Options struct {
	Concurrency          int
	ChildConcurrency     int
	CommentPrefetchDepth int
	MaxStale             time.Duration
	TopIDsTTL            time.Duration
}

// Service resolves items through the memory cache, the disk cache and the
// network, in that order. It implements app.StoryService.
type Service struct {
	client *Client
	mem    *cache.ItemCache
	disk   *cache.DiskCache // nil when the file cache is disabled
	opts   Options

	flights singleflight.Group

	topMu      sync.Mutex
	topIDs     []int64
	topFetched time.Time
	now        func() time.Time

	// revalidation and cleanup goroutines, joined by Close
	tasks sync.WaitGroup
}

// NewService wires a fetch service. disk may be nil.
func NewService(client *Client, mem *cache.ItemCache, disk *cache.DiskCache, opts Options) *Service {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.ChildConcurrency < 1 {
		opts.ChildConcurrency = 1
	}
	return &Service{
		client: client,
		mem:    mem,
		disk:   disk,
		opts:   opts,
		now:    time.Now,
	}
}

// Close waits for background revalidation and cleanup to finish. Each
// pending request is bounded by the client timeout.
func (s *Service) Close() {
	s.tasks.Wait()
}

// StartJanitor removes disk cache entries older than retention in the
// background. It is a no-op without a disk cache.
func (s *Service) StartJanitor(retention time.Duration) {
	if s.disk == nil {
		return
	}
	s.tasks.Go(func() {
		if _, err := s.disk.Cleanup(retention); err != nil {
			log.Errorf("cache cleanup failed: %v", err)
		}
	})
}

// FetchItem returns the item with id. A stale disk copy younger than
// MaxStale is returned as is while a refresh runs in the background.
func (s *Service) FetchItem(ctx context.Context, id int64) (domain.Item, error) {
	if it, ok := s.mem.Get(id); ok {
		return it, nil
	}

	if s.disk != nil {
		lk, err := s.disk.Get(id)
		if err != nil {
			return domain.Item{}, err
		}
		switch lk.State {
		case cache.Fresh:
			s.mem.Put(id, lk.Item)
			return lk.Item, nil
		case cache.Stale:
			if lk.Age <= s.opts.MaxStale {
				s.mem.Put(id, lk.Item)
				s.revalidate(id)
				return lk.Item, nil
			}
			log.Debugf("item %d stale for %s, refetching", id, lk.Age)
		}
	}

	return s.fetchShared(ctx, id, false)
}

func (s *Service) revalidate(id int64) {
	s.tasks.Go(func() {
		if _, err := s.fetchShared(context.Background(), id, true); err != nil {
			log.Warningf("revalidate item %d: %v", id, err)
		}
	})
}

// fetchShared coalesces concurrent network fetches of id into one request.
// The first caller leads; callers that arrive while it runs wait for its
// result. The request itself outlives any single caller's context so an
// abandoning caller cannot fail the others.
func (s *Service) fetchShared(ctx context.Context, id int64, refresh bool) (domain.Item, error) {
	key := strconv.FormatInt(id, 10)
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(key, func() (any, error) {
		// A flight that finished just before this one started may have
		// filled the memory tier already.
		if !refresh {
			if it, ok := s.mem.Get(id); ok {
				return it, nil
			}
		}
		it, err := s.fetchRemote(fetchCtx, id)
		if err != nil {
			return nil, err
		}
		s.store(id, it)
		return it, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Debugf("item %d served by shared fetch", id)
		}
		if res.Err != nil {
			return domain.Item{}, res.Err
		}
		return res.Val.(domain.Item).Clone(), nil
	case <-ctx.Done():
		return domain.Item{}, ctx.Err()
	}
}

func (s *Service) fetchRemote(ctx context.Context, id int64) (domain.Item, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf("/item/%d.json", id))
	if err != nil {
		return domain.Item{}, fmt.Errorf("fetch item %d: %w", id, err)
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return domain.Item{}, fmt.Errorf("%w: id=%d", domain.ErrItemNotFound, id)
	}
	var it domain.Item
	if err := json.Unmarshal(data, &it); err != nil {
		return domain.Item{}, fmt.Errorf("decode item %d: %w", id, err)
	}
	return it, nil
}

// store writes through both tiers. Disk failures are logged, not returned.
func (s *Service) store(id int64, it domain.Item) {
	s.mem.Put(id, it)
	if s.disk == nil {
		return
	}
	if err := s.disk.Put(id, it); err != nil {
		log.Warningf("cache write item %d: %v", id, err)
	}
}

// FetchItemsBatch fetches ids with at most Concurrency requests in flight.
// Results are in the order of ids.
func (s *Service) FetchItemsBatch(ctx context.Context, ids []int64) ([]domain.Item, error) {
	items := make([]domain.Item, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			it, err := s.FetchItem(gctx, id)
			if err != nil {
				return err
			}
			items[i] = it
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// FetchStoriesBatch fetches ids and projects each into a Story.
func (s *Service) FetchStoriesBatch(ctx context.Context, ids []int64) ([]domain.Story, error) {
	items, err := s.FetchItemsBatch(ctx, ids)
	if err != nil {
		return nil, err
	}
	stories := make([]domain.Story, 0, len(items))
	for _, it := range items {
		st, err := domain.NewStory(it)
		if err != nil {
			return nil, err
		}
		stories = append(stories, st)
	}
	return stories, nil
}

// FetchTopStoryIDs returns the front page ids, reusing the last response
// for TopIDsTTL.
func (s *Service) FetchTopStoryIDs(ctx context.Context) ([]int64, error) {
	s.topMu.Lock()
	if s.topIDs != nil && s.now().Sub(s.topFetched) < s.opts.TopIDsTTL {
		ids := slices.Clone(s.topIDs)
		s.topMu.Unlock()
		return ids, nil
	}
	s.topMu.Unlock()
	return s.FetchTopStoryIDsForce(ctx)
}

// FetchTopStoryIDsForce always asks the network and refreshes the cached list.
func (s *Service) FetchTopStoryIDsForce(ctx context.Context) ([]int64, error) {
	data, err := s.client.Get(ctx, "/topstories.json")
	if err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode top stories: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}

	s.topMu.Lock()
	s.topIDs = ids
	s.topFetched = s.now()
	s.topMu.Unlock()
	return slices.Clone(ids), nil
}

// FetchCommentRoots fetches the top-level comments of story, prefetching
// CommentPrefetchDepth levels of replies below them.
func (s *Service) FetchCommentRoots(ctx context.Context, story domain.Story) ([]domain.CommentNode, error) {
	return s.FetchCommentNodes(ctx, story.Kids, 0, s.opts.CommentPrefetchDepth)
}

// FetchCommentChildren fetches exactly one level of replies at depth.
func (s *Service) FetchCommentChildren(ctx context.Context, ids []int64, depth int) ([]domain.CommentNode, error) {
	return s.FetchCommentNodes(ctx, ids, depth, 0)
}

// FetchCommentNodes builds comment nodes for ids at depth and recurses into
// replies while extraDepth > 0. Sibling subtrees are fetched with at most
// ChildConcurrency running at once, since each one fans out again.
func (s *Service) FetchCommentNodes(ctx context.Context, ids []int64, depth, extraDepth int) ([]domain.CommentNode, error) {
	items, err := s.FetchItemsBatch(ctx, ids)
	if err != nil {
		return nil, err
	}
	nodes := make([]domain.CommentNode, len(items))
	for i, it := range items {
		nodes[i] = domain.CommentNode{Comment: domain.NewComment(it, depth)}
	}
	if extraDepth <= 0 {
		return nodes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(s.opts.Concurrency, s.opts.ChildConcurrency))
	for i := range nodes {
		kids := nodes[i].Comment.Kids
		if len(kids) == 0 {
			continue
		}
		g.Go(func() error {
			children, err := s.FetchCommentNodes(gctx, kids, depth+1, extraDepth-1)
			if err != nil {
				return err
			}
			nodes[i].Children = children
			nodes[i].Comment.ChildrenLoaded = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return nodes, nil
}
