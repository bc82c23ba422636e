package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/hntui/domain"
)

var testNow = time.Unix(1_700_000_000, 0)

type stubService struct {
	mu       sync.Mutex
	topIDs   []int64
	stories  map[int64]domain.Story
	roots    map[int64][]domain.CommentNode // by story id
	children map[int64][]domain.CommentNode // by first kid id
	rootsErr error
	childErr error
	calls    map[string]int
}

func newStubService() *stubService {
	return &stubService{
		stories:  map[int64]domain.Story{},
		roots:    map[int64][]domain.CommentNode{},
		children: map[int64][]domain.CommentNode{},
		calls:    map[string]int{},
	}
}

func (s *stubService) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
}

func (s *stubService) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubService) FetchTopStoryIDs(context.Context) ([]int64, error) {
	s.record("top")
	return s.topIDs, nil
}

func (s *stubService) FetchTopStoryIDsForce(context.Context) ([]int64, error) {
	s.record("topForce")
	return s.topIDs, nil
}

func (s *stubService) FetchStoriesBatch(_ context.Context, ids []int64) ([]domain.Story, error) {
	s.record("stories")
	out := make([]domain.Story, 0, len(ids))
	for _, id := range ids {
		st, ok := s.stories[id]
		if !ok {
			return nil, fmt.Errorf("%w: id=%d", domain.ErrItemNotFound, id)
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *stubService) FetchCommentRoots(_ context.Context, story domain.Story) ([]domain.CommentNode, error) {
	s.record("roots")
	if s.rootsErr != nil {
		return nil, s.rootsErr
	}
	return s.roots[story.ID], nil
}

func (s *stubService) FetchCommentChildren(_ context.Context, ids []int64, _ int) ([]domain.CommentNode, error) {
	s.record("children")
	if s.childErr != nil {
		return nil, s.childErr
	}
	return s.children[ids[0]], nil
}

func makeStory(id int64, kids ...int64) domain.Story {
	if kids == nil {
		kids = []int64{}
	}
	return domain.Story{ID: id, Title: fmt.Sprintf("Story %d", id), By: "pg", Time: 1, Score: 1, Kids: kids}
}

func makeComment(id int64, depth int, kids ...int64) domain.CommentNode {
	return domain.CommentNode{Comment: domain.NewComment(domain.Item{ID: id, Type: "comment", By: "u", Time: 1, Text: "c", Kids: kids}, depth)}
}

func newTestModel(svc *stubService) Model {
	m := New(svc, nil, DefaultOptions())
	m.now = func() time.Time { return testNow }
	m.lastInput = testNow
	return m
}

// withStories returns a model showing stories 1..n, each with one kid.
func withStories(m Model, n int) Model {
	ids := make([]int64, 0, n)
	stories := make([]domain.Story, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, int64(i))
		stories = append(stories, makeStory(int64(i), int64(1000+i)))
	}
	m.storyLoading = false
	m.storyIDs = ids
	m.stories = stories
	return m
}

// collectMsgs runs cmd and any batched commands it expands into.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// apply feeds every message produced by cmd back into m.
func apply(m Model, cmd tea.Cmd) Model {
	for _, msg := range collectMsgs(cmd) {
		m, _ = m.Update(msg)
	}
	return m
}

func commentIDs(cs []domain.Comment) []int64 {
	out := make([]int64, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}
