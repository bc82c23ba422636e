package feed

import (
	"errors"
	"testing"

	"github.com/CrestNiraj12/hntui/domain"
)

func TestUpdate_StaleStoriesLoaded_Ignored(t *testing.T) {
	m := withStories(newTestModel(newStubService()), 2)
	m.storyLoading = true
	m.gen.stories = 5

	updated, cmd := m.Update(StoriesLoadedMsg{
		Gen:     4,
		Mode:    LoadReplace,
		IDs:     []int64{9},
		Stories: []domain.Story{makeStory(9)},
	})
	if cmd != nil {
		t.Fatalf("expected nil cmd for stale response")
	}
	if len(updated.Stories()) != 2 || updated.Stories()[0].ID != 1 {
		t.Fatalf("stale response should not mutate the list")
	}
	if !updated.StoryLoading() {
		t.Fatalf("stale response should not clear loading state")
	}
}

func TestUpdate_StaleStoriesError_Ignored(t *testing.T) {
	m := newTestModel(newStubService())
	m.gen.stories = 3
	updated, _ := m.Update(StoriesErrorMsg{Gen: 2, Err: errors.New("boom")})
	if updated.LastError() != "" || !updated.StoryLoading() {
		t.Fatalf("stale error should be dropped")
	}
}

func TestUpdate_StaleCommentsLoaded_Ignored(t *testing.T) {
	m := newTestModel(newStubService())
	st := makeStory(1, 10)
	m.currentStory = &st
	m.commentLoading = true
	m.gen.comments = 7

	updated, _ := m.Update(CommentsLoadedMsg{Gen: 6, StoryID: 1, Nodes: []domain.CommentNode{makeComment(10, 0)}})
	if len(updated.Comments()) != 0 || !updated.CommentLoading() {
		t.Fatalf("old generation must be dropped")
	}

	updated, _ = m.Update(CommentsLoadedMsg{Gen: 7, StoryID: 2, Nodes: []domain.CommentNode{makeComment(10, 0)}})
	if len(updated.Comments()) != 0 {
		t.Fatalf("result for another story must be dropped")
	}
}

func TestUpdate_StaleChildren_Ignored(t *testing.T) {
	m := newTestModel(newStubService())
	m.commentTree = []domain.CommentNode{makeComment(1, 0, 2)}
	m.childrenInFlight[1] = 4

	updated, _ := m.Update(CommentChildrenLoadedMsg{Gen: 3, ParentID: 1, Nodes: []domain.CommentNode{makeComment(2, 1)}})
	if len(updated.commentTree[0].Children) != 0 {
		t.Fatalf("superseded children must not attach")
	}
	if _, ok := updated.childrenInFlight[1]; !ok {
		t.Fatalf("superseded result must not clear the live request")
	}

	updated, _ = m.Update(CommentChildrenLoadedMsg{Gen: 9, ParentID: 99})
	if updated.LastError() != "" {
		t.Fatalf("result without a request must be a no-op")
	}
}

func TestUpdate_StalePrefetch_Ignored(t *testing.T) {
	m := newTestModel(newStubService())
	m.gen.commentPrefetch = 2
	m.prefetchInFlight[5] = struct{}{}

	updated, _ := m.Update(CommentsPrefetchedMsg{Gen: 1, StoryID: 5, Nodes: []domain.CommentNode{makeComment(50, 0)}})
	if _, ok := updated.prefetched[5]; ok {
		t.Fatalf("old prefetch must not be cached")
	}
	if _, ok := updated.prefetchInFlight[5]; !ok {
		t.Fatalf("old prefetch must not release the live slot")
	}
}
