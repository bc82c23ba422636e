package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Item is the raw record returned by GET /item/{id}.json.
// Zero values stand in for absent fields except Score, which is a pointer
// because zero points is a legitimate score.
type Item struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type,omitempty"`
	By          string  `json:"by,omitempty"`
	Time        int64   `json:"time,omitempty"`
	Title       string  `json:"title,omitempty"`
	URL         string  `json:"url,omitempty"`
	Text        string  `json:"text,omitempty"`
	Score       *int    `json:"score,omitempty"`
	Descendants int     `json:"descendants,omitempty"`
	Kids        []int64 `json:"kids,omitempty"`
	Deleted     bool    `json:"deleted,omitempty"`
	Dead        bool    `json:"dead,omitempty"`
}

// Clone returns a copy that shares no mutable memory with it.
func (it Item) Clone() Item {
	out := it
	out.Kids = slices.Clone(it.Kids)
	if it.Score != nil {
		s := *it.Score
		out.Score = &s
	}
	return out
}

// Story is the validated projection of an item of type "story".
type Story struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	URL          string  `json:"url,omitempty"`
	Score        int     `json:"score"`
	By           string  `json:"by"`
	Time         int64   `json:"time"`
	CommentCount int     `json:"comment_count"`
	Kids         []int64 `json:"kids"`
}

// NewStory projects it into a Story. It fails when the item is not a story
// or lacks a title, score, author or timestamp.
func NewStory(it Item) (Story, error) {
	if it.Type != "story" {
		return Story{}, fmt.Errorf("%w: expected type=story, got type=%q id=%d", ErrWrongItemKind, it.Type, it.ID)
	}
	missing := ""
	switch {
	case it.Title == "":
		missing = "title"
	case it.Score == nil:
		missing = "score"
	case it.By == "":
		missing = "by"
	case it.Time == 0:
		missing = "time"
	}
	if missing != "" {
		return Story{}, fmt.Errorf("%w: story %d has no %s", ErrMissingField, it.ID, missing)
	}

	kids := slices.Clone(it.Kids)
	if kids == nil {
		kids = []int64{}
	}
	return Story{
		ID:           it.ID,
		Title:        sanitizeLine(it.Title),
		URL:          it.URL,
		Score:        *it.Score,
		By:           it.By,
		Time:         it.Time,
		CommentCount: it.Descendants,
		Kids:         kids,
	}, nil
}

// Comment is an item projected at a given tree depth. The Collapsed,
// ChildrenLoaded and ChildrenLoading flags belong to the controller.
type Comment struct {
	ID      int64
	By      string
	Time    int64
	Text    string
	Kids    []int64
	Depth   int
	Deleted bool
	Dead    bool

	Collapsed       bool
	ChildrenLoaded  bool
	ChildrenLoading bool
}

// NewComment projects it at depth. A comment with replies starts collapsed
// until its children are attached and expanded.
func NewComment(it Item, depth int) Comment {
	text := RenderText(it.Text)
	if strings.TrimSpace(text) == "" {
		switch {
		case it.Deleted:
			text = "[deleted]"
		case it.Dead:
			text = "[dead]"
		default:
			text = "[no text]"
		}
	}
	return Comment{
		ID:        it.ID,
		By:        it.By,
		Time:      it.Time,
		Text:      text,
		Kids:      slices.Clone(it.Kids),
		Depth:     depth,
		Deleted:   it.Deleted,
		Dead:      it.Dead,
		Collapsed: len(it.Kids) > 0,
	}
}

// HasReplies reports whether the comment references any children.
func (c Comment) HasReplies() bool {
	return len(c.Kids) > 0
}

// CommentNode owns one comment and its child nodes. There are no parent
// pointers; children always sit at Comment.Depth+1.
type CommentNode struct {
	Comment  Comment
	Children []CommentNode
}

// StoryListState is the persisted snapshot of the story list.
type StoryListState struct {
	SavedAt  int64   `json:"saved_at"`
	StoryIDs []int64 `json:"story_ids"`
	Stories  []Story `json:"stories"`
}
