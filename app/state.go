package app

import (
	"context"

	"github.com/CrestNiraj12/hntui/domain"
)

// StateStore persists the last good story list for restart recovery.
type StateStore interface {
	// Load returns the saved snapshot. ok is false when nothing was saved.
	Load(ctx context.Context) (state domain.StoryListState, ok bool, err error)

	// Save replaces the snapshot. Empty ids or stories are refused.
	Save(ctx context.Context, storyIDs []int64, stories []domain.Story) error
}
