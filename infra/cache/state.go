package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/CrestNiraj12/hntui/domain"
)

// StateStore implements app.StateStore with <dir>/state.json.
type StateStore struct {
	path string
	now  func() time.Time
}

// NewStateStore creates a store rooted at the cache directory dir.
func NewStateStore(dir string) *StateStore {
	return &StateStore{path: filepath.Join(dir, "state.json"), now: time.Now}
}

// Path returns the snapshot file location.
func (s *StateStore) Path() string {
	return s.path
}

func (s *StateStore) Load(_ context.Context) (domain.StoryListState, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.StoryListState{}, false, nil
		}
		return domain.StoryListState{}, false, fmt.Errorf("read %s: %w", s.path, err)
	}

	var st domain.StoryListState
	if err := json.Unmarshal(data, &st); err != nil {
		return domain.StoryListState{}, false, fmt.Errorf("%w: decode %s: %v", domain.ErrCorruptCache, s.path, err)
	}
	return st, true, nil
}

// Save refuses empty input so a failed fetch never clobbers a good snapshot.
func (s *StateStore) Save(_ context.Context, storyIDs []int64, stories []domain.Story) error {
	if len(storyIDs) == 0 {
		return fmt.Errorf("%w: no story ids", domain.ErrEmptyState)
	}
	if len(stories) == 0 {
		return fmt.Errorf("%w: no stories", domain.ErrEmptyState)
	}

	data, err := json.Marshal(domain.StoryListState{
		SavedAt:  s.now().Unix(),
		StoryIDs: storyIDs,
		Stories:  stories,
	})
	if err != nil {
		return fmt.Errorf("encode story list state: %w", err)
	}
	return atomicWrite(s.path, data)
}
