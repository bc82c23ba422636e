package app

import (
	"context"

	"github.com/CrestNiraj12/hntui/domain"
)

// StoryService resolves stories and comment trees from the remote API.
// Implementations cache and deduplicate; callers may invoke it concurrently.
type StoryService interface {
	// FetchTopStoryIDs returns the ranked top story ids, possibly from a
	// short-lived cache.
	FetchTopStoryIDs(ctx context.Context) ([]int64, error)

	// FetchTopStoryIDsForce bypasses the id cache. Used for explicit refresh.
	FetchTopStoryIDsForce(ctx context.Context) ([]int64, error)

	// FetchStoriesBatch returns stories in the order of ids.
	FetchStoriesBatch(ctx context.Context, ids []int64) ([]domain.Story, error)

	// FetchCommentRoots returns the top-level comment nodes of story.
	FetchCommentRoots(ctx context.Context, story domain.Story) ([]domain.CommentNode, error)

	// FetchCommentChildren returns the nodes for ids at depth, without
	// prefetching their replies.
	FetchCommentChildren(ctx context.Context, ids []int64, depth int) ([]domain.CommentNode, error)
}
