package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	globalFeedKey = "feed:global"
	postKeyPrefix = "post:%d"
)

const (
	// GlobalFeedTTL bounds staleness of the anonymous global feed view.
	GlobalFeedTTL = 1 * time.Minute
	// PostTTL bounds staleness of individual cached posts.
	PostTTL = 10 * time.Minute
)

// GlobalFeedKey returns the cache key for the anonymous global feed.
func GlobalFeedKey() string {
	return globalFeedKey
}

// PostKey returns the cache key for a single post.
func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

// Invalidate removes a key; a nil client makes this a no-op.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateGlobalFeed drops the cached global feed after any post,
// like, or comment mutation.
func InvalidateGlobalFeed(ctx context.Context) {
	Invalidate(ctx, globalFeedKey)
}

// InvalidatePost drops a single cached post.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}
