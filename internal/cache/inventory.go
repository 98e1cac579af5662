package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	PostKeyPrefix         = "post:%d"
	CategoryListKey       = "categories"
	RecommendationsPrefix = "recs:%s:%d"
)

const (
	UserTTL            = 5 * time.Minute
	PostTTL            = 10 * time.Minute
	CategoryListTTL    = 30 * time.Minute
	RecommendationsTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// PostKey caches an anonymous view of a published post. Per-viewer state
// (the Liked flag, draft visibility) means authenticated reads always go
// to the database.
func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func RecommendationsKey(mode string, postID uint) string {
	return fmt.Sprintf(RecommendationsPrefix, mode, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidatePost drops the cached post and both recommendation lists
// keyed on it. Reaction and comment counts live inside the cached view,
// so every write touching a post funnels through here.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, RecommendationsKey("author", postID))
	Invalidate(ctx, RecommendationsKey("category", postID))
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoryListKey)
}
