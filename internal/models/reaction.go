package models

import "time"

// Reaction kinds. A user has at most one reaction row per post, so a like and
// a dislike from the same user can never coexist.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// PostReaction records a single user's reaction to a post.
// The (PostID, UserID) pair is unique; toggling a reaction either deletes the
// row or upserts its kind in place.
type PostReaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_user_reaction" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_user_reaction" json:"user_id"`
	Kind      string    `gorm:"not null" json:"kind"`
	CreatedAt time.Time `json:"created_at"`

	Post Post `gorm:"foreignKey:PostID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}
