package models

import (
	"time"

	"gorm.io/gorm"
)

// Post publication states.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post represents a blog post with rich-text content.
// Content is stored as received; sanitization happens upstream of this layer.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`
	Status   string `gorm:"not null;default:draft;index" json:"status"`

	Categories []Category `gorm:"many2many:post_categories" json:"categories"`

	// TagRows and ImageRows are the persisted forms; the flat slices below are
	// what API consumers see. Repositories flatten after loading.
	TagRows   []PostTag   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	ImageRows []PostImage `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Tags      []string    `gorm:"-" json:"tags"`
	Images    []string    `gorm:"-" json:"images"`

	// Computed at query time, never persisted.
	LikeCount    int  `gorm:"->;-:migration" json:"like_count"`
	DislikeCount int  `gorm:"->;-:migration" json:"dislike_count"`
	CommentCount int  `gorm:"->;-:migration" json:"comment_count"`
	Liked        bool `gorm:"->;-:migration" json:"liked"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Flatten fills the API-facing Tags and Images slices from the persisted rows.
// Rows carry an explicit position so ordering survives the round trip.
func (p *Post) Flatten() {
	p.Tags = make([]string, 0, len(p.TagRows))
	for _, t := range p.TagRows {
		p.Tags = append(p.Tags, t.Name)
	}
	p.Images = make([]string, 0, len(p.ImageRows))
	for _, img := range p.ImageRows {
		p.Images = append(p.Images, img.Filename)
	}
}

// PostTag is one tag on a post. Tags are free-form strings and keep the order
// the author gave them.
type PostTag struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	Position int    `gorm:"not null" json:"position"`
	Name     string `gorm:"not null;index" json:"name"`
}

// PostImage is one uploaded image filename attached to a post.
// Filenames are opaque at this layer; storage is handled elsewhere.
type PostImage struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	Position int    `gorm:"not null" json:"position"`
	Filename string `gorm:"not null" json:"filename"`
}

// Category is an editorial grouping for posts.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null" json:"name"`
	Slug string `gorm:"unique;not null" json:"slug"`

	// PostCount is not persisted; computed for the category listing
	PostCount int64 `gorm:"-" json:"post_count,omitempty"`
}
