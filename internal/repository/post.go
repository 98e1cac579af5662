// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reaction toggle outcomes.
const (
	ToggleAdded    = "added"
	ToggleRemoved  = "removed"
	ToggleSwitched = "switched"
)

// PostFilter is the fully resolved set of clauses for a post listing.
// Callers decide precedence between the raw request parameters; the
// repository applies exactly what it is given.
type PostFilter struct {
	// Statuses restricts post status. Empty means no status clause.
	Statuses []string
	// AuthorIDs restricts to these authors. Nil means no author clause.
	AuthorIDs []uint
	// Search matches title or content, case-insensitively.
	Search string
	// Categories matches posts having at least one of these category names.
	Categories []string
	// Tags matches posts having at least one of these tag names.
	Tags []string

	Limit  int
	Offset int
	// CurrentUserID drives the per-viewer Liked flag. Zero means anonymous.
	CurrentUserID uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error

	ToggleReaction(ctx context.Context, postID, userID uint, kind string) (string, error)
	CountReactions(ctx context.Context, postID uint, kind string) (int64, error)

	SameAuthor(ctx context.Context, post *models.Post, limit int) ([]*models.Post, error)
	SameCategory(ctx context.Context, post *models.Post, limit int) ([]*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()

	post.TagRows = tagRows(post.ID, post.Tags)
	post.ImageRows = imageRows(post.ID, post.Images)

	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidateCategories(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()

	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Categories").
		Preload("TagRows", orderByPosition).
		Preload("ImageRows", orderByPosition).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}

	post.Flatten()
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, int64, error) {
	defer observability.TrackQuery("list", "posts")()

	base := r.applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Distinct("posts.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	err := r.applyPostDetails(base, filter.CurrentUserID).
		Preload("Author").
		Preload("Categories").
		Preload("TagRows", orderByPosition).
		Preload("ImageRows", orderByPosition).
		Order("posts.created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	for _, p := range posts {
		p.Flatten()
	}
	return posts, total, nil
}

// applyFilter translates a resolved PostFilter into WHERE clauses.
// Category and tag membership go through subqueries so the result set
// stays one row per post without DISTINCT juggling.
func (r *postRepository) applyFilter(db *gorm.DB, filter PostFilter) *gorm.DB {
	if len(filter.Statuses) > 0 {
		db = db.Where("posts.status IN ?", filter.Statuses)
	}
	if len(filter.AuthorIDs) > 0 {
		db = db.Where("posts.author_id IN ?", filter.AuthorIDs)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("LOWER(posts.title) LIKE LOWER(?) OR LOWER(posts.content) LIKE LOWER(?)", like, like)
	}
	if len(filter.Categories) > 0 {
		db = db.Where(
			"posts.id IN (SELECT pc.post_id FROM post_categories pc JOIN categories c ON c.id = pc.category_id WHERE c.name IN ?)",
			filter.Categories,
		)
	}
	if len(filter.Tags) > 0 {
		db = db.Where(
			"posts.id IN (SELECT pt.post_id FROM post_tags pt WHERE pt.name IN ?)",
			filter.Tags,
		)
	}
	return db
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comment_count, " +
		"(SELECT COUNT(*) FROM post_reactions WHERE post_reactions.post_id = posts.id AND post_reactions.kind = 'like') as like_count, " +
		"(SELECT COUNT(*) FROM post_reactions WHERE post_reactions.post_id = posts.id AND post_reactions.kind = 'dislike') as dislike_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM post_reactions WHERE post_reactions.post_id = posts.id AND post_reactions.user_id = ? AND post_reactions.kind = 'like') as liked", currentUserID)
	}

	return db.Select(selectQuery)
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).Association("Categories").Replace(post.Categories); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}

		rows := tagRows(post.ID, post.Tags)
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		imgs := imageRows(post.ID, post.Images)
		if len(imgs) > 0 {
			if err := tx.Create(&imgs).Error; err != nil {
				return err
			}
		}

		return tx.Model(post).Select("Title", "Content", "Status", "UpdatedAt").Updates(map[string]any{
			"title":      post.Title,
			"content":    post.Content,
			"status":     post.Status,
			"updated_at": time.Now(),
		}).Error
	})
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, post.ID)
	cache.InvalidateCategories(ctx)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()

	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateCategories(ctx)
	return nil
}

// ToggleReaction flips a user's reaction on a post. Each branch is a single
// conditional statement, so two concurrent toggles cannot interleave a read
// with a stale write:
//
//	same kind present    -> delete it           (removed)
//	other kind present   -> delete, then insert (switched)
//	no reaction present  -> insert              (added)
//
// The insert carries ON CONFLICT DO NOTHING against the (post_id, user_id)
// unique index, so a racing duplicate is silently dropped rather than erroring.
func (r *postRepository) ToggleReaction(ctx context.Context, postID, userID uint, kind string) (string, error) {
	defer observability.TrackQuery("toggle", "post_reactions")()

	db := r.db.WithContext(ctx)

	res := db.Where("post_id = ? AND user_id = ? AND kind = ?", postID, userID, kind).
		Delete(&models.PostReaction{})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected > 0 {
		cache.InvalidatePost(ctx, postID)
		observability.RecordToggle(kind, ToggleRemoved)
		return ToggleRemoved, nil
	}

	outcome := ToggleAdded
	res = db.Where("post_id = ? AND user_id = ? AND kind <> ?", postID, userID, kind).
		Delete(&models.PostReaction{})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected > 0 {
		outcome = ToggleSwitched
	}

	reaction := models.PostReaction{
		PostID:    postID,
		UserID:    userID,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&reaction).Error
	if err != nil {
		return "", err
	}

	cache.InvalidatePost(ctx, postID)
	observability.RecordToggle(kind, outcome)
	return outcome, nil
}

func (r *postRepository) CountReactions(ctx context.Context, postID uint, kind string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PostReaction{}).
		Where("post_id = ? AND kind = ?", postID, kind).
		Count(&count).Error
	return count, err
}

// SameAuthor returns the newest other published posts by the same author.
func (r *postRepository) SameAuthor(ctx context.Context, post *models.Post, limit int) ([]*models.Post, error) {
	defer observability.TrackQuery("same_author", "posts")()

	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), 0).
		Preload("Author").
		Preload("Categories").
		Preload("TagRows", orderByPosition).
		Preload("ImageRows", orderByPosition).
		Where("posts.status = ?", models.PostStatusPublished).
		Where("posts.author_id = ?", post.AuthorID).
		Where("posts.id <> ?", post.ID).
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.Flatten()
	}
	return posts, nil
}

// SameCategory returns published posts sharing a category with the given post,
// excluding the post itself and everything by its author.
func (r *postRepository) SameCategory(ctx context.Context, post *models.Post, limit int) ([]*models.Post, error) {
	defer observability.TrackQuery("same_category", "posts")()

	categoryIDs := make([]uint, 0, len(post.Categories))
	for _, c := range post.Categories {
		categoryIDs = append(categoryIDs, c.ID)
	}
	if len(categoryIDs) == 0 {
		return []*models.Post{}, nil
	}

	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), 0).
		Preload("Author").
		Preload("Categories").
		Preload("TagRows", orderByPosition).
		Preload("ImageRows", orderByPosition).
		Where("posts.status = ?", models.PostStatusPublished).
		Where("posts.id <> ?", post.ID).
		Where("posts.author_id <> ?", post.AuthorID).
		Where("posts.id IN (SELECT pc.post_id FROM post_categories pc WHERE pc.category_id IN ?)", categoryIDs).
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.Flatten()
	}
	return posts, nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func tagRows(postID uint, tags []string) []models.PostTag {
	rows := make([]models.PostTag, 0, len(tags))
	for i, name := range tags {
		rows = append(rows, models.PostTag{PostID: postID, Position: i, Name: name})
	}
	return rows
}

func imageRows(postID uint, images []string) []models.PostImage {
	rows := make([]models.PostImage, 0, len(images))
	for i, filename := range images {
		rows = append(rows, models.PostImage{PostID: postID, Position: i, Filename: filename})
	}
	return rows
}
