package repository

import (
	"context"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	// ListWithCounts returns all categories with their published post counts.
	ListWithCounts(ctx context.Context) ([]*models.Category, error)
	// GetOrCreateByNames resolves category names to rows, creating missing ones.
	GetOrCreateByNames(ctx context.Context, names []string) ([]models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListWithCounts(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := cache.CacheAside(ctx, cache.CategoryListKey, &categories, cache.CategoryListTTL, func() error {
		if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
			return err
		}
		for _, c := range categories {
			var count int64
			err := r.db.WithContext(ctx).
				Model(&models.Post{}).
				Joins("JOIN post_categories pc ON pc.post_id = posts.id").
				Where("pc.category_id = ? AND posts.status = ? AND posts.deleted_at IS NULL", c.ID, models.PostStatusPublished).
				Count(&count).Error
			if err != nil {
				return err
			}
			c.PostCount = count
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) GetOrCreateByNames(ctx context.Context, names []string) ([]models.Category, error) {
	categories := make([]models.Category, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		var category models.Category
		err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error
		if err == gorm.ErrRecordNotFound {
			category = models.Category{Name: name, Slug: Slugify(name)}
			err = r.db.WithContext(ctx).Create(&category).Error
		}
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// Slugify lowercases a name and collapses runs of non-alphanumerics to hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
