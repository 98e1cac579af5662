package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory SQLite database and migrates the
// full schema. Each test gets its own database, named after the test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type testPostSpec struct {
	author     *models.User
	title      string
	content    string
	status     string
	categories []string
	tags       []string
	createdAt  time.Time
}

func createTestPost(t *testing.T, db *gorm.DB, spec testPostSpec) *models.Post {
	t.Helper()

	status := spec.status
	if status == "" {
		status = models.PostStatusPublished
	}
	content := spec.content
	if content == "" {
		content = "<p>body</p>"
	}
	createdAt := spec.createdAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	categories, err := NewCategoryRepository(db).GetOrCreateByNames(context.Background(), spec.categories)
	require.NoError(t, err)

	post := &models.Post{
		Title:      spec.title,
		Content:    content,
		AuthorID:   spec.author.ID,
		Status:     status,
		Categories: categories,
		Tags:       spec.tags,
		CreatedAt:  createdAt,
	}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), post))
	return post
}
