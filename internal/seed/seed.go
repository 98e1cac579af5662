// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data Run generates.
type Options struct {
	Users    int
	Posts    int
	MaxDays  int // spread of post timestamps into the past
	Password string
}

// DefaultOptions is a small but realistic development dataset.
func DefaultOptions() Options {
	return Options{
		Users:    12,
		Posts:    60,
		MaxDays:  90,
		Password: "password123",
	}
}

var categoryNames = []string{
	"Technology", "Travel", "Food", "Culture", "Science",
	"Opinion", "Personal", "Books",
}

// Run populates the database with users, categories, posts, follows,
// reactions, and comments. Idempotent enough for repeated dev runs: users are
// keyed by generated usernames, so re-running adds more data rather than
// failing.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	// Users
	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), r.Intn(10000)),
			Email:    gofakeit.Email(),
			Password: string(hash),
			Bio:      gofakeit.Sentence(10),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("seeding user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))

	// Categories
	categoryRepo := repository.NewCategoryRepository(db)
	categories, err := categoryRepo.GetOrCreateByNames(ctx, categoryNames)
	if err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}

	// Posts
	posts := make([]*models.Post, 0, opts.Posts)
	for i := 0; i < opts.Posts; i++ {
		author := users[r.Intn(len(users))]
		status := models.PostStatusPublished
		if r.Intn(5) == 0 {
			status = models.PostStatusDraft
		}

		post := &models.Post{
			Title:    gofakeit.Sentence(6),
			Content:  seedContent(),
			AuthorID: author.ID,
			Status:   status,
			CreatedAt: time.Now().Add(
				-time.Duration(r.Intn(max(opts.MaxDays, 1)*24)) * time.Hour),
		}

		picked := r.Perm(len(categories))[:1+r.Intn(2)]
		for _, idx := range picked {
			post.Categories = append(post.Categories, categories[idx])
		}
		for j := 0; j < r.Intn(4); j++ {
			post.TagRows = append(post.TagRows, models.PostTag{
				Position: j,
				Name:     gofakeit.Word(),
			})
		}

		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("seeding post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("seeded %d posts", len(posts))

	// Follow graph: each user follows a handful of others.
	for _, follower := range users {
		for _, idx := range r.Perm(len(users))[:r.Intn(4)+1] {
			followee := users[idx]
			if followee.ID == follower.ID {
				continue
			}
			follow := models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
			// duplicate edges can come out of Perm across iterations
			_ = db.Where(models.Follow{
				FollowerID: follower.ID, FolloweeID: followee.ID,
			}).FirstOrCreate(&follow).Error
		}
	}

	// Reactions: one per (user, post) at most, honoring the unique index.
	for _, post := range posts {
		if post.Status != models.PostStatusPublished {
			continue
		}
		for _, idx := range r.Perm(len(users))[:r.Intn(len(users))] {
			kind := models.ReactionLike
			if r.Intn(4) == 0 {
				kind = models.ReactionDislike
			}
			reaction := models.PostReaction{
				PostID: post.ID,
				UserID: users[idx].ID,
				Kind:   kind,
			}
			if err := db.Create(&reaction).Error; err != nil {
				return fmt.Errorf("seeding reaction: %w", err)
			}
		}
	}

	// Comments
	commentCount := 0
	for _, post := range posts {
		if post.Status != models.PostStatusPublished {
			continue
		}
		for j := 0; j < r.Intn(5); j++ {
			comment := models.Comment{
				Content: gofakeit.Sentence(12),
				UserID:  users[r.Intn(len(users))].ID,
				PostID:  post.ID,
			}
			if err := db.Create(&comment).Error; err != nil {
				return fmt.Errorf("seeding comment: %w", err)
			}
			commentCount++
		}
	}
	log.Printf("seeded follows, reactions, %d comments", commentCount)

	return nil
}

func seedContent() string {
	paragraphs := gofakeit.Paragraph(2, 4, 8, "</p><p>")
	return "<p>" + paragraphs + "</p>"
}
