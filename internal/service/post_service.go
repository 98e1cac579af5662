// Package service implements the application's business rules on top of the
// repository layer.
package service

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const (
	// DefaultPageSize matches the original platform's 3x3 post grid.
	DefaultPageSize = 9
	MaxPageSize     = 50

	DefaultRecommendations = 3
	MaxRecommendations     = 10

	maxTitleLen   = 300
	maxContentLen = 100000
)

type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	followRepo   repository.FollowRepository
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	followRepo repository.FollowRepository,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		followRepo:   followRepo,
	}
}

type CreatePostInput struct {
	UserID     uint
	Title      string
	Content    string
	Status     string
	Categories []string
	Tags       []string
	Images     []string
}

type UpdatePostInput struct {
	UserID     uint
	PostID     uint
	Title      string
	Content    string
	Status     string
	Categories []string
	Tags       []string
	Images     []string
}

// ListPostsInput carries the raw listing parameters. CurrentUserID is zero for
// anonymous requests.
type ListPostsInput struct {
	Page          int
	Limit         int
	Search        string
	Categories    string // comma-separated
	Tags          string // comma-separated
	AuthorID      uint
	Followed      bool
	CurrentUserID uint
}

// PostPage is the paginated listing response.
type PostPage struct {
	Posts       []*models.Post `json:"posts"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// ReactionResult reports the post's reaction count of the toggled kind after
// the toggle.
type ReactionResult struct {
	PostID  uint
	Count   int64
	Outcome string
}

// Recommendations holds both selector results for a source post.
type Recommendations struct {
	SameAuthor   []*models.Post `json:"sameAuthor"`
	SameCategory []*models.Post `json:"sameCategory"`
}

// ListPosts resolves the listing parameters into repository clauses.
//
// The rules apply in a fixed order; later rules win conflicts:
//
//	1. only published posts
//	2. author filter; an author listing their own posts also sees drafts
//	3. search over title/content
//	4. category intersection
//	5. tag intersection
//	6. followed: restrict authors to the requester's following set. This
//	   REPLACES any author filter from rule 2 — last-applied-wins precedence,
//	   kept from the original platform — and restores the published-only
//	   restriction so drafts never leak through a follow edge.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (_ *PostPage, err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.ListPosts")
	defer func() { span.SetError(err); span.End() }()
	span.AddAttributes(
		attribute.Bool("followed", in.Followed),
		attribute.Bool("authenticated", in.CurrentUserID != 0),
	)

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	filter := repository.PostFilter{
		Statuses:      []string{models.PostStatusPublished},
		Search:        strings.TrimSpace(in.Search),
		Categories:    splitCSV(in.Categories),
		Tags:          splitCSV(in.Tags),
		Limit:         limit,
		Offset:        (page - 1) * limit,
		CurrentUserID: in.CurrentUserID,
	}

	if in.AuthorID != 0 {
		filter.AuthorIDs = []uint{in.AuthorID}
		if in.CurrentUserID != 0 && in.AuthorID == in.CurrentUserID {
			filter.Statuses = nil
		}
	}

	if in.Followed && in.CurrentUserID != 0 {
		followingIDs, err := s.followRepo.FollowingIDs(ctx, in.CurrentUserID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if len(followingIDs) > 0 {
			filter.AuthorIDs = followingIDs
			filter.Statuses = []string{models.PostStatusPublished}
		}
	}

	posts, total, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &PostPage{
		Posts:       posts,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// GetPost applies the draft visibility rule: a draft is indistinguishable from
// a missing post for everyone but its author.
func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	post, err := s.visiblePost(ctx, postID, currentUserID)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long")
	}

	status := in.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if status != models.PostStatusDraft && status != models.PostStatusPublished {
		return nil, models.NewValidationError("Status must be draft or published")
	}

	categoryNames := trimNonEmpty(in.Categories)
	if len(categoryNames) == 0 {
		return nil, models.NewValidationError("At least one category is required")
	}
	categories, err := s.categoryRepo.GetOrCreateByNames(ctx, categoryNames)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	post := &models.Post{
		Title:      title,
		Content:    in.Content,
		AuthorID:   in.UserID,
		Status:     status,
		Categories: categories,
		Tags:       trimNonEmpty(in.Tags),
		Images:     trimNonEmpty(in.Images),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.PostsCreated.WithLabelValues(status).Inc()
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.ownedPost(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title is required")
		}
		if len(title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		post.Title = title
	}
	if in.Content != "" {
		if len(in.Content) > maxContentLen {
			return nil, models.NewValidationError("Content too long")
		}
		post.Content = in.Content
	}
	if in.Status != "" {
		if in.Status != models.PostStatusDraft && in.Status != models.PostStatusPublished {
			return nil, models.NewValidationError("Status must be draft or published")
		}
		post.Status = in.Status
	}
	if in.Categories != nil {
		names := trimNonEmpty(in.Categories)
		if len(names) == 0 {
			return nil, models.NewValidationError("At least one category is required")
		}
		categories, err := s.categoryRepo.GetOrCreateByNames(ctx, names)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		post.Categories = categories
	}
	if in.Tags != nil {
		post.Tags = trimNonEmpty(in.Tags)
	}
	if in.Images != nil {
		post.Images = trimNonEmpty(in.Images)
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	if _, err := s.ownedPost(ctx, postID, userID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the requester's like on a visible post and returns the new
// like count.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID uint) (*ReactionResult, error) {
	return s.toggleReaction(ctx, postID, userID, models.ReactionLike)
}

// ToggleDislike is the symmetric dislike toggle.
func (s *PostService) ToggleDislike(ctx context.Context, postID, userID uint) (*ReactionResult, error) {
	return s.toggleReaction(ctx, postID, userID, models.ReactionDislike)
}

func (s *PostService) toggleReaction(ctx context.Context, postID, userID uint, kind string) (_ *ReactionResult, err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.ToggleReaction")
	defer func() { span.SetError(err); span.End() }()
	span.AddAttributes(attribute.String("kind", kind))

	if _, err := s.visiblePost(ctx, postID, userID); err != nil {
		return nil, err
	}

	outcome, err := s.postRepo.ToggleReaction(ctx, postID, userID, kind)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	count, err := s.postRepo.CountReactions(ctx, postID, kind)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &ReactionResult{PostID: postID, Count: count, Outcome: outcome}, nil
}

// Recommend returns both recommendation sets for a source post. The source
// itself never appears; the sameCategory set additionally excludes the source
// author, so the two sets are disjoint.
func (s *PostService) Recommend(ctx context.Context, postID, currentUserID uint, limit int) (_ *Recommendations, err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.Recommend")
	defer func() { span.SetError(err); span.End() }()

	if limit < 1 {
		limit = DefaultRecommendations
	}
	if limit > MaxRecommendations {
		limit = MaxRecommendations
	}

	post, err := s.visiblePost(ctx, postID, currentUserID)
	if err != nil {
		return nil, err
	}

	sameAuthor, err := s.postRepo.SameAuthor(ctx, post, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	sameCategory, err := s.postRepo.SameCategory(ctx, post, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &Recommendations{SameAuthor: sameAuthor, SameCategory: sameCategory}, nil
}

// visiblePost loads a post and masks drafts from everyone but their author.
func (s *PostService) visiblePost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}
	if post.Status == models.PostStatusDraft && post.AuthorID != currentUserID {
		// Same response as a missing post. A distinct Forbidden would
		// reveal the draft's existence.
		return nil, models.NewNotFoundError("Post")
	}
	return post, nil
}

// ownedPost loads a post for mutation; drafts are masked first, then a
// non-author gets Forbidden.
func (s *PostService) ownedPost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := s.visiblePost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, models.NewForbiddenError("You can only modify your own posts")
	}
	return post, nil
}

// splitCSV splits a comma-separated parameter, trimming whitespace and
// dropping empty entries.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return trimNonEmpty(strings.Split(s, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
