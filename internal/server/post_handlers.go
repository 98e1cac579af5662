package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postRequest is the create/update payload. Tags and categories accept either
// a JSON array or a single comma-separated string.
type postRequest struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Status     string     `json:"status"`
	Categories stringList `json:"categories"`
	Tags       stringList `json:"tags"`
	Images     stringList `json:"images"`
}

// GetPosts handles the filtered, paginated post listing.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, limit := parsePage(c)

	authorID := c.QueryInt("author", 0)
	if authorID < 0 {
		authorID = 0
	}

	result, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Page:          page,
		Limit:         limit,
		Search:        c.Query("search"),
		Categories:    c.Query("categories"),
		Tags:          c.Query("tags"),
		AuthorID:      uint(authorID),
		Followed:      c.QueryBool("followed", false),
		CurrentUserID: currentUserID(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

// GetPost returns a single post. Drafts are visible to their author only;
// everyone else gets the same 404 as a missing post.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), postID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:     userID,
		Title:      req.Title,
		Content:    req.Content,
		Status:     req.Status,
		Categories: req.Categories,
		Tags:       req.Tags,
		Images:     req.Images,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:     userID,
		PostID:     postID,
		Title:      req.Title,
		Content:    req.Content,
		Status:     req.Status,
		Categories: req.Categories,
		Tags:       req.Tags,
		Images:     req.Images,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), postID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// LikePost toggles the requester's like and returns the new like count.
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.togglePostReaction(c, models.ReactionLike)
}

// DislikePost toggles the requester's dislike and returns the new dislike count.
func (s *Server) DislikePost(c *fiber.Ctx) error {
	return s.togglePostReaction(c, models.ReactionDislike)
}

func (s *Server) togglePostReaction(c *fiber.Ctx, kind string) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var result *service.ReactionResult
	if kind == models.ReactionLike {
		result, err = s.postService.ToggleLike(c.Context(), postID, userID)
	} else {
		result, err = s.postService.ToggleDislike(c.Context(), postID, userID)
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	if kind == models.ReactionLike {
		return c.JSON(fiber.Map{"id": result.PostID, "likes": result.Count})
	}
	return c.JSON(fiber.Map{"id": result.PostID, "dislikes": result.Count})
}

// GetRecommendations returns related posts for the postId query parameter.
func (s *Server) GetRecommendations(c *fiber.Ctx) error {
	postID := c.QueryInt("postId", 0)
	if postID <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid postId"))
	}
	limit := c.QueryInt("limit", service.DefaultRecommendations)

	recs, err := s.postService.Recommend(c.Context(), uint(postID), currentUserID(c), limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(recs)
}
