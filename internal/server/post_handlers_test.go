package server

import (
	"fmt"
	"net/http"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetPost(t *testing.T) {
	app, srv, db := setupTestServer(t)
	_, token := createTestAccount(t, srv, db, "alice")

	resp, body := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]any{
		"title":      "First Post",
		"content":    "<p>Hello</p>",
		"status":     "published",
		"categories": []string{"Tech"},
		"tags":       "go, fiber",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "First Post", body["title"])
	assert.ElementsMatch(t, []any{"go", "fiber"}, body["tags"])
	postID := uint(body["id"].(float64))

	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "published", body["status"])
	author, ok := body["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", author["username"])
}

func TestCreatePostValidationErrors(t *testing.T) {
	app, srv, db := setupTestServer(t)
	_, token := createTestAccount(t, srv, db, "alice")

	resp, body := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]any{
		"content":    "<p>No title</p>",
		"categories": []string{"Tech"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Title is required", body["error"])

	resp, body = doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]any{
		"title": "No categories",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "At least one category is required", body["error"])
}

func TestDraftVisibility(t *testing.T) {
	app, srv, db := setupTestServer(t)
	_, aliceToken := createTestAccount(t, srv, db, "alice")
	_, bobToken := createTestAccount(t, srv, db, "bob")

	resp, body := doJSON(t, app, http.MethodPost, "/api/posts", aliceToken, map[string]any{
		"title":      "Secret draft",
		"content":    "<p>wip</p>",
		"categories": []string{"Tech"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "draft", body["status"])
	postID := uint(body["id"].(float64))
	path := fmt.Sprintf("/api/posts/%d", postID)

	// Author sees the draft
	resp, _ = doJSON(t, app, http.MethodGet, path, aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Anonymous and other users get the same 404 as a missing post
	resp, draftBody := doJSON(t, app, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, path, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, missingBody := doJSON(t, app, http.MethodGet, "/api/posts/99999", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, missingBody["error"], draftBody["error"])

	// Drafts stay out of the public listing
	resp, listBody := doJSON(t, app, http.MethodGet, "/api/posts", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listBody["posts"], 0)
}

func TestListPostsPaginationShape(t *testing.T) {
	app, srv, db := setupTestServer(t)
	_, token := createTestAccount(t, srv, db, "alice")

	for i := 0; i < 12; i++ {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]any{
			"title":      fmt.Sprintf("Post %02d", i),
			"content":    "<p>n</p>",
			"status":     "published",
			"categories": []string{"Tech"},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["posts"], 9) // default page size
	assert.EqualValues(t, 2, body["totalPages"])
	assert.EqualValues(t, 1, body["currentPage"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/posts?page=2&limit=9", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["posts"], 3)
	assert.EqualValues(t, 2, body["currentPage"])
}

func TestListPostsFollowedFilter(t *testing.T) {
	app, srv, db := setupTestServer(t)
	alice, aliceToken := createTestAccount(t, srv, db, "alice")
	bob, bobToken := createTestAccount(t, srv, db, "bob")
	_, carolToken := createTestAccount(t, srv, db, "carol")

	for name, token := range map[string]string{"alice post": aliceToken, "bob post": bobToken, "carol post": carolToken} {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]any{
			"title":      name,
			"content":    "<p>x</p>",
			"status":     "published",
			"categories": []string{"Tech"},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	// carol follows alice
	resp, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", alice.ID), carolToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/api/posts?followed=true", carolToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	posts := body["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "alice post", posts[0].(map[string]any)["title"])

	// followed + author: the following set wins over the author parameter
	resp, body = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/posts?followed=true&author=%d", bob.ID), carolToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	posts = body["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "alice post", posts[0].(map[string]any)["title"])

	// anonymous followed=true falls back to the plain published listing
	resp, body = doJSON(t, app, http.MethodGet, "/api/posts?followed=true", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["posts"], 3)
}

func TestUpdateAndDeletePostAuthorization(t *testing.T) {
	app, srv, db := setupTestServer(t)
	_, aliceToken := createTestAccount(t, srv, db, "alice")
	_, bobToken := createTestAccount(t, srv, db, "bob")

	resp, body := doJSON(t, app, http.MethodPost, "/api/posts", aliceToken, map[string]any{
		"title":      "Mine",
		"content":    "<p>x</p>",
		"status":     "published",
		"categories": []string{"Tech"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := uint(body["id"].(float64))
	path := fmt.Sprintf("/api/posts/%d", postID)

	resp, _ = doJSON(t, app, http.MethodPut, path, bobToken, map[string]any{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, path, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPut, path, aliceToken, map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", body["title"])

	resp, _ = doJSON(t, app, http.MethodDelete, path, aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, path, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLikeAndDislikeToggles(t *testing.T) {
	app, srv, db := setupTestServer(t)
	_, aliceToken := createTestAccount(t, srv, db, "alice")
	bob, bobToken := createTestAccount(t, srv, db, "bob")

	resp, body := doJSON(t, app, http.MethodPost, "/api/posts", aliceToken, map[string]any{
		"title":      "Reactable",
		"content":    "<p>x</p>",
		"status":     "published",
		"categories": []string{"Tech"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := uint(body["id"].(float64))

	likePath := fmt.Sprintf("/api/posts/%d/like", postID)
	dislikePath := fmt.Sprintf("/api/posts/%d/dislike", postID)

	// Anonymous reactions are rejected
	resp, _ = doJSON(t, app, http.MethodPost, likePath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, likePath, bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["likes"])

	// Second like removes it
	resp, body = doJSON(t, app, http.MethodPost, likePath, bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["likes"])

	// Like, then dislike: mutual exclusion
	_, _ = doJSON(t, app, http.MethodPost, likePath, bobToken, nil)
	resp, body = doJSON(t, app, http.MethodPost, dislikePath, bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["dislikes"])

	var reactions []models.PostReaction
	require.NoError(t, db.Where("post_id = ? AND user_id = ?", postID, bob.ID).Find(&reactions).Error)
	require.Len(t, reactions, 1)
	assert.Equal(t, models.ReactionDislike, reactions[0].Kind)

	// Unknown post
	resp, _ = doJSON(t, app, http.MethodPost, "/api/posts/99999/like", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecommendationsEndpoint(t *testing.T) {
	app, srv, db := setupTestServer(t)
	_, aliceToken := createTestAccount(t, srv, db, "alice")
	_, bobToken := createTestAccount(t, srv, db, "bob")

	mkPost := func(token, title, category string) uint {
		resp, body := doJSON(t, app, http.MethodPost, "/api/posts", token, map[string]any{
			"title":      title,
			"content":    "<p>x</p>",
			"status":     "published",
			"categories": []string{category},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		return uint(body["id"].(float64))
	}

	source := mkPost(aliceToken, "Source", "Tech")
	mkPost(aliceToken, "Alice other", "Tech")
	mkPost(bobToken, "Bob tech", "Tech")
	mkPost(bobToken, "Bob travel", "Travel")

	resp, body := doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/posts/recommendations?postId=%d", source), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sameAuthor := body["sameAuthor"].([]any)
	require.Len(t, sameAuthor, 1)
	assert.Equal(t, "Alice other", sameAuthor[0].(map[string]any)["title"])

	sameCategory := body["sameCategory"].([]any)
	require.Len(t, sameCategory, 1)
	assert.Equal(t, "Bob tech", sameCategory[0].(map[string]any)["title"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/posts/recommendations?postId=99999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/posts/recommendations", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
