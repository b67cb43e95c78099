package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/crucial707/vuln-blog/internal/metrics"
	"github.com/crucial707/vuln-blog/internal/middleware"
	"github.com/crucial707/vuln-blog/internal/models"
	"github.com/crucial707/vuln-blog/internal/repo"
	"github.com/crucial707/vuln-blog/internal/sanitize"
	"github.com/go-chi/chi/v5"
)

type PostHandler struct {
	Posts     *repo.PostRepo
	Comments  *repo.CommentRepo
	Sanitizer *sanitize.Sanitizer

	// RawErrors sends database error text to the client.
	RawErrors bool
}

//
// ==========================
// List Posts
// ==========================
//

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.List(r.Context())
	if err != nil {
		storeError(w, "list posts", err, h.RawErrors)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

//
// ==========================
// Search Posts (title substring, case-insensitive)
// ==========================
//

func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.SearchTitle(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		storeError(w, "search posts", err, h.RawErrors)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

//
// ==========================
// Get Post with comments
// ==========================
//

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	post, err := h.Posts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Post not found", http.StatusNotFound)
			return
		}
		storeError(w, "get post", err, h.RawErrors)
		return
	}

	comments, err := h.Comments.ListByPost(r.Context(), id)
	if err != nil {
		storeError(w, "list comments", err, h.RawErrors)
		return
	}

	writeJSON(w, http.StatusOK, models.PostDetail{Post: post, Comments: comments})
}

//
// ==========================
// Create Post
// ==========================
//

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		JSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		Title   string `json:"title" validate:"required,max=255"`
		Content string `json:"content" validate:"required"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if fields := validationFields(input); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	id, err := h.Posts.Create(r.Context(),
		h.Sanitizer.HTML(input.Title),
		h.Sanitizer.HTML(input.Content),
		p.Username,
	)
	if err != nil {
		storeError(w, "create post", err, h.RawErrors)
		return
	}
	metrics.RecordCreated("post")

	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Post created", "id": id})
}

//
// ==========================
// Add Comment
// ==========================
//

func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		JSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := postID(w, r)
	if !ok {
		return
	}

	var input struct {
		Content string `json:"content" validate:"required"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if fields := validationFields(input); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	if _, err := h.Posts.Get(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Post not found", http.StatusNotFound)
			return
		}
		storeError(w, "get post", err, h.RawErrors)
		return
	}

	commentID, err := h.Comments.Create(r.Context(), id, h.Sanitizer.HTML(input.Content), p.Username)
	if err != nil {
		// The post can disappear between the check and the insert.
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "Post not found", http.StatusNotFound)
			return
		}
		storeError(w, "create comment", err, h.RawErrors)
		return
	}
	metrics.RecordCreated("comment")

	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Comment added", "id": commentID})
}

// postID parses the {id} route parameter, answering 400 when it is not a positive integer.
func postID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		JSONError(w, "Invalid post id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
