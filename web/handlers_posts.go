package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	authcontext "github.com/harupress/harupress/auth/context"
	"github.com/harupress/harupress/contents"
)

type postView struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Body       string    `json:"body"`
	BodyHTML   string    `json:"bodyHtml"`
	CategoryID *string   `json:"categoryId"`
	Tags       []string  `json:"tags"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (h *Handler) toPostView(r *http.Request, post *contents.Post) postView {
	var buf bytes.Buffer

	err := h.markdown.Convert([]byte(post.Body), &buf)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to render post body", "postId", post.ID, "error", err)
	}

	return postView{
		ID:         post.ID,
		Title:      post.Title,
		Slug:       post.Slug,
		Body:       post.Body,
		BodyHTML:   buf.String(),
		CategoryID: post.CategoryID,
		Tags:       post.Tags,
		Published:  post.Published,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
	}
}

func (h *Handler) HandleListPosts() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := &contents.ListPostsParams{
			PublishedOnly: !authcontext.IsAdmin(r.Context()),
			CategoryID:    r.URL.Query().Get("categoryId"),
			Tag:           r.URL.Query().Get("tag"),
		}

		posts, err := h.contentsSvc.ListPosts(r.Context(), params)
		if err != nil {
			writeError(w, r, err)

			return
		}

		views := make([]postView, 0, len(posts))
		for _, post := range posts {
			views = append(views, h.toPostView(r, post))
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"data": views})
	})
}

type createPostRequest struct {
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Body       string   `json:"body"`
	CategoryID *string  `json:"categoryId"`
	Tags       []string `json:"tags"`
	Published  bool     `json:"published"`
}

func (h *Handler) HandleCreatePost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createPostRequest

		if !decodeJSONBody(w, r, &req) {
			return
		}

		post, err := h.contentsSvc.CreatePost(r.Context(), contents.CreatePostRequest{
			Title:      req.Title,
			Slug:       req.Slug,
			Body:       req.Body,
			CategoryID: req.CategoryID,
			Tags:       req.Tags,
			Published:  req.Published,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusCreated, h.toPostView(r, post))
	})
}

func (h *Handler) HandleGetPost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		post, err := h.contentsSvc.GetPost(r.Context(), r.PathValue("postId"), authcontext.IsAdmin(r.Context()))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, h.toPostView(r, post))
	})
}

func (h *Handler) HandleGetPostBySlug() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		post, err := h.contentsSvc.GetPostBySlug(r.Context(), r.PathValue("slug"), authcontext.IsAdmin(r.Context()))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, h.toPostView(r, post))
	})
}

type updatePostRequest struct {
	Title         *string  `json:"title"`
	Slug          *string  `json:"slug"`
	Body          *string  `json:"body"`
	CategoryID    *string  `json:"categoryId"`
	ClearCategory bool     `json:"clearCategory"`
	Tags          []string `json:"tags"`
	Published     *bool    `json:"published"`
}

func (h *Handler) HandleUpdatePost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req updatePostRequest

		if !decodeJSONBody(w, r, &req) {
			return
		}

		post, err := h.contentsSvc.UpdatePost(r.Context(), r.PathValue("postId"), contents.UpdatePostRequest{
			Title:         req.Title,
			Slug:          req.Slug,
			Body:          req.Body,
			CategoryID:    req.CategoryID,
			ClearCategory: req.ClearCategory,
			Tags:          req.Tags,
			Published:     req.Published,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, h.toPostView(r, post))
	})
}

func (h *Handler) HandleDeletePost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h.contentsSvc.DeletePost(r.Context(), r.PathValue("postId"))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"ok": true})
	})
}

type categoryView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toCategoryView(category *contents.Category) categoryView {
	return categoryView{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
	}
}

func (h *Handler) HandleListCategories() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.contentsSvc.ListCategories(r.Context())
		if err != nil {
			writeError(w, r, err)

			return
		}

		views := make([]categoryView, 0, len(categories))
		for _, category := range categories {
			views = append(views, toCategoryView(category))
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"data": views})
	})
}

func (h *Handler) HandleCreateCategory() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Slug        string `json:"slug"`
			Description string `json:"description"`
		}

		if !decodeJSONBody(w, r, &req) {
			return
		}

		category, err := h.contentsSvc.CreateCategory(r.Context(), contents.CreateCategoryRequest{
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusCreated, toCategoryView(category))
	})
}

func (h *Handler) HandleUpdateCategory() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
		}

		if !decodeJSONBody(w, r, &req) {
			return
		}

		category, err := h.contentsSvc.UpdateCategory(r.Context(), r.PathValue("categoryId"), contents.UpdateCategoryRequest{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, toCategoryView(category))
	})
}

func (h *Handler) HandleDeleteCategory() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h.contentsSvc.DeleteCategory(r.Context(), r.PathValue("categoryId"))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"ok": true})
	})
}

func (h *Handler) HandleListTags() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.contentsSvc.ListTags(r.Context())
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"data": tags})
	})
}
