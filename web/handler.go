package web

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/sessions"
	"github.com/harupress/harupress/assets"
	"github.com/harupress/harupress/auth"
	"github.com/harupress/harupress/contents"
	"github.com/harupress/harupress/discuss"
	"github.com/harupress/harupress/guestbook"
	"github.com/harupress/harupress/reactions"
	"github.com/harupress/harupress/stats"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type Handler struct {
	mux          *http.ServeMux
	handler      http.Handler
	authSvc      *auth.Service
	contentsSvc  *contents.Service
	discussSvc   *discuss.Service
	guestbookSvc *guestbook.Service
	assetsSvc    *assets.Service
	statsSvc     *stats.Service
	reactionsSvc *reactions.Service
	cookieStore  *sessions.CookieStore
	sessionName  string
	markdown     goldmark.Markdown
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(
	authSvc *auth.Service,
	contentsSvc *contents.Service,
	discussSvc *discuss.Service,
	guestbookSvc *guestbook.Service,
	assetsSvc *assets.Service,
	statsSvc *stats.Service,
	reactionsSvc *reactions.Service,
	cookieStore *sessions.CookieStore,
	sessionName string,
) *Handler {
	h := &Handler{
		mux:          nil,
		handler:      nil,
		authSvc:      authSvc,
		contentsSvc:  contentsSvc,
		discussSvc:   discussSvc,
		guestbookSvc: guestbookSvc,
		assetsSvc:    assetsSvc,
		statsSvc:     statsSvc,
		reactionsSvc: reactionsSvc,
		cookieStore:  cookieStore,
		sessionName:  sessionName,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM, // tables, strikethrough, task lists
			),
		),
	}

	h.mux = &http.ServeMux{}
	h.handler = h.mux

	h.registerRoutes()

	h.handler = h.authMiddleware(h.handler)
	h.handler = recoverMiddleware(h.handler)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.Handle("POST /api/auth/oauth/complete", h.HandleOAuthComplete())
	h.mux.Handle("POST /api/auth/admin/login", h.HandleAdminLogin())
	h.mux.Handle("POST /api/auth/logout", h.HandleLogout())
	h.mux.Handle("GET /api/auth/me", h.HandleMe())

	h.mux.Handle("GET /api/posts", h.HandleListPosts())
	h.mux.Handle("POST /api/posts", h.AdminOnly(h.HandleCreatePost()))
	h.mux.Handle("GET /api/posts/{postId}", h.HandleGetPost())
	h.mux.Handle("PATCH /api/posts/{postId}", h.AdminOnly(h.HandleUpdatePost()))
	h.mux.Handle("DELETE /api/posts/{postId}", h.AdminOnly(h.HandleDeletePost()))
	h.mux.Handle("GET /api/posts/slug/{slug}", h.HandleGetPostBySlug())

	h.mux.Handle("GET /api/categories", h.HandleListCategories())
	h.mux.Handle("POST /api/categories", h.AdminOnly(h.HandleCreateCategory()))
	h.mux.Handle("PATCH /api/categories/{categoryId}", h.AdminOnly(h.HandleUpdateCategory()))
	h.mux.Handle("DELETE /api/categories/{categoryId}", h.AdminOnly(h.HandleDeleteCategory()))

	h.mux.Handle("GET /api/tags", h.HandleListTags())

	h.mux.Handle("GET /api/posts/{postId}/comments", h.HandleListComments())
	h.mux.Handle("POST /api/posts/{postId}/comments", h.HandleCreateComment())
	h.mux.Handle("DELETE /api/comments/{commentId}", h.HandleDeleteComment())

	h.mux.Handle("GET /api/guestbook", h.HandleListGuestbookEntries())
	h.mux.Handle("POST /api/guestbook", h.HandleCreateGuestbookEntry())
	h.mux.Handle("DELETE /api/guestbook/{entryId}", h.HandleDeleteGuestbookEntry())

	h.mux.Handle("GET /api/assets", h.AdminOnly(h.HandleListAssets()))
	h.mux.Handle("POST /api/assets", h.AdminOnly(h.HandleUploadAsset()))
	h.mux.Handle("DELETE /api/assets/{assetId}", h.AdminOnly(h.HandleDeleteAsset()))

	h.mux.Handle("POST /api/posts/{postId}/view", h.HandleRecordPostView())
	h.mux.Handle("GET /api/posts/{postId}/stats", h.HandleGetPostStats())
	h.mux.Handle("GET /api/stats/summary", h.AdminOnly(h.HandleStatsSummary()))

	h.mux.Handle("GET /api/react/{targetType}/{targetId}", h.HandleGetReactions())
	h.mux.Handle("POST /api/react/{targetType}/{targetId}", h.AuthenticatedOnly(h.HandleToggleReaction()))
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			if err := recover(); err != nil {
				slog.ErrorContext(
					ctx,
					"recovered from panic",
					"error",
					err,
					"stack",
					string(debug.Stack()),
				)

				writeErrorBody(w, http.StatusInternalServerError, "internal", "internal error occurred")
			}
		}(r.Context())

		next.ServeHTTP(w, r)
	})
}
