package web

import (
	"net/http"

	"github.com/harupress/harupress/auth"
	authcontext "github.com/harupress/harupress/auth/context"
	"github.com/harupress/harupress/discuss"
)

func viewerFromRequest(r *http.Request) discuss.Viewer {
	viewer := discuss.Viewer{
		IsAdmin: authcontext.IsAdmin(r.Context()),
	}

	if subject := authcontext.GetSubject(r.Context()); subject != authcontext.Anonymous {
		viewer.UserID = subject
	}

	return viewer
}

type guestCredentialsPayload struct {
	GuestName     string `json:"guestName"`
	GuestEmail    string `json:"guestEmail"`
	GuestPassword string `json:"guestPassword"`
}

func (p guestCredentialsPayload) toCredentials() *auth.GuestCredentials {
	return &auth.GuestCredentials{
		Name:     p.GuestName,
		Email:    p.GuestEmail,
		Password: p.GuestPassword,
	}
}

func (h *Handler) HandleListComments() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID := r.PathValue("postId")

		comments, err := h.discussSvc.ListComments(r.Context(), postID, viewerFromRequest(r))
		if err != nil {
			writeError(w, r, err)

			return
		}

		count, err := h.discussSvc.CountComments(r.Context(), postID)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"data": comments,
			"meta": map[string]any{"total": count},
		})
	})
}

func (h *Handler) HandleCreateComment() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Body             string  `json:"body"`
			ParentID         *string `json:"parentId"`
			ReplyToCommentID *string `json:"replyToCommentId"`
			IsSecret         bool    `json:"isSecret"`
			guestCredentialsPayload
		}

		if !decodeJSONBody(w, r, &req) {
			return
		}

		author := auth.ResolveAuthor(r.Context(), req.toCredentials())

		comment, err := h.discussSvc.CreateComment(r.Context(), r.PathValue("postId"), discuss.CreateCommentRequest{
			Body:             req.Body,
			ParentID:         req.ParentID,
			ReplyToCommentID: req.ReplyToCommentID,
			IsSecret:         req.IsSecret,
		}, author)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusCreated, comment)
	})
}

func (h *Handler) HandleDeleteComment() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req guestCredentialsPayload

		// the body is optional: admins and session users send none
		_ = decodeJSONBodyLenient(r, &req)

		author := auth.ResolveAuthor(r.Context(), req.toCredentials())

		err := h.discussSvc.DeleteComment(r.Context(), r.PathValue("commentId"), author, authcontext.IsAdmin(r.Context()))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"ok": true})
	})
}
