package web

import (
	"net/http"

	authcontext "github.com/harupress/harupress/auth/context"
	"github.com/harupress/harupress/reactions"
)

func (h *Handler) HandleGetReactions() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		currentUserID := ""
		if subject := authcontext.GetSubject(r.Context()); subject != authcontext.Anonymous {
			currentUserID = subject
		}

		res, err := h.reactionsSvc.GetTargetReactions(
			r.Context(),
			reactions.TargetType(r.PathValue("targetType")),
			r.PathValue("targetId"),
			currentUserID,
		)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, res)
	})
}

func (h *Handler) HandleToggleReaction() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Emoji string `json:"emoji"`
		}

		if !decodeJSONBody(w, r, &req) {
			return
		}

		targetType := reactions.TargetType(r.PathValue("targetType"))
		targetID := r.PathValue("targetId")
		userID := authcontext.GetSubject(r.Context())

		err := h.reactionsSvc.ToggleReaction(r.Context(), targetType, targetID, userID, req.Emoji)
		if err != nil {
			writeError(w, r, err)

			return
		}

		res, err := h.reactionsSvc.GetTargetReactions(r.Context(), targetType, targetID, userID)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, res)
	})
}
