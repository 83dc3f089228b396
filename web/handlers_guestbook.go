package web

import (
	"net/http"
	"strconv"

	"github.com/harupress/harupress/auth"
	authcontext "github.com/harupress/harupress/auth/context"
	"github.com/harupress/harupress/guestbook"
)

func (h *Handler) HandleListGuestbookEntries() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		entryPage, err := h.guestbookSvc.ListEntries(r.Context(), page, limit, viewerFromRequest(r))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, entryPage)
	})
}

func (h *Handler) HandleCreateGuestbookEntry() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Body     string  `json:"body"`
			ParentID *string `json:"parentId"`
			IsSecret bool    `json:"isSecret"`
			guestCredentialsPayload
		}

		if !decodeJSONBody(w, r, &req) {
			return
		}

		author := auth.ResolveAuthor(r.Context(), req.toCredentials())

		entry, err := h.guestbookSvc.CreateEntry(r.Context(), guestbook.CreateEntryRequest{
			Body:     req.Body,
			ParentID: req.ParentID,
			IsSecret: req.IsSecret,
		}, author)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusCreated, entry)
	})
}

func (h *Handler) HandleDeleteGuestbookEntry() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req guestCredentialsPayload

		_ = decodeJSONBodyLenient(r, &req)

		author := auth.ResolveAuthor(r.Context(), req.toCredentials())

		err := h.guestbookSvc.DeleteEntry(r.Context(), r.PathValue("entryId"), author, authcontext.IsAdmin(r.Context()))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"ok": true})
	})
}
