package web

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	authcontext "github.com/harupress/harupress/auth/context"
)

// visitorKey derives a stable pseudonymous key for view deduplication from
// the client address and user agent. Raw addresses are never stored.
func visitorKey(r *http.Request) string {
	addr := r.Header.Get("X-Forwarded-For")
	if addr != "" {
		addr = strings.TrimSpace(strings.Split(addr, ",")[0])
	} else {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		addr = host
	}

	sum := sha256.Sum256([]byte(addr + "|" + r.UserAgent()))

	return hex.EncodeToString(sum[:])
}

func (h *Handler) HandleRecordPostView() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID := r.PathValue("postId")

		_, err := h.contentsSvc.GetPost(r.Context(), postID, authcontext.IsAdmin(r.Context()))
		if err != nil {
			writeError(w, r, err)

			return
		}

		err = h.statsSvc.RecordPostView(r.Context(), postID, visitorKey(r))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"ok": true})
	})
}

func (h *Handler) HandleGetPostStats() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID := r.PathValue("postId")

		_, err := h.contentsSvc.GetPost(r.Context(), postID, authcontext.IsAdmin(r.Context()))
		if err != nil {
			writeError(w, r, err)

			return
		}

		res, err := h.statsSvc.GetPostStats(r.Context(), postID)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, res)
	})
}

func (h *Handler) HandleStatsSummary() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		summary, err := h.statsSvc.GetSummary(r.Context())
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, summary)
	})
}
