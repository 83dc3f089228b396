package web

import (
	"log/slog"
	"net/http"

	"github.com/harupress/harupress/auth"
	authcontext "github.com/harupress/harupress/auth/context"
)

// HandleOAuthComplete is the boundary where the external OAuth callback
// wiring hands over a verified provider profile. The provider exchange
// itself happens outside this process.
func (h *Handler) HandleOAuthComplete() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Provider       string `json:"provider"`
			ProviderUserID string `json:"providerUserId"`
			Name           string `json:"name"`
			Email          string `json:"email"`
			AvatarURL      string `json:"avatarUrl"`
		}

		if !decodeJSONBody(w, r, &req) {
			return
		}

		session, account, err := h.authSvc.SignInWithOAuth(r.Context(), auth.OAuthProfile{
			Provider:       auth.Provider(req.Provider),
			ProviderUserID: req.ProviderUserID,
			Name:           req.Name,
			Email:          req.Email,
			AvatarURL:      req.AvatarURL,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		err = h.setSessionValue(w, r, sessionIDKey, session.ID)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"id":        account.ID,
			"provider":  account.Provider,
			"name":      account.Name,
			"email":     account.Email,
			"avatarUrl": account.AvatarURL,
		})
	})
}

func (h *Handler) HandleAdminLogin() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}

		if !decodeJSONBody(w, r, &req) {
			return
		}

		session, err := h.authSvc.LoginAdmin(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, r, err)

			return
		}

		err = h.setSessionValue(w, r, sessionIDKey, session.ID)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"ok": true})
	})
}

func (h *Handler) HandleLogout() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := authcontext.SessionIDFromContext(r.Context())
		if ok {
			err := h.authSvc.Logout(r.Context(), sessionID)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to delete server-side session", "error", err)
			}
		}

		err := h.deleteSessionValue(w, r, sessionIDKey)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"ok": true})
	})
}

func (h *Handler) HandleMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if adminID := authcontext.AdminID(ctx); adminID != "" {
			admin, err := h.authSvc.GetAdmin(ctx, adminID)
			if err != nil {
				writeError(w, r, err)

				return
			}

			writeJSON(w, r, http.StatusOK, map[string]any{
				"kind":     "admin",
				"id":       admin.ID,
				"username": admin.Username,
			})

			return
		}

		subject := authcontext.GetSubject(ctx)
		if subject == authcontext.Anonymous {
			writeJSON(w, r, http.StatusOK, map[string]any{"kind": "anonymous"})

			return
		}

		account, err := h.authSvc.GetAccount(ctx, subject)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"kind":      "user",
			"id":        account.ID,
			"provider":  account.Provider,
			"name":      account.Name,
			"email":     account.Email,
			"avatarUrl": account.AvatarURL,
		})
	})
}
