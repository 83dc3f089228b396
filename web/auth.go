package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/harupress/harupress/auth"
	authcontext "github.com/harupress/harupress/auth/context"
)

// authMiddleware resolves the cookie session into a request subject. A
// stale or expired session clears the cookie and the request continues
// anonymously.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionValueNotFoundError *SessionValueNotFoundError

		sessionID, err := h.getSessionValue(r, sessionIDKey)
		if err != nil && !errors.As(err, &sessionValueNotFoundError) {
			slog.ErrorContext(r.Context(), "error on getting session value", "key", sessionIDKey, "error", err)
			writeErrorBody(w, http.StatusInternalServerError, "internal", "error on getting session value")

			return
		}

		if sessionID != nil && sessionID.(string) != "" {
			session, err := h.authSvc.GetSession(r.Context(), sessionID.(string))
			if err != nil {
				var (
					sessionNotFoundError *auth.SessionNotFoundError
					sessionExpiredError  *auth.SessionExpiredError
				)

				if errors.As(err, &sessionNotFoundError) || errors.As(err, &sessionExpiredError) {
					err = h.deleteSessionValue(w, r, sessionIDKey)
					if err != nil {
						slog.ErrorContext(r.Context(), "error on deleting session value", "key", sessionIDKey, "error", err)
						writeErrorBody(w, http.StatusInternalServerError, "internal", "error on deleting session value")

						return
					}

					next.ServeHTTP(w, r)

					return
				}

				slog.ErrorContext(r.Context(), "error on getting session", "error", err)
				writeErrorBody(w, http.StatusInternalServerError, "internal", "error on getting session")

				return
			}

			ctx := authcontext.WithSessionID(r.Context(), session.ID)

			switch session.Kind {
			case auth.SessionKindUser:
				ctx = authcontext.WithSubject(ctx, session.SubjectID)
			case auth.SessionKindAdmin:
				ctx = authcontext.WithAdmin(ctx, session.SubjectID)
			}

			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

func isAuthenticated(r *http.Request) bool {
	return authcontext.GetSubject(r.Context()) != authcontext.Anonymous
}

// AuthenticatedOnly requires a user-kind session.
func (h *Handler) AuthenticatedOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthenticated(r) {
			writeErrorBody(w, http.StatusUnauthorized, "unauthorized", "authentication required")

			return
		}

		next.ServeHTTP(w, r)
	})
}

// AdminOnly requires an admin-kind session.
func (h *Handler) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authcontext.IsAdmin(r.Context()) {
			writeErrorBody(w, http.StatusForbidden, "forbidden", "administrator access required")

			return
		}

		next.ServeHTTP(w, r)
	})
}
