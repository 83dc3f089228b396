package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/harupress/harupress/assets"
	"github.com/harupress/harupress/auth"
	"github.com/harupress/harupress/contents"
	"github.com/harupress/harupress/discuss"
	"github.com/harupress/harupress/guestbook"
	"github.com/harupress/harupress/reactions"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response body", "error", err)
	}
}

func writeErrorBody(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Kind: kind, Message: message}})
}

// writeError maps domain errors to HTTP statuses. Anything unmapped is a
// 500 with a generic message; the real error goes to the log only.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		commentNotFoundErr      *discuss.CommentNotFoundError
		discussPostNotFoundErr  *discuss.PostNotFoundError
		postNotFoundErr         *contents.PostNotFoundError
		postBySlugNotFoundErr   *contents.PostBySlugNotFoundError
		categoryNotFoundErr     *contents.CategoryNotFoundError
		categorySlugNotFoundErr *contents.CategoryBySlugNotFoundError
		entryNotFoundErr        *guestbook.EntryNotFoundError
		assetNotFoundErr        *assets.AssetNotFoundError
		accountNotFoundErr      *auth.AccountNotFoundError
		adminNotFoundErr        *auth.AdminNotFoundError
		forbiddenErr            *discuss.ForbiddenError
		accountDisabledErr      *auth.AccountDisabledError
		emptyBodyErr            *discuss.EmptyBodyError
		replyDepthErr           *discuss.ReplyDepthError
		crossPostReferenceErr   *discuss.CrossPostReferenceError
		invalidGuestCredsErr    *discuss.InvalidGuestCredentialsError
		missingAuthorErr        *discuss.MissingAuthorError
		invalidSlugErr          *contents.InvalidSlugError
		invalidPostErr          *contents.InvalidPostError
		invalidEmojiErr         *reactions.InvalidEmojiError
		invalidTargetTypeErr    *reactions.InvalidTargetTypeError
		assetTooLargeErr        *assets.AssetTooLargeError
		emptyFileNameErr        *assets.EmptyFileNameError
		unknownProviderErr      *auth.UnknownProviderError
		postSlugExistsErr       *contents.PostSlugExistsError
		categorySlugExistsErr   *contents.CategorySlugExistsError
		userReactionNotFoundErr *reactions.UserReactionNotFoundError
	)

	switch {
	case errors.As(err, &commentNotFoundErr),
		errors.As(err, &discussPostNotFoundErr),
		errors.As(err, &postNotFoundErr),
		errors.As(err, &postBySlugNotFoundErr),
		errors.As(err, &categoryNotFoundErr),
		errors.As(err, &categorySlugNotFoundErr),
		errors.As(err, &entryNotFoundErr),
		errors.As(err, &assetNotFoundErr),
		errors.As(err, &accountNotFoundErr),
		errors.As(err, &adminNotFoundErr),
		errors.As(err, &userReactionNotFoundErr):
		writeErrorBody(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &forbiddenErr),
		errors.As(err, &accountDisabledErr):
		writeErrorBody(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.As(err, &postSlugExistsErr),
		errors.As(err, &categorySlugExistsErr):
		writeErrorBody(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorBody(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	case errors.As(err, &emptyBodyErr),
		errors.As(err, &replyDepthErr),
		errors.As(err, &crossPostReferenceErr),
		errors.As(err, &invalidGuestCredsErr),
		errors.As(err, &missingAuthorErr),
		errors.As(err, &invalidSlugErr),
		errors.As(err, &invalidPostErr),
		errors.As(err, &invalidEmojiErr),
		errors.As(err, &invalidTargetTypeErr),
		errors.As(err, &assetTooLargeErr),
		errors.As(err, &emptyFileNameErr),
		errors.As(err, &unknownProviderErr):
		writeErrorBody(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorBody(w, http.StatusInternalServerError, "internal", "internal error occurred")
	}
}

// decodeJSONBodyLenient tolerates an absent or empty body.
func decodeJSONBodyLenient(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil {
		writeErrorBody(w, http.StatusBadRequest, "bad_request", "invalid request body")

		return false
	}

	return true
}
