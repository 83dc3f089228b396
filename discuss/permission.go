package discuss

import (
	"context"

	"github.com/harupress/harupress/auth"
)

// PasswordHasher is the password primitive this package consumes. Verify
// must treat a malformed stored hash as a mismatch, never an error.
type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (hash string, err error)
	Verify(ctx context.Context, hash, plain string) (ok bool)
}

// VerifyDeletePermission decides whether a delete may proceed. Admins are
// always permitted. An OAuth caller may delete only items they authored; a
// guest caller must present the password the item was written with. An
// anonymous, non-admin caller is never permitted.
func VerifyDeletePermission(
	ctx context.Context,
	hasher PasswordHasher,
	item Authorship,
	author auth.Author,
	isAdmin bool,
) error {
	if isAdmin {
		return nil
	}

	if author == nil {
		return &ForbiddenError{Reason: "insufficient permissions"}
	}

	switch a := author.(type) {
	case auth.OAuthAuthor:
		if item.AuthorType == AuthorTypeOAuth &&
			item.OAuthAccountID != nil &&
			*item.OAuthAccountID == a.UserID {
			return nil
		}

		return &ForbiddenError{Reason: "you can only delete your own items"}
	case auth.GuestAuthor:
		if item.AuthorType != AuthorTypeGuest || item.GuestPasswordHash == nil {
			return &ForbiddenError{Reason: "not written by a guest"}
		}

		if !hasher.Verify(ctx, *item.GuestPasswordHash, a.Password) {
			return &ForbiddenError{Reason: "incorrect password"}
		}

		return nil
	default:
		return &ForbiddenError{Reason: "insufficient permissions"}
	}
}
