package auth

import (
	"context"

	authcontext "github.com/harupress/harupress/auth/context"
)

// Author identifies who is writing a comment or guestbook entry within a
// single request. It is never persisted; the persisted row keeps a flat
// author-kind discriminant instead.
type Author interface {
	isAuthor()
}

// OAuthAuthor is a session-bound OAuth account.
type OAuthAuthor struct {
	UserID string
}

func (OAuthAuthor) isAuthor() {}

// GuestAuthor is an unauthenticated writer identified by name and email,
// with a password used only for later self-service deletion. The password
// is plaintext here and hashed at the persistence boundary.
type GuestAuthor struct {
	Name     string
	Email    string
	Password string
}

func (GuestAuthor) isAuthor() {}

type GuestCredentials struct {
	Name     string
	Email    string
	Password string
}

// ResolveAuthor maps the request's session state to an author. A user-kind
// session wins over supplied guest credentials; a request with neither
// yields nil.
func ResolveAuthor(ctx context.Context, guest *GuestCredentials) Author {
	subject := authcontext.GetSubject(ctx)
	if subject != authcontext.Anonymous {
		return OAuthAuthor{UserID: subject}
	}

	if guest != nil && (guest.Name != "" || guest.Email != "" || guest.Password != "") {
		return GuestAuthor{
			Name:     guest.Name,
			Email:    guest.Email,
			Password: guest.Password,
		}
	}

	return nil
}
