package authcontext

import "context"

// Anonymous is the subject of requests that carry no session.
const Anonymous = "system:anonymous"

type contextKeySessionID struct{}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKeySessionID{}, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(contextKeySessionID{}).(string)
	if !ok {
		return "", false
	}

	return sessionID, true
}

type contextKeySubject struct{}

// WithSubject binds an OAuth account id as the request subject.
func WithSubject(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, contextKeySubject{}, accountID)
}

func GetSubject(ctx context.Context) string {
	accountID, ok := ctx.Value(contextKeySubject{}).(string)
	if !ok {
		return Anonymous
	}

	return accountID
}

type contextKeyAdmin struct{}

// WithAdmin binds an administrator id to the request. Admin sessions and
// OAuth sessions are distinct actor kinds and never share a subject.
func WithAdmin(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, contextKeyAdmin{}, adminID)
}

func AdminID(ctx context.Context) string {
	adminID, ok := ctx.Value(contextKeyAdmin{}).(string)
	if !ok {
		return ""
	}

	return adminID
}

func IsAdmin(ctx context.Context) bool {
	return AdminID(ctx) != ""
}
