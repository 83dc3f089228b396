package discuss

// SecretCommentPlaceholder replaces the body of a secret comment for
// viewers who may not read it.
const SecretCommentPlaceholder = "This comment is secret."

// Viewer is whoever is reading a listing: an optional OAuth account id and
// an admin flag. Guests have no session identity, so a guest viewer is the
// zero value.
type Viewer struct {
	UserID  string
	IsAdmin bool
}

// SecretVisible reports whether the viewer may read a secret item's body:
// admins always, the item's own OAuth author, nobody else. Guest-authored
// secret items are unreadable for everyone but admins, since no session
// identity exists that could match a guest.
func SecretVisible(authorship Authorship, viewer Viewer) bool {
	if viewer.IsAdmin {
		return true
	}

	if authorship.AuthorType == AuthorTypeOAuth &&
		authorship.OAuthAccountID != nil &&
		viewer.UserID != "" &&
		*authorship.OAuthAccountID == viewer.UserID {
		return true
	}

	return false
}

// MaskSecretContent returns the comment unchanged when the viewer may read
// it, and a shallow copy with only the body redacted otherwise. Author
// identity, timestamps and ids stay visible.
func MaskSecretContent(comment *Comment, viewer Viewer) *Comment {
	if !comment.IsSecret {
		return comment
	}

	if SecretVisible(comment.Authorship, viewer) {
		return comment
	}

	masked := *comment
	masked.Body = SecretCommentPlaceholder

	return &masked
}
