package discuss

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/harupress/harupress/auth"
)

// PostFinder is the post-lookup collaborator: reports whether a post
// exists and is not soft-deleted.
type PostFinder interface {
	PostExists(ctx context.Context, postID string) (exists bool, err error)
}

// AccountInfo is what author enrichment needs to know about an OAuth
// account. FindAccount returns (nil, nil) when no such account exists.
type AccountInfo struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
	Deleted   bool
}

type AccountFinder interface {
	FindAccount(ctx context.Context, accountID string) (account *AccountInfo, err error)
}

// Transactor runs fn inside one database transaction; repository calls made
// with the context it passes share that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error)
}

type Service struct {
	commentRepo   CommentRepository
	postFinder    PostFinder
	accountFinder AccountFinder
	tx            Transactor
	hasher        PasswordHasher
}

func NewService(
	commentRepo CommentRepository,
	postFinder PostFinder,
	accountFinder AccountFinder,
	tx Transactor,
	hasher PasswordHasher,
) *Service {
	return &Service{
		commentRepo:   commentRepo,
		postFinder:    postFinder,
		accountFinder: accountFinder,
		tx:            tx,
		hasher:        hasher,
	}
}

type AuthorInfo struct {
	Type      AuthorType `json:"type"`
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	AvatarURL string     `json:"avatarUrl,omitempty"`
}

type CommentDetail struct {
	ID          string           `json:"id"`
	PostID      string           `json:"postId"`
	ParentID    *string          `json:"parentId"`
	Depth       int              `json:"depth"`
	ReplyToName *string          `json:"replyToName,omitempty"`
	Body        string           `json:"body"`
	IsSecret    bool             `json:"isSecret"`
	Status      Status           `json:"status"`
	Author      AuthorInfo       `json:"author"`
	Replies     []*CommentDetail `json:"replies"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type CreateCommentRequest struct {
	Body             string
	ParentID         *string
	ReplyToCommentID *string
	IsSecret         bool
}

// CreateComment validates the request against the referenced post, parent
// and reply target, then inserts the comment. All validation reads and the
// insert run inside one transaction, so a concurrent delete of a referenced
// row cannot slip in between.
func (svc *Service) CreateComment(
	ctx context.Context,
	postID string,
	req CreateCommentRequest,
	author auth.Author,
) (*CommentDetail, error) {
	if req.Body == "" {
		return nil, &EmptyBodyError{}
	}

	if author == nil {
		return nil, &MissingAuthorError{}
	}

	var detail *CommentDetail

	err := svc.tx.InTransaction(ctx, func(ctx context.Context) error {
		exists, err := svc.postFinder.PostExists(ctx, postID)
		if err != nil {
			return fmt.Errorf("failed to look up post: %w", err)
		}

		if !exists {
			return &PostNotFoundError{PostID: postID}
		}

		depth := 0

		if req.ParentID != nil {
			parent, err := svc.findActiveComment(ctx, *req.ParentID)
			if err != nil {
				return err
			}

			if parent.PostID != postID {
				return &CrossPostReferenceError{CommentID: parent.ID, PostID: postID}
			}

			if parent.Depth != 0 {
				return &ReplyDepthError{ParentID: parent.ID}
			}

			depth = parent.Depth + 1
		}

		var replyToName *string

		if req.ReplyToCommentID != nil {
			target, err := svc.findActiveComment(ctx, *req.ReplyToCommentID)
			if err != nil {
				return err
			}

			if target.PostID != postID {
				return &CrossPostReferenceError{CommentID: target.ID, PostID: postID}
			}

			name := svc.resolveDisplayName(ctx, target.Authorship)
			replyToName = &name
		}

		authorship, err := svc.encodeAuthor(ctx, author)
		if err != nil {
			return err
		}

		timeNow := time.Now()

		comment := &Comment{
			ID:               uuid.NewString(),
			PostID:           postID,
			ParentID:         req.ParentID,
			Depth:            depth,
			ReplyToCommentID: req.ReplyToCommentID,
			ReplyToName:      replyToName,
			Authorship:       authorship,
			Body:             req.Body,
			IsSecret:         req.IsSecret,
			Status:           StatusActive,
			CreatedAt:        timeNow,
			UpdatedAt:        timeNow,
		}

		err = svc.commentRepo.Insert(ctx, comment)
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}

		inserted, err := svc.commentRepo.Find(ctx, comment.ID)
		if err != nil {
			return fmt.Errorf("comment missing after insert: %w", err)
		}

		detail = svc.toDetail(ctx, inserted, nil)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

func (svc *Service) findActiveComment(ctx context.Context, id string) (*Comment, error) {
	comment, err := svc.commentRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if comment.Status != StatusActive || comment.DeletedAt != nil {
		return nil, &CommentNotFoundError{ID: id}
	}

	return comment, nil
}

// ListComments returns the post's active comments as a tree, chronologically
// ordered within each level, with secret bodies masked for the viewer.
func (svc *Service) ListComments(ctx context.Context, postID string, viewer Viewer) ([]*CommentDetail, error) {
	comments, err := svc.commentRepo.ListActiveByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	accounts := make(map[string]AuthorInfo)
	details := make([]*CommentDetail, 0, len(comments))

	for _, comment := range comments {
		comment = MaskSecretContent(comment, viewer)
		details = append(details, svc.toDetail(ctx, comment, accounts))
	}

	roots := BuildHierarchy(
		details,
		func(d *CommentDetail) string { return d.ID },
		func(d *CommentDetail) *string { return d.ParentID },
		func(parent, child *CommentDetail) { parent.Replies = append(parent.Replies, child) },
	)

	return roots, nil
}

func (svc *Service) CountComments(ctx context.Context, postID string) (int, error) {
	count, err := svc.commentRepo.CountActiveByPost(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}

// DeleteComment soft-deletes the comment once the delete-authorization gate
// permits it. The row is retained so replies keep a valid parent.
func (svc *Service) DeleteComment(ctx context.Context, id string, author auth.Author, isAdmin bool) error {
	comment, err := svc.findActiveComment(ctx, id)
	if err != nil {
		return err
	}

	err = VerifyDeletePermission(ctx, svc.hasher, comment.Authorship, author, isAdmin)
	if err != nil {
		return err
	}

	err = svc.commentRepo.SoftDelete(ctx, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to soft-delete comment: %w", err)
	}

	return nil
}

func (svc *Service) encodeAuthor(ctx context.Context, author auth.Author) (Authorship, error) {
	switch a := author.(type) {
	case auth.OAuthAuthor:
		return Authorship{
			AuthorType:     AuthorTypeOAuth,
			OAuthAccountID: &a.UserID,
		}, nil
	case auth.GuestAuthor:
		if a.Name == "" {
			return Authorship{}, &InvalidGuestCredentialsError{Reason: "name is required"}
		}

		if a.Password == "" {
			return Authorship{}, &InvalidGuestCredentialsError{Reason: "password is required"}
		}

		passwordHash, err := svc.hasher.Hash(ctx, a.Password)
		if err != nil {
			return Authorship{}, fmt.Errorf("failed to hash guest password: %w", err)
		}

		name, email := a.Name, a.Email

		return Authorship{
			AuthorType:        AuthorTypeGuest,
			GuestName:         &name,
			GuestEmail:        &email,
			GuestPasswordHash: &passwordHash,
		}, nil
	default:
		return Authorship{}, &MissingAuthorError{}
	}
}

// resolveDisplayName snapshots the display name of a reply target's author
// at creation time. The snapshot is never refreshed: a later rename keeps
// old replies showing the name they addressed.
func (svc *Service) resolveDisplayName(ctx context.Context, authorship Authorship) string {
	switch authorship.AuthorType {
	case AuthorTypeOAuth:
		if authorship.OAuthAccountID == nil {
			return "Unknown"
		}

		account, err := svc.accountFinder.FindAccount(ctx, *authorship.OAuthAccountID)
		if err != nil {
			slog.WarnContext(ctx, "failed to resolve reply target account", "accountId", *authorship.OAuthAccountID, "error", err)

			return "Unknown"
		}

		if account == nil {
			return "Unknown"
		}

		return account.Name
	case AuthorTypeGuest:
		if authorship.GuestName == nil || *authorship.GuestName == "" {
			return "Anonymous"
		}

		return *authorship.GuestName
	default:
		return "Unknown"
	}
}

// AuthorDisplayInfo enriches a persisted authorship with display fields. A
// missing or soft-deleted OAuth account is always presented as "Deleted
// User" with id and avatar omitted, regardless of viewer.
func AuthorDisplayInfo(ctx context.Context, finder AccountFinder, authorship Authorship) AuthorInfo {
	switch authorship.AuthorType {
	case AuthorTypeGuest:
		info := AuthorInfo{Type: AuthorTypeGuest, Name: "Anonymous"}

		if authorship.GuestName != nil && *authorship.GuestName != "" {
			info.Name = *authorship.GuestName
		}

		if authorship.GuestEmail != nil {
			info.Email = *authorship.GuestEmail
		}

		return info
	case AuthorTypeOAuth:
		deleted := AuthorInfo{Type: AuthorTypeOAuth, Name: "Deleted User"}

		if authorship.OAuthAccountID == nil {
			return deleted
		}

		account, err := finder.FindAccount(ctx, *authorship.OAuthAccountID)
		if err != nil {
			slog.WarnContext(ctx, "failed to enrich author", "accountId", *authorship.OAuthAccountID, "error", err)

			return deleted
		}

		if account == nil || account.Deleted {
			return deleted
		}

		return AuthorInfo{
			Type:      AuthorTypeOAuth,
			ID:        account.ID,
			Name:      account.Name,
			Email:     account.Email,
			AvatarURL: account.AvatarURL,
		}
	default:
		return AuthorInfo{Type: authorship.AuthorType, Name: "Unknown"}
	}
}

func (svc *Service) toDetail(ctx context.Context, comment *Comment, accounts map[string]AuthorInfo) *CommentDetail {
	var authorInfo AuthorInfo

	if accounts != nil && comment.AuthorType == AuthorTypeOAuth && comment.OAuthAccountID != nil {
		cached, ok := accounts[*comment.OAuthAccountID]
		if !ok {
			cached = AuthorDisplayInfo(ctx, svc.accountFinder, comment.Authorship)
			accounts[*comment.OAuthAccountID] = cached
		}

		authorInfo = cached
	} else {
		authorInfo = AuthorDisplayInfo(ctx, svc.accountFinder, comment.Authorship)
	}

	return &CommentDetail{
		ID:          comment.ID,
		PostID:      comment.PostID,
		ParentID:    comment.ParentID,
		Depth:       comment.Depth,
		ReplyToName: comment.ReplyToName,
		Body:        comment.Body,
		IsSecret:    comment.IsSecret,
		Status:      comment.Status,
		Author:      authorInfo,
		Replies:     []*CommentDetail{},
		CreatedAt:   comment.CreatedAt,
		UpdatedAt:   comment.UpdatedAt,
	}
}
