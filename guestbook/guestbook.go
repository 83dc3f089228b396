package guestbook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harupress/harupress/auth"
	"github.com/harupress/harupress/discuss"
	"golang.org/x/sync/errgroup"
)

// SecretEntryPlaceholder replaces the body of a secret entry for viewers
// who may not read it.
const SecretEntryPlaceholder = "This entry is secret."

const (
	defaultPageLimit = 20
	maxPageLimit     = 50
)

type Service struct {
	entryRepo     EntryRepository
	accountFinder discuss.AccountFinder
	tx            discuss.Transactor
	hasher        discuss.PasswordHasher
}

func NewService(
	entryRepo EntryRepository,
	accountFinder discuss.AccountFinder,
	tx discuss.Transactor,
	hasher discuss.PasswordHasher,
) *Service {
	return &Service{
		entryRepo:     entryRepo,
		accountFinder: accountFinder,
		tx:            tx,
		hasher:        hasher,
	}
}

type EntryDetail struct {
	ID        string             `json:"id"`
	ParentID  *string            `json:"parentId"`
	Body      string             `json:"body"`
	IsSecret  bool               `json:"isSecret"`
	Status    discuss.Status     `json:"status"`
	Author    discuss.AuthorInfo `json:"author"`
	Replies   []*EntryDetail     `json:"replies"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type EntryPage struct {
	Data []*EntryDetail `json:"data"`
	Meta PageMeta       `json:"meta"`
}

type CreateEntryRequest struct {
	Body     string
	ParentID *string
	IsSecret bool
}

// CreateEntry validates the optional parent and inserts the entry inside
// one transaction. Entries carry no depth column, so a reply to a reply is
// accepted; only the parent's existence is checked.
func (svc *Service) CreateEntry(ctx context.Context, req CreateEntryRequest, author auth.Author) (*EntryDetail, error) {
	if req.Body == "" {
		return nil, &discuss.EmptyBodyError{}
	}

	if author == nil {
		return nil, &discuss.MissingAuthorError{}
	}

	var detail *EntryDetail

	err := svc.tx.InTransaction(ctx, func(ctx context.Context) error {
		if req.ParentID != nil {
			_, err := svc.findActiveEntry(ctx, *req.ParentID)
			if err != nil {
				return err
			}
		}

		authorship, err := svc.encodeAuthor(ctx, author)
		if err != nil {
			return err
		}

		timeNow := time.Now()

		entry := &Entry{
			ID:         uuid.NewString(),
			ParentID:   req.ParentID,
			Authorship: authorship,
			Body:       req.Body,
			IsSecret:   req.IsSecret,
			Status:     discuss.StatusActive,
			CreatedAt:  timeNow,
			UpdatedAt:  timeNow,
		}

		err = svc.entryRepo.Insert(ctx, entry)
		if err != nil {
			return fmt.Errorf("failed to insert guestbook entry: %w", err)
		}

		inserted, err := svc.entryRepo.Find(ctx, entry.ID)
		if err != nil {
			return fmt.Errorf("guestbook entry missing after insert: %w", err)
		}

		detail = svc.toDetail(ctx, inserted, nil)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// ListEntries returns one page of active entries as a tree, oldest first.
// The page rows and the total count are fetched concurrently. A reply whose
// parent falls outside the page is listed beside the roots rather than
// dropped.
func (svc *Service) ListEntries(ctx context.Context, page, limit int, viewer discuss.Viewer) (*EntryPage, error) {
	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = defaultPageLimit
	}

	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	offset := (page - 1) * limit

	var (
		entries []*Entry
		total   int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		entries, err = svc.entryRepo.ListActivePage(gctx, offset, limit)
		if err != nil {
			return fmt.Errorf("failed to list guestbook entries: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		var err error

		total, err = svc.entryRepo.CountActive(gctx)
		if err != nil {
			return fmt.Errorf("failed to count guestbook entries: %w", err)
		}

		return nil
	})

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	accounts := make(map[string]discuss.AuthorInfo)
	details := make([]*EntryDetail, 0, len(entries))

	for _, entry := range entries {
		entry = maskSecretContent(entry, viewer)
		details = append(details, svc.toDetail(ctx, entry, accounts))
	}

	roots := discuss.BuildHierarchy(
		details,
		func(d *EntryDetail) string { return d.ID },
		func(d *EntryDetail) *string { return d.ParentID },
		func(parent, child *EntryDetail) { parent.Replies = append(parent.Replies, child) },
	)

	totalPages := (total + limit - 1) / limit

	return &EntryPage{
		Data: roots,
		Meta: PageMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// DeleteEntry soft-deletes the entry once the shared delete-authorization
// gate permits it.
func (svc *Service) DeleteEntry(ctx context.Context, id string, author auth.Author, isAdmin bool) error {
	entry, err := svc.findActiveEntry(ctx, id)
	if err != nil {
		return err
	}

	err = discuss.VerifyDeletePermission(ctx, svc.hasher, entry.Authorship, author, isAdmin)
	if err != nil {
		return err
	}

	err = svc.entryRepo.SoftDelete(ctx, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to soft-delete guestbook entry: %w", err)
	}

	return nil
}

func (svc *Service) findActiveEntry(ctx context.Context, id string) (*Entry, error) {
	entry, err := svc.entryRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if entry.Status != discuss.StatusActive || entry.DeletedAt != nil {
		return nil, &EntryNotFoundError{ID: id}
	}

	return entry, nil
}

func (svc *Service) encodeAuthor(ctx context.Context, author auth.Author) (discuss.Authorship, error) {
	switch a := author.(type) {
	case auth.OAuthAuthor:
		return discuss.Authorship{
			AuthorType:     discuss.AuthorTypeOAuth,
			OAuthAccountID: &a.UserID,
		}, nil
	case auth.GuestAuthor:
		if a.Name == "" {
			return discuss.Authorship{}, &discuss.InvalidGuestCredentialsError{Reason: "name is required"}
		}

		if a.Password == "" {
			return discuss.Authorship{}, &discuss.InvalidGuestCredentialsError{Reason: "password is required"}
		}

		passwordHash, err := svc.hasher.Hash(ctx, a.Password)
		if err != nil {
			return discuss.Authorship{}, fmt.Errorf("failed to hash guest password: %w", err)
		}

		name, email := a.Name, a.Email

		return discuss.Authorship{
			AuthorType:        discuss.AuthorTypeGuest,
			GuestName:         &name,
			GuestEmail:        &email,
			GuestPasswordHash: &passwordHash,
		}, nil
	default:
		return discuss.Authorship{}, &discuss.MissingAuthorError{}
	}
}

func maskSecretContent(entry *Entry, viewer discuss.Viewer) *Entry {
	if !entry.IsSecret {
		return entry
	}

	if discuss.SecretVisible(entry.Authorship, viewer) {
		return entry
	}

	masked := *entry
	masked.Body = SecretEntryPlaceholder

	return &masked
}

func (svc *Service) toDetail(ctx context.Context, entry *Entry, accounts map[string]discuss.AuthorInfo) *EntryDetail {
	var authorInfo discuss.AuthorInfo

	if accounts != nil && entry.AuthorType == discuss.AuthorTypeOAuth && entry.OAuthAccountID != nil {
		cached, ok := accounts[*entry.OAuthAccountID]
		if !ok {
			cached = discuss.AuthorDisplayInfo(ctx, svc.accountFinder, entry.Authorship)
			accounts[*entry.OAuthAccountID] = cached
		}

		authorInfo = cached
	} else {
		authorInfo = discuss.AuthorDisplayInfo(ctx, svc.accountFinder, entry.Authorship)
	}

	return &EntryDetail{
		ID:        entry.ID,
		ParentID:  entry.ParentID,
		Body:      entry.Body,
		IsSecret:  entry.IsSecret,
		Status:    entry.Status,
		Author:    authorInfo,
		Replies:   []*EntryDetail{},
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}
