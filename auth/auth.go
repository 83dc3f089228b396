package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	accountRepo AccountRepository
	adminRepo   AdminRepository
	sessionRepo SessionRepository
	hasher      BcryptHasher
}

func NewService(
	accountRepo AccountRepository,
	adminRepo AdminRepository,
	sessionRepo SessionRepository,
	hasher BcryptHasher,
) *Service {
	return &Service{
		accountRepo: accountRepo,
		adminRepo:   adminRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
	}
}

var ErrInvalidCredentials = errors.New("invalid credentials")

const defaultSessionDuration = 30 * 24 * time.Hour

// OAuthProfile is what the out-of-module provider callback hands over after
// a successful exchange with Google or GitHub.
type OAuthProfile struct {
	Provider       Provider
	ProviderUserID string
	Name           string
	Email          string
	AvatarURL      string
}

// SignInWithOAuth upserts the account for the given provider identity and
// opens a user-kind session for it.
func (svc *Service) SignInWithOAuth(ctx context.Context, profile OAuthProfile) (*Session, *Account, error) {
	if !profile.Provider.IsValid() {
		return nil, nil, &UnknownProviderError{Provider: profile.Provider}
	}

	if profile.ProviderUserID == "" {
		return nil, nil, ErrInvalidCredentials
	}

	account, err := svc.accountRepo.FindByProvider(ctx, profile.Provider, profile.ProviderUserID)
	if err != nil {
		var accountNotFoundErr *AccountNotFoundError
		if !errors.As(err, &accountNotFoundErr) {
			return nil, nil, fmt.Errorf("failed to find account by provider: %w", err)
		}

		account = &Account{
			ID:             uuid.NewString(),
			Provider:       profile.Provider,
			ProviderUserID: profile.ProviderUserID,
			Name:           profile.Name,
			Email:          profile.Email,
			AvatarURL:      profile.AvatarURL,
			RegisteredAt:   time.Now(),
		}

		err = svc.accountRepo.Insert(ctx, account)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to insert account: %w", err)
		}
	} else {
		if account.DeletedAt != nil {
			return nil, nil, &AccountDisabledError{ID: account.ID}
		}

		account.Name = profile.Name
		account.Email = profile.Email
		account.AvatarURL = profile.AvatarURL

		err = svc.accountRepo.Update(ctx, account)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to update account: %w", err)
		}
	}

	session, err := svc.createSession(ctx, SessionKindUser, account.ID)
	if err != nil {
		return nil, nil, err
	}

	return session, account, nil
}

func (svc *Service) LoginAdmin(ctx context.Context, username, password string) (*Session, error) {
	admin, err := svc.adminRepo.FindByUsername(ctx, username)
	if err != nil {
		var adminNotFoundErr *AdminByUsernameNotFoundError
		if errors.As(err, &adminNotFoundErr) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to find admin by username: %w", err)
	}

	if !svc.hasher.Verify(ctx, admin.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	session, err := svc.createSession(ctx, SessionKindAdmin, admin.ID)
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (svc *Service) createSession(ctx context.Context, kind SessionKind, subjectID string) (*Session, error) {
	timeNow := time.Now()

	session := &Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		SubjectID: subjectID,
		CreatedAt: timeNow,
		ExpiresAt: timeNow.Add(defaultSessionDuration),
	}

	err := svc.sessionRepo.Insert(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (svc *Service) Logout(ctx context.Context, sessionID string) error {
	err := svc.sessionRepo.Delete(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (svc *Service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	session, err := svc.sessionRepo.Find(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if session.ExpiresAt.Before(time.Now()) {
		return nil, &SessionExpiredError{ID: sessionID}
	}

	return session, nil
}

// GetAccount returns the account regardless of its soft-delete state; the
// caller decides how a deleted account is presented.
func (svc *Service) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	account, err := svc.accountRepo.Find(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by id: %w", err)
	}

	return account, nil
}

func (svc *Service) GetAdmin(ctx context.Context, adminID string) (*Admin, error) {
	admin, err := svc.adminRepo.Find(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to find admin by id: %w", err)
	}

	admin.PasswordHash = "" // clear password hash before returning admin

	return admin, nil
}

// EnsureBootstrapAdmin creates the initial administrator when none exists.
func (svc *Service) EnsureBootstrapAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	count, err := svc.adminRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}

	if count > 0 {
		return nil
	}

	passwordHash, err := svc.hasher.Hash(ctx, password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		RegisteredAt: time.Now(),
	}

	err = svc.adminRepo.Insert(ctx, admin)
	if err != nil {
		return fmt.Errorf("failed to insert bootstrap admin: %w", err)
	}

	return nil
}
