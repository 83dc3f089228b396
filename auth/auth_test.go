package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/harupress/harupress/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAccountRepo struct {
	accounts map[string]*auth.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*auth.Account)}
}

func (repo *fakeAccountRepo) Insert(_ context.Context, account *auth.Account) error {
	clone := *account
	repo.accounts[account.ID] = &clone

	return nil
}

func (repo *fakeAccountRepo) Find(_ context.Context, accountID string) (*auth.Account, error) {
	account, ok := repo.accounts[accountID]
	if !ok {
		return nil, &auth.AccountNotFoundError{ID: accountID}
	}

	clone := *account

	return &clone, nil
}

func (repo *fakeAccountRepo) FindByProvider(_ context.Context, provider auth.Provider, providerUserID string) (*auth.Account, error) {
	for _, account := range repo.accounts {
		if account.Provider == provider && account.ProviderUserID == providerUserID {
			clone := *account

			return &clone, nil
		}
	}

	return nil, &auth.AccountNotFoundError{ID: providerUserID}
}

func (repo *fakeAccountRepo) Update(_ context.Context, account *auth.Account) error {
	if _, ok := repo.accounts[account.ID]; !ok {
		return &auth.AccountNotFoundError{ID: account.ID}
	}

	clone := *account
	repo.accounts[account.ID] = &clone

	return nil
}

type fakeAdminRepo struct {
	admins map[string]*auth.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]*auth.Admin)}
}

func (repo *fakeAdminRepo) Insert(_ context.Context, admin *auth.Admin) error {
	clone := *admin
	repo.admins[admin.ID] = &clone

	return nil
}

func (repo *fakeAdminRepo) Find(_ context.Context, adminID string) (*auth.Admin, error) {
	admin, ok := repo.admins[adminID]
	if !ok {
		return nil, &auth.AdminNotFoundError{ID: adminID}
	}

	clone := *admin

	return &clone, nil
}

func (repo *fakeAdminRepo) FindByUsername(_ context.Context, username string) (*auth.Admin, error) {
	for _, admin := range repo.admins {
		if admin.Username == username {
			clone := *admin

			return &clone, nil
		}
	}

	return nil, &auth.AdminByUsernameNotFoundError{Username: username}
}

func (repo *fakeAdminRepo) Count(_ context.Context) (int, error) {
	return len(repo.admins), nil
}

type fakeSessionRepo struct {
	sessions map[string]*auth.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*auth.Session)}
}

func (repo *fakeSessionRepo) Insert(_ context.Context, session *auth.Session) error {
	clone := *session
	repo.sessions[session.ID] = &clone

	return nil
}

func (repo *fakeSessionRepo) Find(_ context.Context, id string) (*auth.Session, error) {
	session, ok := repo.sessions[id]
	if !ok {
		return nil, &auth.SessionNotFoundError{ID: id}
	}

	clone := *session

	return &clone, nil
}

func (repo *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(repo.sessions, id)

	return nil
}

func newAuthService() (*auth.Service, *fakeAccountRepo, *fakeAdminRepo, *fakeSessionRepo) {
	accountRepo := newFakeAccountRepo()
	adminRepo := newFakeAdminRepo()
	sessionRepo := newFakeSessionRepo()

	svc := auth.NewService(accountRepo, adminRepo, sessionRepo, auth.BcryptHasher{Cost: bcrypt.MinCost})

	return svc, accountRepo, adminRepo, sessionRepo
}

func TestSignInWithOAuth(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	profile := auth.OAuthProfile{
		Provider:       auth.ProviderGitHub,
		ProviderUserID: "gh-123",
		Name:           "Haru",
		Email:          "haru@example.com",
	}

	t.Run("first sign-in creates the account", func(t *testing.T) {
		t.Parallel()

		svc, _, _, _ := newAuthService()

		session, account, err := svc.SignInWithOAuth(ctx, profile)
		require.NoError(t, err)

		assert.Equal(t, auth.SessionKindUser, session.Kind)
		assert.Equal(t, account.ID, session.SubjectID)
		assert.Equal(t, "Haru", account.Name)
	})

	t.Run("repeat sign-in reuses the account and refreshes the profile", func(t *testing.T) {
		t.Parallel()

		svc, _, _, _ := newAuthService()

		_, first, err := svc.SignInWithOAuth(ctx, profile)
		require.NoError(t, err)

		renamed := profile
		renamed.Name = "Haru Renamed"

		_, second, err := svc.SignInWithOAuth(ctx, renamed)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Haru Renamed", second.Name)
	})

	t.Run("disabled account cannot sign in", func(t *testing.T) {
		t.Parallel()

		svc, accountRepo, _, _ := newAuthService()

		_, account, err := svc.SignInWithOAuth(ctx, profile)
		require.NoError(t, err)

		now := time.Now()
		accountRepo.accounts[account.ID].DeletedAt = &now

		_, _, err = svc.SignInWithOAuth(ctx, profile)

		disabledErr := &auth.AccountDisabledError{}
		require.ErrorAs(t, err, &disabledErr)
	})

	t.Run("unknown provider is rejected", func(t *testing.T) {
		t.Parallel()

		svc, _, _, _ := newAuthService()

		bad := profile
		bad.Provider = "myspace"

		_, _, err := svc.SignInWithOAuth(ctx, bad)

		unknownProviderErr := &auth.UnknownProviderError{}
		require.ErrorAs(t, err, &unknownProviderErr)
	})
}

func TestLoginAdmin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("bootstrap then login", func(t *testing.T) {
		t.Parallel()

		svc, _, _, _ := newAuthService()

		err := svc.EnsureBootstrapAdmin(ctx, "root", "hunter2")
		require.NoError(t, err)

		session, err := svc.LoginAdmin(ctx, "root", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, auth.SessionKindAdmin, session.Kind)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		t.Parallel()

		svc, _, _, _ := newAuthService()

		err := svc.EnsureBootstrapAdmin(ctx, "root", "hunter2")
		require.NoError(t, err)

		_, err = svc.LoginAdmin(ctx, "root", "wrong")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)

		_, err = svc.LoginAdmin(ctx, "nobody", "hunter2")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("bootstrap is a no-op when an admin exists", func(t *testing.T) {
		t.Parallel()

		svc, _, adminRepo, _ := newAuthService()

		err := svc.EnsureBootstrapAdmin(ctx, "root", "hunter2")
		require.NoError(t, err)

		err = svc.EnsureBootstrapAdmin(ctx, "other", "pw")
		require.NoError(t, err)

		count, err := adminRepo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestGetSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("expired session is reported as expired", func(t *testing.T) {
		t.Parallel()

		svc, _, _, sessionRepo := newAuthService()

		session := &auth.Session{
			ID:        "s1",
			Kind:      auth.SessionKindUser,
			SubjectID: "account-1",
			CreatedAt: time.Now().Add(-48 * time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		}
		require.NoError(t, sessionRepo.Insert(ctx, session))

		_, err := svc.GetSession(ctx, "s1")

		expiredErr := &auth.SessionExpiredError{}
		require.ErrorAs(t, err, &expiredErr)
	})

	t.Run("logout removes the session", func(t *testing.T) {
		t.Parallel()

		svc, _, _, _ := newAuthService()

		err := svc.EnsureBootstrapAdmin(ctx, "root", "hunter2")
		require.NoError(t, err)

		session, err := svc.LoginAdmin(ctx, "root", "hunter2")
		require.NoError(t, err)

		err = svc.Logout(ctx, session.ID)
		require.NoError(t, err)

		_, err = svc.GetSession(ctx, session.ID)

		notFoundErr := &auth.SessionNotFoundError{}
		require.ErrorAs(t, err, &notFoundErr)
	})
}
