package auth

import (
	"context"
	"fmt"
	"time"
)

type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

func (provider Provider) IsValid() bool {
	switch provider {
	case ProviderGoogle, ProviderGitHub:
		return true
	default:
		return false
	}
}

// Account is an OAuth-authenticated end user. The provider integration
// itself lives outside this module; accounts are upserted from whatever
// profile the callback wiring hands over.
type Account struct {
	ID             string
	Provider       Provider
	ProviderUserID string
	Name           string
	Email          string
	AvatarURL      string
	RegisteredAt   time.Time
	DeletedAt      *time.Time
}

type AccountRepository interface {
	Insert(ctx context.Context, account *Account) (err error)
	Find(ctx context.Context, accountID string) (account *Account, err error)
	FindByProvider(ctx context.Context, provider Provider, providerUserID string) (account *Account, err error)
	Update(ctx context.Context, account *Account) (err error)
}

type AccountNotFoundError struct {
	ID string
}

func (err AccountNotFoundError) Error() string {
	return fmt.Sprintf("account with id %q not found", err.ID)
}

type UnknownProviderError struct {
	Provider Provider
}

func (err UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown oauth provider %q", err.Provider)
}

type AccountDisabledError struct {
	ID string
}

func (err AccountDisabledError) Error() string {
	return fmt.Sprintf("account with id %q is disabled", err.ID)
}
