package auth

import (
	"context"
	"fmt"
	"time"
)

// Admin is a password-authenticated administrator.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	RegisteredAt time.Time
}

type AdminRepository interface {
	Insert(ctx context.Context, admin *Admin) (err error)
	Find(ctx context.Context, adminID string) (admin *Admin, err error)
	FindByUsername(ctx context.Context, username string) (admin *Admin, err error)
	Count(ctx context.Context) (count int, err error)
}

type AdminNotFoundError struct {
	ID string
}

func (err AdminNotFoundError) Error() string {
	return fmt.Sprintf("admin with id %q not found", err.ID)
}

type AdminByUsernameNotFoundError struct {
	Username string
}

func (err AdminByUsernameNotFoundError) Error() string {
	return fmt.Sprintf("admin with username %q not found", err.Username)
}
