package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes and verifies passwords with bcrypt. The zero value
// uses the default cost; tests lower it.
type BcryptHasher struct {
	Cost int
}

func (hasher BcryptHasher) cost() int {
	if hasher.Cost == 0 {
		return bcrypt.DefaultCost
	}

	return hasher.Cost
}

func (hasher BcryptHasher) Hash(_ context.Context, plain string) (string, error) {
	bcryptHash, err := bcrypt.GenerateFromPassword([]byte(plain), hasher.cost())
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(bcryptHash), nil
}

// Verify reports whether plain matches hash. A malformed stored hash counts
// as a mismatch, never an error: data corruption must deny, not crash.
func (hasher BcryptHasher) Verify(_ context.Context, hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
