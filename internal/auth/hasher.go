package auth

import (
	"github.com/nfrund/sparx/internal/domain"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns plaintext passwords into salted one-way hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher is the bcrypt implementation of PasswordHasher.
type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher returns a hasher using the given cost, or bcrypt.DefaultCost
// when cost is zero.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", oops.In("auth").Code(domain.CodeInvalidInput).
			Public("Password is required").
			Wrap(domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if err == bcrypt.ErrPasswordTooLong {
			return "", oops.In("auth").Code(domain.CodeInvalidInput).
				Public("Password is too long").
				Wrap(domain.ErrInvalidInput)
		}
		return "", oops.In("auth").Code(domain.CodeInternal).Wrapf(err, "failed to hash password")
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
