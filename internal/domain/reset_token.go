package domain

import (
	"context"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// ResetTokenTable is the SurrealDB table holding password reset tokens.
const ResetTokenTable = "reset_token"

// ResetTokenTTL is how long a reset link stays usable.
const ResetTokenTTL = 30 * time.Minute

// ResetToken is the persisted form of a password reset request. Only the
// SHA-256 hash of the raw token is stored.
type ResetToken struct {
	ID        *surrealmodels.RecordID       `json:"id,omitempty"`
	UserID    *surrealmodels.RecordID       `json:"user_id"`
	TokenHash string                        `json:"token_hash"`
	CreatedAt *surrealmodels.CustomDateTime `json:"created_at"`
	ExpiresAt *surrealmodels.CustomDateTime `json:"expires_at"`
}

// NewResetToken builds a token for the user that expires ResetTokenTTL after now.
func NewResetToken(userID *surrealmodels.RecordID, tokenHash string, now time.Time) *ResetToken {
	return &ResetToken{
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: &surrealmodels.CustomDateTime{Time: now},
		ExpiresAt: &surrealmodels.CustomDateTime{Time: now.Add(ResetTokenTTL)},
	}
}

// UsableAt reports whether the token is still valid at t. A token is usable
// only strictly before its expiry.
func (r *ResetToken) UsableAt(t time.Time) bool {
	return r.ExpiresAt != nil && t.Before(r.ExpiresAt.Time)
}

// ResetTokenRepository stores reset tokens. At most one token exists per user.
type ResetTokenRepository interface {
	// Replace stores the token, superseding any previous token of the same user.
	Replace(ctx context.Context, token *ResetToken) error
	// FindValid returns the token with the given hash that is still usable at
	// now, or ErrNotFound.
	FindValid(ctx context.Context, tokenHash string, now time.Time) (*ResetToken, error)
	// DeleteByUser removes the user's token if any.
	DeleteByUser(ctx context.Context, userID *surrealmodels.RecordID) error
}
