package database

import (
	"context"
	"time"

	"github.com/nfrund/sparx/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

var _ domain.ResetTokenRepository = (*ResetTokenStore)(nil)

// ResetTokenStore keeps one reset token per user. The record key of a token
// is the key of its user, so storing a new token overwrites the old one.
type ResetTokenStore struct {
	client Client[domain.ResetToken]
}

// NewResetTokenStore creates a new ResetTokenStore.
func NewResetTokenStore(client Client[domain.ResetToken]) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

func tokenRecordID(userID *surrealmodels.RecordID) *surrealmodels.RecordID {
	return domain.NewRecordID(domain.ResetTokenTable, domain.RecordKey(userID))
}

// Replace stores the token, superseding the user's previous token.
func (s *ResetTokenStore) Replace(ctx context.Context, token *domain.ResetToken) error {
	if token == nil || token.UserID == nil {
		return NewDBError(domain.ErrInvalidInput, "reset token requires a user")
	}

	data := map[string]any{
		"user_id":    token.UserID,
		"token_hash": token.TokenHash,
		"created_at": token.CreatedAt,
		"expires_at": token.ExpiresAt,
	}
	query := "UPSERT $id CONTENT $data"
	if _, err := s.client.Write(ctx, query, map[string]any{"id": tokenRecordID(token.UserID), "data": data}); err != nil {
		return NewDBError(err, "failed to store reset token")
	}
	return nil
}

// FindValid returns the token with the given hash that has not expired at now.
func (s *ResetTokenStore) FindValid(ctx context.Context, tokenHash string, now time.Time) (*domain.ResetToken, error) {
	query := "SELECT * FROM reset_token WHERE token_hash = $hash AND expires_at > $now"
	params := map[string]any{
		"hash": tokenHash,
		"now":  &surrealmodels.CustomDateTime{Time: now.UTC()},
	}

	token, err := s.client.QueryOne(ctx, query, params)
	if err != nil {
		return nil, NewDBError(err, "failed to look up reset token")
	}
	// Expiry is exclusive.
	if token == nil || !token.UsableAt(now) {
		return nil, NewDBError(domain.ErrNotFound, "reset token not found")
	}
	return token, nil
}

// DeleteByUser removes the user's token if any.
func (s *ResetTokenStore) DeleteByUser(ctx context.Context, userID *surrealmodels.RecordID) error {
	if userID == nil {
		return nil
	}
	if _, err := s.client.Delete(ctx, tokenRecordID(userID)); err != nil {
		return NewDBError(err, "failed to delete reset token")
	}
	return nil
}
