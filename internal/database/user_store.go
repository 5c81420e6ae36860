package database

import (
	"context"
	"errors"
	"time"

	"github.com/nfrund/sparx/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// var _ ensures that UserStore implements the domain.UserRepository interface at compile time.
var _ domain.UserRepository = (*UserStore)(nil)

// UserStore persists users in the user table. Uniqueness of email is enforced
// by the user_email index.
type UserStore struct {
	client Client[domain.User]
	now    func() time.Time
}

// NewUserStore creates a new UserStore with the given database client.
func NewUserStore(client Client[domain.User]) *UserStore {
	return &UserStore{client: client, now: time.Now}
}

// Create inserts a new user record under a freshly generated key.
func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, NewDBError(domain.ErrInvalidInput, "user to create cannot be nil")
	}

	now := &surrealmodels.CustomDateTime{Time: s.now().UTC()}
	createdAt := user.CreatedAt
	if createdAt == nil {
		createdAt = now
	}

	data := map[string]any{
		"name":       user.Name,
		"email":      user.Email,
		"password":   user.Password,
		"photo":      user.Photo,
		"phone":      user.Phone,
		"bio":        user.Bio,
		"created_at": createdAt,
		"updated_at": now,
	}

	created, err := s.client.Create(ctx, domain.NewRecordID(domain.UserTable, domain.NewKey()), data)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, NewDBError(errors.Join(domain.ErrUserAlreadyExists, err), "failed to create user")
		}
		return nil, NewDBError(err, "failed to create user")
	}
	if created == nil {
		return nil, NewDBError(ErrQueryFailed, "create returned no record")
	}
	return created, nil
}

// FindByID retrieves a user by record key.
func (s *UserStore) FindByID(ctx context.Context, key string) (*domain.User, error) {
	if key == "" {
		return nil, NewDBError(domain.ErrNotFound, "user not found")
	}
	user, err := s.client.Select(ctx, domain.NewRecordID(domain.UserTable, key))
	if err != nil {
		return nil, NewDBError(err, "failed to select user")
	}
	if user == nil {
		return nil, NewDBError(domain.ErrNotFound, "user not found")
	}
	return user, nil
}

// FindByEmail retrieves a user by exact email address.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := "SELECT * FROM user WHERE email = $email"
	user, err := s.client.QueryOne(ctx, query, map[string]any{"email": email})
	if err != nil {
		return nil, NewDBError(err, "failed to query user by email")
	}
	if user == nil {
		return nil, NewDBError(domain.ErrNotFound, "user not found")
	}
	return user, nil
}

// Update writes the mutable fields of the user. Email and created_at are
// never changed.
func (s *UserStore) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.ID == nil {
		return nil, NewDBError(domain.ErrInvalidInput, "user ID is required for update")
	}

	data := map[string]any{
		"name":       user.Name,
		"password":   user.Password,
		"photo":      user.Photo,
		"phone":      user.Phone,
		"bio":        user.Bio,
		"updated_at": &surrealmodels.CustomDateTime{Time: s.now().UTC()},
	}

	updated, err := s.client.Merge(ctx, user.ID, data)
	if err != nil {
		return nil, NewDBError(err, "failed to update user")
	}
	if updated == nil {
		return nil, NewDBError(domain.ErrNotFound, "user not found")
	}
	return updated, nil
}
