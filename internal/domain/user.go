package domain

import (
	"context"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Profile defaults applied when a user registers.
const (
	DefaultPhoto = "https://i.ibb.co/4pDNDk1/avatar.png"
	DefaultPhone = "+598"
	DefaultBio   = "bio"

	MinPasswordLength = 6
	MaxBioLength      = 250
)

// UserTable is the SurrealDB table holding user records.
const UserTable = "user"

// User represents the core user model in the application domain.
// Password always holds a bcrypt hash once the record has been written.
type User struct {
	ID        *surrealmodels.RecordID       `json:"id,omitempty"`
	Name      string                        `json:"name" validate:"required"`
	Email     string                        `json:"email" validate:"required,email"`
	Password  string                        `json:"password,omitempty" validate:"required"`
	Photo     string                        `json:"photo"`
	Phone     string                        `json:"phone"`
	Bio       string                        `json:"bio" validate:"max=250"`
	CreatedAt *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
	UpdatedAt *surrealmodels.CustomDateTime `json:"updated_at,omitempty"`
}

// NewUser builds a user with the profile defaults applied. The password must
// already be hashed.
func NewUser(name, email, passwordHash string, now time.Time) *User {
	return &User{
		Name:      name,
		Email:     email,
		Password:  passwordHash,
		Photo:     DefaultPhoto,
		Phone:     DefaultPhone,
		Bio:       DefaultBio,
		CreatedAt: &surrealmodels.CustomDateTime{Time: now},
		UpdatedAt: &surrealmodels.CustomDateTime{Time: now},
	}
}

// Key returns the record key of the user, or "" when the user is unsaved.
func (u *User) Key() string {
	return RecordKey(u.ID)
}

// Validate runs the struct tag validations.
func (u *User) Validate() error {
	return validatorInstance.Struct(u)
}

// ProfileUpdate carries optional profile changes. Empty fields keep the
// stored value.
type ProfileUpdate struct {
	Name  string
	Phone string
	Bio   string
	Photo string
}

// Apply merges the non-empty fields of the update into the user.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.Phone != "" {
		u.Phone = p.Phone
	}
	if p.Bio != "" {
		u.Bio = p.Bio
	}
	if p.Photo != "" {
		u.Photo = p.Photo
	}
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	// Create inserts a new user. Returns ErrUserAlreadyExists on a duplicate email.
	Create(ctx context.Context, user *User) (*User, error)
	// FindByID returns ErrNotFound when no user has the given record key.
	FindByID(ctx context.Context, key string) (*User, error)
	// FindByEmail returns ErrNotFound when no user has the given email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Update replaces the mutable fields of an existing user.
	Update(ctx context.Context, user *User) (*User, error)
}
