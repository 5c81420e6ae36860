package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_AppliesDefaults(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	u := NewUser("Ana", "ana@x.io", "$2a$10$hash", now)

	assert.Equal(t, DefaultPhoto, u.Photo)
	assert.Equal(t, DefaultPhone, u.Phone)
	assert.Equal(t, DefaultBio, u.Bio)
	assert.Equal(t, now, u.CreatedAt.Time)
	assert.Empty(t, u.Key())
	require.NoError(t, u.Validate())
}

func TestUser_Validate(t *testing.T) {
	now := time.Now()

	t.Run("bio too long", func(t *testing.T) {
		u := NewUser("Ana", "ana@x.io", "hash", now)
		u.Bio = strings.Repeat("a", MaxBioLength+1)
		assert.Error(t, u.Validate())
	})

	t.Run("invalid email", func(t *testing.T) {
		u := NewUser("Ana", "not-an-email", "hash", now)
		assert.Error(t, u.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		u := NewUser("", "ana@x.io", "hash", now)
		assert.Error(t, u.Validate())
	})
}

func TestProfileUpdate_Apply(t *testing.T) {
	u := NewUser("Ana", "ana@x.io", "hash", time.Now())

	ProfileUpdate{Name: "Ana B", Bio: ""}.Apply(u)

	assert.Equal(t, "Ana B", u.Name)
	assert.Equal(t, DefaultBio, u.Bio, "empty fields keep the stored value")
	assert.Equal(t, DefaultPhone, u.Phone)
	assert.Equal(t, "ana@x.io", u.Email)
}

func TestResetToken_UsableAt(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := NewResetToken(NewRecordID(UserTable, "u1"), "hash", now)

	assert.True(t, tok.UsableAt(now))
	assert.True(t, tok.UsableAt(now.Add(29*time.Minute)))
	assert.False(t, tok.UsableAt(now.Add(ResetTokenTTL)), "expiry instant is not usable")
	assert.False(t, tok.UsableAt(now.Add(31*time.Minute)))
}

func TestRecordHelpers(t *testing.T) {
	a := NewRecordID(UserTable, "abc")
	b := NewRecordID(UserTable, "abc")
	c := NewRecordID(ProductTable, "abc")

	assert.Equal(t, "abc", RecordKey(a))
	assert.Empty(t, RecordKey(nil))
	assert.True(t, SameRecord(a, b))
	assert.False(t, SameRecord(a, c))
	assert.False(t, SameRecord(a, nil))

	key := NewKey()
	assert.Len(t, key, 32)
	assert.NotContains(t, key, "-")
}

func TestProduct_Validate(t *testing.T) {
	owner := NewRecordID(UserTable, "owner")
	valid := func() *Product {
		return &Product{
			UserID:      owner,
			Name:        "Widget",
			SKU:         "SKU-1",
			Category:    "Tools",
			Quantity:    3,
			Price:       9.5,
			Description: "A widget",
		}
	}

	require.NoError(t, valid().Validate())

	p := valid()
	p.Quantity = -1
	assert.Error(t, p.Validate())

	p = valid()
	p.Image = &ProductImage{FileName: "a.png", FilePath: "http://x/a.png", FileType: "image/png", StoragePath: "../etc/passwd"}
	assert.Error(t, p.Validate(), "unsafe storage path must be rejected")

	p = valid()
	p.Image = &ProductImage{FileName: "a.png", FilePath: "http://x/a.png", FileType: "image/png", StoragePath: "products/owner/a.png"}
	assert.NoError(t, p.Validate())

	assert.True(t, p.OwnedBy(NewRecordID(UserTable, "owner")))
	assert.False(t, p.OwnedBy(NewRecordID(UserTable, "someone-else")))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("ana@x.io"))
	assert.False(t, ValidEmail("ana"))
	assert.False(t, ValidEmail(""))
}
