package domain

import (
	"context"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// ProductTable is the SurrealDB table holding products.
const ProductTable = "product"

// ProductImage is the metadata of an uploaded product image. The bytes live in
// the storage backend under StoragePath; FilePath is the public URL.
type ProductImage struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	FilePath    string `json:"file_path" validate:"required"`
	FileType    string `json:"file_type" validate:"required"`
	FileSize    string `json:"file_size"`
	StoragePath string `json:"storage_path" validate:"required,safepath"`
}

// Product is an inventory item owned by a single user.
type Product struct {
	ID          *surrealmodels.RecordID       `json:"id,omitempty"`
	UserID      *surrealmodels.RecordID       `json:"user_id" validate:"required"`
	Name        string                        `json:"name" validate:"required"`
	SKU         string                        `json:"sku" validate:"required"`
	Category    string                        `json:"category" validate:"required"`
	Quantity    int                           `json:"quantity" validate:"gte=0"`
	Price       float64                       `json:"price" validate:"gte=0"`
	Description string                        `json:"description" validate:"required"`
	Image       *ProductImage                 `json:"image,omitempty"`
	CreatedAt   *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
	UpdatedAt   *surrealmodels.CustomDateTime `json:"updated_at,omitempty"`
}

// Key returns the record key of the product.
func (p *Product) Key() string {
	return RecordKey(p.ID)
}

// OwnedBy reports whether the product belongs to the user.
func (p *Product) OwnedBy(userID *surrealmodels.RecordID) bool {
	return SameRecord(p.UserID, userID)
}

// Validate runs validation checks on the Product using the defined tags.
func (p *Product) Validate() error {
	return validatorInstance.Struct(p)
}

// ProductRepository defines storage operations for products.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) (*Product, error)
	// FindByID returns ErrNotFound when the product does not exist.
	FindByID(ctx context.Context, key string) (*Product, error)
	// FindByUser returns the user's products, newest first.
	FindByUser(ctx context.Context, userID *surrealmodels.RecordID) ([]*Product, error)
	Update(ctx context.Context, product *Product) (*Product, error)
	Delete(ctx context.Context, key string) error
}
