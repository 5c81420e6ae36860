package database

import (
	"context"
	"time"

	"github.com/nfrund/sparx/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

var _ domain.ProductRepository = (*ProductStore)(nil)

// ProductStore persists products in the product table.
type ProductStore struct {
	client Client[domain.Product]
	now    func() time.Time
}

// NewProductStore creates a new ProductStore.
func NewProductStore(client Client[domain.Product]) *ProductStore {
	return &ProductStore{client: client, now: time.Now}
}

func productData(p *domain.Product) map[string]any {
	data := map[string]any{
		"user_id":     p.UserID,
		"name":        p.Name,
		"sku":         p.SKU,
		"category":    p.Category,
		"quantity":    p.Quantity,
		"price":       p.Price,
		"description": p.Description,
	}
	if p.Image != nil {
		data["image"] = p.Image
	}
	return data
}

// Create inserts a product under a freshly generated key.
func (s *ProductStore) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, NewDBError(domain.ErrInvalidInput, "product to create cannot be nil")
	}
	if err := product.Validate(); err != nil {
		return nil, NewDBError(domain.ErrInvalidInput, "validation failed for product: "+err.Error())
	}

	now := &surrealmodels.CustomDateTime{Time: s.now().UTC()}
	data := productData(product)
	data["created_at"] = now
	data["updated_at"] = now
	if product.CreatedAt != nil {
		data["created_at"] = product.CreatedAt
	}

	created, err := s.client.Create(ctx, domain.NewRecordID(domain.ProductTable, domain.NewKey()), data)
	if err != nil {
		return nil, NewDBError(err, "failed to create product")
	}
	if created == nil {
		return nil, NewDBError(ErrQueryFailed, "create returned no record")
	}
	return created, nil
}

// FindByID retrieves a product by record key.
func (s *ProductStore) FindByID(ctx context.Context, key string) (*domain.Product, error) {
	if key == "" {
		return nil, NewDBError(domain.ErrNotFound, "product not found")
	}
	product, err := s.client.Select(ctx, domain.NewRecordID(domain.ProductTable, key))
	if err != nil {
		return nil, NewDBError(err, "failed to select product")
	}
	if product == nil {
		return nil, NewDBError(domain.ErrNotFound, "product not found")
	}
	return product, nil
}

// FindByUser returns the user's products ordered by creation date, newest first.
func (s *ProductStore) FindByUser(ctx context.Context, userID *surrealmodels.RecordID) ([]*domain.Product, error) {
	query := "SELECT * FROM product WHERE user_id = $user ORDER BY created_at DESC"
	rows, err := s.client.Query(ctx, query, map[string]any{"user": userID})
	if err != nil {
		return nil, NewDBError(err, "failed to query products")
	}

	products := make([]*domain.Product, 0, len(rows))
	for i := range rows {
		products = append(products, &rows[i])
	}
	return products, nil
}

// Update writes the editable fields of the product. Owner and creation date
// are kept.
func (s *ProductStore) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil || product.ID == nil {
		return nil, NewDBError(domain.ErrInvalidInput, "product ID is required for update")
	}
	if err := product.Validate(); err != nil {
		return nil, NewDBError(domain.ErrInvalidInput, "validation failed for product update: "+err.Error())
	}

	data := productData(product)
	delete(data, "user_id")
	data["updated_at"] = &surrealmodels.CustomDateTime{Time: s.now().UTC()}

	updated, err := s.client.Merge(ctx, product.ID, data)
	if err != nil {
		return nil, NewDBError(err, "failed to update product")
	}
	if updated == nil {
		return nil, NewDBError(domain.ErrNotFound, "product not found")
	}
	return updated, nil
}

// Delete removes a product. Returns ErrNotFound when it did not exist.
func (s *ProductStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return NewDBError(domain.ErrNotFound, "product not found")
	}
	before, err := s.client.Delete(ctx, domain.NewRecordID(domain.ProductTable, key))
	if err != nil {
		return NewDBError(err, "failed to delete product")
	}
	if before == nil {
		return NewDBError(domain.ErrNotFound, "product not found")
	}
	return nil
}
