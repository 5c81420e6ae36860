// Package inventory manages the products owned by each user and their images.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/sparx/internal/domain"
	"github.com/nfrund/sparx/internal/events"
	"github.com/nfrund/sparx/internal/logging"
	"github.com/nfrund/sparx/internal/pubsub"
	"github.com/nfrund/sparx/internal/storage"
	"github.com/samber/oops"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// allowedImageTypes maps accepted content types to the stored file extension.
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpg":  ".jpg",
	"image/jpeg": ".jpeg",
}

// ProductInput carries product fields as submitted by the client. Quantity
// and Price are parsed by the service.
type ProductInput struct {
	Name        string
	SKU         string
	Category    string
	Quantity    string
	Price       string
	Description string
}

// Upload is an image attached to a create or update request.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Dependencies holds the collaborators of the Service.
type Dependencies struct {
	Products  domain.ProductRepository
	Store     storage.Store
	Publisher pubsub.Publisher
}

// Service implements product CRUD scoped to the owning user.
type Service struct {
	products      domain.ProductRepository
	store         storage.Store
	publisher     pubsub.Publisher
	maxUploadSize int64
	now           func() time.Time
}

// NewService creates a new inventory Service. Images larger than
// maxUploadSize bytes are rejected.
func NewService(deps Dependencies, maxUploadSize int64) *Service {
	return &Service{
		products:      deps.Products,
		store:         deps.Store,
		publisher:     deps.Publisher,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func invalidInput(msg string) error {
	return oops.In("inventory").Code(domain.CodeInvalidInput).Public(msg).Wrap(domain.ErrInvalidInput)
}

func notFound() error {
	return oops.In("inventory").Code(domain.CodeNotFound).Public("Product not found").Wrap(domain.ErrNotFound)
}

func internal(err error, msg string) error {
	return oops.In("inventory").Code(domain.CodeInternal).Wrapf(err, "%s", msg)
}

func parseQuantity(v string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || q < 0 {
		return 0, invalidInput("Quantity must be a whole number of at least 0")
	}
	return q, nil
}

func parsePrice(v string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || p < 0 {
		return 0, invalidInput("Price must be a number of at least 0")
	}
	return p, nil
}

func newSKU() string {
	return "SKU-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// CreateProduct validates the input, stores the optional image and inserts
// the product. The image is removed again if the insert fails.
func (s *Service) CreateProduct(ctx context.Context, owner *domain.User, in ProductInput, img *Upload) (*domain.Product, error) {
	in = trimInput(in)
	if in.Name == "" || in.Category == "" || in.Quantity == "" || in.Price == "" || in.Description == "" {
		return nil, invalidInput("Please fill in all fields")
	}
	quantity, err := parseQuantity(in.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	if err := s.checkImage(img); err != nil {
		return nil, err
	}

	sku := in.SKU
	if sku == "" {
		sku = newSKU()
	}

	now := s.now().UTC()
	product := &domain.Product{
		UserID:      owner.ID,
		Name:        in.Name,
		SKU:         sku,
		Category:    in.Category,
		Quantity:    quantity,
		Price:       price,
		Description: in.Description,
		CreatedAt:   &surrealmodels.CustomDateTime{Time: now},
		UpdatedAt:   &surrealmodels.CustomDateTime{Time: now},
	}

	if img != nil {
		image, err := s.saveImage(ctx, owner, img)
		if err != nil {
			return nil, err
		}
		product.Image = image
	}

	created, err := s.products.Create(ctx, product)
	if err != nil {
		s.removeImage(ctx, product.Image)
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, invalidInput("Please fill in all fields")
		}
		return nil, internal(err, "failed to create product")
	}

	s.publish(ctx, events.ProductCreated, created)
	return created, nil
}

// ListProducts returns the owner's products, newest first.
func (s *Service) ListProducts(ctx context.Context, owner *domain.User) ([]*domain.Product, error) {
	products, err := s.products.FindByUser(ctx, owner.ID)
	if err != nil {
		return nil, internal(err, "failed to list products")
	}
	return products, nil
}

// GetProduct returns one of the owner's products.
func (s *Service) GetProduct(ctx context.Context, owner *domain.User, id string) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound()
		}
		return nil, internal(err, "failed to load product")
	}
	if !product.OwnedBy(owner.ID) {
		logging.FromContext(ctx).WarnContext(ctx, "User attempted to access a product they don't own",
			"user_id", owner.Key(), "product_id", id)
		return nil, oops.In("inventory").Code(domain.CodeForbidden).
			Public("User not authorized").
			Wrap(domain.ErrForbidden)
	}
	return product, nil
}

// UpdateProduct applies the non-empty fields of in. The SKU never changes.
// A new image replaces the previous one, which is then removed from storage.
func (s *Service) UpdateProduct(ctx context.Context, owner *domain.User, id string, in ProductInput, img *Upload) (*domain.Product, error) {
	product, err := s.GetProduct(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	in = trimInput(in)
	if in.Name != "" {
		product.Name = in.Name
	}
	if in.Category != "" {
		product.Category = in.Category
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	if in.Quantity != "" {
		if product.Quantity, err = parseQuantity(in.Quantity); err != nil {
			return nil, err
		}
	}
	if in.Price != "" {
		if product.Price, err = parsePrice(in.Price); err != nil {
			return nil, err
		}
	}
	if err := s.checkImage(img); err != nil {
		return nil, err
	}

	previous := product.Image
	if img != nil {
		image, err := s.saveImage(ctx, owner, img)
		if err != nil {
			return nil, err
		}
		product.Image = image
	}

	updated, err := s.products.Update(ctx, product)
	if err != nil {
		if img != nil {
			s.removeImage(ctx, product.Image)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound()
		}
		return nil, internal(err, "failed to update product")
	}
	if img != nil {
		s.removeImage(ctx, previous)
	}

	s.publish(ctx, events.ProductUpdated, updated)
	return updated, nil
}

// DeleteProduct removes the product and, best effort, its image.
func (s *Service) DeleteProduct(ctx context.Context, owner *domain.User, id string) error {
	product, err := s.GetProduct(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, product.Key()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return notFound()
		}
		return internal(err, "failed to delete product")
	}
	s.removeImage(ctx, product.Image)

	s.publish(ctx, events.ProductDeleted, product)
	return nil
}

func trimInput(in ProductInput) ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	in.Category = strings.TrimSpace(in.Category)
	in.Quantity = strings.TrimSpace(in.Quantity)
	in.Price = strings.TrimSpace(in.Price)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func (s *Service) checkImage(img *Upload) error {
	if img == nil {
		return nil
	}
	if _, ok := allowedImageTypes[strings.ToLower(img.ContentType)]; !ok {
		return oops.In("inventory").Code(domain.CodeUnsupportedFile).
			Public("Please upload a png, jpg or jpeg image").
			With("content_type", img.ContentType).
			Wrap(domain.ErrUnsupportedFileType)
	}
	if img.Size > s.maxUploadSize {
		return tooLarge(s.maxUploadSize)
	}
	return nil
}

func tooLarge(max int64) error {
	return oops.In("inventory").Code(domain.CodeFileTooLarge).
		Public(fmt.Sprintf("Image must not be larger than %s", FormatFileSize(max))).
		Wrap(domain.ErrFileTooLarge)
}

// saveImage writes the upload to products/<owner>/<uuid><ext>.
func (s *Service) saveImage(ctx context.Context, owner *domain.User, img *Upload) (*domain.ProductImage, error) {
	contentType := strings.ToLower(img.ContentType)
	storagePath := path.Join("products", owner.Key(), uuid.NewString()+allowedImageTypes[contentType])

	// Read one byte past the limit to detect a lying Content-Length.
	written, err := s.store.Save(ctx, storagePath, contentType, io.LimitReader(img.Content, s.maxUploadSize+1))
	if err != nil {
		return nil, internal(err, "failed to save image")
	}
	if written > s.maxUploadSize {
		_ = s.store.Delete(ctx, storagePath)
		return nil, tooLarge(s.maxUploadSize)
	}

	name := path.Base(strings.ReplaceAll(img.FileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = path.Base(storagePath)
	}

	return &domain.ProductImage{
		FileName:    name,
		FilePath:    s.store.URL(storagePath),
		FileType:    contentType,
		FileSize:    FormatFileSize(written),
		StoragePath: storagePath,
	}, nil
}

func (s *Service) removeImage(ctx context.Context, image *domain.ProductImage) {
	if image == nil || image.StoragePath == "" {
		return
	}
	if err := s.store.Delete(ctx, image.StoragePath); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Failed to delete product image", "path", image.StoragePath, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, event pubsub.Event[events.ProductEvent], p *domain.Product) {
	if s.publisher == nil {
		return
	}
	userID := domain.RecordKey(p.UserID)
	payload := events.ProductEvent{
		ProductID: p.Key(),
		UserID:    userID,
		Name:      p.Name,
		At:        s.now().UTC(),
	}
	if err := event.Publish(ctx, s.publisher, userID, payload); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Failed to publish event", "topic", event.Topic(), "error", err)
	}
}
