package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/sparx/internal/domain"
	"github.com/nfrund/sparx/internal/inventory"
)

// ImageField is the multipart field carrying a product image.
const ImageField = "image"

// InventoryService is the part of inventory.Service the product endpoints need.
type InventoryService interface {
	CreateProduct(ctx context.Context, owner *domain.User, in inventory.ProductInput, img *inventory.Upload) (*domain.Product, error)
	ListProducts(ctx context.Context, owner *domain.User) ([]*domain.Product, error)
	GetProduct(ctx context.Context, owner *domain.User, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, owner *domain.User, id string, in inventory.ProductInput, img *inventory.Upload) (*domain.Product, error)
	DeleteProduct(ctx context.Context, owner *domain.User, id string) error
}

// ProductHandler handles the endpoints under /api/products.
type ProductHandler struct {
	inventory InventoryService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(inventory InventoryService) *ProductHandler {
	return &ProductHandler{inventory: inventory}
}

func (r ProductRequest) input() inventory.ProductInput {
	return inventory.ProductInput{
		Name:        r.Name,
		SKU:         r.SKU,
		Category:    r.Category,
		Quantity:    string(r.Quantity),
		Price:       string(r.Price),
		Description: r.Description,
	}
}

// openImage returns the uploaded image, or nil when the request has none.
// The caller must close the returned closer.
func openImage(c echo.Context) (*inventory.Upload, io.Closer, error) {
	fileHeader, err := c.FormFile(ImageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid file upload.")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to open uploaded file")
	}
	return &inventory.Upload{
		// Sanitize the filename to prevent path traversal attacks.
		FileName:    filepath.Base(fileHeader.Filename),
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		Size:        fileHeader.Size,
		Content:     src,
	}, src, nil
}

// bindProduct binds the product fields and the optional image.
func bindProduct(c echo.Context) (ProductRequest, *inventory.Upload, io.Closer, error) {
	var req ProductRequest
	if err := bind(c, &req); err != nil {
		return req, nil, nil, err
	}
	img, closer, err := openImage(c)
	return req, img, closer, err
}

// CreateProduct handles POST /api/products.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	req, img, closer, err := bindProduct(c)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	product, err := h.inventory.CreateProduct(c.Request().Context(), user, req.input(), img)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, NewProductResponse(product))
}

// ListProducts handles GET /api/products, newest first.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	products, err := h.inventory.ListProducts(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewProductListResponse(products))
}

// GetProduct handles GET /api/products/:id.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	product, err := h.inventory.GetProduct(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewProductResponse(product))
}

// UpdateProduct handles PATCH /api/products/:id.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	req, img, closer, err := bindProduct(c)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	product, err := h.inventory.UpdateProduct(c.Request().Context(), user, c.Param("id"), req.input(), img)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewProductResponse(product))
}

// DeleteProduct handles DELETE /api/products/:id.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.inventory.DeleteProduct(c.Request().Context(), user, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Product deleted."})
}
