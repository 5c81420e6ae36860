package handlers

import (
	"time"

	"github.com/nfrund/sparx/internal/domain"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse is returned by endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusResponse is MessageResponse with an explicit success flag.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UserResponse is the public profile of a user. The password hash is never
// part of it.
type UserResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
	Token string `json:"token,omitempty"`
}

// NewUserResponse creates a UserResponse DTO from a domain.User model.
func NewUserResponse(user *domain.User) *UserResponse {
	return &UserResponse{
		ID:    user.Key(),
		Name:  user.Name,
		Email: user.Email,
		Photo: user.Photo,
		Phone: user.Phone,
		Bio:   user.Bio,
	}
}

// ImageResponse describes an uploaded product image.
type ImageResponse struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	FileType string `json:"fileType"`
	FileSize string `json:"fileSize"`
}

// ProductResponse is the DTO for a single product.
type ProductResponse struct {
	ID          string         `json:"_id"`
	User        string         `json:"user"`
	Name        string         `json:"name"`
	SKU         string         `json:"sku"`
	Category    string         `json:"category"`
	Quantity    int            `json:"quantity"`
	Price       float64        `json:"price"`
	Description string         `json:"description"`
	Image       *ImageResponse `json:"image,omitempty"`
	CreatedAt   *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time     `json:"updatedAt,omitempty"`
}

// NewProductResponse creates a ProductResponse DTO from a domain.Product model.
func NewProductResponse(p *domain.Product) *ProductResponse {
	res := &ProductResponse{
		ID:          p.Key(),
		User:        domain.RecordKey(p.UserID),
		Name:        p.Name,
		SKU:         p.SKU,
		Category:    p.Category,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Description: p.Description,
	}
	if p.Image != nil {
		res.Image = &ImageResponse{
			FileName: p.Image.FileName,
			FilePath: p.Image.FilePath,
			FileType: p.Image.FileType,
			FileSize: p.Image.FileSize,
		}
	}
	if p.CreatedAt != nil {
		t := p.CreatedAt.Time
		res.CreatedAt = &t
	}
	if p.UpdatedAt != nil {
		t := p.UpdatedAt.Time
		res.UpdatedAt = &t
	}
	return res
}

// NewProductListResponse maps every product.
func NewProductListResponse(products []*domain.Product) []*ProductResponse {
	res := make([]*ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, NewProductResponse(p))
	}
	return res
}
