package handlers

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Required fields are checked by the services so that every endpoint answers
// with the same messages. The tags below only cover format constraints.

type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// UpdateUserRequest carries the editable profile fields. Email is accepted
// but ignored.
type UpdateUserRequest struct {
	Name  string `json:"name" form:"name" validate:"max=100"`
	Email string `json:"email" form:"email"`
	Photo string `json:"photo" form:"photo" validate:"omitempty,url"`
	Phone string `json:"phone" form:"phone" validate:"max=32"`
	Bio   string `json:"bio" form:"bio"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	Password    string `json:"password" form:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" form:"password"`
}

// ProductRequest is bound from JSON or multipart form data. Numbers are kept
// as text so both encodings bind the same way.
type ProductRequest struct {
	Name        string      `json:"name" form:"name"`
	SKU         string      `json:"sku" form:"sku"`
	Category    string      `json:"category" form:"category"`
	Quantity    json.Number `json:"quantity" form:"quantity"`
	Price       json.Number `json:"price" form:"price"`
	Description string      `json:"description" form:"description"`
}

type ContactRequest struct {
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}
