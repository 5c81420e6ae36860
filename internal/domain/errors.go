package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures. Services wrap them with context
// and the HTTP layer maps them to status codes with errors.Is.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUserAlreadyExists   = errors.New("user with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials provided")
	ErrUnauthorized        = errors.New("not authorized, please login")
	ErrForbidden           = errors.New("user not authorized for this resource")
	ErrNotFound            = errors.New("requested resource not found")
	ErrInvalidResetToken   = errors.New("invalid or expired password reset token")
	ErrEmailDelivery       = errors.New("email not sent, please try again")
	ErrFileTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedFileType = errors.New("file type is not allowed")
)

// Error codes attached to wrapped errors.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUserExists         = "USER_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeResetTokenInvalid  = "RESET_TOKEN_INVALID"
	CodeEmailDelivery      = "EMAIL_DELIVERY_FAILED"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeUnsupportedFile    = "UNSUPPORTED_FILE_TYPE"
	CodeInternal           = "INTERNAL"
)
