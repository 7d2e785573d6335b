package services

import "errors"

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindBadRequest
	KindConflict
	KindForbidden
	KindValidation
	KindUnauthorized
)

// Error is a failure the caller can act on. Anything else is internal.
type Error struct {
	Kind    Kind
	Message string
	Details []string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches errors of the same kind and message, so wrapped sentinels
// compare equal with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

var (
	ErrCategoryNotFound  = &Error{Kind: KindNotFound, Message: "Category not found"}
	ErrProductNotFound   = &Error{Kind: KindNotFound, Message: "Product not found"}
	ErrImageNotFound     = &Error{Kind: KindNotFound, Message: "Image not found"}
	ErrFileNotFound      = &Error{Kind: KindNotFound, Message: "File not found"}
	ErrUserNotFound      = &Error{Kind: KindNotFound, Message: "User not found"}
	ErrNoImages          = &Error{Kind: KindNotFound, Message: "No images"}
	ErrCategoryRequired  = &Error{Kind: KindBadRequest, Message: "Category must be specified"}
	ErrNoImageUploaded   = &Error{Kind: KindBadRequest, Message: "No image file uploaded"}
	ErrCategoryNotEmpty  = &Error{Kind: KindConflict, Message: "Category still has products"}
	ErrUserExists        = &Error{Kind: KindConflict, Message: "User with this email or username already exists"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "You can only modify your own account"}
	ErrInvalidCredential = &Error{Kind: KindUnauthorized, Message: "Invalid email or password"}
)

func validationError(details []string) error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Details: details}
}
