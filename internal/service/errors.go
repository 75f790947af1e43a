package service

import "errors"

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrAccessDenied      = errors.New("access denied")      // 403
	ErrNotFound          = errors.New("not found")          // 404
	ErrInvalidState      = errors.New("invalid state")      // 409
	ErrInsufficientStock = errors.New("insufficient stock") // 409
)
