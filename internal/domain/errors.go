package domain

import (
	"errors"
	"fmt"
)

var (
	// Credential errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("username already exists")
	ErrPasswordMismatch   = errors.New("new passwords do not match")
	ErrUserNotFound       = errors.New("user not found")

	// Token errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")

	// Ledger errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrVersionConflict     = errors.New("ledger was modified concurrently")

	// ErrValidation is the parent of every input rejection below.
	ErrValidation = errors.New("validation error")
)

// Validation errors
var (
	ErrInvalidAmount          = fmt.Errorf("%w: amount must be a non-negative number", ErrValidation)
	ErrEmptyDescription       = fmt.Errorf("%w: description is required", ErrValidation)
	ErrDescriptionTooLong     = fmt.Errorf("%w: description is too long", ErrValidation)
	ErrInvalidType            = fmt.Errorf("%w: type must be income or expense", ErrValidation)
	ErrInvalidDate            = fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	ErrInvalidCategory        = fmt.Errorf("%w: invalid category", ErrValidation)
	ErrInvalidUsername        = fmt.Errorf("%w: invalid username", ErrValidation)
	ErrInvalidPassword        = fmt.Errorf("%w: invalid password", ErrValidation)
	ErrMissingTransactionID   = fmt.Errorf("%w: transaction id is required", ErrValidation)
	ErrDuplicateTransactionID = fmt.Errorf("%w: duplicate transaction id", ErrValidation)
)
