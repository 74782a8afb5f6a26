package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Controllers switch on these with errors.Is; every specific
// error below wraps exactly one of them.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidState      = errors.New("invalid state")
	ErrGateway           = errors.New("payment gateway error")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

var (
	ErrProductNotFound  = fmt.Errorf("product: %w", ErrNotFound)
	ErrCartItemNotFound = fmt.Errorf("cart item: %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order: %w", ErrNotFound)
	ErrReviewNotFound   = fmt.Errorf("review: %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user: %w", ErrNotFound)

	ErrInvalidQuantity    = fmt.Errorf("quantity must be positive: %w", ErrInvalidArgument)
	ErrInvalidRating      = fmt.Errorf("rating must be between 1 and 5: %w", ErrInvalidArgument)
	ErrInvalidOrderStatus = fmt.Errorf("unknown order status: %w", ErrInvalidArgument)
	ErrInvalidAmount      = fmt.Errorf("amount must be positive: %w", ErrInvalidArgument)
	ErrWrongPassword      = fmt.Errorf("current password is incorrect: %w", ErrInvalidArgument)

	ErrReviewExists   = fmt.Errorf("review already exists for this product: %w", ErrConflict)
	ErrUsernameExists = fmt.Errorf("username already taken: %w", ErrConflict)
	ErrEmailExists    = fmt.Errorf("email already registered: %w", ErrConflict)

	ErrNotReviewOwner = fmt.Errorf("review belongs to another user: %w", ErrForbidden)

	ErrOrderNotPending = fmt.Errorf("order is not awaiting payment: %w", ErrInvalidState)

	ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", ErrUnauthenticated)
	ErrInvalidToken       = fmt.Errorf("invalid or expired token: %w", ErrUnauthenticated)
	ErrTokenRevoked       = fmt.Errorf("token has been revoked: %w", ErrUnauthenticated)
)

// ErrNothingToExport is not a failure; the export endpoint answers 204.
var ErrNothingToExport = errors.New("no orders to export")

// invalidArgument builds a field-level InvalidArgument error.
func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

// notFoundAs replaces gorm's record-not-found with a domain error.
func notFoundAs(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// isDomainError reports whether err is one of the expected rejection kinds.
func isDomainError(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrInvalidArgument, ErrInsufficientStock, ErrConflict, ErrForbidden, ErrInvalidState, ErrUnauthenticated} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
