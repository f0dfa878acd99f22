package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every concrete error below wraps exactly one of them, so
// callers can branch with errors.Is on the kind.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrStorageFailure      = errors.New("storage failure")
	ErrConflict            = errors.New("conflict")
)

var (
	ErrItemNotFound          = fmt.Errorf("item %w", ErrNotFound)
	ErrOrderNotFound         = fmt.Errorf("repair order %w", ErrNotFound)
	ErrPartNotFound          = fmt.Errorf("order part %w", ErrNotFound)
	ErrSaleNotFound          = fmt.Errorf("sale %w", ErrNotFound)
	ErrPurchaseOrderNotFound = fmt.Errorf("purchase order %w", ErrNotFound)

	ErrInvalidDelta        = fmt.Errorf("%w: delta", ErrInvalidInput)
	ErrInvalidMovementType = fmt.Errorf("%w: movement type", ErrInvalidInput)
	ErrInvalidStatus       = fmt.Errorf("%w: status", ErrInvalidInput)
	ErrInvalidQuantity     = fmt.Errorf("%w: quantity must be > 0", ErrInvalidInput)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be >= 0", ErrInvalidInput)
	ErrInvalidPriority     = fmt.Errorf("%w: priority", ErrInvalidInput)
	ErrActorRequired       = fmt.Errorf("%w: actor identity required", ErrInvalidInput)
	ErrEmptyLines          = fmt.Errorf("%w: no lines", ErrInvalidInput)
	ErrOverReceipt         = fmt.Errorf("%w: received quantity exceeds ordered", ErrInvalidInput)
	ErrMissingField        = fmt.Errorf("%w: required field missing", ErrInvalidInput)

	ErrOrderClosed         = fmt.Errorf("%w: repair order is closed", ErrConflict)
	ErrInactiveProduct     = fmt.Errorf("%w: product is not active", ErrConflict)
	ErrSKUAlreadyExists    = fmt.Errorf("%w: sku already exists", ErrConflict)
	ErrDuplicateRequest    = fmt.Errorf("%w: request already processed", ErrConflict)
	ErrPurchaseOrderClosed = fmt.Errorf("%w: purchase order is closed", ErrConflict)
)

// domainKinds pass through retry and classification untouched.
var domainKinds = []error{
	ErrNotFound,
	ErrInvalidInput,
	ErrInsufficientStock,
	ErrIllegalTransition,
	ErrConflict,
	ErrStorageFailure,
}

func isDomainError(err error) bool {
	for _, k := range domainKinds {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
