package store

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorClass int

const (
	ErrorClassInternal ErrorClass = iota
	ErrorClassValidation
	ErrorClassConflict
	ErrorClassNotFound
	ErrorClassInsufficientStock
)

func (c ErrorClass) String() string {
	switch c {
	case ErrorClassValidation:
		return "validation"
	case ErrorClassConflict:
		return "conflict"
	case ErrorClassNotFound:
		return "not_found"
	case ErrorClassInsufficientStock:
		return "insufficient_stock"
	default:
		return "internal"
	}
}

func ClassifyError(err error) ErrorClass {
	switch {
	case err == nil:
		return ErrorClassInternal
	case errors.Is(err, ErrInsufficientStock):
		return ErrorClassInsufficientStock
	case errors.Is(err, ErrValidation):
		return ErrorClassValidation
	case errors.Is(err, ErrConflict):
		return ErrorClassConflict
	case errors.Is(err, ErrNotFound):
		return ErrorClassNotFound
	}
	return ErrorClassInternal
}

var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrProductNotFound  = &NotFoundError{Resource: "product"}
	ErrCustomerNotFound = &NotFoundError{Resource: "customer"}
	ErrSaleNotFound     = &NotFoundError{Resource: "sale"}
)

// ValidationError reports a missing or malformed field on an input.
type ValidationError struct {
	Fields []string
	Reason string
}

func newValidationError(reason string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: reason}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError is returned when a unique business key is already taken.
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is matches ErrNotFound and any NotFoundError for the same resource, so
// errors.Is(err, ErrProductNotFound) works regardless of the id.
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	var nf *NotFoundError
	if errors.As(target, &nf) {
		return nf.Resource == e.Resource && (nf.ID == "" || nf.ID == e.ID)
	}
	return false
}

// InsufficientStockError aggregates every product that rejected a sale,
// either because it does not exist or because stock cannot cover the
// requested quantity.
type InsufficientStockError struct {
	ProductIDs []string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock or unknown product: %s", strings.Join(e.ProductIDs, ", "))
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }
