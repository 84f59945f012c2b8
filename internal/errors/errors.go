package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a plusblocks error code.
type ErrorCode string

const (
	ErrAuthRequired           ErrorCode = "AUTH_REQUIRED"              // 401
	ErrAuthExpired            ErrorCode = "AUTH_EXPIRED"               // 401
	ErrInvalidRequest         ErrorCode = "INVALID_REQUEST"            // 400
	ErrInvalidKey             ErrorCode = "INVALID_KEY"                // 400
	ErrBlockNotFound          ErrorCode = "BLOCK_NOT_FOUND"            // 404
	ErrVariantNotFound        ErrorCode = "VARIANT_NOT_FOUND"          // 404
	ErrVariantIndexOutOfRange ErrorCode = "VARIANT_INDEX_OUT_OF_RANGE" // 404
	ErrCatalogEmpty           ErrorCode = "CATALOG_EMPTY"              // 404
	ErrCodeFetchFailed        ErrorCode = "CODE_FETCH_FAILED"          // 502
	ErrInternal               ErrorCode = "INTERNAL"                   // 500
)

// PlusError represents a structured error with code, status, remediation hint, and details.
type PlusError struct {
	Code    ErrorCode
	Status  int
	Message string
	Hint    string
	Details map[string]any
}

// Error implements the error interface.
func (e *PlusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAuthRequired creates a 401 error for a missing session.
func NewAuthRequired() *PlusError {
	return &PlusError{
		Code:    ErrAuthRequired,
		Status:  401,
		Message: "authentication required",
		Hint:    "run 'plusblocks login' first",
	}
}

// NewAuthTimeout creates a 401 error for an interactive login that never completed.
func NewAuthTimeout() *PlusError {
	return &PlusError{
		Code:    ErrAuthRequired,
		Status:  401,
		Message: "login timed out waiting for the member area",
		Hint:    "run 'plusblocks login' again and finish signing in within 5 minutes",
	}
}

// NewAuthExpired creates a 401 error for a session the site rejected.
func NewAuthExpired() *PlusError {
	return &PlusError{
		Code:    ErrAuthExpired,
		Status:  401,
		Message: "session expired",
		Hint:    "run 'plusblocks login' to refresh the session",
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PlusError {
	return &PlusError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidKey creates a 400 error for a cache key component that would not round-trip.
func NewInvalidKey(field, value string) *PlusError {
	return &PlusError{
		Code:    ErrInvalidKey,
		Status:  400,
		Message: fmt.Sprintf("invalid key component %s=%q", field, value),
		Details: map[string]any{"field": field, "value": value},
	}
}

// NewBlockNotFound creates a 404 error for an unknown block. where may be empty.
func NewBlockNotFound(slug, where string) *PlusError {
	msg := fmt.Sprintf("block %q not found", slug)
	if where != "" {
		msg = fmt.Sprintf("block %q not found in %s", slug, where)
	}
	return &PlusError{
		Code:    ErrBlockNotFound,
		Status:  404,
		Message: msg,
		Hint:    "use list_blocks to see available blocks, or run 'plusblocks sync-catalog'",
		Details: map[string]any{"block": slug},
	}
}

// NewVariantNotFound creates a 404 error for an unknown variant slug within a block.
func NewVariantNotFound(variant, blockSlug string) *PlusError {
	return &PlusError{
		Code:    ErrVariantNotFound,
		Status:  404,
		Message: fmt.Sprintf("variant %q not found in %s", variant, blockSlug),
		Hint:    "use list_variants to see the variants of this block",
		Details: map[string]any{"variant": variant, "block": blockSlug},
	}
}

// NewVariantIndexOutOfRange creates a 404 error when a page has fewer variants than requested.
func NewVariantIndexOutOfRange(index, available int) *PlusError {
	return &PlusError{
		Code:    ErrVariantIndexOutOfRange,
		Status:  404,
		Message: fmt.Sprintf("variant index %d out of range; only %d variants available", index, available),
		Hint:    "re-sync the block with 'plusblocks sync-catalog --block <slug>'",
		Details: map[string]any{"index": index, "available": available},
	}
}

// NewCatalogEmpty creates a 404 error when no catalog data has been synced yet.
func NewCatalogEmpty() *PlusError {
	return &PlusError{
		Code:    ErrCatalogEmpty,
		Status:  404,
		Message: "catalog is empty",
		Hint:    "run 'plusblocks sync-catalog' to populate it",
	}
}

// NewCodeFetchFailed creates a 502 error when no code text could be located on the page.
func NewCodeFetchFailed(index int) *PlusError {
	return &PlusError{
		Code:    ErrCodeFetchFailed,
		Status:  502,
		Message: fmt.Sprintf("could not fetch code for variant %d; the page structure may have changed", index),
		Hint:    "retry later; if it persists the extractor needs updating",
		Details: map[string]any{"index": index},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PlusError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PlusError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if err, or anything it wraps, is a PlusError with the given code.
func Is(err error, code ErrorCode) bool {
	var pErr *PlusError
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}

// As returns the PlusError wrapped by err, if any.
func As(err error) (*PlusError, bool) {
	var pErr *PlusError
	if stderrors.As(err, &pErr) {
		return pErr, true
	}
	return nil, false
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	return Is(err, ErrAuthRequired) || Is(err, ErrAuthExpired)
}

// IsDeterministic reports whether retrying err cannot change the outcome.
func IsDeterministic(err error) bool {
	return IsAuth(err) || Is(err, ErrVariantIndexOutOfRange) || Is(err, ErrInvalidKey)
}
