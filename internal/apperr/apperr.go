// Package apperr defines the error sentinels shared by the stores.
package apperr

import "errors"

// ErrValidation indicates the caller supplied empty or invalid input to a
// create operation. Recoverable by the caller; never retried internally.
var ErrValidation = errors.New("validation failed")

// ErrNotFound indicates a referenced record does not exist. Surfaced to the
// caller as "unavailable" and never retried.
var ErrNotFound = errors.New("record not found")
