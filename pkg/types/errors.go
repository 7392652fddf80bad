package types

import (
	"errors"
	"fmt"
)

// Collection and store errors.
var (
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidID          = errors.New("invalid entity ID")
	ErrInvalidData        = errors.New("invalid entity data")
	ErrDuplicate          = errors.New("entity already exists")
	ErrInvalidFilter      = errors.New("invalid filter value type")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrBackendDetached    = errors.New("backend is detached")
	ErrAlreadyAttached    = errors.New("backend is already attached")
)

// Unit errors.
var (
	ErrRetrievalFailed = errors.New("retrieval failed")
	ErrOperationFailed = errors.New("operation failed")
	ErrNoHandler       = errors.New("no handler configured for operation")
)

// Coerce turns a recovered panic value into an error. Error values are
// wrapped so that errors.Is matches both generic and the original; any other
// value is formatted into a message under generic.
func Coerce(v any, generic error) error {
	switch e := v.(type) {
	case nil:
		return generic
	case error:
		return fmt.Errorf("%w: %w", generic, e)
	default:
		return fmt.Errorf("%w: %v", generic, v)
	}
}
