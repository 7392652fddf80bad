package types

// FetchResult is the observable state of a single retrieval lifecycle.
// Data holds the last successful value (zero until the first success) and is
// kept when a later retrieval fails. Loading implies Err == nil.
type FetchResult[T any] struct {
	Data    T
	Loading bool
	Err     error
}

// Ready reports whether the last retrieval finished without error.
func (r FetchResult[T]) Ready() bool {
	return !r.Loading && r.Err == nil
}

// Operation names a CRUD operation kind.
type Operation string

// CRUD operation kinds passed to success and error callbacks.
const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// CrudFlags reports which CRUD operation kinds are in flight.
type CrudFlags struct {
	Creating bool
	Updating bool
	Deleting bool
}

// Busy reports whether any operation is in flight.
func (f CrudFlags) Busy() bool {
	return f.Creating || f.Updating || f.Deleting
}
