// Package crud wraps create, update and delete callbacks with per-kind
// in-flight flags and uniform success and error dispatch.
package crud

import (
	"context"
	"sync"

	"github.com/aihavenlabs/pathwei-admin/internal/logger"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// CreateFunc creates an entity and returns the stored value.
type CreateFunc[T any] func(ctx context.Context, data T) (T, error)

// UpdateFunc replaces the entity identified by id.
type UpdateFunc[T any] func(ctx context.Context, id string, data T) (T, error)

// DeleteFunc removes the entity identified by id.
type DeleteFunc func(ctx context.Context, id string) error

// Handlers holds the optional operation callbacks. A nil field disables that
// operation.
type Handlers[T any] struct {
	Create CreateFunc[T]
	Update UpdateFunc[T]
	Delete DeleteFunc

	// OnSuccess receives the operation kind and its result: the stored
	// entity for create and update, the deleted id for delete.
	OnSuccess func(op types.Operation, result any)
	OnError   func(op types.Operation, err error)
}

// Unit runs CRUD operations and tracks which kinds are in flight. Flags are
// per kind, not per call: overlapping calls of one kind share a flag and the
// first to finish clears it.
type Unit[T any] struct {
	h   Handlers[T]
	log logger.Logger

	mu    sync.Mutex
	flags types.CrudFlags
}

// New creates a Unit. A nil logger uses the default logger.
func New[T any](h Handlers[T], log logger.Logger) *Unit[T] {
	if log == nil {
		log = logger.Default()
	}
	return &Unit[T]{h: h, log: log}
}

// Flags returns a snapshot of the in-flight flags.
func (u *Unit[T]) Flags() types.CrudFlags {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.flags
}

// Create runs the create callback. Without one it returns ErrNoHandler and
// touches no state.
func (u *Unit[T]) Create(ctx context.Context, data T) (T, error) {
	var zero T
	if u.h.Create == nil {
		return zero, types.ErrNoHandler
	}
	done := u.begin(types.OpCreate)
	defer done()

	res, err := guard(func() (T, error) { return u.h.Create(ctx, data) })
	if err != nil {
		u.fail(types.OpCreate, err)
		return zero, err
	}
	u.succeed(types.OpCreate, res)
	return res, nil
}

// Update runs the update callback. Without one it returns ErrNoHandler and
// touches no state.
func (u *Unit[T]) Update(ctx context.Context, id string, data T) (T, error) {
	var zero T
	if u.h.Update == nil {
		return zero, types.ErrNoHandler
	}
	done := u.begin(types.OpUpdate)
	defer done()

	res, err := guard(func() (T, error) { return u.h.Update(ctx, id, data) })
	if err != nil {
		u.fail(types.OpUpdate, err)
		return zero, err
	}
	u.succeed(types.OpUpdate, res)
	return res, nil
}

// Delete runs the delete callback. Without one it returns ErrNoHandler and
// touches no state.
func (u *Unit[T]) Delete(ctx context.Context, id string) error {
	if u.h.Delete == nil {
		return types.ErrNoHandler
	}
	done := u.begin(types.OpDelete)
	defer done()

	_, err := guard(func() (struct{}, error) { return struct{}{}, u.h.Delete(ctx, id) })
	if err != nil {
		u.fail(types.OpDelete, err)
		return err
	}
	u.succeed(types.OpDelete, id)
	return nil
}

// begin raises the flag for op and returns the function that lowers it.
func (u *Unit[T]) begin(op types.Operation) func() {
	u.setFlag(op, true)
	return func() { u.setFlag(op, false) }
}

func (u *Unit[T]) setFlag(op types.Operation, v bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	switch op {
	case types.OpCreate:
		u.flags.Creating = v
	case types.OpUpdate:
		u.flags.Updating = v
	case types.OpDelete:
		u.flags.Deleting = v
	}
}

func (u *Unit[T]) succeed(op types.Operation, result any) {
	if u.h.OnSuccess != nil {
		u.h.OnSuccess(op, result)
	}
}

func (u *Unit[T]) fail(op types.Operation, err error) {
	u.log.Error("operation failed", "op", string(op), "err", err)
	if u.h.OnError != nil {
		u.h.OnError(op, err)
	}
}

// guard calls fn, turning a panic into an error.
func guard[R any](fn func() (R, error)) (res R, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero R
			res, err = zero, types.Coerce(r, types.ErrOperationFailed)
		}
	}()
	return fn()
}
