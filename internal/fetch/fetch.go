// Package fetch implements the retrieval state units used by admin screens:
// Unit wraps a single asynchronous retrieval and Paginated wraps a retrieval
// parameterised by page, limit and filters.
//
// Retrievals may overlap. Each one takes a sequence number when issued and
// its outcome is committed only if no newer retrieval has been issued since
// (last-issued-wins). Close invalidates every in-flight retrieval and cancels
// its context.
package fetch

import (
	"context"
	"reflect"
	"slices"
	"sync"

	"github.com/aihavenlabs/pathwei-admin/internal/logger"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// Func retrieves a value. Returning an error or panicking takes the error
// path.
type Func[T any] func(ctx context.Context) (T, error)

// Option configures a Unit.
type Option[T any] func(*options[T])

type options[T any] struct {
	onSuccess func(T)
	onError   func(error)
	log       logger.Logger
	name      string
}

// WithOnSuccess registers a callback invoked after a committed success.
func WithOnSuccess[T any](fn func(T)) Option[T] {
	return func(o *options[T]) { o.onSuccess = fn }
}

// WithOnError registers a callback invoked after a committed failure.
func WithOnError[T any](fn func(error)) Option[T] {
	return func(o *options[T]) { o.onError = fn }
}

// WithLogger sets the logger failures are reported to.
func WithLogger[T any](l logger.Logger) Option[T] {
	return func(o *options[T]) { o.log = l }
}

// WithName labels log lines produced by the unit.
func WithName[T any](name string) Option[T] {
	return func(o *options[T]) { o.name = name }
}

// Unit tracks the data, loading and error state of one retrieval function.
// All methods are safe for concurrent use.
type Unit[T any] struct {
	fn   Func[T]
	opts options[T]

	mu      sync.Mutex
	state   types.FetchResult[T]
	deps    []any
	hasDeps bool
	issued  uint64
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Unit in the loading state. Nothing is retrieved until Mount
// or Refetch is called.
func New[T any](fn Func[T], opts ...Option[T]) *Unit[T] {
	o := options[T]{name: "fetch"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Unit[T]{
		fn:     fn,
		opts:   o,
		state:  types.FetchResult[T]{Loading: true},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Mount records the initial dependencies and performs the first retrieval.
func (u *Unit[T]) Mount(ctx context.Context, deps ...any) types.FetchResult[T] {
	u.mu.Lock()
	u.deps = slices.Clone(deps)
	u.hasDeps = true
	u.mu.Unlock()
	return u.Refetch(ctx)
}

// SetDeps re-runs the retrieval when deps differ from the recorded ones.
// The second return value reports whether a retrieval ran.
func (u *Unit[T]) SetDeps(ctx context.Context, deps ...any) (types.FetchResult[T], bool) {
	u.mu.Lock()
	if u.hasDeps && reflect.DeepEqual(u.deps, deps) {
		res := u.state
		u.mu.Unlock()
		return res, false
	}
	u.deps = slices.Clone(deps)
	u.hasDeps = true
	u.mu.Unlock()
	return u.Refetch(ctx), true
}

// Refetch runs the retrieval function and blocks until it finishes. The
// returned snapshot reflects the unit after this call, which may hold a newer
// retrieval's outcome if one was issued meanwhile.
func (u *Unit[T]) Refetch(ctx context.Context) types.FetchResult[T] {
	return u.run(ctx, u.fn)
}

// Result returns a snapshot of the current state.
func (u *Unit[T]) Result() types.FetchResult[T] {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Close unmounts the unit. In-flight retrievals are cancelled and their
// outcomes discarded; later calls to Refetch are no-ops. Idempotent.
func (u *Unit[T]) Close() {
	u.mu.Lock()
	if !u.closed {
		u.closed = true
		u.issued++
	}
	u.mu.Unlock()
	u.cancel()
}

func (u *Unit[T]) run(ctx context.Context, fn Func[T]) types.FetchResult[T] {
	u.mu.Lock()
	if u.closed {
		res := u.state
		u.mu.Unlock()
		return res
	}
	u.issued++
	seq := u.issued
	u.state.Loading = true
	u.state.Err = nil
	u.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(u.ctx, cancel)
	data, err := call(runCtx, fn)
	stop()
	cancel()

	u.commit(seq, data, err)
	return u.Result()
}

func call[T any](ctx context.Context, fn Func[T]) (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			data, err = zero, types.Coerce(r, types.ErrRetrievalFailed)
		}
	}()
	return fn(ctx)
}

func (u *Unit[T]) commit(seq uint64, data T, err error) {
	u.mu.Lock()
	if u.closed || seq != u.issued {
		u.mu.Unlock()
		u.opts.log.Debug("discarding stale result", "unit", u.opts.name, "seq", seq)
		return
	}
	if err != nil {
		u.state.Err = err
	} else {
		u.state.Data = data
	}
	u.state.Loading = false
	u.mu.Unlock()

	if err != nil {
		u.opts.log.Error("retrieval failed", "unit", u.opts.name, "err", err)
		if u.opts.onError != nil {
			u.opts.onError(err)
		}
		return
	}
	if u.opts.onSuccess != nil {
		u.opts.onSuccess(data)
	}
}
