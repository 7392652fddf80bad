package fetch

import (
	"context"
	"maps"
	"reflect"
	"sync"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// PageFunc retrieves one page. The returned Pagination is the source of
// truth for totals.
type PageFunc[T any] func(ctx context.Context, page, limit int, filters map[string]any) (types.PageResult[T], error)

// PageState is a snapshot of a Paginated unit.
type PageState[T any] struct {
	Data       []T
	Pagination types.Pagination
	Loading    bool
	Err        error

	// Page and Limit are the requested values, which may differ from what the
	// server reported in Pagination.
	Page  int
	Limit int
}

// Paginated tracks a paged retrieval. Page bounds are not enforced here; the
// server decides what an out-of-range page returns.
type Paginated[T any] struct {
	fn   PageFunc[T]
	unit *Unit[types.PageResult[T]]

	mu      sync.Mutex
	page    int
	limit   int
	filters map[string]any
}

// NewPaginated creates a paged unit starting at page and limit. Values below
// 1 fall back to page 1 and the default page size.
func NewPaginated[T any](fn PageFunc[T], page, limit int, filters map[string]any, opts ...Option[types.PageResult[T]]) *Paginated[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = types.DefaultPageLimit
	}
	p := &Paginated[T]{
		fn:      fn,
		page:    page,
		limit:   limit,
		filters: maps.Clone(filters),
	}
	p.unit = New[types.PageResult[T]](nil, opts...)
	p.unit.state.Data.Pagination = types.NewPagination(page, limit, 0)
	return p
}

// Mount performs the first retrieval.
func (p *Paginated[T]) Mount(ctx context.Context) PageState[T] {
	return p.Refetch(ctx)
}

// Refetch re-runs the retrieval with the current page, limit and filters.
func (p *Paginated[T]) Refetch(ctx context.Context) PageState[T] {
	p.mu.Lock()
	fn := p.bind()
	p.mu.Unlock()
	p.unit.run(ctx, fn)
	return p.Result()
}

// SetPage requests page n and refetches when it changed.
func (p *Paginated[T]) SetPage(ctx context.Context, n int) PageState[T] {
	p.mu.Lock()
	if n == p.page {
		p.mu.Unlock()
		return p.Result()
	}
	p.page = n
	fn := p.bind()
	p.mu.Unlock()
	p.unit.run(ctx, fn)
	return p.Result()
}

// SetLimit changes the page size, returns to page 1 and refetches when
// either changed.
func (p *Paginated[T]) SetLimit(ctx context.Context, n int) PageState[T] {
	p.mu.Lock()
	if n == p.limit && p.page == 1 {
		p.mu.Unlock()
		return p.Result()
	}
	p.limit = n
	p.page = 1
	fn := p.bind()
	p.mu.Unlock()
	p.unit.run(ctx, fn)
	return p.Result()
}

// SetFilters replaces the filters passed to the retrieval function and
// refetches when they changed.
func (p *Paginated[T]) SetFilters(ctx context.Context, filters map[string]any) PageState[T] {
	p.mu.Lock()
	if reflect.DeepEqual(p.filters, filters) {
		p.mu.Unlock()
		return p.Result()
	}
	p.filters = maps.Clone(filters)
	fn := p.bind()
	p.mu.Unlock()
	p.unit.run(ctx, fn)
	return p.Result()
}

// Result returns a snapshot of the current state.
func (p *Paginated[T]) Result() PageState[T] {
	res := p.unit.Result()
	p.mu.Lock()
	defer p.mu.Unlock()
	return PageState[T]{
		Data:       res.Data.Data,
		Pagination: res.Data.Pagination,
		Loading:    res.Loading,
		Err:        res.Err,
		Page:       p.page,
		Limit:      p.limit,
	}
}

// Close unmounts the unit.
func (p *Paginated[T]) Close() {
	p.unit.Close()
}

// bind captures the current request parameters. Callers hold p.mu.
func (p *Paginated[T]) bind() Func[types.PageResult[T]] {
	page, limit, filters := p.page, p.limit, maps.Clone(p.filters)
	return func(ctx context.Context) (types.PageResult[T], error) {
		return p.fn(ctx, page, limit, filters)
	}
}
