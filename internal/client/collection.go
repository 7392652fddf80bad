package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// Remote is a collection served by the admin API.
type Remote[T any] struct {
	c    *Client
	name string
}

// Collection returns the remote collection with the given name.
func Collection[T any](c *Client, name string) *Remote[T] {
	return &Remote[T]{c: c, name: name}
}

var _ types.Collection[types.User] = (*Remote[types.User])(nil)

func (r *Remote[T]) path(id string) string {
	if id == "" {
		return "/" + r.name
	}
	return "/" + r.name + "/" + url.PathEscape(id)
}

func (r *Remote[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	if id == "" {
		return out, types.ErrInvalidID
	}
	err := r.c.do(ctx, http.MethodGet, r.path(id), nil, nil, &out)
	return out, err
}

func (r *Remote[T]) Create(ctx context.Context, e T) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodPost, r.path(""), nil, e, &out)
	return out, err
}

func (r *Remote[T]) Update(ctx context.Context, id string, e T) (T, error) {
	var out T
	if id == "" {
		return out, types.ErrInvalidID
	}
	err := r.c.do(ctx, http.MethodPut, r.path(id), nil, e, &out)
	return out, err
}

func (r *Remote[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return r.c.do(ctx, http.MethodDelete, r.path(id), nil, nil, nil)
}

func (r *Remote[T]) List(ctx context.Context, q types.ListQuery) (types.PageResult[T], error) {
	return r.Page(ctx, q.Page, q.Limit, q.Filters)
}

// Page lists one page. Its signature matches fetch.PageFunc.
func (r *Remote[T]) Page(ctx context.Context, page, limit int, filters map[string]any) (types.PageResult[T], error) {
	query := url.Values{}
	for k, v := range filters {
		if s, ok := queryValue(v); ok {
			query.Set(k, s)
		}
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var out types.PageResult[T]
	if err := r.c.do(ctx, http.MethodGet, r.path(""), query, nil, &out); err != nil {
		return types.PageResult[T]{}, err
	}
	if out.Data == nil {
		out.Data = []T{}
	}
	return out, nil
}

// queryValue formats a filter value for the query string. Nil and empty
// values are left out.
func queryValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	default:
		return fmt.Sprint(x), true
	}
}
