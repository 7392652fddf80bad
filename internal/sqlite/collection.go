package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type scanner interface {
	Scan(dest ...any) error
}

// filterKind selects how a filter key becomes a WHERE condition.
type filterKind int

const (
	filterEq     filterKind = iota // column = string value
	filterSearch                   // case-insensitive substring over any column
	filterBool                     // column = bool value
	filterMin                      // column >= numeric value
)

type filterSpec struct {
	kind    filterKind
	columns []string
}

// entityDef maps one entity type onto its table. The id column comes first
// and created_at last in every row.
type entityDef[T any] struct {
	table    string
	idColumn string
	columns  []string
	values   func(T) []any
	scan     func(scanner) (T, error)
	meta     func(*T) (id *string, createdAt *time.Time)
	filters  map[string]filterSpec
}

func (d entityDef[T]) selectColumns() []string {
	cols := make([]string, 0, len(d.columns)+2)
	cols = append(cols, d.idColumn)
	cols = append(cols, d.columns...)
	return append(cols, "created_at")
}

// collection implements types.Collection on one table.
type collection[T any] struct {
	b   *Backend
	def entityDef[T]
}

var _ types.Collection[types.User] = (*collection[types.User])(nil)

// Get retrieves an entity by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (c *collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if id == "" {
		return zero, types.ErrInvalidID
	}
	c.b.mu.RLock()
	defer c.b.mu.RUnlock()
	if !c.b.attached {
		return zero, types.ErrBackendDetached
	}
	return c.get(ctx, id)
}

func (c *collection[T]) get(ctx context.Context, id string) (T, error) {
	var zero T
	query, args, err := sq.Select(c.def.selectColumns()...).
		From(c.def.table).
		Where(sq.Eq{c.def.idColumn: id}).
		ToSql()
	if err != nil {
		return zero, fmt.Errorf("building select query: %w", err)
	}
	e, err := c.def.scan(c.b.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, types.ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("getting %s %s: %w", c.def.table, id, err)
	}
	return e, nil
}

// Create validates and inserts e. An empty ID is replaced with a UUID v7 and a
// zero creation time with the current time.
func (c *collection[T]) Create(ctx context.Context, e T) (T, error) {
	var zero T
	id, createdAt := c.def.meta(&e)
	if *id == "" {
		*id = newUUID()
	} else if _, err := uuid.Parse(*id); err != nil {
		return zero, types.ErrInvalidID
	}
	if createdAt.IsZero() {
		*createdAt = c.b.now()
	}
	*createdAt = createdAt.UTC().Truncate(time.Microsecond)
	if err := validateEntity(ctx, e); err != nil {
		return zero, err
	}

	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if !c.b.attached {
		return zero, types.ErrBackendDetached
	}

	vals := make([]any, 0, len(c.def.columns)+2)
	vals = append(vals, *id)
	vals = append(vals, c.def.values(e)...)
	vals = append(vals, formatTime(*createdAt))

	query, args, err := sq.Insert(c.def.table).
		Columns(c.def.selectColumns()...).
		Values(vals...).
		ToSql()
	if err != nil {
		return zero, fmt.Errorf("building insert query: %w", err)
	}
	if _, err := c.b.db.ExecContext(ctx, query, args...); err != nil {
		return zero, writeError("inserting into "+c.def.table, err)
	}
	return e, nil
}

// Update replaces the fields of the entity with the given ID. The stored ID
// and creation time are kept.
func (c *collection[T]) Update(ctx context.Context, id string, e T) (T, error) {
	var zero T
	if id == "" {
		return zero, types.ErrInvalidID
	}
	if err := validateEntity(ctx, e); err != nil {
		return zero, err
	}

	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if !c.b.attached {
		return zero, types.ErrBackendDetached
	}

	ub := sq.Update(c.def.table).Where(sq.Eq{c.def.idColumn: id})
	for i, v := range c.def.values(e) {
		ub = ub.Set(c.def.columns[i], v)
	}
	if err := c.execOne(ctx, ub); err != nil {
		return zero, err
	}
	return c.get(ctx, id)
}

// Delete removes the entity with the given ID.
func (c *collection[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if !c.b.attached {
		return types.ErrBackendDetached
	}
	return c.execOne(ctx, sq.Delete(c.def.table).Where(sq.Eq{c.def.idColumn: id}))
}

// execOne runs a statement that must touch exactly one row.
// The caller must hold the backend write lock.
func (c *collection[T]) execOne(ctx context.Context, stmt sq.Sqlizer) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("building %s statement: %w", c.def.table, err)
	}
	res, err := c.b.db.ExecContext(ctx, query, args...)
	if err != nil {
		return writeError("writing "+c.def.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// List returns one page ordered newest first. Pages past the end are empty
// but still report the real totals. Filter keys the collection does not
// declare, including page and limit, are ignored.
func (c *collection[T]) List(ctx context.Context, q types.ListQuery) (types.PageResult[T], error) {
	page := max(q.Page, 1)
	limit := q.Limit
	if limit < 1 {
		limit = types.DefaultPageLimit
	}
	conds, err := c.conditions(q.Filters)
	if err != nil {
		return types.PageResult[T]{}, err
	}

	c.b.mu.RLock()
	defer c.b.mu.RUnlock()
	if !c.b.attached {
		return types.PageResult[T]{}, types.ErrBackendDetached
	}

	total, err := c.count(ctx, conds)
	if err != nil {
		return types.PageResult[T]{}, err
	}

	// Offsets past the int range cannot hold rows.
	if page-1 > math.MaxInt/limit {
		return types.PageResult[T]{Data: []T{}, Pagination: types.NewPagination(page, limit, total)}, nil
	}

	sb := where(sq.Select(c.def.selectColumns()...).From(c.def.table), conds).
		OrderBy("created_at DESC", c.def.idColumn+" DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit))
	query, args, err := sb.ToSql()
	if err != nil {
		return types.PageResult[T]{}, fmt.Errorf("building list query: %w", err)
	}
	rows, err := c.b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.PageResult[T]{}, fmt.Errorf("listing %s: %w", c.def.table, err)
	}
	defer rows.Close()

	data := make([]T, 0, min(limit, total))
	for rows.Next() {
		e, err := c.def.scan(rows)
		if err != nil {
			return types.PageResult[T]{}, fmt.Errorf("scanning %s: %w", c.def.table, err)
		}
		data = append(data, e)
	}
	if err := rows.Err(); err != nil {
		return types.PageResult[T]{}, fmt.Errorf("iterating %s: %w", c.def.table, err)
	}
	return types.PageResult[T]{Data: data, Pagination: types.NewPagination(page, limit, total)}, nil
}

func (c *collection[T]) count(ctx context.Context, conds []sq.Sqlizer) (int, error) {
	query, args, err := where(sq.Select("COUNT(*)").From(c.def.table), conds).ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count query: %w", err)
	}
	var total int
	if err := c.b.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting %s: %w", c.def.table, err)
	}
	return total, nil
}

// conditions turns filter values into WHERE conditions in key order. Nil and
// empty string values are skipped. A value of the wrong type for its key
// returns ErrInvalidFilter.
func (c *collection[T]) conditions(filters map[string]any) ([]sq.Sqlizer, error) {
	var conds []sq.Sqlizer
	for _, key := range slices.Sorted(maps.Keys(filters)) {
		spec, ok := c.def.filters[key]
		v := filters[key]
		if !ok || v == nil {
			continue
		}
		switch spec.kind {
		case filterEq:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s", types.ErrInvalidFilter, key)
			}
			if s != "" {
				conds = append(conds, sq.Eq{spec.columns[0]: s})
			}
		case filterSearch:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s", types.ErrInvalidFilter, key)
			}
			if s == "" {
				continue
			}
			or := make(sq.Or, 0, len(spec.columns))
			for _, col := range spec.columns {
				or = append(or, sq.Expr("instr(lower("+col+"), lower(?)) > 0", s))
			}
			conds = append(conds, or)
		case filterBool:
			b, set, err := boolFilter(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", types.ErrInvalidFilter, key)
			}
			if set {
				conds = append(conds, sq.Eq{spec.columns[0]: b})
			}
		case filterMin:
			n, ok := number(v)
			if !ok {
				return nil, fmt.Errorf("%w: %s", types.ErrInvalidFilter, key)
			}
			conds = append(conds, sq.GtOrEq{spec.columns[0]: n})
		}
	}
	return conds, nil
}

func where(sb sq.SelectBuilder, conds []sq.Sqlizer) sq.SelectBuilder {
	for _, cond := range conds {
		sb = sb.Where(cond)
	}
	return sb
}

// boolFilter accepts a bool or its string form; "" means unset.
func boolFilter(v any) (value, set bool, err error) {
	switch b := v.(type) {
	case bool:
		return b, true, nil
	case string:
		if b == "" {
			return false, false, nil
		}
		value, err = strconv.ParseBool(b)
		return value, err == nil, err
	default:
		return false, false, types.ErrInvalidFilter
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func validateEntity(ctx context.Context, e any) error {
	if err := validate.StructCtx(ctx, e); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidData, err)
	}
	return nil
}

// writeError maps constraint violations to sentinel errors.
func writeError(op string, err error) error {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(serr.Error(), "UNIQUE")) {
			return fmt.Errorf("%w: %v", types.ErrDuplicate, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return t, nil
}
