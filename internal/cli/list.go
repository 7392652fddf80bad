package cli

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aihavenlabs/pathwei-admin/internal/crud"
	"github.com/aihavenlabs/pathwei-admin/internal/fetch"
	"github.com/aihavenlabs/pathwei-admin/internal/filter"
	"github.com/aihavenlabs/pathwei-admin/internal/pagination"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// filterFlag binds a command-line flag to a collection filter key.
type filterFlag struct {
	key   string
	flag  string
	usage string
}

// listSpec describes how one collection is printed.
type listSpec[T any] struct {
	name   string
	header []string
	row    func(T) []string
	empty  string
}

func addListFlags(cmd *cobra.Command, ff []filterFlag) {
	for _, f := range ff {
		cmd.Flags().String(f.flag, "", f.usage)
	}
	cmd.Flags().Int(filter.KeyPage, 1, "page number")
	cmd.Flags().Int(filter.KeyLimit, 0, "items per page (default: pagination.default_limit)")
}

// listParams collects the flags the user set as query parameters, so that
// they go through the same coercion as API query strings.
func listParams(cmd *cobra.Command, ff []filterFlag) url.Values {
	q := url.Values{}
	for _, f := range ff {
		if cmd.Flags().Changed(f.flag) {
			v, _ := cmd.Flags().GetString(f.flag)
			q.Set(f.key, v)
		}
	}
	for _, k := range []string{filter.KeyPage, filter.KeyLimit} {
		if cmd.Flags().Changed(k) {
			v, _ := cmd.Flags().GetInt(k)
			q.Set(k, strconv.Itoa(v))
		}
	}
	return q
}

// runList fetches one page of coll and prints it with a pagination footer.
func runList[T any](cmd *cobra.Command, a *app, coll types.Collection[T], spec listSpec[T], params url.Values) error {
	schema, ok := filter.ForCollection(spec.name, a.cfg.Pagination.DefaultLimit)
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrCollectionNotFound, spec.name)
	}
	fs := filter.New(schema, filter.WithLogger(a.log))
	fs.SetFromSearchParams(params)
	if fs.HasActive() {
		a.log.Debug("filters applied", "collection", spec.name, "count", fs.ActiveCount(), "query", fs.SearchParams().Encode())
	}

	limit := fs.Limit(a.cfg.Pagination.DefaultLimit)
	if m := a.cfg.Pagination.MaxLimit; m > 0 {
		limit = min(limit, m)
	}
	pageFn := func(ctx context.Context, page, limit int, filters map[string]any) (types.PageResult[T], error) {
		return coll.List(ctx, types.ListQuery{Page: page, Limit: limit, Filters: filters})
	}
	p := fetch.NewPaginated(pageFn, fs.Page(), limit, fs.Active().Map(),
		fetch.WithLogger[types.PageResult[T]](a.log),
		fetch.WithName[types.PageResult[T]](spec.name),
	)
	defer p.Close()

	res := p.Mount(cmd.Context())
	if res.Err != nil {
		return fmt.Errorf("list %s: %w", spec.name, res.Err)
	}

	pg := pagination.New(pagination.Options{
		InitialPage:     res.Page,
		InitialLimit:    res.Limit,
		MaxVisiblePages: a.cfg.Pagination.MaxVisiblePages,
	})
	pg.Update(pagination.PatchFrom(res.Pagination))

	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return printJSON(out, types.PageResult[T]{Data: res.Data, Pagination: res.Pagination})
	}
	if len(res.Data) == 0 {
		fmt.Fprintln(out, spec.empty)
	} else {
		rows := make([][]string, len(res.Data))
		for i, e := range res.Data {
			rows[i] = spec.row(e)
		}
		if err := printTable(out, spec.header, rows); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, footer(pg))
	return nil
}

// mutator wraps coll in a CRUD unit that logs each outcome.
func mutator[T any](a *app, kind string, coll types.Collection[T]) *crud.Unit[T] {
	return crud.New(crud.Handlers[T]{
		Create: coll.Create,
		Update: coll.Update,
		Delete: coll.Delete,
		OnSuccess: func(op types.Operation, _ any) {
			a.log.Info(kind+" "+string(op)+"d")
		},
	}, a.log)
}

// printEntity prints e as JSON in --json mode and msg otherwise.
func printEntity(cmd *cobra.Command, a *app, e any, msg string) error {
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), e)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), msg)
	return err
}
