package sqlite

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

var userDef = entityDef[types.User]{
	table:    "users",
	idColumn: "user_id",
	columns:  []string{"email", "name", "role", "locale", "active"},
	values: func(u types.User) []any {
		return []any{u.Email, u.Name, string(u.Role), u.Locale, u.Active}
	},
	scan: func(s scanner) (types.User, error) {
		var u types.User
		var role, createdAt string
		if err := s.Scan(&u.ID, &u.Email, &u.Name, &role, &u.Locale, &u.Active, &createdAt); err != nil {
			return types.User{}, err
		}
		u.Role = types.Role(role)
		var err error
		u.CreatedAt, err = parseTime(createdAt)
		return u, err
	},
	meta: func(u *types.User) (*string, *time.Time) { return &u.ID, &u.CreatedAt },
	filters: map[string]filterSpec{
		types.FilterSearch: {filterSearch, []string{"email", "name"}},
		types.FilterRole:   {filterEq, []string{"role"}},
		types.FilterLocale: {filterEq, []string{"locale"}},
		types.FilterActive: {filterBool, []string{"active"}},
	},
}

var subscriberDef = entityDef[types.Subscriber]{
	table:    "subscribers",
	idColumn: "subscriber_id",
	columns:  []string{"email", "locale", "subscribed", "source"},
	values: func(s types.Subscriber) []any {
		return []any{s.Email, s.Locale, s.Subscribed, s.Source}
	},
	scan: func(s scanner) (types.Subscriber, error) {
		var sub types.Subscriber
		var createdAt string
		if err := s.Scan(&sub.ID, &sub.Email, &sub.Locale, &sub.Subscribed, &sub.Source, &createdAt); err != nil {
			return types.Subscriber{}, err
		}
		var err error
		sub.CreatedAt, err = parseTime(createdAt)
		return sub, err
	},
	meta: func(s *types.Subscriber) (*string, *time.Time) { return &s.ID, &s.CreatedAt },
	filters: map[string]filterSpec{
		types.FilterSearch:     {filterSearch, []string{"email"}},
		types.FilterLocale:     {filterEq, []string{"locale"}},
		types.FilterSource:     {filterEq, []string{"source"}},
		types.FilterSubscribed: {filterBool, []string{"subscribed"}},
	},
}

var experimentDef = entityDef[types.PriceExperiment]{
	table:    "price_experiments",
	idColumn: "experiment_id",
	columns:  []string{"name", "variant", "price_cents", "locale", "views", "conversions"},
	values: func(e types.PriceExperiment) []any {
		return []any{e.Name, e.Variant, e.PriceCents, e.Locale, e.Views, e.Conversions}
	},
	scan: func(s scanner) (types.PriceExperiment, error) {
		var e types.PriceExperiment
		var createdAt string
		if err := s.Scan(&e.ID, &e.Name, &e.Variant, &e.PriceCents, &e.Locale, &e.Views, &e.Conversions, &createdAt); err != nil {
			return types.PriceExperiment{}, err
		}
		var err error
		e.CreatedAt, err = parseTime(createdAt)
		return e, err
	},
	meta: func(e *types.PriceExperiment) (*string, *time.Time) { return &e.ID, &e.CreatedAt },
	filters: map[string]filterSpec{
		types.FilterSearch:   {filterSearch, []string{"name", "variant"}},
		types.FilterName:     {filterEq, []string{"name"}},
		types.FilterVariant:  {filterEq, []string{"variant"}},
		types.FilterLocale:   {filterEq, []string{"locale"}},
		types.FilterMinViews: {filterMin, []string{"views"}},
	},
}

// Subscribers is the newsletter subscribers collection.
type Subscribers struct {
	*collection[types.Subscriber]
}

// Experiments is the price experiments collection.
type Experiments struct {
	*collection[types.PriceExperiment]
}

// ErrConversionsExceedViews is returned when recording would leave more
// conversions than views.
var ErrConversionsExceedViews = errors.New("conversions exceed views")

// Record adds views and conversions to an experiment variant and returns the
// updated variant.
func (x *Experiments) Record(ctx context.Context, id string, views, conversions int) (types.PriceExperiment, error) {
	if id == "" {
		return types.PriceExperiment{}, types.ErrInvalidID
	}
	if views < 0 || conversions < 0 {
		return types.PriceExperiment{}, fmt.Errorf("%w: negative counts", types.ErrInvalidData)
	}

	x.b.mu.Lock()
	defer x.b.mu.Unlock()
	if !x.b.attached {
		return types.PriceExperiment{}, types.ErrBackendDetached
	}

	cur, err := x.get(ctx, id)
	if err != nil {
		return types.PriceExperiment{}, err
	}
	if views > math.MaxInt-cur.Views || conversions > math.MaxInt-cur.Conversions {
		return types.PriceExperiment{}, fmt.Errorf("%w: counts overflow", types.ErrInvalidData)
	}
	if cur.Conversions+conversions > cur.Views+views {
		return types.PriceExperiment{}, fmt.Errorf("%w: %w", types.ErrInvalidData, ErrConversionsExceedViews)
	}

	stmt := sq.Update(x.def.table).
		Set("views", sq.Expr("views + ?", views)).
		Set("conversions", sq.Expr("conversions + ?", conversions)).
		Where(sq.Eq{x.def.idColumn: id})
	if err := x.execOne(ctx, stmt); err != nil {
		return types.PriceExperiment{}, err
	}
	return x.get(ctx, id)
}
