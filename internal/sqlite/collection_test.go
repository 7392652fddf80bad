package sqlite

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

func newUser(i int, role types.Role, locale string, active bool) types.User {
	return types.User{
		Email:  fmt.Sprintf("user%02d@pathwei.test", i),
		Name:   fmt.Sprintf("User %02d", i),
		Role:   role,
		Locale: locale,
		Active: active,
	}
}

func TestUsers_CreateGetUpdateDelete(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()
	users := b.Users()

	created, err := users.Create(ctx, newUser(1, types.RoleEditor, "en", true))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := users.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, types.RoleEditor, got.Role)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))

	patch := got
	patch.Role = types.RoleManager
	patch.Active = false
	updated, err := users.Update(ctx, created.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, types.RoleManager, updated.Role)
	assert.False(t, updated.Active)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	require.NoError(t, users.Delete(ctx, created.ID))
	_, err = users.Get(ctx, created.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, users.Delete(ctx, created.ID), types.ErrNotFound)
}

func TestUsers_CreateValidation(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*types.User)
		want   error
	}{
		{"bad email", func(u *types.User) { u.Email = "not-an-email" }, types.ErrInvalidData},
		{"missing name", func(u *types.User) { u.Name = "" }, types.ErrInvalidData},
		{"unknown role", func(u *types.User) { u.Role = "owner" }, types.ErrInvalidData},
		{"role all is not assignable", func(u *types.User) { u.Role = types.RoleAll }, types.ErrInvalidData},
		{"bad locale", func(u *types.User) { u.Locale = "english!" }, types.ErrInvalidData},
		{"bad id", func(u *types.User) { u.ID = "123" }, types.ErrInvalidID},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUser(i+1, types.RoleViewer, "en", true)
			tt.mutate(&u)
			_, err := b.Users().Create(ctx, u)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUsers_DuplicateEmail(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()

	_, err := b.Users().Create(ctx, newUser(1, types.RoleViewer, "en", true))
	require.NoError(t, err)
	_, err = b.Users().Create(ctx, newUser(1, types.RoleAdmin, "de", true))
	assert.ErrorIs(t, err, types.ErrDuplicate)
}

func TestUsers_UpdateMissing(t *testing.T) {
	b := attachTemp(t)
	_, err := b.Users().Update(context.Background(), newUUID(), newUser(1, types.RoleViewer, "en", true))
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = b.Users().Update(context.Background(), "", newUser(1, types.RoleViewer, "en", true))
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestUsers_ListPagination(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()
	for i := 1; i <= 23; i++ {
		_, err := b.Users().Create(ctx, newUser(i, types.RoleViewer, "en", true))
		require.NoError(t, err)
	}

	page, err := b.Users().List(ctx, types.ListQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, types.Pagination{CurrentPage: 3, TotalPages: 3, TotalItems: 23, ItemsPerPage: 10}, page.Pagination)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "user03@pathwei.test", page.Data[0].Email, "newest first")
	assert.Equal(t, "user01@pathwei.test", page.Data[2].Email)

	first, err := b.Users().List(ctx, types.ListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "user23@pathwei.test", first.Data[0].Email)

	past, err := b.Users().List(ctx, types.ListQuery{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, past.Data)
	assert.Empty(t, past.Data)
	assert.Equal(t, 9, past.Pagination.CurrentPage)
	assert.Equal(t, 23, past.Pagination.TotalItems)

	defaults, err := b.Users().List(ctx, types.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, defaults.Data, types.DefaultPageLimit)
	assert.Equal(t, 1, defaults.Pagination.CurrentPage)
}

func TestUsers_ListHugePage(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		_, err := b.Users().Create(ctx, newUser(i, types.RoleViewer, "en", true))
		require.NoError(t, err)
	}

	for _, page := range []int{461168601842738790, 9e18, math.MaxInt} {
		got, err := b.Users().List(ctx, types.ListQuery{Page: page, Limit: 20})
		require.NoError(t, err, "page %d", page)
		assert.Empty(t, got.Data)
		assert.Equal(t, page, got.Pagination.CurrentPage)
		assert.Equal(t, 3, got.Pagination.TotalItems)
	}

	got, err := b.Users().List(ctx, types.ListQuery{Page: 1, Limit: math.MaxInt})
	require.NoError(t, err)
	assert.Len(t, got.Data, 3)
	assert.Equal(t, 1, got.Pagination.TotalPages)
}

func TestUsers_ListEmpty(t *testing.T) {
	b := attachTemp(t)
	page, err := b.Users().List(context.Background(), types.ListQuery{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Equal(t, types.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 0, ItemsPerPage: 20}, page.Pagination)
}

func TestUsers_ListFilters(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()
	seed := []types.User{
		newUser(1, types.RoleAdmin, "en", true),
		newUser(2, types.RoleViewer, "en", false),
		newUser(3, types.RoleViewer, "de", true),
		newUser(4, types.RoleEditor, "de", true),
	}
	seed[2].Name = "Grace Hopper"
	for _, u := range seed {
		_, err := b.Users().Create(ctx, u)
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		filters map[string]any
		want    []string
	}{
		{"no filters", nil, []string{"user04", "user03", "user02", "user01"}},
		{"role", map[string]any{types.FilterRole: "viewer"}, []string{"user03", "user02"}},
		{"locale and role", map[string]any{types.FilterRole: "viewer", types.FilterLocale: "de"}, []string{"user03"}},
		{"active", map[string]any{types.FilterActive: false}, []string{"user02"}},
		{"active from query string", map[string]any{types.FilterActive: "true"}, []string{"user04", "user03", "user01"}},
		{"empty active ignored", map[string]any{types.FilterActive: ""}, []string{"user04", "user03", "user02", "user01"}},
		{"search name case-insensitive", map[string]any{types.FilterSearch: "grace"}, []string{"user03"}},
		{"search email", map[string]any{types.FilterSearch: "USER04@"}, []string{"user04"}},
		{"empty strings ignored", map[string]any{types.FilterRole: "", types.FilterSearch: ""}, []string{"user04", "user03", "user02", "user01"}},
		{"pagination and unknown keys ignored", map[string]any{"page": 4.0, "limit": 50.0, "utm": "x"}, []string{"user04", "user03", "user02", "user01"}},
		{"search with wildcard chars", map[string]any{types.FilterSearch: "%"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := b.Users().List(ctx, types.ListQuery{Page: 1, Limit: 10, Filters: tt.filters})
			require.NoError(t, err)
			var got []string
			for _, u := range page.Data {
				got = append(got, u.Email[:6])
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), page.Pagination.TotalItems)
		})
	}
}

func TestUsers_ListInvalidFilterType(t *testing.T) {
	b := attachTemp(t)
	_, err := b.Users().List(context.Background(), types.ListQuery{Filters: map[string]any{types.FilterActive: "yes"}})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
	_, err = b.Users().List(context.Background(), types.ListQuery{Filters: map[string]any{types.FilterRole: 3.0}})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestExperiments_MinViewsAndRecord(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()
	exps := b.Experiments()

	low, err := exps.Create(ctx, types.PriceExperiment{Name: "pro", Variant: "control", PriceCents: 999, Locale: "en", Views: 10, Conversions: 1})
	require.NoError(t, err)
	_, err = exps.Create(ctx, types.PriceExperiment{Name: "pro", Variant: "higher", PriceCents: 1299, Locale: "en", Views: 500, Conversions: 20})
	require.NoError(t, err)

	page, err := exps.List(ctx, types.ListQuery{Filters: map[string]any{types.FilterMinViews: 100.0}})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "higher", page.Data[0].Variant)

	got, err := exps.Record(ctx, low.ID, 90, 4)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Views)
	assert.Equal(t, 5, got.Conversions)
	assert.InDelta(t, 0.05, got.ConversionRate(), 1e-9)

	_, err = exps.Record(ctx, low.ID, 0, 200)
	assert.ErrorIs(t, err, ErrConversionsExceedViews)
	assert.ErrorIs(t, err, types.ErrInvalidData)

	_, err = exps.Record(ctx, newUUID(), 1, 0)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestExperiments_RecordRejectsOverflow(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()
	exps := b.Experiments()
	e, err := exps.Create(ctx, types.PriceExperiment{Name: "pro", Variant: "control", PriceCents: 999, Locale: "en", Views: 10, Conversions: 1})
	require.NoError(t, err)

	_, err = exps.Record(ctx, e.ID, math.MaxInt, math.MaxInt)
	assert.ErrorIs(t, err, types.ErrInvalidData)
	_, err = exps.Record(ctx, e.ID, math.MaxInt-5, 0)
	assert.ErrorIs(t, err, types.ErrInvalidData)

	got, err := exps.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Views)
	assert.Equal(t, 1, got.Conversions)

	page, err := exps.List(ctx, types.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)

	got, err = exps.Record(ctx, e.ID, math.MaxInt-10, 0)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got.Views)
}

func TestExperiments_ConversionsCannotExceedViews(t *testing.T) {
	b := attachTemp(t)
	_, err := b.Experiments().Create(context.Background(), types.PriceExperiment{
		Name: "pro", Variant: "control", PriceCents: 999, Locale: "en", Views: 5, Conversions: 6,
	})
	assert.ErrorIs(t, err, types.ErrInvalidData)
}
