package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aihavenlabs/pathwei-admin/internal/fetch"
	"github.com/aihavenlabs/pathwei-admin/internal/httpapi"
	"github.com/aihavenlabs/pathwei-admin/internal/logger"
	"github.com/aihavenlabs/pathwei-admin/internal/sqlite"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestClient(t *testing.T) (*Client, *sqlite.Backend) {
	t.Helper()
	b := sqlite.NewBackend(logger.Nop())
	cfg := types.DefaultConfig()
	cfg.DataDir = t.TempDir()
	require.NoError(t, b.Attach(cfg))
	t.Cleanup(func() { _ = b.Detach() })

	srv := httptest.NewServer(httpapi.New(httpapi.FromBackend(b), cfg.Pagination, logger.Nop()).Handler())
	t.Cleanup(srv.Close)

	c, err := New(types.RemoteConfig{BaseURL: srv.URL, Retries: -1}, logger.Nop())
	require.NoError(t, err)
	return c, b
}

func TestNew_RequiresValidURL(t *testing.T) {
	_, err := New(types.RemoteConfig{}, logger.Nop())
	assert.ErrorIs(t, err, ErrNoBaseURL)

	_, err = New(types.RemoteConfig{BaseURL: "ftp://example.com"}, logger.Nop())
	assert.ErrorIs(t, err, types.ErrRemoteURLInvalid)
}

func TestRemote_CRUD(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	users := c.Users()

	created, err := users.Create(ctx, types.User{
		Email: "ana@pathwei.test", Name: "Ana", Role: types.RoleAdmin, Locale: "es", Active: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := users.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	got.Name = "Ana María"
	updated, err := users.Update(ctx, got.ID, got)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Name)

	require.NoError(t, users.Delete(ctx, got.ID))
	_, err = users.Get(ctx, got.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRemote_ErrorsUnwrapToSentinels(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	subs := c.Subscribers()

	_, err := subs.Create(ctx, types.Subscriber{Email: "a@pathwei.test", Locale: "en", Subscribed: true})
	require.NoError(t, err)

	_, err = subs.Create(ctx, types.Subscriber{Email: "a@pathwei.test", Locale: "en"})
	assert.ErrorIs(t, err, types.ErrDuplicate)
	apiErr, ok := types.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	_, err = subs.Create(ctx, types.Subscriber{Email: "bad", Locale: "en"})
	assert.ErrorIs(t, err, types.ErrInvalidData)

	_, err = subs.List(ctx, types.ListQuery{Filters: map[string]any{types.FilterSubscribed: "maybe"}})
	apiErr, ok = types.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeBadRequest, apiErr.Code)

	assert.ErrorIs(t, subs.Delete(ctx, ""), types.ErrInvalidID)
}

func TestRemote_PageFeedsPaginatedUnit(t *testing.T) {
	c, b := newTestClient(t)
	ctx := context.Background()
	for i := 1; i <= 23; i++ {
		_, err := b.Subscribers().Create(ctx, types.Subscriber{
			Email:      fmt.Sprintf("s%02d@pathwei.test", i),
			Locale:     "de",
			Subscribed: i%3 != 0,
		})
		require.NoError(t, err)
	}

	var fn fetch.PageFunc[types.Subscriber] = c.Subscribers().Page
	p := fetch.NewPaginated(fn, 1, 10, nil, fetch.WithLogger[types.PageResult[types.Subscriber]](logger.Nop()))
	defer p.Close()

	st := p.Mount(ctx)
	require.NoError(t, st.Err)
	assert.Len(t, st.Data, 10)
	assert.Equal(t, 23, st.Pagination.TotalItems)
	assert.Equal(t, 3, st.Pagination.TotalPages)

	st = p.SetPage(ctx, 3)
	require.NoError(t, st.Err)
	assert.Len(t, st.Data, 3)

	st = p.SetFilters(ctx, map[string]any{types.FilterSubscribed: true})
	require.NoError(t, st.Err)
	assert.Equal(t, 16, st.Pagination.TotalItems)
}

func TestExperimentsAndStats(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	e, err := c.Experiments().Create(ctx, types.PriceExperiment{
		Name: "annual", Variant: "B", PriceCents: 4900, Locale: "fr",
	})
	require.NoError(t, err)

	e, err = c.RecordExperiment(ctx, e.ID, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 10, e.Views)
	assert.Equal(t, 3, e.Conversions)

	_, err = c.RecordExperiment(ctx, e.ID, 0, 20)
	assert.ErrorIs(t, err, types.ErrInvalidData)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Experiments)

	locales, err := c.LocaleStats(ctx)
	require.NoError(t, err)
	assert.NotNil(t, locales)
	assert.Empty(t, locales)
}

func TestRetriesUnavailableServer(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":"SERVICE_UNAVAILABLE","message":"store unavailable"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users":4}`))
	}))
	defer srv.Close()

	c, err := New(types.RemoteConfig{BaseURL: srv.URL, Retries: 2}, logger.Nop())
	require.NoError(t, err)

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Users)
	assert.Equal(t, int32(3), calls.Load())
}

// droppingServer closes every connection without answering and counts the
// requests per method.
func droppingServer(t *testing.T) (*httptest.Server, map[string]*atomic.Int32) {
	t.Helper()
	calls := map[string]*atomic.Int32{http.MethodGet: {}, http.MethodPost: {}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls[r.Method].Add(1)
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		_ = conn.Close()
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func TestTransportErrors_RetryOnlyIdempotentRequests(t *testing.T) {
	srv, calls := droppingServer(t)
	c, err := New(types.RemoteConfig{BaseURL: srv.URL, Retries: 2}, logger.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.RecordExperiment(ctx, "0198c0de-0000-7000-8000-000000000001", 10, 1)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls[http.MethodPost].Load(), "record is not replayed")

	_, err = c.Experiments().Create(ctx, types.PriceExperiment{Name: "pro", Variant: "A", PriceCents: 500, Locale: "en"})
	require.Error(t, err)
	assert.Equal(t, int32(2), calls[http.MethodPost].Load(), "create is not replayed")

	_, err = c.Stats(ctx)
	require.Error(t, err)
	assert.GreaterOrEqual(t, calls[http.MethodGet].Load(), int32(3))
}

func TestRetriesUnavailableServerOnPost(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":"SERVICE_UNAVAILABLE","message":"store unavailable"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"x","views":10,"conversions":1}`))
	}))
	defer srv.Close()

	c, err := New(types.RemoteConfig{BaseURL: srv.URL, Retries: 2}, logger.Nop())
	require.NoError(t, err)

	got, err := c.RecordExperiment(context.Background(), "x", 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Views)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUnexpectedErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(types.RemoteConfig{BaseURL: srv.URL, Retries: -1}, logger.Nop())
	require.NoError(t, err)

	_, err = c.Stats(context.Background())
	apiErr, ok := types.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, types.CodeInternal, apiErr.Code)
}
