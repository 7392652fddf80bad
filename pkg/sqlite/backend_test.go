package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	cfg := types.DefaultConfig()
	cfg.DataDir = t.TempDir()

	s, err := Open(cfg)
	require.NoError(t, err)

	u, err := s.Users.Create(ctx, types.User{Email: "ops@pathwei.test", Name: "Ops", Role: types.RoleAdmin, Locale: "en", Active: true})
	require.NoError(t, err)
	_, err = s.Subscribers.Create(ctx, types.Subscriber{Email: "r@pathwei.test", Locale: "en", Subscribed: true})
	require.NoError(t, err)
	e, err := s.Experiments.Create(ctx, types.PriceExperiment{Name: "pro", Variant: "A", PriceCents: 500, Locale: "en"})
	require.NoError(t, err)

	e, err = s.Record(ctx, e.ID, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, e.Views)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.Stats{Users: 1, ActiveUsers: 1, Subscribers: 1, ActiveSubscribers: 1, Experiments: 1}, stats)

	locales, err := s.LocaleStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.LocaleStat{{Locale: "en", Users: 1, Subscribers: 1}}, locales)

	n, err := s.ExportSubscribers(ctx, filepath.Join(t.TempDir(), "subs.jsonl"), "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Close())
	_, err = s.Users.Get(ctx, u.ID)
	assert.ErrorIs(t, err, types.ErrBackendDetached)
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(types.Config{DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendEmpty)
}
