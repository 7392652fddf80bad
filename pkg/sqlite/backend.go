// Package sqlite provides the public API for the SQLite admin store.
// It exposes an attached store and its collections while keeping the
// implementation internal.
package sqlite

import (
	"context"

	"github.com/aihavenlabs/pathwei-admin/internal/logger"
	"github.com/aihavenlabs/pathwei-admin/internal/sqlite"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// Store is an attached SQLite admin store.
//
// Example:
//
//	cfg := types.DefaultConfig()
//	cfg.DataDir = ".pathwei-db"
//	store, err := sqlite.Open(cfg)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	page, err := store.Users.List(ctx, types.ListQuery{Page: 1, Limit: 20})
type Store struct {
	Users       types.Collection[types.User]
	Subscribers types.Collection[types.Subscriber]
	Experiments types.Collection[types.PriceExperiment]

	b *sqlite.Backend
}

// Open attaches the store in cfg.DataDir, creating it when needed. Logs go
// to the default logger.
func Open(cfg types.Config) (*Store, error) {
	b := sqlite.NewBackend(logger.Default())
	if err := b.Attach(cfg); err != nil {
		return nil, err
	}
	return &Store{
		Users:       b.Users(),
		Subscribers: b.Subscribers(),
		Experiments: b.Experiments(),
		b:           b,
	}, nil
}

// Record adds views and conversions to a price test variant.
func (s *Store) Record(ctx context.Context, id string, views, conversions int) (types.PriceExperiment, error) {
	return s.b.Experiments().Record(ctx, id, views, conversions)
}

// Stats returns the headline totals.
func (s *Store) Stats(ctx context.Context) (types.Stats, error) {
	return s.b.Stats(ctx)
}

// LocaleStats returns per-locale totals.
func (s *Store) LocaleStats(ctx context.Context) ([]types.LocaleStat, error) {
	return s.b.LocaleStats(ctx)
}

// ExportSubscribers writes subscribed addresses, optionally limited to one
// locale, to a JSONL file and returns how many were written.
func (s *Store) ExportSubscribers(ctx context.Context, path, locale string) (int, error) {
	return s.b.Subscribers().ExportJSONL(ctx, path, locale)
}

// Close detaches the store. Collections fail with ErrBackendDetached
// afterwards.
func (s *Store) Close() error {
	return s.b.Detach()
}
