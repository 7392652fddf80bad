package cli

import (
	"context"
	"fmt"

	"github.com/aihavenlabs/pathwei-admin/internal/client"
	"github.com/aihavenlabs/pathwei-admin/internal/dashboard"
	"github.com/aihavenlabs/pathwei-admin/internal/sqlite"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// errRemoteUnsupported is returned by commands that need direct access to
// the local store.
var errRemoteUnsupported = fmt.Errorf("%w: command requires the local store; drop --remote", errUsage)

// store gives commands the same collections whether they run against the
// local SQLite store or a remote admin API.
type store struct {
	users       types.Collection[types.User]
	subscribers types.Collection[types.Subscriber]
	experiments types.Collection[types.PriceExperiment]

	record      func(ctx context.Context, id string, views, conversions int) (types.PriceExperiment, error)
	stats       func(ctx context.Context) (types.Stats, error)
	localeStats func(ctx context.Context) ([]types.LocaleStat, error)

	// backend is nil in remote mode.
	backend *sqlite.Backend
}

// openStore attaches the local store, or builds an API client when a remote
// base URL is configured. The caller must call close.
func (a *app) openStore() (*store, error) {
	if a.cfg.Remote.BaseURL != "" {
		c, err := client.New(a.cfg.Remote, a.log)
		if err != nil {
			return nil, fmt.Errorf("create API client: %w", err)
		}
		return &store{
			users:       c.Users(),
			subscribers: c.Subscribers(),
			experiments: c.Experiments(),
			record:      c.RecordExperiment,
			stats:       c.Stats,
			localeStats: c.LocaleStats,
		}, nil
	}
	b, err := a.attachBackend()
	if err != nil {
		return nil, err
	}
	return &store{
		users:       b.Users(),
		subscribers: b.Subscribers(),
		experiments: b.Experiments(),
		record:      b.Experiments().Record,
		stats:       b.Stats,
		localeStats: b.LocaleStats,
		backend:     b,
	}, nil
}

// openLocal attaches the local store and refuses remote mode.
func (a *app) openLocal() (*store, error) {
	if a.cfg.Remote.BaseURL != "" {
		return nil, errRemoteUnsupported
	}
	return a.openStore()
}

func (a *app) attachBackend() (*sqlite.Backend, error) {
	b := sqlite.NewBackend(a.log)
	if err := b.Attach(a.cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	return b, nil
}

func (s *store) close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Detach()
}

func (s *store) dashboardSource() dashboard.Source {
	return dashboard.Source{
		Stats:       s.stats,
		LocaleStats: s.localeStats,
		Users:       s.users,
		Experiments: s.experiments,
	}
}
