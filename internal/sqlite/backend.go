package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aihavenlabs/pathwei-admin/internal/logger"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// DatabaseFile is the file name of the store inside the data directory.
const DatabaseFile = "admin.db"

// Backend owns the SQLite connection and the collection accessors. It is safe
// for concurrent use; writes are serialized by the backend lock.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      logger.Logger
	now      func() time.Time

	users       *collection[types.User]
	subscribers *Subscribers
	experiments *Experiments
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(log logger.Logger) *Backend {
	if log == nil {
		log = logger.Default()
	}
	b := &Backend{log: log, now: time.Now}
	b.users = &collection[types.User]{b: b, def: userDef}
	b.subscribers = &Subscribers{&collection[types.Subscriber]{b: b, def: subscriberDef}}
	b.experiments = &Experiments{&collection[types.PriceExperiment]{b: b, def: experimentDef}}
	return b
}

// Attach opens the store in config.DataDir, creating the directory and the
// schema when needed. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	for _, stmt := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	b.log.Debug("store attached", "path", dbPath)
	return nil
}

// Detach closes the connection. After Detach every operation returns
// ErrBackendDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	b.db = nil
	b.attached = false
	return nil
}

// Attached reports whether the backend is attached.
func (b *Backend) Attached() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.attached
}

// Users returns the users collection.
func (b *Backend) Users() types.Collection[types.User] {
	return b.users
}

// Subscribers returns the newsletter subscribers collection.
func (b *Backend) Subscribers() *Subscribers {
	return b.subscribers
}

// Experiments returns the price experiments collection.
func (b *Backend) Experiments() *Experiments {
	return b.experiments
}

// Stats returns the headline counts shown on the dashboard.
func (b *Backend) Stats(ctx context.Context) (types.Stats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.Stats{}, types.ErrBackendDetached
	}

	const q = `SELECT
    (SELECT COUNT(*) FROM users),
    (SELECT COUNT(*) FROM users WHERE active = 1),
    (SELECT COUNT(*) FROM subscribers),
    (SELECT COUNT(*) FROM subscribers WHERE subscribed = 1),
    (SELECT COUNT(*) FROM price_experiments)`

	var s types.Stats
	err := b.db.QueryRowContext(ctx, q).Scan(&s.Users, &s.ActiveUsers, &s.Subscribers, &s.ActiveSubscribers, &s.Experiments)
	if err != nil {
		return types.Stats{}, fmt.Errorf("querying stats: %w", err)
	}
	return s, nil
}

// LocaleStats returns account and active subscriber counts per locale,
// largest audiences first.
func (b *Backend) LocaleStats(ctx context.Context) ([]types.LocaleStat, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}

	const q = `SELECT locale, SUM(users), SUM(subscribers) FROM (
    SELECT locale, COUNT(*) AS users, 0 AS subscribers FROM users GROUP BY locale
    UNION ALL
    SELECT locale, 0, COUNT(*) FROM subscribers WHERE subscribed = 1 GROUP BY locale
) GROUP BY locale ORDER BY SUM(users) + SUM(subscribers) DESC, locale`

	rows, err := b.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying locale stats: %w", err)
	}
	defer rows.Close()

	stats := []types.LocaleStat{}
	for rows.Next() {
		var s types.LocaleStat
		if err := rows.Scan(&s.Locale, &s.Users, &s.Subscribers); err != nil {
			return nil, fmt.Errorf("scanning locale stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locale stats: %w", err)
	}
	return stats, nil
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
