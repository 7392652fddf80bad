// Package sqlite implements the admin collection store on SQLite.
package sqlite

// Schema DDL for all tables. Statements are idempotent so Attach can apply
// them to an existing database.
const (
	createUsers = `CREATE TABLE IF NOT EXISTS users (
    user_id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    role TEXT NOT NULL,
    locale TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL
);`

	createSubscribers = `CREATE TABLE IF NOT EXISTS subscribers (
    subscriber_id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    locale TEXT NOT NULL,
    subscribed INTEGER NOT NULL DEFAULT 1,
    source TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);`

	createExperiments = `CREATE TABLE IF NOT EXISTS price_experiments (
    experiment_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    variant TEXT NOT NULL,
    price_cents INTEGER NOT NULL,
    locale TEXT NOT NULL,
    views INTEGER NOT NULL DEFAULT 0,
    conversions INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    UNIQUE (name, variant, locale)
);`
)

// Index DDL for common queries.
const (
	idxUsersRole          = `CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);`
	idxUsersLocale        = `CREATE INDEX IF NOT EXISTS idx_users_locale ON users(locale);`
	idxUsersCreated       = `CREATE INDEX IF NOT EXISTS idx_users_created ON users(created_at);`
	idxSubscribersLocale  = `CREATE INDEX IF NOT EXISTS idx_subscribers_locale ON subscribers(locale);`
	idxSubscribersCreated = `CREATE INDEX IF NOT EXISTS idx_subscribers_created ON subscribers(created_at);`
	idxExperimentsName    = `CREATE INDEX IF NOT EXISTS idx_experiments_name ON price_experiments(name);`
	idxExperimentsLocale  = `CREATE INDEX IF NOT EXISTS idx_experiments_locale ON price_experiments(locale);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createUsers,
	createSubscribers,
	createExperiments,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxUsersRole,
	idxUsersLocale,
	idxUsersCreated,
	idxSubscribersLocale,
	idxSubscribersCreated,
	idxExperimentsName,
	idxExperimentsLocale,
}
