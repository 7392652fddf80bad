package types

import (
	"errors"
	"net/url"
	"time"
)

// Config holds backend selection and the injected runtime settings that
// would otherwise be compiled-in constants (base URLs, page sizes).
type Config struct {
	Backend    string           `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir    string           `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Remote     RemoteConfig     `json:"remote" yaml:"remote" mapstructure:"remote"`
	Pagination PaginationConfig `json:"pagination" yaml:"pagination" mapstructure:"pagination"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the admin HTTP API.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// RemoteConfig points the CLI at a running admin API instead of the local
// store. An empty BaseURL means local mode.
type RemoteConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	Retries int           `json:"retries" yaml:"retries" mapstructure:"retries"`
}

// PaginationConfig holds page size defaults shared by the API and the CLI.
type PaginationConfig struct {
	DefaultLimit    int `json:"default_limit" yaml:"default_limit" mapstructure:"default_limit"`
	MaxLimit        int `json:"max_limit" yaml:"max_limit" mapstructure:"max_limit"`
	MaxVisiblePages int `json:"max_visible_pages" yaml:"max_visible_pages" mapstructure:"max_visible_pages"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level"`
	JSON  bool   `json:"json" yaml:"json" mapstructure:"json"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Defaults applied by DefaultConfig and by callers that receive zero values.
const (
	DefaultServerAddr      = "127.0.0.1:8420"
	DefaultPageLimit       = 20
	DefaultMaxPageLimit    = 200
	DefaultMaxVisiblePages = 5
	DefaultRemoteTimeout   = 10 * time.Second
	DefaultRemoteRetries   = 2
)

// Config validation errors.
var (
	ErrBackendEmpty      = errors.New("backend must not be empty")
	ErrBackendUnknown    = errors.New("unknown backend")
	ErrRemoteURLInvalid  = errors.New("remote base_url must be an absolute http(s) URL")
	ErrPageLimitInvalid  = errors.New("pagination limits must be positive and default_limit <= max_limit")
	ErrVisiblePagesRange = errors.New("max_visible_pages must be positive")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{
		Backend: BackendSQLite,
		Server:  ServerConfig{Addr: DefaultServerAddr},
		Remote: RemoteConfig{
			Timeout: DefaultRemoteTimeout,
			Retries: DefaultRemoteRetries,
		},
		Pagination: PaginationConfig{
			DefaultLimit:    DefaultPageLimit,
			MaxLimit:        DefaultMaxPageLimit,
			MaxVisiblePages: DefaultMaxVisiblePages,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Remote.BaseURL != "" {
		u, err := url.Parse(c.Remote.BaseURL)
		if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return ErrRemoteURLInvalid
		}
	}
	p := c.Pagination
	if p.DefaultLimit < 0 || p.MaxLimit < 0 || (p.MaxLimit > 0 && p.DefaultLimit > p.MaxLimit) {
		return ErrPageLimitInvalid
	}
	if p.MaxVisiblePages < 0 {
		return ErrVisiblePagesRange
	}
	return nil
}
