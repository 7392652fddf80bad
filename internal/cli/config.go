package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aihavenlabs/pathwei-admin/internal/logger"
	"github.com/aihavenlabs/pathwei-admin/internal/paths"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// Config keys that have environment overrides. The data directory is
// resolved by the paths package so that its precedence stays
// flag > config > env.
const (
	cfgKeyRemoteURL = "remote.base_url"
	cfgKeyLogLevel  = "log.level"
)

const configHeader = "# pathwei-admin configuration\n" +
	"# Flags override these values; see pathwei-admin --help.\n\n"

// load resolves directories, reads config.yaml and applies flag overrides.
// A default config.yaml is written on first run.
func (a *app) load(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}

	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.remote != "" {
		cfg.Remote.BaseURL = a.flags.remote
	}
	cfg.DataDir, err = paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	a.configDir = configDir
	a.cfg = cfg
	a.log = logger.New(logger.Config{
		Level:  cfg.Log.Level,
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	})
	a.log.Debug("configuration loaded", "config_dir", configDir, "data_dir", cfg.DataDir, "remote", cfg.Remote.BaseURL)
	return nil
}

// loadConfig reads config.yaml from configDir with viper on top of the
// defaults. A missing file is created with the defaults.
func loadConfig(configDir string) (types.Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return types.Config{}, fmt.Errorf("create config directory: %w", err)
	}
	path := paths.ConfigFile(configDir)
	if _, err := writeConfigIfMissing(path, types.DefaultConfig()); err != nil {
		return types.Config{}, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	setDefaults(v, types.DefaultConfig())
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PATHWEI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv(cfgKeyRemoteURL, "PATHWEI_REMOTE_URL"); err != nil {
		return types.Config{}, err
	}
	if err := v.BindEnv(cfgKeyLogLevel); err != nil {
		return types.Config{}, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault("backend", d.Backend)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault(cfgKeyRemoteURL, d.Remote.BaseURL)
	v.SetDefault("remote.timeout", d.Remote.Timeout)
	v.SetDefault("remote.retries", d.Remote.Retries)
	v.SetDefault("pagination.default_limit", d.Pagination.DefaultLimit)
	v.SetDefault("pagination.max_limit", d.Pagination.MaxLimit)
	v.SetDefault("pagination.max_visible_pages", d.Pagination.MaxVisiblePages)
	v.SetDefault(cfgKeyLogLevel, d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
}

// writeConfigIfMissing writes cfg to path unless the file exists. It reports
// whether a file was written.
func writeConfigIfMissing(path string, cfg types.Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}
	return true, writeConfig(path, cfg)
}

func writeConfig(path string, cfg types.Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}
