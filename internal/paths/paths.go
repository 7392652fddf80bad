// Package paths resolves the configuration and data directories of the admin
// CLI. Explicit values always win; environment overrides come next, then the
// platform or working-directory defaults.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user platform directories.
const AppName = "pathwei-admin"

// DefaultDataDirName is the data directory created in the working directory
// when nothing else is configured.
const DefaultDataDirName = ".pathwei-db"

// ConfigFileName is the configuration file inside the config directory.
const ConfigFileName = "config.yaml"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "PATHWEI_CONFIG_DIR"
	EnvDataDir   = "PATHWEI_DATA_DIR"
)

// platform holds the lookups that tests override.
var platform = struct {
	goos          string
	getenv        func(string) string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	goos:          runtime.GOOS,
	getenv:        os.Getenv,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// appDir returns the per-user directory for AppName. On Linux it honours
// xdgVar and falls back to ~/<linuxFallback>; elsewhere it uses
// os.UserConfigDir for both config and data.
func appDir(xdgVar string, linuxFallback ...string) (string, error) {
	if platform.goos != "linux" {
		dir, err := platform.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := platform.getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platform.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, linuxFallback...), AppName)...), nil
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/pathwei-admin (fallback ~/.config/pathwei-admin)
// macOS:   ~/Library/Application Support/pathwei-admin
// Windows: %APPDATA%/pathwei-admin
func DefaultConfigDir() (string, error) {
	return appDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
// Linux:   $XDG_DATA_HOME/pathwei-admin (fallback ~/.local/share/pathwei-admin)
// Other:   same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	return appDir("XDG_DATA_HOME", ".local", "share")
}

// ResolveConfigDir applies flag > PATHWEI_CONFIG_DIR > DefaultConfigDir.
// Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstNonEmpty(flag, platform.getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies flag > config data_dir > PATHWEI_DATA_DIR >
// $(CWD)/.pathwei-db. The store is kept next to the working directory by
// default so that separate checkouts get separate databases.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstNonEmpty(flag, configValue, platform.getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := platform.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the configuration file path inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
