package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Name             string `toml:"name"`
	LogLevel         string `toml:"log_level"`
	FailurePolicy    string `toml:"failure_policy"`
	StartStopThreads *int   `toml:"start_stop_threads"`
	BackgroundDelay  string `toml:"background_delay"`
	StatusDir        string `toml:"status_dir"`
	Once             *bool  `toml:"once"`
	WatchConfig      *bool  `toml:"watch_config"`
	SweeperDir       string `toml:"sweeper_dir"`
	SweeperMaxAge    string `toml:"sweeper_max_age"`
	SweeperMaxFiles  int    `toml:"sweeper_max_files"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.hostd/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".hostd", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("name", fc.Name, &cfg.Name)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("failure-policy", fc.FailurePolicy, &cfg.FailurePolicy)
	s.setString("status-dir", fc.StatusDir, &cfg.StatusDir)
	s.setString("sweeper-dir", fc.SweeperDir, &cfg.SweeperDir)

	if err := s.setDuration("background-delay", fc.BackgroundDelay, &cfg.BackgroundDelay); err != nil {
		return err
	}
	if err := s.setDuration("sweeper-max-age", fc.SweeperMaxAge, &cfg.SweeperMaxAge); err != nil {
		return err
	}

	s.setIntPtr("start-stop-threads", fc.StartStopThreads, &cfg.StartStopThreads)
	s.setInt("sweeper-max-files", fc.SweeperMaxFiles, &cfg.SweeperMaxFiles)

	s.setBool("once", fc.Once, &cfg.Once)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// Reload re-reads the config file at path on top of cur. Environment and
// flags keep their precedence. The result is validated; on error cur is returned unchanged.
func Reload(cur Config, path string, changed map[string]bool) (Config, error) {
	fc, err := LoadFileConfig(path)
	if err != nil {
		return cur, fmt.Errorf("load config: %w", err)
	}
	next := cur
	if err := ApplyFileConfig(&next, fc, changed); err != nil {
		return cur, err
	}
	if err := ApplyEnvConfig(&next, changed); err != nil {
		return cur, err
	}
	if err := next.Validate(); err != nil {
		return cur, err
	}
	return next, nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
