package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (HOSTD_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("name", os.Getenv("HOSTD_NAME"), &cfg.Name)
	s.setString("log-level", os.Getenv("HOSTD_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("failure-policy", os.Getenv("HOSTD_FAILURE_POLICY"), &cfg.FailurePolicy)
	s.setString("status-dir", os.Getenv("HOSTD_STATUS_DIR"), &cfg.StatusDir)
	s.setString("sweeper-dir", os.Getenv("HOSTD_SWEEPER_DIR"), &cfg.SweeperDir)

	if err := s.setDuration("background-delay", os.Getenv("HOSTD_BACKGROUND_DELAY"), &cfg.BackgroundDelay); err != nil {
		return err
	}
	if err := s.setDuration("sweeper-max-age", os.Getenv("HOSTD_SWEEPER_MAX_AGE"), &cfg.SweeperMaxAge); err != nil {
		return err
	}

	if err := s.setIntFromString("start-stop-threads", os.Getenv("HOSTD_START_STOP_THREADS"), true, &cfg.StartStopThreads); err != nil {
		return err
	}
	if err := s.setIntFromString("sweeper-max-files", os.Getenv("HOSTD_SWEEPER_MAX_FILES"), false, &cfg.SweeperMaxFiles); err != nil {
		return err
	}

	s.setBoolFromString("once", os.Getenv("HOSTD_ONCE"), &cfg.Once)
	s.setBoolFromString("watch-config", os.Getenv("HOSTD_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
