package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/hostd/pkg/lifecycle"
)

// Config holds CLI configuration for hostd.
type Config struct {
	Name          string
	LogLevel      string
	FailurePolicy string

	StartStopThreads int
	BackgroundDelay  time.Duration

	StatusDir   string
	Once        bool
	WatchConfig bool

	SweeperDir      string
	SweeperMaxAge   time.Duration
	SweeperMaxFiles int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Name:             "hostd",
		LogLevel:         "info",
		FailurePolicy:    lifecycle.PolicyThrow.String(),
		StartStopThreads: 1,
		BackgroundDelay:  10 * time.Second,
		WatchConfig:      true,
		SweeperMaxAge:    7 * 24 * time.Hour,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.BackgroundDelay < 0 {
		return fmt.Errorf("background delay must not be negative")
	}
	if c.SweeperMaxAge < 0 {
		return fmt.Errorf("sweeper max age must not be negative")
	}
	if c.SweeperMaxFiles < 0 {
		return fmt.Errorf("sweeper max files must not be negative")
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Policy parses FailurePolicy.
func (c Config) Policy() (lifecycle.FailurePolicy, error) {
	return lifecycle.ParseFailurePolicy(c.FailurePolicy)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int value from a pointer if not nil and flag not changed.
// Used where zero and negative values are meaningful.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Non-positive values are ignored unless signed is true.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, signed bool, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 && !signed {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
