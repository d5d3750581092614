package configwatcher

import "github.com/bft-labs/hostd/pkg/host"

// WithConfigWatcher returns a host Option that adds a config watcher child.
//
// Usage:
//
//	h, err := host.New("hostd",
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/hostd/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) host.Option {
	return host.WithChild(New(cfg))
}

// WithDefaultConfigWatcher returns a host Option that watches path with
// default settings (debounce 100ms).
func WithDefaultConfigWatcher(path string) host.Option {
	return WithConfigWatcher(DefaultConfig(path))
}
