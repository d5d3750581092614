package sweeper

import "github.com/bft-labs/hostd/pkg/host"

// WithSweeper returns a host Option that adds a sweeper child. The host's
// background processor drives it.
//
// Usage:
//
//	h, err := host.New("hostd",
//	    sweeper.WithSweeper(sweeper.Config{
//	        Dir:      "/var/spool/hostd",
//	        MaxAge:   24 * time.Hour,
//	        MaxFiles: 1000,
//	    }),
//	)
func WithSweeper(cfg Config) host.Option {
	return host.WithChild(New(cfg))
}

// WithDefaultSweeper returns a host Option that sweeps dir with default
// settings (files older than 7 days).
func WithDefaultSweeper(dir string) host.Option {
	return WithSweeper(DefaultConfig(dir))
}

var _ host.BackgroundProcessor = (*Sweeper)(nil)
