package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/hostd"
	"github.com/bft-labs/hostd/internal/cliconfig"
	"github.com/bft-labs/hostd/pkg/host"
	"github.com/bft-labs/hostd/pkg/lifecycle"
	logAdapter "github.com/bft-labs/hostd/pkg/log"
	"github.com/bft-labs/hostd/pkg/state"
	"github.com/bft-labs/hostd/plugins/configwatcher"
	"github.com/bft-labs/hostd/plugins/sweeper"
)

const helpDescription = `
Run a set of managed components under one lifecycle host.

Highlights:
  - Components are initialized, started, stopped and destroyed together.
  - Failures are either returned or logged (failure-policy), per component.
  - Status of every component is written to status.json (status-dir).
  - Configure via file, env (HOSTD_*), or flags; the file is reloaded on change.
`

var exampleUsage = strings.TrimSpace(`
  hostd --status-dir /var/lib/hostd --sweeper-dir /var/spool/hostd
  hostd --config $HOME/.hostd/config.toml --once
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "hostd",
		Short:   "Run managed components under one lifecycle host",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			haveFile := cfgFile != "" && cliconfig.FileExists(cfgFile)
			if haveFile {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment overrides the file; flags override both.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cliconfig.ApplyLogLevel(cfg); err != nil {
				return err
			}
			log.Info().Interface("config", cfg).Msg("configuration")

			h, err := buildHost(cfg, log)
			if err != nil {
				return fmt.Errorf("create host: %w", err)
			}

			if cfg.WatchConfig && haveFile {
				r := &reloader{cfg: cfg, changed: changed, host: h, log: log}
				w := configwatcher.New(configwatcher.Config{
					Path:   cfgFile,
					Logger: logAdapter.NewZerologAdapterWithLogger(log),
				}, lifecycle.WithListener(r))
				if err := h.AddChild(w); err != nil {
					return err
				}
			}

			if cfg.Once {
				return hostd.RunOnce(h)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				log.Info().Msg("received signal, stopping...")
			}()

			return hostd.Run(ctx, h)
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.hostd/config.toml)")
	root.Flags().StringVar(&cfg.Name, "name", cfg.Name, "host name used in logs and status")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	root.Flags().StringVar(&cfg.FailurePolicy, "failure-policy", cfg.FailurePolicy, "what to do with component failures: throw or log")

	root.Flags().IntVar(&cfg.StartStopThreads, "start-stop-threads", cfg.StartStopThreads, "children started/stopped at once (0: one per CPU, <0: NumCPU+n)")
	root.Flags().DurationVar(&cfg.BackgroundDelay, "background-delay", cfg.BackgroundDelay, "pause between background passes (0 disables)")

	root.Flags().StringVar(&cfg.StatusDir, "status-dir", cfg.StatusDir, "directory for status.json (empty disables)")
	root.Flags().BoolVar(&cfg.Once, "once", cfg.Once, "start, run one background pass, and exit")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload log level and failure policy when the config file changes")

	root.Flags().StringVar(&cfg.SweeperDir, "sweeper-dir", cfg.SweeperDir, "directory to keep clean (empty disables)")
	root.Flags().DurationVar(&cfg.SweeperMaxAge, "sweeper-max-age", cfg.SweeperMaxAge, "remove files older than this")
	root.Flags().IntVar(&cfg.SweeperMaxFiles, "sweeper-max-files", cfg.SweeperMaxFiles, "keep at most this many files (0: unlimited)")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("hostd")
		os.Exit(1)
	}
}

// buildHost creates the host and its built-in children from cfg.
func buildHost(cfg cliconfig.Config, log zerolog.Logger) (*hostd.Host, error) {
	adapter := logAdapter.NewZerologAdapterWithLogger(log)
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	opts := []host.Option{
		host.WithLogger(adapter),
		host.WithFailurePolicy(policy),
		host.WithStartStopThreads(cfg.StartStopThreads),
		host.WithBackgroundDelay(cfg.BackgroundDelay),
	}

	if cfg.StatusDir != "" {
		opts = append(opts, host.WithStatusRepository(state.NewFileRepository(cfg.StatusDir)))
	}

	if cfg.SweeperDir != "" {
		sc := sweeper.Config{
			Dir:      cfg.SweeperDir,
			MaxAge:   cfg.SweeperMaxAge,
			MaxFiles: cfg.SweeperMaxFiles,
			Logger:   adapter,
		}
		if filepath.Clean(cfg.SweeperDir) == filepath.Clean(cfg.StatusDir) {
			sc.Protect = []string{"status.json"}
		}
		opts = append(opts, sweeper.WithSweeper(sc))
	}

	return hostd.New(cfg.Name, opts...)
}

// reloader applies a changed config file to the running host.
type reloader struct {
	mu      sync.Mutex
	cfg     cliconfig.Config
	changed map[string]bool
	host    *hostd.Host
	log     zerolog.Logger
}

func (r *reloader) LifecycleEvent(e lifecycle.Event) error {
	if e.Type != lifecycle.EventConfigureStart {
		return nil
	}
	path, _ := e.Data.(string)

	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := cliconfig.Reload(r.cfg, path, r.changed)
	if err != nil {
		return err
	}
	if err := cliconfig.ApplyLogLevel(next); err != nil {
		return err
	}
	policy, err := next.Policy()
	if err != nil {
		return err
	}
	r.host.SetFailurePolicy(policy)
	r.cfg = next

	r.log.Info().
		Str("log_level", next.LogLevel).
		Str("failure_policy", policy.String()).
		Msg("configuration reloaded")
	return nil
}
