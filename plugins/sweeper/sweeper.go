// Package sweeper provides a component that keeps a work directory from
// growing without bound.
//
// On every background pass of its host, the sweeper removes regular files
// older than MaxAge and then, oldest first, as many files as needed to keep
// at most MaxFiles. Subdirectories are left alone.
package sweeper

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bft-labs/hostd/pkg/lifecycle"
	"github.com/bft-labs/hostd/pkg/log"
)

// Name is the component name of a sweeper.
const Name = "sweeper"

// Config holds configuration options for the sweeper.
type Config struct {
	// Dir is the directory to sweep. It is created on start when missing.
	Dir string

	// MaxAge is the age above which files are removed. Zero disables the
	// age limit.
	// Default: 7 days
	MaxAge time.Duration

	// MaxFiles is the number of files kept. Zero disables the count limit.
	// Default: 0
	MaxFiles int

	// Protect lists base names that are never removed.
	Protect []string

	// SweepOnStart runs one pass as soon as the sweeper starts.
	// Default: false
	SweepOnStart bool

	// Logger receives the sweeper's log output.
	// Default: no-op
	Logger log.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:    dir,
		MaxAge: 7 * 24 * time.Hour,
	}
}

// Result describes one sweep.
type Result struct {
	Removed    int
	BytesFreed int64
	Kept       int
}

// Sweeper is a lifecycle component and a host.BackgroundProcessor.
type Sweeper struct {
	*lifecycle.Base

	dir          string
	maxAge       time.Duration
	maxFiles     int
	protect      map[string]bool
	sweepOnStart bool
	logger       log.Logger

	// mu serializes sweeps.
	mu  sync.Mutex
	now func() time.Time
}

// New creates a sweeper in StateNew.
func New(cfg Config, opts ...lifecycle.Option) *Sweeper {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNoopLogger()
	}

	s := &Sweeper{
		dir:          cfg.Dir,
		maxAge:       cfg.MaxAge,
		maxFiles:     cfg.MaxFiles,
		protect:      make(map[string]bool, len(cfg.Protect)),
		sweepOnStart: cfg.SweepOnStart,
		logger:       cfg.Logger,
		now:          time.Now,
	}
	for _, name := range cfg.Protect {
		s.protect[name] = true
	}
	opts = append([]lifecycle.Option{lifecycle.WithLogger(cfg.Logger)}, opts...)
	s.Base = lifecycle.New(Name, s, opts...)
	return s
}

// OnInit checks the configuration.
func (s *Sweeper) OnInit(g lifecycle.Gate) error {
	if s.dir == "" {
		return errors.New("sweeper: no directory configured")
	}
	if s.maxAge < 0 || s.maxFiles < 0 {
		return fmt.Errorf("sweeper: negative limits (max_age=%s, max_files=%d)", s.maxAge, s.maxFiles)
	}
	return nil
}

// OnStart makes sure the directory exists.
func (s *Sweeper) OnStart(g lifecycle.Gate) error {
	info, err := os.Stat(s.dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return err
		}
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("sweeper: %s is not a directory", s.dir)
	}

	if err := g.SetState(lifecycle.StateStarting); err != nil {
		return err
	}

	if s.sweepOnStart {
		if _, err := s.Sweep(); err != nil {
			s.logger.Warn("initial sweep failed", log.String("dir", s.dir), log.Err(err))
		}
	}
	s.logger.Info("sweeper started", log.String("dir", s.dir))
	return nil
}

// OnStop only reports STOPPING; a running sweep finishes on its own.
func (s *Sweeper) OnStop(g lifecycle.Gate) error {
	return g.SetState(lifecycle.StateStopping)
}

// OnDestroy does nothing; the sweeper holds no resources.
func (s *Sweeper) OnDestroy(g lifecycle.Gate) error {
	return nil
}

// BackgroundProcess runs one sweep.
func (s *Sweeper) BackgroundProcess() error {
	_, err := s.Sweep()
	return err
}

// file is a sweep candidate.
type file struct {
	path    string
	size    int64
	modTime time.Time
}

// Sweep removes expired and excess files. Failures to remove a single file
// are logged and the file counts as kept.
func (s *Sweeper) Sweep() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.candidates()
	if err != nil {
		return Result{}, err
	}

	var res Result
	cutoff := s.now().Add(-s.maxAge)
	kept := files[:0]
	for _, f := range files {
		if s.maxAge > 0 && f.modTime.Before(cutoff) && s.remove(f, &res) {
			continue
		}
		kept = append(kept, f)
	}

	if s.maxFiles > 0 {
		excess := len(kept) - s.maxFiles
		survivors := kept[:0]
		for _, f := range kept {
			if excess > 0 && s.remove(f, &res) {
				excess--
				continue
			}
			survivors = append(survivors, f)
		}
		kept = survivors
	}
	res.Kept = len(kept)

	if res.Removed > 0 {
		s.logger.Info("sweep completed",
			log.String("dir", s.dir),
			log.Int("removed", res.Removed),
			log.Int64("bytes_freed", res.BytesFreed),
		)
	}
	return res, nil
}

// candidates lists the removable regular files, oldest first.
func (s *Sweeper) candidates() ([]file, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	files := make([]file, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || s.protect[e.Name()] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		files = append(files, file{
			path:    filepath.Join(s.dir, e.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].path < files[j].path
		}
		return files[i].modTime.Before(files[j].modTime)
	})
	return files, nil
}

func (s *Sweeper) remove(f file, res *Result) bool {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("sweeper: remove failed", log.String("path", f.path), log.Err(err))
		return false
	}
	res.Removed++
	res.BytesFreed += f.size
	return true
}

var _ lifecycle.Component = (*Sweeper)(nil)
