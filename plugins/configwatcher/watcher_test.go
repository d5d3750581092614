package configwatcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/hostd/pkg/host"
	"github.com/bft-labs/hostd/pkg/lifecycle"
)

// configEvents collects configure events.
type configEvents struct {
	mu     sync.Mutex
	events []lifecycle.Event
	err    error
}

func (c *configEvents) LifecycleEvent(e lifecycle.Event) error {
	if e.Type != lifecycle.EventConfigureStart && e.Type != lifecycle.EventConfigureStop {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return c.err
}

func (c *configEvents) snapshot() []lifecycle.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]lifecycle.Event(nil), c.events...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_FiresConfigureEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`log_level = "info"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	events := &configEvents{}
	w := New(Config{Path: path, DebounceDelay: 10 * time.Millisecond}, lifecycle.WithListener(events))
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = w.Stop() }()

	if w.State() != lifecycle.StateStarted {
		t.Fatalf("state = %s, want STARTED", w.State())
	}

	if err := os.WriteFile(path, []byte(`log_level = "debug"`), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	waitFor(t, func() bool { return len(events.snapshot()) >= 2 })

	got := events.snapshot()
	if got[0].Type != lifecycle.EventConfigureStart || got[1].Type != lifecycle.EventConfigureStop {
		t.Errorf("events = %s, %s; want configure_start, configure_stop", got[0].Type, got[1].Type)
	}
	if got[0].Data != path {
		t.Errorf("payload = %v, want %s", got[0].Data, path)
	}
	if got[0].Source.Name() != Name {
		t.Errorf("source = %s, want %s", got[0].Source.Name(), Name)
	}
}

func TestWatcher_Debounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	events := &configEvents{}
	w := New(Config{Path: path, DebounceDelay: 100 * time.Millisecond}, lifecycle.WithListener(events))
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = w.Stop() }()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	waitFor(t, func() bool { return len(events.snapshot()) >= 2 })
	time.Sleep(250 * time.Millisecond)

	if n := len(events.snapshot()); n != 2 {
		t.Errorf("got %d configure events, want 2 (one debounced change)", n)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	events := &configEvents{}
	w := New(Config{Path: path, DebounceDelay: 5 * time.Millisecond}, lifecycle.WithListener(events))
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = w.Stop() }()

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if n := len(events.snapshot()); n != 0 {
		t.Errorf("got %d events for an unrelated file, want 0", n)
	}
}

func TestWatcher_MissingDirectoryIsControlledFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.toml")

	for _, policy := range []lifecycle.FailurePolicy{lifecycle.PolicyThrow, lifecycle.PolicyLog} {
		w := New(Config{Path: path}, lifecycle.WithFailurePolicy(policy))
		if err := w.Start(); err != nil {
			t.Fatalf("[%s] Start returned %v, want nil", policy, err)
		}
		if w.State() != lifecycle.StateStopped {
			t.Errorf("[%s] state = %s, want STOPPED", policy, w.State())
		}
	}
}

func TestWatcher_MissingDirectoryDoesNotFailHost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.toml")

	h, err := host.New("test", WithDefaultConfigWatcher(path), host.WithBackgroundDelay(0))
	if err != nil {
		t.Fatalf("host.New failed: %v", err)
	}
	if err := h.Start(); err != nil {
		t.Fatalf("host Start failed: %v", err)
	}
	if h.State() != lifecycle.StateStarted {
		t.Errorf("host state = %s, want STARTED", h.State())
	}

	w, ok := h.FindChild(Name)
	if !ok {
		t.Fatal("config watcher not registered")
	}
	if w.State() != lifecycle.StateStopped {
		t.Errorf("watcher state = %s, want STOPPED", w.State())
	}
}

func TestWatcher_EmptyPathFailsInit(t *testing.T) {
	w := New(Config{})
	err := w.Init()
	if err == nil {
		t.Fatal("Init with empty path succeeded")
	}
	var fe *lifecycle.FailureError
	if !errors.As(err, &fe) || fe.Op != lifecycle.OpInit {
		t.Errorf("err = %v, want init FailureError", err)
	}
}

func TestWatcher_StopIsQuiet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	events := &configEvents{}
	w := New(Config{Path: path, DebounceDelay: 50 * time.Millisecond}, lifecycle.WithListener(events))
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if n := len(events.snapshot()); n != 0 {
		t.Errorf("got %d events after Stop, want 0", n)
	}

	// A stopped watcher can be started again.
	if err := w.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestWatcher_ListenerErrorIsLogged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	events := &configEvents{err: errors.New("bad config")}
	w := New(Config{Path: path, DebounceDelay: 5 * time.Millisecond}, lifecycle.WithListener(events))
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = w.Stop() }()

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, func() bool { return len(events.snapshot()) >= 2 })

	if w.State() != lifecycle.StateStarted {
		t.Errorf("state = %s, want STARTED", w.State())
	}
}
