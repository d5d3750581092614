package lifecycle

import (
	"sync"

	"github.com/bft-labs/hostd/pkg/log"
)

// recorder is a Listener remembering event types and the state the source
// was in when each event was delivered.
type recorder struct {
	mu     sync.Mutex
	events []string
	states []State
	data   []any
}

func (r *recorder) LifecycleEvent(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.Type)
	r.states = append(r.states, e.Source.State())
	r.data = append(r.data, e.Data)
	return nil
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) States() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func (r *recorder) Count(eventType string) int {
	n := 0
	for _, e := range r.Events() {
		if e == eventType {
			n++
		}
	}
	return n
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events, r.states, r.data = nil, nil, nil
}

// testComponent counts hook calls and can be told how to misbehave.
type testComponent struct {
	mu    sync.Mutex
	calls map[string]int

	initErr    error
	startErr   error
	stopErr    error
	destroyErr error

	// failStart makes OnStart mark the component failed and return nil.
	failStart bool
	// skipStarting makes OnStart return nil without reaching STARTING.
	skipStarting bool
	// startPanic makes OnStart panic with this value.
	startPanic any
}

func newTestComponent() *testComponent {
	return &testComponent{calls: map[string]int{}}
}

func (c *testComponent) count(hook string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[hook]++
}

func (c *testComponent) Calls(hook string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[hook]
}

func (c *testComponent) OnInit(g Gate) error {
	c.count("init")
	return c.initErr
}

func (c *testComponent) OnStart(g Gate) error {
	c.count("start")
	switch {
	case c.startPanic != nil:
		panic(c.startPanic)
	case c.startErr != nil:
		return c.startErr
	case c.failStart:
		return g.SetState(StateFailed)
	case c.skipStarting:
		return nil
	}
	return g.SetState(StateStarting)
}

func (c *testComponent) OnStop(g Gate) error {
	c.count("stop")
	if c.stopErr != nil {
		return c.stopErr
	}
	return g.SetState(StateStopping)
}

func (c *testComponent) OnDestroy(g Gate) error {
	c.count("destroy")
	return c.destroyErr
}

type singleUseComponent struct {
	*testComponent
}

func (singleUseComponent) SingleUse() {}

// logEntry is one line captured by testLogger.
type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

type testLogger struct {
	mu      sync.Mutex
	debug   bool
	entries []logEntry
}

func (l *testLogger) log(level, msg string, fields []log.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: m})
}

func (l *testLogger) Debug(msg string, fields ...log.Field) { l.log("debug", msg, fields) }
func (l *testLogger) Info(msg string, fields ...log.Field)  { l.log("info", msg, fields) }
func (l *testLogger) Warn(msg string, fields ...log.Field)  { l.log("warn", msg, fields) }
func (l *testLogger) Error(msg string, fields ...log.Field) { l.log("error", msg, fields) }
func (l *testLogger) DebugEnabled() bool                    { return l.debug }

func (l *testLogger) Find(level, msg string) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}
