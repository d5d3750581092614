package host

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/hostd/pkg/lifecycle"
	"github.com/bft-labs/hostd/pkg/log"
	"github.com/bft-labs/hostd/pkg/state"
)

// statusRecorder is a listener that keeps a snapshot of the host and its
// children and saves it after every state change.
type statusRecorder struct {
	repo   state.Repository
	logger log.Logger

	// previous is what the repository held before this run.
	previous state.Snapshot

	mu   sync.Mutex
	snap state.Snapshot
}

func newStatusRecorder(hostName string, repo state.Repository, logger log.Logger) *statusRecorder {
	r := &statusRecorder{
		repo:   repo,
		logger: logger,
		snap: state.Snapshot{
			RunID: uuid.NewString(),
			Host:  hostName,
		},
	}
	r.loadPrevious()
	return r
}

// loadPrevious reads and logs the snapshot of the last run. A load failure
// is logged and leaves previous empty.
func (r *statusRecorder) loadPrevious() {
	prev, err := r.repo.Load(context.Background())
	if err != nil {
		r.logger.Warn("failed to load previous status snapshot",
			log.String("host", r.snap.Host), log.Err(err))
		return
	}
	r.previous = prev
	if prev.IsEmpty() {
		return
	}

	r.logger.Info("previous run status",
		log.String("host", prev.Host),
		log.String("run_id", prev.RunID),
		log.Int("components", len(prev.Components)),
	)
	for _, name := range prev.Names() {
		cs := prev.Components[name]
		r.logger.Debug("previous component status",
			log.Component(name),
			log.String("state", cs.State),
			log.String("last_event", cs.LastEvent),
		)
	}
}

// LifecycleEvent records state-bearing events. Save failures are logged,
// never returned.
func (r *statusRecorder) LifecycleEvent(e lifecycle.Event) error {
	if !lifecycle.IsStateEvent(e.Type) {
		return nil
	}
	r.record(e.Source, e.Type)
	return nil
}

func (r *statusRecorder) record(c lifecycle.Lifecycle, event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Record(c.Name(), c.StateName(), event, time.Now())
	r.save()
}

func (r *statusRecorder) forget(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Forget(name)
	r.save()
}

func (r *statusRecorder) snapshot() state.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.Clone()
}

// save must be called with mu held.
func (r *statusRecorder) save() {
	if err := r.repo.Save(context.Background(), r.snap); err != nil {
		r.logger.Warn("failed to save status snapshot",
			log.String("host", r.snap.Host), log.Err(err))
	}
}
