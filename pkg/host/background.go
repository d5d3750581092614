package host

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/hostd/pkg/lifecycle"
	"github.com/bft-labs/hostd/pkg/log"
)

// BackgroundProcessor is implemented by children that need periodic work
// while they are available. A Host is itself a BackgroundProcessor, so a
// nested host created WithBackgroundDelay(0) is driven by its parent.
type BackgroundProcessor interface {
	BackgroundProcess() error
}

// BackgroundProcess runs one background pass: available children that
// implement BackgroundProcessor do their work, then the host fires a
// periodic event. Child failures are logged.
func (h *Host) BackgroundProcess() error {
	for _, c := range h.Children() {
		if !c.State().Available() {
			continue
		}
		p, ok := backgroundProcessor(c)
		if !ok {
			continue
		}
		if err := p.BackgroundProcess(); err != nil {
			h.logger.Warn("background processing failed",
				log.Component(h.Name()), log.String("child", c.Name()), log.Err(err))
		}
	}
	return h.FireEvent(lifecycle.EventPeriodic, nil)
}

// backgroundProcessor finds the BackgroundProcessor behind a child, looking
// through a plain *lifecycle.Base to the component it drives.
func backgroundProcessor(c lifecycle.Lifecycle) (BackgroundProcessor, bool) {
	if p, ok := c.(BackgroundProcessor); ok {
		return p, true
	}
	if b, ok := c.(interface{ Component() lifecycle.Component }); ok {
		p, ok := b.Component().(BackgroundProcessor)
		return p, ok
	}
	return nil, false
}

// backgroundRunner calls BackgroundProcess on its host every delay.
type backgroundRunner struct {
	h     *Host
	delay time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func newBackgroundRunner(h *Host, delay time.Duration) *backgroundRunner {
	return &backgroundRunner{h: h, delay: delay}
}

func (r *backgroundRunner) start() {
	if r.delay <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(ctx, r.done)
}

// stop cancels the loop and waits for a running pass to finish.
func (r *backgroundRunner) stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *backgroundRunner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.h.BackgroundProcess(); err != nil {
				r.h.logger.Warn("periodic event failed", log.Component(r.h.Name()), log.Err(err))
			}
		}
	}
}
