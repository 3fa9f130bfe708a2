// Package poller re-reads the customer whose card is open on a fixed interval
// and reports stamp changes, including the one-time crossing to the goal.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/stampcard/internal/logging"
	"github.com/dmitrijs2005/stampcard/internal/models"
)

const DefaultInterval = 2 * time.Second

// Reader is the part of the user repository the poller needs.
type Reader interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// Listener receives poll results. initial is true for the first read after
// Start, which only establishes the baseline.
type Listener interface {
	StampsObserved(n int, initial bool)
	RewardEarned(n int)
}

type Poller struct {
	reader   Reader
	listener Listener
	interval time.Duration
	log      logging.Logger

	mu          sync.Mutex
	target      string
	gen         uint64
	baseline    int
	hasBaseline bool
	inFlight    bool
	cancel      context.CancelFunc
	done        chan struct{}
}

func New(r Reader, l Listener, interval time.Duration, log logging.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{reader: r, listener: l, interval: interval, log: log.With("component", "poller")}
}

// Target returns the user being polled, or "" when stopped.
func (p *Poller) Target() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// Start polls target until Stop. A running poll is stopped first, so a new
// target always starts from a fresh baseline.
func (p *Poller) Start(ctx context.Context, target string) {
	p.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.gen++
	p.target = models.NormalizeUsername(target)
	p.hasBaseline = false
	p.baseline = 0
	p.inFlight = false
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.log.Debug(ctx, "polling started", "target", p.Target(), "interval", p.interval)
	go p.run(ctx, done)
}

// Stop tears the timer down and waits for the loop to exit. Results of a read
// that was still running are discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.target = ""
	p.gen++
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Rebase replaces the baseline with n, the value the card now shows. A claim
// calls it with 0 so the next fill to the goal is seen as a crossing. A read
// already in flight is discarded.
func (p *Poller) Rebase(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.target == "" {
		return
	}
	p.gen++
	p.inFlight = false
	p.baseline = n
	p.hasBaseline = true
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	p.Tick(ctx)

	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Tick(ctx)
			// a fire that queued up while the read was running is skipped
			select {
			case <-t.C:
				p.log.Debug(ctx, "poll tick skipped, previous read still running")
			default:
			}
		}
	}
}

type event int

const (
	eventNone event = iota
	eventInitial
	eventObserved
	eventReward
)

// Tick performs one read of the current target. It reports false when no
// read happened: nothing is being polled, a read is already in flight, or the
// result belonged to a target that is no longer current.
func (p *Poller) Tick(ctx context.Context) bool {
	p.mu.Lock()
	if p.target == "" || p.inFlight {
		p.mu.Unlock()
		return false
	}
	p.inFlight = true
	gen, target := p.gen, p.target
	prev, hasPrev := p.baseline, p.hasBaseline
	p.mu.Unlock()

	u, err := p.reader.GetUser(ctx, target)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return false
	}
	p.inFlight = false

	ev := eventNone
	var n int
	switch {
	case err != nil:
		p.log.Warn(ctx, "poll read failed", "target", target, "error", err)
	case u == nil:
		p.log.Debug(ctx, "polled user is gone, keeping last value", "target", target)
	default:
		n = u.Stamps
		switch {
		case !hasPrev:
			ev = eventInitial
		case prev < models.Goal && n >= models.Goal:
			ev = eventReward
		default:
			ev = eventObserved
		}
		p.baseline = n
		p.hasBaseline = true
	}
	p.mu.Unlock()

	switch ev {
	case eventInitial:
		p.listener.StampsObserved(n, true)
	case eventObserved:
		p.listener.StampsObserved(n, false)
	case eventReward:
		p.log.Info(ctx, "reward earned", "target", target, "stamps", n)
		p.listener.RewardEarned(n)
	}
	return true
}
