// Package card runs the stamp card presentation state machine: Idle shows the
// current count, Animating reveals the stamps up to the goal one step at a
// time, RewardReady waits for the customer to claim the reward.
package card

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/stampcard/internal/logging"
	"github.com/dmitrijs2005/stampcard/internal/models"
)

const (
	DefaultStep  = 80 * time.Millisecond
	DefaultDelay = 600 * time.Millisecond
)

type State int

const (
	Idle State = iota
	Animating
	RewardReady
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Animating:
		return "animating"
	case RewardReady:
		return "reward-ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotReady is returned by Claim outside RewardReady.
var ErrNotReady = errors.New("no reward to claim")

// View is what the UI draws.
type View struct {
	Username string
	State    State
	Shown    int
	Goal     int
}

// Claimer persists the stamp reset of a claimed reward.
type Claimer interface {
	ResetStamps(ctx context.Context, username string) (models.User, error)
}

// Controller implements poller.Listener. Render is called with the
// controller locked, so it must not call back into the controller.
type Controller struct {
	username string
	claimer  Claimer
	render   func(View)
	step     time.Duration
	delay    time.Duration
	log      logging.Logger

	mu    sync.Mutex
	state State
	shown int
	gen   uint64
	stop  chan struct{}
}

func New(username string, claimer Claimer, render func(View), step, delay time.Duration, log logging.Logger) *Controller {
	if step <= 0 {
		step = DefaultStep
	}
	if delay < 0 {
		delay = DefaultDelay
	}
	if render == nil {
		render = func(View) {}
	}
	return &Controller{
		username: models.NormalizeUsername(username),
		claimer:  claimer,
		render:   render,
		step:     step,
		delay:    delay,
		log:      log.With("component", "card", "username", models.NormalizeUsername(username)),
	}
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	return View{Username: c.username, State: c.state, Shown: c.shown, Goal: models.Goal}
}

func (c *Controller) emitLocked() {
	c.render(c.viewLocked())
}

// StampsObserved updates the shown count while idle. The first observation
// of a card that is already full opens the reward directly. A later
// observation at the goal while fewer stamps are shown is a crossing the
// listener missed and starts the animation.
func (c *Controller) StampsObserved(n int, initial bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return
	}

	if initial && n >= models.Goal {
		c.state = RewardReady
		c.shown = models.Goal
		c.emitLocked()
		return
	}

	if n >= models.Goal && c.shown < models.Goal {
		c.log.Debug(context.Background(), "goal reached without a reward event", "stamps", n)
		c.startAnimationLocked()
		return
	}

	shown := models.ClampStamps(n)
	if shown == c.shown && !initial {
		return
	}
	c.shown = shown
	c.emitLocked()
}

// RewardEarned starts the reveal animation. It is ignored unless idle.
func (c *Controller) RewardEarned(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return
	}
	c.startAnimationLocked()
}

func (c *Controller) startAnimationLocked() {
	c.gen++
	c.stop = make(chan struct{})
	c.state = Animating
	c.emitLocked()

	go c.animate(c.gen, c.stop, c.shown)
}

func (c *Controller) animate(gen uint64, stop <-chan struct{}, from int) {
	t := time.NewTicker(c.step)
	defer t.Stop()

	for n := from + 1; n <= models.Goal; n++ {
		select {
		case <-stop:
			return
		case <-t.C:
		}

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.shown = n
		c.emitLocked()
		c.mu.Unlock()
	}

	delay := time.NewTimer(c.delay)
	defer delay.Stop()
	select {
	case <-stop:
		return
	case <-delay.C:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.state = RewardReady
	c.shown = models.Goal
	c.emitLocked()
}

// Claim persists the reset and returns to Idle(0). On failure the reward
// stays open so the claim can be retried.
func (c *Controller) Claim(ctx context.Context) error {
	c.mu.Lock()
	if c.state != RewardReady {
		c.mu.Unlock()
		return ErrNotReady
	}
	c.mu.Unlock()

	if _, err := c.claimer.ResetStamps(ctx, c.username); err != nil {
		c.log.Error(ctx, "claiming reward failed", "error", err)
		return fmt.Errorf("claim reward: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != RewardReady {
		return nil
	}
	c.state = Idle
	c.shown = 0
	c.emitLocked()

	c.log.Info(ctx, "reward claimed")
	return nil
}

// Close cancels a running animation. The controller must not be reused.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}
