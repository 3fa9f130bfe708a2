// Package notify shows short-lived success and error notices.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/stampcard/internal/logging"
)

const DefaultTTL = 3 * time.Second

type Kind int

const (
	Success Kind = iota
	Error
)

func (k Kind) String() string {
	if k == Error {
		return "error"
	}
	return "success"
}

type Toast struct {
	Kind    Kind
	Message string
}

// Toaster holds at most one toast. A new toast replaces the current one and
// each toast dismisses itself after the TTL.
type Toaster struct {
	out io.Writer
	log logging.Logger
	ttl time.Duration

	mu      sync.Mutex
	current *Toast
	seq     uint64
	timer   *time.Timer
}

func NewToaster(out io.Writer, ttl time.Duration, log logging.Logger) *Toaster {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if out == nil {
		out = io.Discard
	}
	return &Toaster{out: out, ttl: ttl, log: log.With("component", "notify")}
}

func (t *Toaster) Success(ctx context.Context, format string, args ...any) {
	t.show(ctx, Success, fmt.Sprintf(format, args...))
}

func (t *Toaster) Error(ctx context.Context, format string, args ...any) {
	t.show(ctx, Error, fmt.Sprintf(format, args...))
}

func (t *Toaster) show(ctx context.Context, kind Kind, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.seq++
	seq := t.seq
	t.current = &Toast{Kind: kind, Message: msg}
	t.timer = time.AfterFunc(t.ttl, func() { t.expire(seq) })

	switch kind {
	case Error:
		fmt.Fprintf(t.out, "[!] %s\n", msg)
		t.log.Warn(ctx, "toast", "kind", kind.String(), "message", msg)
	default:
		fmt.Fprintf(t.out, "[ok] %s\n", msg)
		t.log.Info(ctx, "toast", "kind", kind.String(), "message", msg)
	}
}

func (t *Toaster) expire(seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seq == seq {
		t.current = nil
		t.timer = nil
	}
}

// Current returns the visible toast, if any.
func (t *Toaster) Current() (Toast, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Toast{}, false
	}
	return *t.current, true
}

func (t *Toaster) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.current = nil
	t.seq++
}
