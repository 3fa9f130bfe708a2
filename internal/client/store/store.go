package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/logging"
	"github.com/dmitrijs2005/stampcard/internal/models"
	"golang.org/x/sync/singleflight"
)

// RecordStore is the asynchronous CRUD contract every backend provides.
// GetUser returns (nil, nil) when the record does not exist.
type RecordStore interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	PutUser(ctx context.Context, u models.User) error
	DeleteUser(ctx context.Context, username string) error
	ClearUsers(ctx context.Context) error

	GetSession(ctx context.Context) (models.Session, error)
	PutSession(ctx context.Context, s models.Session) error
}

// Conn is one established backend handle.
type Conn interface {
	RecordStore
	Close() error
}

// Batcher is implemented by connections that can write many users in one
// round trip.
type Batcher interface {
	PutUsers(ctx context.Context, users []models.User) error
}

// Replacer is implemented by connections that can swap the whole user set
// atomically: either every old user is gone and every new one is stored, or
// nothing changes.
type Replacer interface {
	ReplaceUsers(ctx context.Context, users []models.User) error
}

// OpenFunc establishes a new backend handle.
type OpenFunc func(ctx context.Context) (Conn, error)

// ReloadFunc is told that the cached handle was discarded and the user has to
// close other instances or reload.
type ReloadFunc func(reason error)

type Store struct {
	open OpenFunc
	log  logging.Logger

	group singleflight.Group

	mu       sync.Mutex
	conn     Conn
	onReload ReloadFunc
}

var (
	_ RecordStore = (*Store)(nil)
	_ Batcher     = (*Store)(nil)
	_ Replacer    = (*Store)(nil)
)

func NewStore(open OpenFunc, log logging.Logger) *Store {
	return &Store{open: open, log: log.With("component", "store")}
}

// OnReload registers the hook called whenever the handle is invalidated.
func (s *Store) OnReload(fn ReloadFunc) {
	s.mu.Lock()
	s.onReload = fn
	s.mu.Unlock()
}

// Conn returns the cached handle, opening it on first use. Concurrent callers
// that arrive before the handle exists wait on the same open.
func (s *Store) Conn(ctx context.Context) (Conn, error) {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()
	if c != nil {
		return c, nil
	}

	v, err, _ := s.group.Do("open", func() (any, error) {
		s.mu.Lock()
		if s.conn != nil {
			c := s.conn
			s.mu.Unlock()
			return c, nil
		}
		s.mu.Unlock()

		c, err := s.open(ctx)
		if err != nil {
			return nil, classifyOpen(err)
		}

		s.mu.Lock()
		s.conn = c
		s.mu.Unlock()

		s.log.Debug(ctx, "storage handle opened")
		return c, nil
	})
	if err != nil {
		if errors.Is(err, common.ErrStorageConflict) {
			s.notifyReload(ctx, err)
		}
		return nil, err
	}

	return v.(Conn), nil
}

// Invalidate discards the cached handle (if any) and tells the reload hook.
// The next operation opens a new handle.
func (s *Store) Invalidate(ctx context.Context, reason error) {
	s.mu.Lock()
	c := s.conn
	s.conn = nil
	s.mu.Unlock()

	s.closeConn(ctx, c)
	s.notifyReload(ctx, reason)
}

// invalidateConn drops c only if it is still the cached handle, so a late
// failure from an old handle cannot throw away a fresh one.
func (s *Store) invalidateConn(ctx context.Context, c Conn, reason error) {
	s.mu.Lock()
	if s.conn != c {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.mu.Unlock()

	s.closeConn(ctx, c)
	s.notifyReload(ctx, reason)
}

func (s *Store) closeConn(ctx context.Context, c Conn) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		s.log.Warn(ctx, "closing storage handle", "error", err)
	}
}

func (s *Store) notifyReload(ctx context.Context, reason error) {
	s.log.Warn(ctx, "storage handle invalidated, reload required", "reason", reason)

	s.mu.Lock()
	fn := s.onReload
	s.mu.Unlock()

	if fn != nil {
		fn(reason)
	}
}

// Close releases the handle without notifying anyone.
func (s *Store) Close() error {
	s.mu.Lock()
	c := s.conn
	s.conn = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close()
}

func (s *Store) do(ctx context.Context, op string, fn func(c Conn) error) error {
	c, err := s.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := fn(c); err != nil {
		err = classifyOp(op, err)
		if errors.Is(err, common.ErrStorageConflict) {
			s.invalidateConn(ctx, c, err)
		}
		return err
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, username string) (*models.User, error) {
	var u *models.User
	err := s.do(ctx, "get user", func(c Conn) error {
		var err error
		u, err = c.GetUser(ctx, username)
		return err
	})
	return u, err
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var list []models.User
	err := s.do(ctx, "list users", func(c Conn) error {
		var err error
		list, err = c.ListUsers(ctx)
		return err
	})
	return list, err
}

func (s *Store) PutUser(ctx context.Context, u models.User) error {
	return s.do(ctx, "put user", func(c Conn) error {
		return c.PutUser(ctx, u)
	})
}

// PutUsers writes users in one batch when the backend supports it and falls
// back to one put per user otherwise.
func (s *Store) PutUsers(ctx context.Context, users []models.User) error {
	return s.do(ctx, "put users", func(c Conn) error {
		if b, ok := c.(Batcher); ok {
			return b.PutUsers(ctx, users)
		}
		for _, u := range users {
			if err := c.PutUser(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) DeleteUser(ctx context.Context, username string) error {
	return s.do(ctx, "delete user", func(c Conn) error {
		return c.DeleteUser(ctx, username)
	})
}

func (s *Store) ClearUsers(ctx context.Context) error {
	return s.do(ctx, "clear users", func(c Conn) error {
		return c.ClearUsers(ctx)
	})
}

// ReplaceUsers swaps the user set in one step when the backend supports it.
// Otherwise it clears and then writes, and a failure in between leaves the
// users cleared.
func (s *Store) ReplaceUsers(ctx context.Context, users []models.User) error {
	return s.do(ctx, "replace users", func(c Conn) error {
		if r, ok := c.(Replacer); ok {
			return r.ReplaceUsers(ctx, users)
		}
		if err := c.ClearUsers(ctx); err != nil {
			return err
		}
		for _, u := range users {
			if err := c.PutUser(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetSession(ctx context.Context) (models.Session, error) {
	var sess models.Session
	err := s.do(ctx, "get session", func(c Conn) error {
		var err error
		sess, err = c.GetSession(ctx)
		return err
	})
	return sess, err
}

func (s *Store) PutSession(ctx context.Context, sess models.Session) error {
	return s.do(ctx, "put session", func(c Conn) error {
		return c.PutSession(ctx, sess)
	})
}

func classified(err error) bool {
	return errors.Is(err, common.ErrStorageConflict) ||
		errors.Is(err, common.ErrStorageUnavailable) ||
		errors.Is(err, common.ErrStorageIO) ||
		errors.Is(err, common.ErrNetwork) ||
		errors.Is(err, common.ErrInvalidSession)
}

func classifyOpen(err error) error {
	if classified(err) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
}

func classifyOp(op string, err error) error {
	if classified(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrStorageIO, err)
}
