package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/models"
)

var errClosed = errors.New("connection closed")

// MemoryConn keeps everything in process memory. It backs tests and the
// ephemeral demo mode.
type MemoryConn struct {
	mu      sync.RWMutex
	users   map[string]models.User
	session models.Session
	closed  bool
}

var (
	_ Conn    = (*MemoryConn)(nil)
	_ Batcher  = (*MemoryConn)(nil)
	_ Replacer = (*MemoryConn)(nil)
)

func NewMemoryConn() *MemoryConn {
	return &MemoryConn{users: make(map[string]models.User)}
}

// MemoryOpener returns an OpenFunc that always hands out conn.
func MemoryOpener(conn *MemoryConn) OpenFunc {
	return func(ctx context.Context) (Conn, error) {
		conn.mu.Lock()
		conn.closed = false
		conn.mu.Unlock()
		return conn, nil
	}
}

func (m *MemoryConn) check() error {
	if m.closed {
		return fmt.Errorf("%w: %w", common.ErrStorageIO, errClosed)
	}
	return nil
}

func (m *MemoryConn) GetUser(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}

	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryConn) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return nil, err
	}

	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *MemoryConn) PutUser(ctx context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}

	m.users[u.Username] = u
	return nil
}

func (m *MemoryConn) PutUsers(ctx context.Context, users []models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}

	for _, u := range users {
		m.users[u.Username] = u
	}
	return nil
}

func (m *MemoryConn) DeleteUser(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}

	delete(m.users, username)
	return nil
}

func (m *MemoryConn) ClearUsers(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}

	m.users = make(map[string]models.User)
	return nil
}

func (m *MemoryConn) ReplaceUsers(ctx context.Context, users []models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}

	next := make(map[string]models.User, len(users))
	for _, u := range users {
		next[u.Username] = u
	}
	m.users = next
	return nil
}

func (m *MemoryConn) GetSession(ctx context.Context) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(); err != nil {
		return models.Session{}, err
	}
	return m.session, nil
}

func (m *MemoryConn) PutSession(ctx context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(); err != nil {
		return err
	}
	m.session = s
	return nil
}

func (m *MemoryConn) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
