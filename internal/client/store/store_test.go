package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/logging"
	"github.com/dmitrijs2005/stampcard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyConn wraps a MemoryConn and fails the next call with a preset error.
type flakyConn struct {
	*MemoryConn
	nextErr error
	closed  atomic.Int32
}

func (f *flakyConn) GetUser(ctx context.Context, username string) (*models.User, error) {
	if f.nextErr != nil {
		err := f.nextErr
		f.nextErr = nil
		return nil, err
	}
	return f.MemoryConn.GetUser(ctx, username)
}

func (f *flakyConn) Close() error {
	f.closed.Add(1)
	return nil
}

// plainConn hides the Batcher implementation of the embedded MemoryConn.
type plainConn struct {
	m    *MemoryConn
	puts int
}

func (p *plainConn) GetUser(ctx context.Context, k string) (*models.User, error) {
	return p.m.GetUser(ctx, k)
}
func (p *plainConn) ListUsers(ctx context.Context) ([]models.User, error) { return p.m.ListUsers(ctx) }
func (p *plainConn) PutUser(ctx context.Context, u models.User) error {
	p.puts++
	return p.m.PutUser(ctx, u)
}
func (p *plainConn) DeleteUser(ctx context.Context, k string) error { return p.m.DeleteUser(ctx, k) }
func (p *plainConn) ClearUsers(ctx context.Context) error           { return p.m.ClearUsers(ctx) }
func (p *plainConn) GetSession(ctx context.Context) (models.Session, error) {
	return p.m.GetSession(ctx)
}
func (p *plainConn) PutSession(ctx context.Context, s models.Session) error {
	return p.m.PutSession(ctx, s)
}
func (p *plainConn) Close() error { return nil }

func TestStore_LazyOpenIsShared(t *testing.T) {
	var opens atomic.Int32
	release := make(chan struct{})
	conn := NewMemoryConn()

	open := func(ctx context.Context) (Conn, error) {
		opens.Add(1)
		<-release
		return conn, nil
	}
	s := NewStore(open, logging.Discard())

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ListUsers(context.Background())
			errs <- err
		}()
	}

	// даём горутинам встать в очередь на open
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), opens.Load(), "concurrent callers must share one open")

	_, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), opens.Load(), "handle must be cached")
}

func TestStore_OpenFailureIsUnavailable(t *testing.T) {
	s := NewStore(func(ctx context.Context) (Conn, error) {
		return nil, errors.New("permission denied")
	}, logging.Discard())

	_, err := s.GetUser(context.Background(), "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestStore_OpenConflictNotifiesReload(t *testing.T) {
	s := NewStore(func(ctx context.Context) (Conn, error) {
		return nil, common.ErrStorageConflict
	}, logging.Discard())

	var reasons []error
	s.OnReload(func(reason error) { reasons = append(reasons, reason) })

	_, err := s.GetUser(context.Background(), "alice")
	assert.ErrorIs(t, err, common.ErrStorageConflict)
	require.Len(t, reasons, 1)
	assert.ErrorIs(t, reasons[0], common.ErrStorageConflict)
}

func TestStore_ConflictInvalidatesHandle(t *testing.T) {
	var opens int
	var conns []*flakyConn
	open := func(ctx context.Context) (Conn, error) {
		opens++
		c := &flakyConn{MemoryConn: NewMemoryConn()}
		conns = append(conns, c)
		return c, nil
	}
	s := NewStore(open, logging.Discard())

	reloads := 0
	s.OnReload(func(error) { reloads++ })

	ctx := context.Background()
	_, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)

	conns[0].nextErr = common.ErrStorageConflict
	_, err = s.GetUser(ctx, "alice")
	require.ErrorIs(t, err, common.ErrStorageConflict)

	assert.Equal(t, 1, reloads)
	assert.Equal(t, int32(1), conns[0].closed.Load(), "stale handle must be closed")

	_, err = s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, opens, "next call must re-establish the handle")
}

func TestStore_StaleConflictKeepsFreshHandle(t *testing.T) {
	first := &flakyConn{MemoryConn: NewMemoryConn()}
	second := &flakyConn{MemoryConn: NewMemoryConn()}
	next := []Conn{first, second}
	s := NewStore(func(ctx context.Context) (Conn, error) {
		c := next[0]
		next = next[1:]
		return c, nil
	}, logging.Discard())

	ctx := context.Background()
	_, err := s.Conn(ctx)
	require.NoError(t, err)

	s.Invalidate(ctx, errors.New("manual"))
	c, err := s.Conn(ctx)
	require.NoError(t, err)
	require.Same(t, second, c)

	// поздняя ошибка старого хэндла не должна выбросить новый
	s.invalidateConn(ctx, first, common.ErrStorageConflict)
	c, err = s.Conn(ctx)
	require.NoError(t, err)
	assert.Same(t, second, c)
}

func TestStore_OpErrorsAreIO(t *testing.T) {
	c := &flakyConn{MemoryConn: NewMemoryConn(), nextErr: errors.New("disk full")}
	s := NewStore(func(ctx context.Context) (Conn, error) { return c, nil }, logging.Discard())

	reloads := 0
	s.OnReload(func(error) { reloads++ })

	_, err := s.GetUser(context.Background(), "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorageIO)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 0, reloads, "plain i/o failures do not invalidate")
}

func TestStore_NetworkErrorsKeepTheirClass(t *testing.T) {
	c := &flakyConn{MemoryConn: NewMemoryConn(), nextErr: common.ErrNetwork}
	s := NewStore(func(ctx context.Context) (Conn, error) { return c, nil }, logging.Discard())

	_, err := s.GetUser(context.Background(), "alice")
	assert.ErrorIs(t, err, common.ErrNetwork)
	assert.NotErrorIs(t, err, common.ErrStorageIO)
}

func TestStore_PutUsersFallsBackToSequentialPuts(t *testing.T) {
	p := &plainConn{m: NewMemoryConn()}
	s := NewStore(func(ctx context.Context) (Conn, error) { return p, nil }, logging.Discard())

	ctx := context.Background()
	err := s.PutUsers(ctx, []models.User{{Username: "a"}, {Username: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 2, p.puts)

	list, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStore_CloseWithoutOpen(t *testing.T) {
	s := NewStore(MemoryOpener(NewMemoryConn()), logging.Discard())
	require.NoError(t, s.Close())
}

func TestStore_ReplaceUsersSwapsTheSet(t *testing.T) {
	conn := NewMemoryConn()
	s := NewStore(MemoryOpener(conn), logging.Discard())
	ctx := context.Background()

	require.NoError(t, s.PutUser(ctx, models.User{Username: "old"}))
	require.NoError(t, s.ReplaceUsers(ctx, []models.User{{Username: "a"}, {Username: "b"}, {Username: "a", Stamps: 3}}))

	list, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	u, err := s.GetUser(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, 3, u.Stamps)
}

func TestStore_ReplaceUsersFallsBackToClearAndPuts(t *testing.T) {
	p := &plainConn{m: NewMemoryConn()}
	s := NewStore(func(ctx context.Context) (Conn, error) { return p, nil }, logging.Discard())
	ctx := context.Background()

	require.NoError(t, p.m.PutUser(ctx, models.User{Username: "old"}))
	require.NoError(t, s.ReplaceUsers(ctx, []models.User{{Username: "a"}}))
	assert.Equal(t, 1, p.puts)

	list, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{{Username: "a"}}, list)
}
