package session

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/stampcard/internal/client/store"
	"github.com/dmitrijs2005/stampcard/internal/client/users"
	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/logging"
	"github.com/dmitrijs2005/stampcard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	users map[string]models.User
	err   error
	calls int
}

func (f *fakeLookup) GetUser(ctx context.Context, username string) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[models.NormalizeUsername(username)]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type failingKeeper struct{ err error }

func (k failingKeeper) Load(context.Context) (models.Session, error) { return models.Session{}, k.err }
func (k failingKeeper) Save(context.Context, models.Session) error   { return k.err }

func newManager(lookup *fakeLookup) *Manager {
	return NewManager(NewMemoryKeeper(), lookup, logging.Discard())
}

func alice() *fakeLookup {
	return &fakeLookup{users: map[string]models.User{
		"alice": {Username: "alice", Stamps: 3, Language: models.LanguageEnglish},
	}}
}

func TestLoginCustomer(t *testing.T) {
	ctx := context.Background()
	m := newManager(alice())

	ok, err := m.LoginCustomer(ctx, "ALICE")
	require.NoError(t, err)
	assert.True(t, ok)

	s, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", s.User())
	assert.Empty(t, s.Admin())

	ok, err = m.LoginCustomer(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginCustomer_NetworkErrorIsDistinct(t *testing.T) {
	m := newManager(&fakeLookup{err: common.ErrNetwork})
	ok, err := m.LoginCustomer(context.Background(), "alice")
	assert.False(t, ok)
	assert.ErrorIs(t, err, common.ErrNetwork)
}

func TestSessionIsNeverBoth(t *testing.T) {
	ctx := context.Background()
	m := newManager(alice())

	_, err := m.LoginCustomer(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, m.LoginAdmin(ctx, "admin"))

	s, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, s.User())
	assert.Equal(t, "admin", s.Admin())

	_, err = m.LoginCustomer(ctx, "alice")
	require.NoError(t, err)
	s, err = m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", s.User())
	assert.Empty(t, s.Admin())

	assert.ErrorIs(t, m.LoginAdmin(ctx, ""), common.ErrValidation)
}

func TestLogoutClearsViewing(t *testing.T) {
	ctx := context.Background()
	m := newManager(alice())

	require.NoError(t, m.LoginAdmin(ctx, "admin"))
	require.NoError(t, m.ViewCustomer(ctx, "Alice"))
	assert.Equal(t, "alice", m.Viewing())

	require.NoError(t, m.Logout(ctx))
	assert.Empty(t, m.Viewing())

	s, err := m.Get(ctx)
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
}

func TestViewCustomer_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	m := newManager(alice())

	assert.ErrorIs(t, m.ViewCustomer(ctx, "alice"), common.ErrValidation)

	require.NoError(t, m.LoginAdmin(ctx, "admin"))
	require.NoError(t, m.ViewCustomer(ctx, "alice"))
	m.StopViewing()
	assert.Empty(t, m.Viewing())
}

func TestSetSaveFailure(t *testing.T) {
	m := NewManager(failingKeeper{err: common.ErrStorageIO}, alice(), logging.Discard())
	err := m.Set(context.Background(), models.AdminSession("admin"))
	assert.ErrorIs(t, err, common.ErrStorageIO)
}

func TestLanguage(t *testing.T) {
	ctx := context.Background()
	lookup := alice()
	m := newManager(lookup)

	assert.Equal(t, models.DefaultLanguage, m.Language(ctx), "anonymous gets the default")

	_, err := m.LoginCustomer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.LanguageEnglish, m.Language(ctx))

	lookup.err = errors.New("flaky")
	assert.Equal(t, models.DefaultLanguage, m.Language(ctx), "failures degrade to the default")
}

func TestStartup_ExistingSessionWins(t *testing.T) {
	ctx := context.Background()
	lookup := alice()
	lookup.users["bob"] = models.User{Username: "bob"}
	m := newManager(lookup)
	require.NoError(t, m.LoginAdmin(ctx, "admin"))
	lookup.calls = 0

	loc := NewStaticLocation("/?user=bob")
	s, err := m.Startup(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, "admin", s.Admin())
	assert.Equal(t, 0, lookup.calls, "deep link must not be resolved")
	assert.Equal(t, "/?user=bob", loc.Current())
}

func TestStartup_DeepLinkSuccess(t *testing.T) {
	ctx := context.Background()
	m := newManager(alice())

	loc := NewStaticLocation("https://cafe.example/Alice/profile")
	s, err := m.Startup(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, "alice", s.User())
	assert.Equal(t, "https://cafe.example/", loc.Current())

	stored, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.User())
}

func TestStartup_DeepLinkUnknownUserStillStrips(t *testing.T) {
	ctx := context.Background()
	m := newManager(alice())

	loc := NewStaticLocation("/?user=ghost")
	s, err := m.Startup(ctx, loc)
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, "/", loc.Current())
}

func TestStartup_DeepLinkNetworkErrorStillStrips(t *testing.T) {
	ctx := context.Background()
	m := newManager(&fakeLookup{err: common.ErrNetwork})

	loc := NewStaticLocation("/?user=alice")
	s, err := m.Startup(ctx, loc)
	assert.ErrorIs(t, err, common.ErrNetwork)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, "/", loc.Current())
}

func TestStartup_NoMatchNoLogin(t *testing.T) {
	ctx := context.Background()
	lookup := alice()
	m := newManager(lookup)

	loc := NewStaticLocation("/menu")
	s, err := m.Startup(ctx, loc)
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, lookup.calls)
	assert.Equal(t, "/menu", loc.Current())
}

func TestStartup_LoadFailure(t *testing.T) {
	m := NewManager(failingKeeper{err: common.ErrStorageUnavailable}, alice(), logging.Discard())
	_, err := m.Startup(context.Background(), NewStaticLocation(""))
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestStoreKeeper_PersistsThroughStore(t *testing.T) {
	ctx := context.Background()
	conn := store.NewMemoryConn()
	s := store.NewStore(store.MemoryOpener(conn), logging.Discard())
	repo := users.NewRepository(s, logging.Discard())
	_, err := repo.CreateUser(ctx, "alice")
	require.NoError(t, err)

	m := NewManager(NewStoreKeeper(s), repo, logging.Discard())
	ok, err := m.LoginCustomer(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)

	// a fresh manager over the same store sees the session ("reload")
	m2 := NewManager(NewStoreKeeper(s), repo, logging.Discard())
	got, err := m2.Startup(ctx, NewStaticLocation(""))
	require.NoError(t, err)
	assert.Equal(t, "alice", got.User())
}
