package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapMedium struct {
	data   map[string][]byte
	getErr error
	closed bool
}

func newMapMedium() *mapMedium { return &mapMedium{data: map[string][]byte{}} }

func (m *mapMedium) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return v, nil
}
func (m *mapMedium) Set(ctx context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}
func (m *mapMedium) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}
func (m *mapMedium) Close() error {
	m.closed = true
	return nil
}

func TestOpen_WritesSchemaMarker(t *testing.T) {
	m := newMapMedium()
	_, err := Open(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, "1", string(m.data[SchemaKey]))
}

func TestOpen_NewerSchemaIsConflict(t *testing.T) {
	m := newMapMedium()
	m.data[SchemaKey] = []byte("2")

	_, err := Open(context.Background(), m)
	assert.ErrorIs(t, err, common.ErrStorageConflict)
}

func TestOpener_MediumFailureIsUnavailable(t *testing.T) {
	open := Opener(func(ctx context.Context) (Medium, error) {
		return nil, errors.New("connection refused")
	})
	_, err := open(context.Background())
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestOpener_ClosesMediumOnConflict(t *testing.T) {
	m := newMapMedium()
	m.data[SchemaKey] = []byte("garbage")

	_, err := Opener(func(ctx context.Context) (Medium, error) { return m, nil })(context.Background())
	assert.ErrorIs(t, err, common.ErrStorageConflict)
	assert.True(t, m.closed)
}

func TestConn_UsersDocument(t *testing.T) {
	ctx := context.Background()
	m := newMapMedium()
	c, err := Open(ctx, m)
	require.NoError(t, err)

	u, err := c.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, c.PutUser(ctx, models.User{Username: "alice", Stamps: 2, Language: models.LanguageKhmer}))
	require.NoError(t, c.PutUser(ctx, models.User{Username: "bob", Stamps: 4, Language: models.LanguageEnglish}))
	require.NoError(t, c.PutUser(ctx, models.User{Username: "alice", Stamps: 3, Language: models.LanguageKhmer}))

	assert.JSONEq(t,
		`[{"username":"alice","stamps":3,"language":"kh"},{"username":"bob","stamps":4,"language":"en"}]`,
		string(m.data[UsersKey]))

	require.NoError(t, c.DeleteUser(ctx, "alice"))
	require.NoError(t, c.DeleteUser(ctx, "nobody"))

	list, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{{Username: "bob", Stamps: 4, Language: models.LanguageEnglish}}, list)

	require.NoError(t, c.ClearUsers(ctx))
	assert.Equal(t, "[]", string(m.data[UsersKey]))
}

func TestConn_CorruptDocumentFails(t *testing.T) {
	ctx := context.Background()
	m := newMapMedium()
	c, err := Open(ctx, m)
	require.NoError(t, err)

	m.data[UsersKey] = []byte("{not json")
	_, err = c.ListUsers(ctx)
	require.Error(t, err)
}

func TestConn_Session(t *testing.T) {
	ctx := context.Background()
	m := newMapMedium()
	c, err := Open(ctx, m)
	require.NoError(t, err)

	require.NoError(t, c.PutSession(ctx, models.CustomerSession("alice")))
	assert.JSONEq(t, `{"user":"alice","admin":null}`, string(m.data[SessionKey]))

	s, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", s.User())

	require.NoError(t, c.PutSession(ctx, models.EmptySession()))
	_, ok := m.data[SessionKey]
	assert.False(t, ok, "logout removes the session key")

	s, err = c.GetSession(ctx)
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
}

func TestFileMedium_SharedBetweenInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv", "store.json")

	a, err := NewFileMedium(path)
	require.NoError(t, err)
	b, err := NewFileMedium(path)
	require.NoError(t, err)

	v, err := a.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, a.Set(ctx, "k", []byte("v1")))
	v, err = b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(v), "second instance sees writes of the first")

	require.NoError(t, b.Delete(ctx, "k"))
	require.NoError(t, b.Delete(ctx, "k"))
	v, err = a.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestFileMedium_BackedConn(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	open := Opener(func(ctx context.Context) (Medium, error) { return NewFileMedium(path) })
	c, err := open(ctx)
	require.NoError(t, err)

	require.NoError(t, c.PutUser(ctx, models.User{Username: "alice", Stamps: 14, Language: models.LanguageKhmer}))
	require.NoError(t, c.Close())

	c, err = open(ctx)
	require.NoError(t, err)
	u, err := c.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, 14, u.Stamps)
}

func TestConn_ReplaceUsersWritesOneDocument(t *testing.T) {
	ctx := context.Background()
	m := newMapMedium()
	c, err := Open(ctx, m)
	require.NoError(t, err)

	require.NoError(t, c.PutUser(ctx, models.User{Username: "old", Stamps: 1, Language: models.LanguageKhmer}))
	require.NoError(t, c.ReplaceUsers(ctx, []models.User{
		{Username: "a", Stamps: 1, Language: models.LanguageKhmer},
		{Username: "a", Stamps: 5, Language: models.LanguageEnglish},
	}))

	assert.JSONEq(t, `[{"username":"a","stamps":5,"language":"en"}]`, string(m.data[UsersKey]))
}
