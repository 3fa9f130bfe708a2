package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/stampcard/internal/client/store"
	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/models"
)

const (
	UsersKey   = "coffee-rewards-users"
	SessionKey = "coffee-rewards-session"
	SchemaKey  = "coffee-rewards-schema"
)

// Conn maps the record store contract onto a Medium. Each mutation is a
// read-modify-write of the whole user document; concurrent writers follow
// last-write-wins.
type Conn struct {
	m Medium
}

var (
	_ store.Conn    = (*Conn)(nil)
	_ store.Batcher  = (*Conn)(nil)
	_ store.Replacer = (*Conn)(nil)
)

// MediumFunc produces the medium for a new connection.
type MediumFunc func(ctx context.Context) (Medium, error)

// Opener returns a store.OpenFunc that connects the medium and checks the
// schema marker.
func Opener(newMedium MediumFunc) store.OpenFunc {
	return func(ctx context.Context) (store.Conn, error) {
		m, err := newMedium(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
		}

		c, err := Open(ctx, m)
		if err != nil {
			_ = m.Close()
			return nil, err
		}
		return c, nil
	}
}

// Open checks (and on first use writes) the schema marker. A marker written
// by a newer build is a conflict.
func Open(ctx context.Context, m Medium) (*Conn, error) {
	raw, err := m.Get(ctx, SchemaKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read schema marker: %w", common.ErrStorageUnavailable, err)
	}

	if raw == nil {
		if err := m.Set(ctx, SchemaKey, []byte(strconv.Itoa(common.SchemaVersion))); err != nil {
			return nil, fmt.Errorf("%w: write schema marker: %w", common.ErrStorageUnavailable, err)
		}
		return &Conn{m: m}, nil
	}

	v, err := strconv.Atoi(string(raw))
	if err != nil {
		return nil, fmt.Errorf("schema marker %q: %w", raw, common.ErrStorageConflict)
	}
	if v > common.SchemaVersion {
		return nil, fmt.Errorf("schema version %d is newer than %d: %w", v, common.SchemaVersion, common.ErrStorageConflict)
	}
	return &Conn{m: m}, nil
}

func (c *Conn) loadUsers(ctx context.Context) ([]models.User, error) {
	raw, err := c.m.Get(ctx, UsersKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var users []models.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", UsersKey, err)
	}
	return users, nil
}

func (c *Conn) saveUsers(ctx context.Context, users []models.User) error {
	if users == nil {
		users = []models.User{}
	}
	b, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return c.m.Set(ctx, UsersKey, b)
}

func (c *Conn) GetUser(ctx context.Context, username string) (*models.User, error) {
	users, err := c.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (c *Conn) ListUsers(ctx context.Context) ([]models.User, error) {
	return c.loadUsers(ctx)
}

func upsert(users []models.User, u models.User) []models.User {
	for i := range users {
		if users[i].Username == u.Username {
			users[i] = u
			return users
		}
	}
	return append(users, u)
}

func (c *Conn) PutUser(ctx context.Context, u models.User) error {
	return c.PutUsers(ctx, []models.User{u})
}

func (c *Conn) PutUsers(ctx context.Context, batch []models.User) error {
	users, err := c.loadUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range batch {
		users = upsert(users, u)
	}
	return c.saveUsers(ctx, users)
}

func (c *Conn) DeleteUser(ctx context.Context, username string) error {
	users, err := c.loadUsers(ctx)
	if err != nil {
		return err
	}

	out := users[:0]
	found := false
	for _, u := range users {
		if u.Username == username {
			found = true
			continue
		}
		out = append(out, u)
	}
	if !found {
		return nil
	}
	return c.saveUsers(ctx, out)
}

func (c *Conn) ClearUsers(ctx context.Context) error {
	return c.saveUsers(ctx, nil)
}

// ReplaceUsers writes the new user array in a single put.
func (c *Conn) ReplaceUsers(ctx context.Context, batch []models.User) error {
	var users []models.User
	for _, u := range batch {
		users = upsert(users, u)
	}
	return c.saveUsers(ctx, users)
}

func (c *Conn) GetSession(ctx context.Context) (models.Session, error) {
	raw, err := c.m.Get(ctx, SessionKey)
	if err != nil {
		return models.Session{}, err
	}
	if raw == nil {
		return models.EmptySession(), nil
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Session{}, fmt.Errorf("decode %s: %w", SessionKey, err)
	}
	return s, nil
}

func (c *Conn) PutSession(ctx context.Context, s models.Session) error {
	if s.IsEmpty() {
		return c.m.Delete(ctx, SessionKey)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.m.Set(ctx, SessionKey, b)
}

func (c *Conn) Close() error {
	return c.m.Close()
}
