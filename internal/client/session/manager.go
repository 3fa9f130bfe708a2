// Package session tracks who is logged in (nobody, a customer or an admin),
// resolves launch-link logins at startup and remembers which customer card an
// admin is looking at.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/logging"
	"github.com/dmitrijs2005/stampcard/internal/models"
)

// UserLookup is the part of the user repository the manager needs.
type UserLookup interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// Location is the visible launch link. Replace is called to rewrite it once
// its login part has been consumed.
type Location interface {
	Current() string
	Replace(raw string)
}

// StaticLocation is a Location held in memory.
type StaticLocation struct {
	mu  sync.Mutex
	raw string
}

func NewStaticLocation(raw string) *StaticLocation {
	return &StaticLocation{raw: raw}
}

func (l *StaticLocation) Current() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.raw
}

func (l *StaticLocation) Replace(raw string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.raw = raw
}

type Manager struct {
	keeper Keeper
	users  UserLookup
	log    logging.Logger

	mu      sync.Mutex
	viewing string
}

func NewManager(k Keeper, users UserLookup, log logging.Logger) *Manager {
	return &Manager{keeper: k, users: users, log: log.With("component", "session")}
}

func (m *Manager) Get(ctx context.Context) (models.Session, error) {
	return m.keeper.Load(ctx)
}

// Set replaces the whole session. Anything but an admin session also drops
// the viewing pointer.
func (m *Manager) Set(ctx context.Context, next models.Session) error {
	if err := m.keeper.Save(ctx, next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if !next.IsAdmin() {
		m.mu.Lock()
		m.viewing = ""
		m.mu.Unlock()
	}
	m.log.Debug(ctx, "session set", "session", next.String())
	return nil
}

// LoginCustomer looks the user up case-insensitively. An unknown user yields
// (false, nil); storage and network failures are returned as errors so the
// caller can tell them apart.
func (m *Manager) LoginCustomer(ctx context.Context, username string) (bool, error) {
	u, err := m.users.GetUser(ctx, username)
	if err != nil {
		return false, err
	}
	if u == nil {
		m.log.Info(ctx, "login rejected, unknown user", "username", models.NormalizeUsername(username))
		return false, nil
	}

	if err := m.Set(ctx, models.CustomerSession(u.Username)); err != nil {
		return false, err
	}
	m.log.Info(ctx, "customer logged in", "username", u.Username)
	return true, nil
}

// LoginAdmin starts an admin session. The credential check happens before
// this call.
func (m *Manager) LoginAdmin(ctx context.Context, identity string) error {
	if identity == "" {
		return fmt.Errorf("empty admin identity: %w", common.ErrValidation)
	}
	if err := m.Set(ctx, models.AdminSession(identity)); err != nil {
		return err
	}
	m.log.Info(ctx, "admin logged in", "admin", identity)
	return nil
}

func (m *Manager) Logout(ctx context.Context) error {
	if err := m.Set(ctx, models.EmptySession()); err != nil {
		return err
	}
	m.mu.Lock()
	m.viewing = ""
	m.mu.Unlock()
	m.log.Info(ctx, "logged out")
	return nil
}

// ViewCustomer points the admin at one customer's card.
func (m *Manager) ViewCustomer(ctx context.Context, username string) error {
	s, err := m.Get(ctx)
	if err != nil {
		return err
	}
	if !s.IsAdmin() {
		return fmt.Errorf("only an admin can view a card: %w", common.ErrValidation)
	}

	m.mu.Lock()
	m.viewing = models.NormalizeUsername(username)
	m.mu.Unlock()
	return nil
}

func (m *Manager) StopViewing() {
	m.mu.Lock()
	m.viewing = ""
	m.mu.Unlock()
}

// Viewing returns the customer an admin is looking at, or "".
func (m *Manager) Viewing() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewing
}

// Language returns the stored language of the logged in customer. Failures
// are only logged; the default language is returned instead.
func (m *Manager) Language(ctx context.Context) models.Language {
	s, err := m.Get(ctx)
	if err != nil {
		m.log.Warn(ctx, "language sync: reading session failed", "error", err)
		return models.DefaultLanguage
	}
	if !s.IsCustomer() {
		return models.DefaultLanguage
	}

	u, err := m.users.GetUser(ctx, s.User())
	if err != nil {
		m.log.Warn(ctx, "language sync: reading user failed", "username", s.User(), "error", err)
		return models.DefaultLanguage
	}
	if u == nil || !u.Language.Valid() {
		return models.DefaultLanguage
	}
	return u.Language
}

// Startup decides the initial session. A stored session always wins. Without
// one, a login candidate in the launch link is tried; the link is stripped
// whether or not the login worked.
func (m *Manager) Startup(ctx context.Context, loc Location) (models.Session, error) {
	s, err := m.Get(ctx)
	if err != nil {
		return models.EmptySession(), fmt.Errorf("load session: %w", err)
	}
	if !s.IsEmpty() {
		m.log.Debug(ctx, "existing session adopted", "session", s.String())
		return s, nil
	}

	raw := loc.Current()
	name, ok := ResolveDeepLink(raw)
	if !ok {
		return models.EmptySession(), nil
	}

	loggedIn, err := m.LoginCustomer(ctx, name)
	loc.Replace(StripDeepLink(raw))
	if err != nil {
		return models.EmptySession(), fmt.Errorf("launch link login: %w", err)
	}
	if !loggedIn {
		return models.EmptySession(), nil
	}
	return models.CustomerSession(name), nil
}
