// Package users holds the typed user operations built on the record store.
// Every username is normalized to lower case on the way in, so lookups are
// case-insensitive.
package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/stampcard/internal/client/store"
	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/logging"
	"github.com/dmitrijs2005/stampcard/internal/models"
)

type Repository struct {
	store store.RecordStore
	log   logging.Logger
}

func NewRepository(s store.RecordStore, log logging.Logger) *Repository {
	return &Repository{store: s, log: log.With("component", "users")}
}

// GetUser returns (nil, nil) for an unknown user.
func (r *Repository) GetUser(ctx context.Context, username string) (*models.User, error) {
	key := models.NormalizeUsername(username)
	u, err := r.store.GetUser(ctx, key)
	if err != nil {
		return nil, wrap("get", key, err)
	}
	return u, nil
}

// GetAllUsers returns every user in no particular order.
func (r *Repository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	list, err := r.store.ListUsers(ctx)
	if err != nil {
		return nil, wrap("list", "", err)
	}
	return list, nil
}

// UpsertUser inserts or fully replaces u. Stamps are stored as given.
func (r *Repository) UpsertUser(ctx context.Context, u models.User) error {
	u = u.Normalized()
	if u.Username == "" {
		return wrap("upsert", "", fmt.Errorf("empty username: %w", common.ErrValidation))
	}
	return wrap("upsert", u.Username, r.store.PutUser(ctx, u))
}

// DeleteUser removes a user; an unknown user is not an error.
func (r *Repository) DeleteUser(ctx context.Context, username string) error {
	key := models.NormalizeUsername(username)
	return wrap("delete", key, r.store.DeleteUser(ctx, key))
}

func (r *Repository) ClearAllUsers(ctx context.Context) error {
	return wrap("clear", "", r.store.ClearUsers(ctx))
}

// CreateUser adds a new user with no stamps and the default language.
func (r *Repository) CreateUser(ctx context.Context, username string) (models.User, error) {
	key := models.NormalizeUsername(username)
	if key == "" {
		return models.User{}, wrap("create", "", fmt.Errorf("empty username: %w", common.ErrValidation))
	}

	existing, err := r.store.GetUser(ctx, key)
	if err != nil {
		return models.User{}, wrap("create", key, err)
	}
	if existing != nil {
		return models.User{}, wrap("create", key, common.ErrUserExists)
	}

	u := models.User{Username: key, Stamps: 0, Language: models.DefaultLanguage}
	if err := r.store.PutUser(ctx, u); err != nil {
		return models.User{}, wrap("create", key, err)
	}

	r.log.Info(ctx, "user created", "username", key)
	return u, nil
}

// update is a read-modify-write of one user. Two writers racing on the same
// user follow last-write-wins.
func (r *Repository) update(ctx context.Context, op, username string, fn func(u *models.User)) (models.User, error) {
	key := models.NormalizeUsername(username)

	u, err := r.store.GetUser(ctx, key)
	if err != nil {
		return models.User{}, wrap(op, key, err)
	}
	if u == nil {
		return models.User{}, wrap(op, key, common.ErrorNotFound)
	}

	fn(u)
	if err := r.store.PutUser(ctx, *u); err != nil {
		return models.User{}, wrap(op, key, err)
	}
	return *u, nil
}

// AdjustStamps adds delta (which may be negative) and clamps the result into
// [0, models.Goal].
func (r *Repository) AdjustStamps(ctx context.Context, username string, delta int) (models.User, error) {
	u, err := r.update(ctx, "adjust stamps", username, func(u *models.User) {
		u.Stamps = models.ClampStamps(u.Stamps + delta)
	})
	if err != nil {
		return models.User{}, err
	}
	r.log.Info(ctx, "stamps adjusted", "username", u.Username, "delta", delta, "stamps", u.Stamps)
	return u, nil
}

func (r *Repository) ResetStamps(ctx context.Context, username string) (models.User, error) {
	u, err := r.update(ctx, "reset stamps", username, func(u *models.User) {
		u.Stamps = 0
	})
	if err != nil {
		return models.User{}, err
	}
	r.log.Info(ctx, "stamps reset", "username", u.Username)
	return u, nil
}

func (r *Repository) SetLanguage(ctx context.Context, username string, lang models.Language) (models.User, error) {
	if !lang.Valid() {
		return models.User{}, wrap("set language", models.NormalizeUsername(username),
			fmt.Errorf("language %q: %w", lang, common.ErrValidation))
	}
	return r.update(ctx, "set language", username, func(u *models.User) {
		u.Language = lang
	})
}
