// Package services contains server-side business logic. UserService validates
// user records and stores them through the repository manager.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/dbx"
	"github.com/dmitrijs2005/stampcard/internal/models"
	"github.com/dmitrijs2005/stampcard/internal/server/repositories/repomanager"
)

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// Ping checks that the database answers.
func (s *UserService) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}
	return nil
}

// Get returns common.ErrorNotFound for an unknown user.
func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	key := models.NormalizeUsername(username)
	if key == "" {
		return nil, fmt.Errorf("empty username: %w", common.ErrValidation)
	}
	return s.repomanager.Users(s.db).Get(ctx, key)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// Validate normalizes u and rejects records the table cannot hold: an empty
// username, an unknown language or a negative stamp count. Counts above the
// goal are stored as given.
func Validate(u models.User) (models.User, error) {
	u = u.Normalized()
	if u.Username == "" {
		return u, fmt.Errorf("empty username: %w", common.ErrValidation)
	}
	if !u.Language.Valid() {
		return u, fmt.Errorf("language %q: %w", u.Language, common.ErrValidation)
	}
	if u.Stamps < 0 {
		return u, fmt.Errorf("negative stamps %d: %w", u.Stamps, common.ErrValidation)
	}
	return u, nil
}

func (s *UserService) Put(ctx context.Context, u models.User) error {
	u, err := Validate(u)
	if err != nil {
		return err
	}
	return s.repomanager.Users(s.db).Upsert(ctx, u)
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	return s.repomanager.Users(s.db).Delete(ctx, models.NormalizeUsername(username))
}

// Clear removes every user in one transaction.
func (s *UserService) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Users(tx).Clear(ctx)
	})
}
