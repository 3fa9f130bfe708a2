package users

import (
	"context"

	"github.com/dmitrijs2005/stampcard/internal/models"
)

// Repository stores the user table of the record service. Get returns
// common.ErrorNotFound for an unknown username.
type Repository interface {
	Get(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Upsert(ctx context.Context, u models.User) error
	Delete(ctx context.Context, username string) error
	Clear(ctx context.Context) error
}
