package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/dbx"
	"github.com/dmitrijs2005/stampcard/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT username, stamps, language FROM users
		 WHERE username = $1
		 `

	u := &models.User{}
	var lang string
	err := r.db.QueryRowContext(ctx, query, username).Scan(&u.Username, &u.Stamps, &lang)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	u.Language = models.ParseLanguage(lang)
	return u, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.User, error) {
	query :=
		`SELECT username, stamps, language FROM users
		 ORDER BY username
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		var lang string
		if err := rows.Scan(&u.Username, &u.Stamps, &lang); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		u.Language = models.ParseLanguage(lang)
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, u models.User) error {
	query :=
		`INSERT INTO users (username, stamps, language)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO UPDATE
		 SET stamps = EXCLUDED.stamps, language = EXCLUDED.language, updated_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, u.Username, u.Stamps, string(u.Language)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, username string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
