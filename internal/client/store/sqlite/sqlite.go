// Package sqlite is the embedded-database record store backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/stampcard/internal/client/store"
	"github.com/dmitrijs2005/stampcard/internal/client/store/sqlite/migrations"
	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/dbx"
	"github.com/dmitrijs2005/stampcard/internal/filex"
	"github.com/dmitrijs2005/stampcard/internal/models"
	"github.com/pressly/goose/v3"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Conn is a store.Conn over one sqlite database file.
type Conn struct {
	db *sql.DB
}

var (
	_ store.Conn    = (*Conn)(nil)
	_ store.Batcher  = (*Conn)(nil)
	_ store.Replacer = (*Conn)(nil)
)

// gooseVersion and gooseUp are seams for testing the migration step.
var gooseVersion = func(ctx context.Context, db *sql.DB) (int64, error) {
	return goose.GetDBVersionContext(ctx, db)
}

var gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations brings db up to the schema this build knows. A database that
// was already migrated further by a newer build is a conflict.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	v, err := gooseVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", mapError(err))
	}
	if v > common.SchemaVersion {
		return fmt.Errorf("schema version %d is newer than %d: %w", v, common.SchemaVersion, common.ErrStorageConflict)
	}

	if err := gooseUp(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", mapError(err))
	}
	return nil
}

// DSN builds the driver data source name for a database file.
func DSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)"
}

// Opener returns a store.OpenFunc that opens (creating if needed) the
// database at path and migrates it.
func Opener(path string) store.OpenFunc {
	return func(ctx context.Context) (store.Conn, error) {
		if _, err := filex.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
		}
		c, err := Open(ctx, DSN(path))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func Open(ctx context.Context, dsn string) (*Conn, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, mapError(err))
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Conn{db: db}, nil
}

// NewConn wraps an already migrated database.
func NewConn(db *sql.DB) *Conn {
	return &Conn{db: db}
}

// mapError turns lock contention into a storage conflict; another process
// holds the database.
func mapError(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %w", common.ErrStorageConflict, err)
		}
	}
	return err
}

func (c *Conn) GetUser(ctx context.Context, username string) (*models.User, error) {
	return getUser(ctx, c.db, username)
}

func getUser(ctx context.Context, db dbx.DBTX, username string) (*models.User, error) {
	var u models.User
	err := db.QueryRowContext(ctx,
		`SELECT username, stamps, language FROM users WHERE username = ?`, username,
	).Scan(&u.Username, &u.Stamps, &u.Language)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user[%s]: %w", username, mapError(err))
	}
	return &u, nil
}

func (c *Conn) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT username, stamps, language FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", mapError(err))
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Username, &u.Stamps, &u.Language); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", mapError(err))
	}
	return out, nil
}

func putUser(ctx context.Context, db dbx.DBTX, u models.User) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (username, stamps, language) VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET stamps = excluded.stamps, language = excluded.language
	`, u.Username, u.Stamps, string(u.Language))
	if err != nil {
		return fmt.Errorf("failed to put user[%s]: %w", u.Username, mapError(err))
	}
	return nil
}

func (c *Conn) PutUser(ctx context.Context, u models.User) error {
	return putUser(ctx, c.db, u)
}

// PutUsers writes all users in one transaction.
func (c *Conn) PutUsers(ctx context.Context, users []models.User) error {
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, u := range users {
			if err := putUser(ctx, tx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Conn) DeleteUser(ctx context.Context, username string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("failed to delete user[%s]: %w", username, mapError(err))
	}
	return nil
}

func (c *Conn) ClearUsers(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM users`)
	if err != nil {
		return fmt.Errorf("failed to clear users: %w", mapError(err))
	}
	return nil
}

// ReplaceUsers deletes every user and writes users in one transaction.
func (c *Conn) ReplaceUsers(ctx context.Context, users []models.User) error {
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
			return fmt.Errorf("failed to clear users: %w", mapError(err))
		}
		for _, u := range users {
			if err := putUser(ctx, tx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Conn) GetSession(ctx context.Context) (models.Session, error) {
	var customer, admin sql.NullString
	err := c.db.QueryRowContext(ctx,
		`SELECT customer, admin FROM session WHERE id = 'current'`,
	).Scan(&customer, &admin)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EmptySession(), nil
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to get session: %w", mapError(err))
	}
	return models.NewSession(customer.String, admin.String)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (c *Conn) PutSession(ctx context.Context, s models.Session) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO session (id, customer, admin) VALUES ('current', ?, ?)
		ON CONFLICT(id) DO UPDATE SET customer = excluded.customer, admin = excluded.admin
	`, nullable(s.User()), nullable(s.Admin()))
	if err != nil {
		return fmt.Errorf("failed to put session: %w", mapError(err))
	}
	return nil
}

func (c *Conn) Close() error {
	return c.db.Close()
}
