package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/dbx"
	"github.com/dmitrijs2005/stampcard/internal/models"
	"github.com/dmitrijs2005/stampcard/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	users   map[string]models.User
	err     error
	cleared bool
}

func (f *fakeUsersRepo) Get(ctx context.Context, username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsersRepo) Upsert(ctx context.Context, u models.User) error {
	if f.err != nil {
		return f.err
	}
	f.users[u.Username] = u
	return nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, username string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.users, username)
	return nil
}

func (f *fakeUsersRepo) Clear(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.users = map[string]models.User{}
	f.cleared = true
	return nil
}

// fakeRM отдаёт один и тот же репозиторий и для db, и для tx
type fakeRM struct {
	repo *fakeUsersRepo
}

func (m *fakeRM) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRM) Users(dbx.DBTX) users.Repository           { return m.repo }

func newService(t *testing.T) (*UserService, *fakeUsersRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	repo := &fakeUsersRepo{users: map[string]models.User{}}
	return NewUserService(db, &fakeRM{repo: repo}), repo, mock
}

// --- tests ---

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      models.User
		want    models.User
		wantErr bool
	}{
		{name: "normalizes", in: models.User{Username: " Dara ", Stamps: 3},
			want: models.User{Username: "dara", Stamps: 3, Language: models.DefaultLanguage}},
		{name: "above goal kept", in: models.User{Username: "x", Stamps: 40, Language: models.LanguageEnglish},
			want: models.User{Username: "x", Stamps: 40, Language: models.LanguageEnglish}},
		{name: "empty name", in: models.User{Username: "  "}, wantErr: true},
		{name: "bad language", in: models.User{Username: "x", Language: "fr"}, wantErr: true},
		{name: "negative", in: models.User{Username: "x", Stamps: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPutGetDelete(t *testing.T) {
	s, repo, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, models.User{Username: "Dara", Stamps: 2}))
	assert.Contains(t, repo.users, "dara")

	u, err := s.Get(ctx, "DARA")
	require.NoError(t, err)
	assert.Equal(t, 2, u.Stamps)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, " Dara"))
	_, err = s.Get(ctx, "dara")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPut_Invalid(t *testing.T) {
	s, repo, _ := newService(t)
	err := s.Put(context.Background(), models.User{Username: "x", Stamps: -3})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, repo.users)
}

func TestGet_EmptyName(t *testing.T) {
	s, _, _ := newService(t)
	_, err := s.Get(context.Background(), " ")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestClear_Transaction(t *testing.T) {
	s, repo, mock := newService(t)
	repo.users["a"] = models.User{Username: "a"}

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, s.Clear(context.Background()))
	assert.True(t, repo.cleared)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClear_RollbackOnError(t *testing.T) {
	s, repo, mock := newService(t)
	repo.err = errors.New("locked")

	mock.ExpectBegin()
	mock.ExpectRollback()

	require.ErrorContains(t, s.Clear(context.Background()), "locked")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	s, _, mock := newService(t)

	mock.ExpectPing()
	require.NoError(t, s.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("refused"))
	require.ErrorIs(t, s.Ping(context.Background()), common.ErrStorageUnavailable)
}
