package users

import (
	"context"
	"sort"
	"testing"

	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/logging"
	"github.com/dmitrijs2005/stampcard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sorted(list []models.User) []models.User {
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return list
}

func TestParseImport_NotAnArray(t *testing.T) {
	_, err := ParseImport([]byte(`{"username":"bob"}`))
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = ParseImport([]byte(`garbage`))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestBulkImport_ClampsAndSkips(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	recs, err := ParseImport([]byte(`[{"username":"Bob","stamps":20},{"stamps":3}]`))
	require.NoError(t, err)

	res, err := r.BulkImport(ctx, recs, ModeMerge)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Applied: 1, Skipped: 1}, res)

	all, err := r.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{{Username: "bob", Stamps: 15, Language: models.DefaultLanguage}}, all)
}

func TestBulkImport_Validation(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	recs, err := ParseImport([]byte(`[
		{"username":"a","stamps":-4},
		{"username":"b","stamps":"7"},
		{"username":42,"stamps":1},
		{"username":"   ","stamps":1},
		"not an object",
		{"username":"c","stamps":3.9,"language":"en","extra":true},
		{"username":"d","stamps":2,"language":"fr"},
		{"username":"e"}
	]`))
	require.NoError(t, err)

	res, err := r.BulkImport(ctx, recs, ModeMerge)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Applied)
	assert.Equal(t, 5, res.Skipped)

	all, err := r.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{
		{Username: "a", Stamps: 0, Language: models.LanguageKhmer},
		{Username: "c", Stamps: 3, Language: models.LanguageEnglish},
		{Username: "d", Stamps: 2, Language: models.LanguageKhmer},
	}, sorted(all))
}

func TestBulkImport_ReplaceEqualsValidEntries(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.UpsertUser(ctx, models.User{Username: "old", Stamps: 9}))

	recs, err := ParseImport([]byte(`[{"username":"x","stamps":1},{"username":"y","stamps":2,"language":"en"},{"bad":true}]`))
	require.NoError(t, err)

	_, err = r.BulkImport(ctx, recs, ModeReplace)
	require.NoError(t, err)

	all, err := r.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{
		{Username: "x", Stamps: 1, Language: models.LanguageKhmer},
		{Username: "y", Stamps: 2, Language: models.LanguageEnglish},
	}, sorted(all))
}

func TestBulkImport_MergePreservesOthers(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.UpsertUser(ctx, models.User{Username: "keep", Stamps: 9}))
	require.NoError(t, r.UpsertUser(ctx, models.User{Username: "x", Stamps: 9}))

	recs, err := ParseImport([]byte(`[{"username":"X","stamps":1},{"username":"x","stamps":4}]`))
	require.NoError(t, err)

	res, err := r.BulkImport(ctx, recs, ModeMerge)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)

	all, err := r.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{
		{Username: "keep", Stamps: 9, Language: models.LanguageKhmer},
		{Username: "x", Stamps: 4, Language: models.LanguageKhmer},
	}, sorted(all), "last duplicate wins")
}

func TestBulkImport_StoreFailure(t *testing.T) {
	r := NewRepository(brokenStore{err: common.ErrStorageIO}, logging.Discard())
	_, err := r.BulkImport(context.Background(), []Record{{"username": "a", "stamps": float64(1)}}, ModeReplace)
	assert.ErrorIs(t, err, common.ErrStorageIO)
}

func TestExportAll_SortedIndented(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.UpsertUser(ctx, models.User{Username: "zed", Stamps: 1, Language: models.LanguageEnglish}))
	require.NoError(t, r.UpsertUser(ctx, models.User{Username: "amy", Stamps: 15}))

	b, err := r.ExportAll(ctx)
	require.NoError(t, err)

	want := `[
  {
    "username": "amy",
    "stamps": 15,
    "language": "kh"
  },
  {
    "username": "zed",
    "stamps": 1,
    "language": "en"
  }
]
`
	assert.Equal(t, want, string(b))

	// the export is itself a valid import
	recs, err := ParseImport(b)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestExportAll_Empty(t *testing.T) {
	r, _ := newRepo(t)
	b, err := r.ExportAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(b))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("replace")
	require.NoError(t, err)
	assert.Equal(t, ModeReplace, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeMerge, m)

	_, err = ParseMode("append")
	assert.ErrorIs(t, err, common.ErrValidation)
}

// replacingStore fails ReplaceUsers and records whether ClearUsers was called.
type replacingStore struct {
	brokenStore
	replaced []models.User
	cleared  bool
}

func (s *replacingStore) ClearUsers(context.Context) error {
	s.cleared = true
	return nil
}

func (s *replacingStore) ReplaceUsers(_ context.Context, users []models.User) error {
	s.replaced = users
	return common.ErrStorageIO
}

func TestBulkImport_ReplaceIsOneStep(t *testing.T) {
	s := &replacingStore{brokenStore: brokenStore{err: common.ErrStorageIO}}
	r := NewRepository(s, logging.Discard())

	recs := []Record{{"username": "a", "stamps": float64(1)}, {"username": ""}}
	_, err := r.BulkImport(context.Background(), recs, ModeReplace)
	require.ErrorIs(t, err, common.ErrStorageIO)

	assert.False(t, s.cleared, "a failed replace must not leave users cleared")
	assert.Equal(t, []models.User{{Username: "a", Stamps: 1, Language: models.LanguageKhmer}}, s.replaced)
}
