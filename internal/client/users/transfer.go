package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dmitrijs2005/stampcard/internal/client/store"
	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/models"
)

// Mode selects how BulkImport treats existing users.
type Mode int

const (
	// ModeMerge keeps users that are not in the import.
	ModeMerge Mode = iota
	// ModeReplace swaps the whole user set for the import.
	ModeReplace
)

func (m Mode) String() string {
	if m == ModeReplace {
		return "replace"
	}
	return "merge"
}

// ParseMode accepts "merge" and "replace".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "merge":
		return ModeMerge, nil
	case "replace":
		return ModeReplace, nil
	default:
		return ModeMerge, fmt.Errorf("import mode %q: %w", s, common.ErrValidation)
	}
}

// Record is one entry of an import file as decoded, before validation.
type Record map[string]any

// ImportResult counts applied and skipped entries.
type ImportResult struct {
	Applied int
	Skipped int
}

// ParseImport decodes an import file: a JSON array of objects. Entries that
// are not objects are kept as nil records and later skipped.
func ParseImport(data []byte) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("import file must be a JSON array: %w: %w", common.ErrValidation, err)
	}

	out := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			out = append(out, nil)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// validate turns a record into a user or reports why it must be skipped.
// Stamps are clamped and truncated toward zero, a missing or unknown language
// becomes the default one.
func validate(rec Record) (models.User, error) {
	if rec == nil {
		return models.User{}, fmt.Errorf("not an object: %w", common.ErrValidation)
	}

	name, ok := rec["username"].(string)
	if !ok {
		return models.User{}, fmt.Errorf("username missing or not a string: %w", common.ErrValidation)
	}
	name = models.NormalizeUsername(name)
	if name == "" {
		return models.User{}, fmt.Errorf("empty username: %w", common.ErrValidation)
	}

	n, ok := rec["stamps"].(float64)
	if !ok || math.IsNaN(n) {
		return models.User{}, fmt.Errorf("stamps missing or not a number: %w", common.ErrValidation)
	}
	stamps := models.Goal
	if n < models.Goal {
		stamps = models.ClampStamps(int(math.Max(n, -1)))
	}

	lang := models.DefaultLanguage
	if s, ok := rec["language"].(string); ok {
		lang = models.ParseLanguage(s)
	}

	return models.User{Username: name, Stamps: stamps, Language: lang}, nil
}

// BulkImport applies records. Invalid entries are skipped and counted, never
// fatal. In ModeReplace the existing users are replaced by the import in one
// step where the store supports it. A later entry
// for the same username overrides an earlier one.
func (r *Repository) BulkImport(ctx context.Context, records []Record, mode Mode) (ImportResult, error) {
	var res ImportResult
	batch := make([]models.User, 0, len(records))

	for i, rec := range records {
		u, err := validate(rec)
		if err != nil {
			res.Skipped++
			r.log.Debug(ctx, "import entry skipped", "index", i, "error", err)
			continue
		}
		batch = append(batch, u)
	}

	var err error
	if mode == ModeReplace {
		err = replaceAll(ctx, r.store, batch)
	} else {
		err = putAll(ctx, r.store, batch)
	}
	if err != nil {
		return ImportResult{}, wrap("import", "", err)
	}

	res.Applied = len(batch)
	r.log.Info(ctx, "users imported", "mode", mode.String(), "applied", res.Applied, "skipped", res.Skipped)
	return res, nil
}

func replaceAll(ctx context.Context, s store.RecordStore, batch []models.User) error {
	if rp, ok := s.(store.Replacer); ok {
		return rp.ReplaceUsers(ctx, batch)
	}
	if err := s.ClearUsers(ctx); err != nil {
		return err
	}
	return putAll(ctx, s, batch)
}

func putAll(ctx context.Context, s store.RecordStore, batch []models.User) error {
	if len(batch) == 0 {
		return nil
	}
	if b, ok := s.(store.Batcher); ok {
		return b.PutUsers(ctx, batch)
	}
	for _, u := range batch {
		if err := s.PutUser(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// ExportAll returns every user as an indented JSON array sorted by username,
// each object with the fields username, stamps and language in that order.
func (r *Repository) ExportAll(ctx context.Context) ([]byte, error) {
	list, err := r.store.ListUsers(ctx)
	if err != nil {
		return nil, wrap("export", "", err)
	}
	if list == nil {
		list = []models.User{}
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return nil, wrap("export", "", err)
	}
	return buf.Bytes(), nil
}
