package users

import (
	"context"
	"os"
)

var readSeedFile = os.ReadFile

// SeedIfEmpty imports the seed file in merge mode when the store holds no
// users yet. It reports whether anything was imported. Failures are only
// logged: a broken seed file must not keep the app from starting.
func (r *Repository) SeedIfEmpty(ctx context.Context, path string) bool {
	if path == "" {
		return false
	}

	list, err := r.store.ListUsers(ctx)
	if err != nil {
		r.log.Warn(ctx, "seed skipped: cannot list users", "error", err)
		return false
	}
	if len(list) > 0 {
		return false
	}

	data, err := readSeedFile(path)
	if err != nil {
		r.log.Warn(ctx, "seed skipped: cannot read file", "path", path, "error", err)
		return false
	}

	records, err := ParseImport(data)
	if err != nil {
		r.log.Warn(ctx, "seed skipped: bad file", "path", path, "error", err)
		return false
	}

	res, err := r.BulkImport(ctx, records, ModeMerge)
	if err != nil {
		r.log.Warn(ctx, "seed failed", "path", path, "error", err)
		return false
	}
	return res.Applied > 0
}
