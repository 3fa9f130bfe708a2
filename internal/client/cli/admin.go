package cli

import (
	"context"
	"errors"
	"os"
	"sort"
	"strconv"

	"github.com/dmitrijs2005/stampcard/internal/client/users"
	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/models"
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

func (a *App) List(ctx context.Context) error {
	list, err := a.users.GetAllUsers(ctx)
	if err != nil {
		a.toaster.Error(ctx, "Could not load users: %v", err)
		return err
	}
	if len(list) == 0 {
		a.println("No users yet")
		return nil
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	for _, u := range list {
		a.println(describe(u))
	}
	return nil
}

func (a *App) Create(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage(ctx, "create <name>")
	}

	u, err := a.users.CreateUser(ctx, args[0])
	switch {
	case errors.Is(err, common.ErrUserExists):
		a.toaster.Error(ctx, "User %q already exists", models.NormalizeUsername(args[0]))
		return err
	case err != nil:
		a.toaster.Error(ctx, "Could not create the user: %v", err)
		return err
	}
	a.toaster.Success(ctx, "User %q created", u.Username)
	return nil
}

// Stamp adds or removes stamps: "stamp dara +1", "stamp dara -2".
func (a *App) Stamp(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.usage(ctx, "stamp <name> <+n|-n>")
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil {
		return a.usage(ctx, "stamp <name> <+n|-n>")
	}

	u, err := a.users.AdjustStamps(ctx, args[0], delta)
	if err != nil {
		a.userError(ctx, args[0], err)
		return err
	}
	a.toaster.Success(ctx, "%s now has %d/%d stamps", u.Username, u.Stamps, models.Goal)
	return nil
}

func (a *App) Reset(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage(ctx, "reset <name>")
	}
	u, err := a.users.ResetStamps(ctx, args[0])
	if err != nil {
		a.userError(ctx, args[0], err)
		return err
	}
	a.toaster.Success(ctx, "Stamps of %s reset", u.Username)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage(ctx, "delete <name>")
	}
	name := models.NormalizeUsername(args[0])

	if err := a.users.DeleteUser(ctx, name); err != nil {
		a.userError(ctx, name, err)
		return err
	}
	if a.sessions.Viewing() == name {
		a.Back(ctx)
	}
	a.toaster.Success(ctx, "User %q deleted", name)
	return nil
}

// Import reads a JSON array of users: "import users.json [merge|replace]".
func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return a.usage(ctx, "import <file> [merge|replace]")
	}
	mode := users.ModeMerge
	if len(args) == 2 {
		var err error
		if mode, err = users.ParseMode(args[1]); err != nil {
			return a.usage(ctx, "import <file> [merge|replace]")
		}
	}

	data, err := readFile(args[0])
	if err != nil {
		a.toaster.Error(ctx, "Could not read %s: %v", args[0], err)
		return err
	}
	records, err := users.ParseImport(data)
	if err != nil {
		a.toaster.Error(ctx, "Invalid import file: %v", err)
		return err
	}

	res, err := a.users.BulkImport(ctx, records, mode)
	if err != nil {
		a.toaster.Error(ctx, "Import failed: %v", err)
		return err
	}
	a.toaster.Success(ctx, "Imported %d users (%s), skipped %d", res.Applied, mode, res.Skipped)
	return nil
}

// Export writes a snapshot to the export directory, or to S3 with "export s3".
func (a *App) Export(ctx context.Context, args []string) error {
	dest := a.files
	if len(args) == 1 && args[0] == "s3" {
		if a.s3 == nil {
			a.toaster.Error(ctx, "S3 export is not configured")
			return common.ErrValidation
		}
		dest = a.s3
	} else if len(args) > 0 {
		return a.usage(ctx, "export [s3]")
	}

	data, err := a.users.ExportAll(ctx)
	if err != nil {
		a.toaster.Error(ctx, "Export failed: %v", err)
		return err
	}
	where, err := dest.Export(ctx, data)
	if err != nil {
		a.toaster.Error(ctx, "Export failed: %v", err)
		return err
	}
	a.toaster.Success(ctx, "Exported to %s", where)
	return nil
}

// View opens a customer's card for the admin.
func (a *App) View(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage(ctx, "view <name>")
	}

	u, err := a.users.GetUser(ctx, args[0])
	if err != nil {
		a.toaster.Error(ctx, "Could not load the user: %v", err)
		return err
	}
	if u == nil {
		a.toaster.Error(ctx, "User %q not found", models.NormalizeUsername(args[0]))
		return common.ErrorNotFound
	}

	if err := a.sessions.ViewCustomer(ctx, u.Username); err != nil {
		a.toaster.Error(ctx, "Could not open the card: %v", err)
		return err
	}
	a.openCard(u.Username)
	return nil
}

// Back closes the customer card the admin is looking at.
func (a *App) Back(ctx context.Context) error {
	a.closeCard()
	a.sessions.StopViewing()
	return nil
}

func (a *App) userError(ctx context.Context, name string, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		a.toaster.Error(ctx, "User %q not found", models.NormalizeUsername(name))
		return
	}
	a.toaster.Error(ctx, "Operation failed: %v", err)
}
