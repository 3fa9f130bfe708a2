package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/stampcard/internal/client/card"
	"github.com/dmitrijs2005/stampcard/internal/client/share"
	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/models"
)

var (
	errNoCard = errors.New("no card is open")
	errUsage  = errors.New("usage")
)

func (a *App) usage(ctx context.Context, text string) error {
	a.toaster.Error(ctx, "Usage: %s", text)
	return errUsage
}

// Login starts a customer session. The name can be given inline or is
// prompted for.
func (a *App) Login(ctx context.Context, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	} else {
		var err error
		name, err = GetSimpleText(a.reader, "Your name", a.out)
		if err != nil {
			return err
		}
	}
	if models.NormalizeUsername(name) == "" {
		return a.usage(ctx, "login <name>")
	}

	ok, err := a.sessions.LoginCustomer(ctx, name)
	if err != nil {
		a.toaster.Error(ctx, "Could not log in: %v", err)
		return err
	}
	if !ok {
		a.toaster.Error(ctx, "User %q not found", models.NormalizeUsername(name))
		return common.ErrorNotFound
	}

	a.toaster.Success(ctx, "Welcome, %s!", models.NormalizeUsername(name))
	a.openCard(name)
	return nil
}

// AdminLogin prompts for the admin credentials.
func (a *App) AdminLogin(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Admin username", a.out)
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		a.toaster.Error(ctx, "Could not read password: %v", err)
		return err
	}
	defer wipe(pw)

	if !a.auth.Check(name, string(pw)) {
		a.toaster.Error(ctx, "Invalid admin credentials")
		return common.ErrValidation
	}

	a.closeCard()
	if err := a.sessions.LoginAdmin(ctx, a.auth.Username()); err != nil {
		a.toaster.Error(ctx, "Could not log in: %v", err)
		return err
	}
	a.toaster.Success(ctx, "Logged in as admin")
	return nil
}

// Claim resets the open card once its reward is ready.
func (a *App) Claim(ctx context.Context) error {
	v := a.currentCard()
	if v == nil {
		a.toaster.Error(ctx, "No card is open")
		return errNoCard
	}

	err := v.ctrl.Claim(ctx)
	switch {
	case errors.Is(err, card.ErrNotReady):
		a.toaster.Error(ctx, "No reward to claim yet")
	case err != nil:
		a.toaster.Error(ctx, "Could not claim the reward: %v", err)
	default:
		v.poll.Rebase(0)
		a.toaster.Success(ctx, "Reward claimed, enjoy your coffee!")
	}
	return err
}

// Lang stores a customer's language. For an admin it only changes the
// language shown in the prompt of this window.
func (a *App) Lang(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage(ctx, "lang <kh|en>")
	}
	lang := models.Language(strings.ToLower(strings.TrimSpace(args[0])))
	if !lang.Valid() {
		return a.usage(ctx, "lang <kh|en>")
	}

	s, err := a.sessions.Get(ctx)
	if err != nil {
		a.toaster.Error(ctx, "Could not read the session: %v", err)
		return err
	}

	if s.IsAdmin() {
		a.mu.Lock()
		a.adminLang = lang
		a.mu.Unlock()
		a.toaster.Success(ctx, "Language: %s", lang)
		return nil
	}

	if _, err := a.users.SetLanguage(ctx, s.User(), lang); err != nil {
		a.toaster.Error(ctx, "Could not save the language: %v", err)
		return err
	}
	a.toaster.Success(ctx, "Language: %s", lang)
	return nil
}

// Share prints the profile link and its QR image URL. Customers share their
// own card; an admin names the customer.
func (a *App) Share(ctx context.Context, args []string) error {
	s, err := a.sessions.Get(ctx)
	if err != nil {
		a.toaster.Error(ctx, "Could not read the session: %v", err)
		return err
	}

	name := s.User()
	if s.IsAdmin() {
		if len(args) != 1 {
			return a.usage(ctx, "share <name>")
		}
		name = args[0]
	}

	link, err := share.ProfileURL(a.cfg.ProfileBaseURL, name)
	if err != nil {
		a.toaster.Error(ctx, "Could not build the link: %v", err)
		return err
	}
	qr, err := share.QRCodeURL(a.cfg.QREndpoint, link)
	if err != nil {
		a.toaster.Error(ctx, "Could not build the QR code: %v", err)
		return err
	}

	a.println("Profile:", link)
	a.println("QR code:", qr)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.closeCard()
	if err := a.sessions.Logout(ctx); err != nil {
		a.toaster.Error(ctx, "Could not log out: %v", err)
		return err
	}
	a.toaster.Success(ctx, "Logged out")
	return nil
}

func describe(u models.User) string {
	s := fmt.Sprintf("%-20s %2d/%d  %s", u.Username, u.Stamps, models.Goal, u.Language)
	if u.RewardReached() {
		s += "  *"
	}
	return s
}
