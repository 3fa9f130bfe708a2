package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/stampcard/internal/client/card"
	"github.com/dmitrijs2005/stampcard/internal/client/poller"
)

// openCard shows username's card and starts polling it. A card that is
// already open is closed first.
func (a *App) openCard(username string) {
	a.closeCard()

	ctrl := card.New(username, a.users, a.renderCard, a.cfg.AnimationStep, a.cfg.RewardDelay, a.log)
	p := poller.New(a.users, ctrl, a.cfg.PollInterval, a.log)

	a.mu.Lock()
	a.view = &cardView{username: username, ctrl: ctrl, poll: p}
	a.mu.Unlock()

	p.Start(a.runCtx, username)
}

func (a *App) closeCard() {
	a.mu.Lock()
	v := a.view
	a.view = nil
	a.mu.Unlock()

	if v == nil {
		return
	}
	v.poll.Stop()
	v.ctrl.Close()
}

func (a *App) currentCard() *cardView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

func (a *App) renderCard(v card.View) {
	a.println(formatCard(v))
}

func formatCard(v card.View) string {
	shown := min(max(v.Shown, 0), v.Goal)
	bar := strings.Repeat("#", shown) + strings.Repeat(".", v.Goal-shown)
	s := fmt.Sprintf("%s [%s] %d/%d", v.Username, bar, shown, v.Goal)
	if v.State == card.RewardReady {
		s += "  reward ready, type 'claim'"
	}
	return s
}

func (a *App) Card(ctx context.Context) error {
	v := a.currentCard()
	if v == nil {
		a.toaster.Error(ctx, "No card is open")
		return errNoCard
	}
	a.println(formatCard(v.ctrl.View()))
	return nil
}
