package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/stampcard/internal/client/admin"
	"github.com/dmitrijs2005/stampcard/internal/client/card"
	"github.com/dmitrijs2005/stampcard/internal/client/config"
	"github.com/dmitrijs2005/stampcard/internal/client/exporter"
	"github.com/dmitrijs2005/stampcard/internal/client/notify"
	"github.com/dmitrijs2005/stampcard/internal/client/poller"
	"github.com/dmitrijs2005/stampcard/internal/client/session"
	"github.com/dmitrijs2005/stampcard/internal/client/store"
	"github.com/dmitrijs2005/stampcard/internal/client/users"
	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/logging"
	"github.com/dmitrijs2005/stampcard/internal/models"
)

type role int

const (
	roleAnonymous role = iota
	roleCustomer
	roleAdmin
)

// cardView is the open card: a controller fed by a poller.
type cardView struct {
	username string
	ctrl     *card.Controller
	poll     *poller.Poller
}

type App struct {
	cfg *config.Config
	log logging.Logger

	store    *store.Store
	users    *users.Repository
	sessions *session.Manager
	auth     *admin.Authenticator
	toaster  *notify.Toaster
	files    exporter.Exporter
	s3       exporter.Exporter

	reader *bufio.Reader
	out    io.Writer

	runCtx context.Context

	mu        sync.Mutex
	view      *cardView
	adminLang models.Language
}

// NewApp assembles the client from cfg. Nothing is opened yet; the backend
// connection is made lazily by the first store call.
func NewApp(cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	open, err := openerFor(cfg)
	if err != nil {
		return nil, err
	}

	auth, err := admin.NewAuthenticator(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return nil, err
	}

	s := store.NewStore(open, log)
	repo := users.NewRepository(s, log)

	a := &App{
		cfg:       cfg,
		log:       log.With("module", "cli"),
		store:     s,
		users:     repo,
		sessions:  session.NewManager(session.NewStoreKeeper(s), repo, log),
		auth:      auth,
		toaster:   notify.NewToaster(out, cfg.ToastLifetime, log),
		files:     exporter.NewFileExporter(cfg.ExportDir),
		reader:    bufio.NewReader(in),
		out:       out,
		runCtx:    context.Background(),
		adminLang: models.DefaultLanguage,
	}

	if cfg.S3.Bucket != "" {
		a.s3 = exporter.NewS3Exporter(exporter.S3Config{
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Endpoint:  cfg.S3.Endpoint,
			Bucket:    cfg.S3.Bucket,
			LinkTTL:   cfg.S3.LinkTTL,
		})
	}

	s.OnReload(func(reason error) {
		a.toaster.Error(context.Background(), "Storage is in use elsewhere: close other windows and reload (%v)", reason)
	})

	return a, nil
}

// Start connects to the store, seeds it if empty and resolves the initial
// session. An unavailable store is returned as an error: the app cannot run
// without it.
func (a *App) Start(ctx context.Context) error {
	a.runCtx = ctx

	if _, err := a.store.Conn(ctx); err != nil {
		return fmt.Errorf("storage is not available: %w", err)
	}

	if a.users.SeedIfEmpty(ctx, a.cfg.SeedFile) {
		a.log.Info(ctx, "store seeded", "file", a.cfg.SeedFile)
	}

	loc := session.NewStaticLocation(a.cfg.LaunchLink)
	s, err := a.sessions.Startup(ctx, loc)
	if err != nil {
		if errors.Is(err, common.ErrStorageUnavailable) {
			return fmt.Errorf("storage is not available: %w", err)
		}
		a.toaster.Error(ctx, "Could not log in from the link: %v", err)
	} else if name, ok := session.ResolveDeepLink(a.cfg.LaunchLink); ok && s.IsEmpty() {
		a.toaster.Error(ctx, "User %q not found", models.NormalizeUsername(name))
	}

	if s.IsCustomer() {
		a.openCard(s.User())
	}
	return nil
}

// Run starts the app and serves the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		return err
	}

	printlnFn("Stamp card (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) Close() {
	a.closeCard()
	if err := a.store.Close(); err != nil {
		a.log.Warn(context.Background(), "closing store", "error", err)
	}
}

func (a *App) role(ctx context.Context) role {
	s, err := a.sessions.Get(ctx)
	if err != nil {
		a.log.Warn(ctx, "reading session", "error", err)
		return roleAnonymous
	}
	switch {
	case s.IsCustomer():
		return roleCustomer
	case s.IsAdmin():
		return roleAdmin
	default:
		return roleAnonymous
	}
}

func (a *App) status() string {
	ctx := a.runCtx
	s, err := a.sessions.Get(ctx)
	if err != nil || s.IsEmpty() {
		return ""
	}
	if s.IsCustomer() {
		return fmt.Sprintf("(%s %s)", s.User(), a.sessions.Language(ctx))
	}
	a.mu.Lock()
	lang := a.adminLang
	a.mu.Unlock()
	if v := a.sessions.Viewing(); v != "" {
		return fmt.Sprintf("(admin %s %s -> %s)", s.Admin(), lang, v)
	}
	return fmt.Sprintf("(admin %s %s)", s.Admin(), lang)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
