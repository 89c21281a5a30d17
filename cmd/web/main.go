package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/burinious/burinious-weight-coach/internal/coach"
	"github.com/burinious/burinious-weight-coach/internal/errors"
	"github.com/burinious/burinious-weight-coach/internal/logging"
	"github.com/burinious/burinious-weight-coach/internal/release"
	"github.com/burinious/burinious-weight-coach/internal/sqlite"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/sync/errgroup"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	templateFS     fs.FS
	coachService   *coach.Service
	releaseChecker *release.Checker
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"COACH_ADDR, default=localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"COACH_SQLITE_URL, default=./coach.sqlite3"`
	// TemplatePath is the path to the directory containing the HTML templates.
	TemplatePath string `env:"COACH_TEMPLATE_PATH, default="`
	// ReleaseFeedURL points to a JSON release feed used for the update banner. Empty disables the check.
	ReleaseFeedURL string `env:"COACH_RELEASE_FEED_URL, default="`
}

// envLookuper adapts a lookup function to the envconfig.Lookuper interface so
// tests can inject their own environment.
type envLookuper func(string) (string, bool)

func (f envLookuper) Lookup(key string) (string, bool) {
	return f(key)
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envLookuper(lookupEnv),
	}); err != nil {
		return errors.Wrap(err, "populate config")
	}

	var htmlTemplatePath string
	if htmlTemplatePath, err = resolveAndVerifyTemplatePath(cfg.TemplatePath); err != nil {
		return errors.Wrap(err, "resolve template path")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	coachService := coach.NewService(db, logger)
	if err = coachService.Heal(ctx); err != nil {
		return errors.Wrap(err, "heal stored state")
	}

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(db),
		templateFS:     os.DirFS(htmlTemplatePath),
		coachService:   coachService,
		releaseChecker: release.NewChecker(cfg.ReleaseFeedURL, currentVersion(), logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.releaseChecker.Start(gctx)
	})
	g.Go(func() error {
		return app.configureAndStartServer(gctx, cfg.Addr)
	})
	if err = g.Wait(); err != nil {
		return errors.Wrap(err, "run server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                                //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

// currentVersion reports the module version baked into the binary.
func currentVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return info.Main.Version
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
