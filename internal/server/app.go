// Package server wires the chat backend together: storage, media, session
// handling, live delivery and the HTTP surface. It also owns process
// lifecycle: signal handling and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/auth"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
	"github.com/dmitrijs2005/gophchat/internal/server/httpapi"
	"github.com/dmitrijs2005/gophchat/internal/server/media"
	"github.com/dmitrijs2005/gophchat/internal/server/registry"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophchat/internal/server/services"
	"github.com/dmitrijs2005/gophchat/internal/server/session"
	"github.com/dmitrijs2005/gophchat/internal/server/ws"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	registry *registry.Registry
	http     *httpapi.Server
}

// NewApp builds every component from c. An empty DatabaseDSN selects the
// in-memory stores; an empty S3BaseEndpoint keeps uploads in memory.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	repos, err := newRepositoryManager(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	store, err := newMediaStore(ctx, c, logger)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	tokens := auth.NewTokenManager(c.SecretKey, c.TokenValidityDuration)
	hasher := auth.NewPasswordHasher()
	reg := registry.New()
	gate := session.NewGate(tokens, repos.Users(repos.Conn()))

	us := services.NewUserService(repos, tokens, hasher, store, logger)
	ms := services.NewMessageService(repos, reg, store, logger)
	rt := ws.NewHandler(gate, reg, c.AllowedOrigins, logger)

	api := httpapi.NewServer(httpapi.Options{
		Address:        c.EndpointAddrHTTP,
		AllowedOrigins: c.AllowedOrigins,
		CookieSecure:   c.CookieSecure,
		CookieMaxAge:   c.TokenValidityDuration,
	}, logger, us, ms, gate, rt)

	return &App{config: c, logger: logger, repos: repos, registry: reg, http: api}, nil
}

func newRepositoryManager(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, using in-memory storage")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	rm, err := repomanager.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if c.MigrationsEnabled {
		if err := rm.RunMigrations(ctx); err != nil {
			_ = rm.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	return rm, nil
}

func newMediaStore(ctx context.Context, c *config.Config, logger logging.Logger) (media.Store, error) {
	if c.S3BaseEndpoint == "" {
		logger.Warn(ctx, "no object store configured, keeping uploads in memory")
		return media.NewMemoryStore(c.S3PublicURL), nil
	}

	store, err := media.NewS3Store(ctx, media.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
		PublicURL:    c.S3PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("media store init error: %w", err)
	}
	return store, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives, the parent ctx ends, or
// the server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "closing storage", "error", err)
	}
	app.logger.Info(ctx, "App stopped", "online_at_exit", app.registry.Len())
}
