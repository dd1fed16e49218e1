// File: cmd/app/app.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lexa-chat/internal/application"
	"lexa-chat/internal/config"
	"lexa-chat/internal/domain/ports/repository"
	"lexa-chat/internal/infra/api"
	"lexa-chat/internal/infra/filestore"
	"lexa-chat/internal/infra/logging"
	"lexa-chat/internal/infra/metrics"
	"lexa-chat/internal/infra/realtime"
	red "lexa-chat/internal/infra/redis"
	"lexa-chat/internal/infra/sched"
	"lexa-chat/internal/infra/security"
	"lexa-chat/internal/infra/web"
	"lexa-chat/internal/infra/worker"
	"lexa-chat/internal/state"
	"lexa-chat/internal/usecase"

	"github.com/rs/zerolog"
)

// app holds the wired client. Background loops start with start and stop
// with close.
type app struct {
	cfg       *config.Config
	log       *zerolog.Logger
	logCloser io.Closer

	storage    repository.ClientStateRepository
	store      *state.Store
	session    usecase.SessionUseCase
	chats      usecase.ChatUseCase
	supervisor *usecase.RealtimeSupervisor
	pool       *worker.Pool
	facade     *application.ClientFacade
	refresher  *sched.SessionRefresher
	debug      *web.Server

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// buildApp wires every component from cfg. interactive routes logs away from
// the terminal the TUI draws on.
func buildApp(ctx context.Context, cfg *config.Config, interactive bool) (*app, error) {
	if interactive && cfg.Log.File == "" {
		cfg.Log.File = defaultLogPath()
	}
	logger, logCloser, err := logging.New(cfg.Log, cfg.Runtime.Dev)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Client state storage ----
	storage, err := openStorage(ctx, cfg)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	// ---- Remote API ----
	apiClient, err := api.NewClient(cfg.API, cfg.Session, logger)
	if err != nil {
		_ = storage.Close()
		_ = logCloser.Close()
		return nil, fmt.Errorf("api client: %w", err)
	}
	var tokens repository.SessionTokenRepository = storage
	if cfg.Storage.EncryptionKey != "" {
		sealer, err := security.NewSealer(cfg.Storage.EncryptionKey)
		if err != nil {
			_ = storage.Close()
			_ = logCloser.Close()
			return nil, fmt.Errorf("security: %w", err)
		}
		tokens = security.NewSealedTokenRepository(storage, sealer)
	}
	dialer := realtime.NewDialer(cfg.Realtime, cfg.Session.CookieName, apiClient.SessionToken, logger)

	// ---- State + use cases ----
	store := state.NewStore(logger)
	fx := usecase.NewEffects(store, apiClient, storage, logger)
	sessionUC := usecase.NewSessionUseCase(fx, apiClient, tokens, api.TokenExpired, logger, cfg.Runtime.Dev)
	chatUC := usecase.NewChatUseCase(fx, apiClient, logger)
	supervisor := usecase.NewRealtimeSupervisor(store, dialer, logger)
	convUC := usecase.NewConversationUseCase(fx, storage, supervisor, cfg.Realtime.ReplyTimeout, logger)

	// ---- Facade ----
	pool := worker.NewPool(cfg.Workers, logger)
	facade := application.NewClientFacade(store, sessionUC, chatUC, convUC, pool, logger)

	authenticated := func() bool { return store.State().Session.Authenticated }
	refresher := sched.NewSessionRefresher(cfg.Session.RefreshInterval, sessionUC, authenticated, logger)

	var debug *web.Server
	if cfg.Debug.Port > 0 {
		debug = web.NewServer(cfg.Debug.Port, store, cfg.Runtime.Dev, logger)
	}

	return &app{
		cfg:        cfg,
		log:        logger,
		logCloser:  logCloser,
		storage:    storage,
		store:      store,
		session:    sessionUC,
		chats:      chatUC,
		supervisor: supervisor,
		pool:       pool,
		facade:     facade,
		refresher:  refresher,
		debug:      debug,
	}, nil
}

func openStorage(ctx context.Context, cfg *config.Config) (repository.ClientStateRepository, error) {
	switch cfg.Storage.Driver {
	case "redis":
		cli, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return red.NewClientStateRepo(cli, cfg.Storage.Profile), nil
	default:
		return filestore.New(cfg.Storage.Path, cfg.Storage.Profile)
	}
}

// start launches the worker pool, realtime supervisor, session refresher and
// (when enabled) the debug server.
func (a *app) start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.pool.Start(ctx)

	a.goRun("realtime supervisor", func() error { return a.supervisor.Run(ctx) })
	a.goRun("session refresher", func() error { return a.refresher.Run(ctx) })
	if a.debug != nil {
		a.goRun("debug server", func() error { return a.debug.Run(ctx) })
	}
}

func (a *app) goRun(name string, fn func() error) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := fn(); err != nil {
			a.log.Error().Err(err).Str("loop", name).Msg("background loop stopped")
		}
	}()
}

// close stops background loops and releases storage and the log file.
func (a *app) close() {
	if a.cancel != nil {
		a.cancel()
	}
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		a.log.Warn().Msg("shutdown timed out")
	}
	a.pool.Stop()
	if err := a.storage.Close(); err != nil {
		a.log.Warn().Err(err).Msg("storage close")
	}
	_ = a.logCloser.Close()
}

func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lexa", "lexa.log")
}
