// @title           CardDemo Portal API
// @version         1.0
// @description     Session lifecycle and role-scoped screens for the CardDemo portal.
// @BasePath        /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/carddemo/portal/internal/api"
	"github.com/carddemo/portal/internal/core/ports"
	"github.com/carddemo/portal/internal/core/service"
	"github.com/carddemo/portal/internal/infrastructure/authclient"
	"github.com/carddemo/portal/internal/infrastructure/backend"
	"github.com/carddemo/portal/internal/infrastructure/db/file"
	"github.com/carddemo/portal/internal/infrastructure/db/memory"
	mongodb "github.com/carddemo/portal/internal/infrastructure/db/mongo"
	redisdb "github.com/carddemo/portal/internal/infrastructure/db/redis"
	"github.com/carddemo/portal/internal/pkg/config"
	"github.com/carddemo/portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "carddemo-portal",
		Env:     cfg.Env,
	})

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	auth := authclient.NewClient(cfg.Auth.BaseURL, nil)
	validator := authclient.NewValidator(auth, cfg.Auth.ValidateTimeout, cfg.Auth.ValidateRetries, logger.Component("validator"))
	sessions := service.NewSessionService(store, auth, validator, log)
	bank := backend.NewClient(cfg.API.BaseURL, sessions, cfg.API.RequestTimeout)
	screens := service.NewScreenService(bank, logger.Component("screens"))
	bills := service.NewBillPaymentService(bank, logger.Component("bill-payments"))

	deps := api.Deps{
		Sessions:    sessions,
		Screens:     screens,
		Bills:       bills,
		Log:         log,
		SignInPath:  cfg.Routes.SignIn,
		LandingPath: cfg.Routes.Landing,
	}
	if p, ok := store.(ports.Pinger); ok {
		deps.Store = p
	}
	e := api.NewRouter(deps)

	// Routes answer with the loading placeholder until this finishes.
	go func() {
		snap := sessions.Initialize(ctx)
		log.Info().Str("status", snap.Status.String()).Msg("session initialized")
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Credential.Backend).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}

// openStore builds the credential store selected by CREDENTIAL_BACKEND along
// with a func that releases its connections.
func openStore(ctx context.Context, cfg *config.Config) (ports.CredentialStore, func(), error) {
	log := logger.Component("store")
	noop := func() {}

	switch cfg.Credential.Backend {
	case config.BackendRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisdb.NewCredentialStore(client, cfg.Credential.Profile), func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close failed")
			}
		}, nil

	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		return mongodb.NewCredentialStore(db, cfg.Credential.Profile), func() {
			disconnect(client.Disconnect, log)
		}, nil

	case config.BackendMemory:
		return memory.NewCredentialStore(), noop, nil

	default:
		return file.NewCredentialStore(cfg.Credential.File, cfg.Credential.Profile), noop, nil
	}
}

func disconnect(fn func(context.Context) error, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Msg("mongo disconnect failed")
	}
}
