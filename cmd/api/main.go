package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/haripriya/clinic-backend/docs" // swagger docs

	"github.com/haripriya/clinic-backend/internal/api"
	"github.com/haripriya/clinic-backend/internal/api/handler"
	"github.com/haripriya/clinic-backend/internal/api/middleware"
	"github.com/haripriya/clinic-backend/internal/auth"
	"github.com/haripriya/clinic-backend/internal/core/service"
	mongodb "github.com/haripriya/clinic-backend/internal/infrastructure/db/mongo"
	redisdb "github.com/haripriya/clinic-backend/internal/infrastructure/db/redis"
	"github.com/haripriya/clinic-backend/internal/infrastructure/queue"
	"github.com/haripriya/clinic-backend/internal/pkg/config"
	"github.com/haripriya/clinic-backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title                       Clinic Backend API
// @version                     1.0
// @description                 Authentication, role-based access control and patient records for the clinic backend.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{})
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "clinic-backend",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	userRepo := mongodb.NewUserRepository(db)
	patientRepo := mongodb.NewPatientRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":       userRepo.EnsureIndexes,
		"patients":    patientRepo.EnsureIndexes,
		"auth_events": auditRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return err
		}
		log.Debug().Str("collection", name).Msg("indexes ensured")
	}

	// --- Audit trail ---
	// Workers outlive the request context so queued events are flushed after
	// the HTTP server has stopped.
	auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(ctx))
	dispatcher := queue.NewAuditDispatcher(cfg.Audit.Workers, auditRepo, log)
	dispatcher.Start(auditCtx)
	defer func() {
		stopAudit()
		dispatcher.Wait()
	}()

	// --- Services ---
	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret: cfg.JWT.Secret,
		TTL:    cfg.JWT.TTL,
		Issuer: cfg.JWT.Issuer,
	})
	authService := service.NewAuthService(userRepo, auth.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, log, service.AuthOptions{
		Throttle:             redisdb.NewLoginThrottle(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginLockout),
		Audit:                dispatcher,
		DiscloseAccountState: cfg.Auth.DiscloseAccountState,
	})
	patientService := service.NewPatientService(patientRepo, log)

	if cfg.Seed.AdminEmail != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		if err != nil {
			return err
		}
		log.Info().Str("email", cfg.Seed.AdminEmail).Bool("created", created).Msg("admin account ensured")
	}

	// --- HTTP ---
	trustedProxies, err := cfg.TrustedProxyNets()
	if err != nil {
		return err
	}
	e := api.NewRouter(api.Deps{
		AuthService:    authService,
		PatientService: patientService,
		Tokens:         tokens,
		Users:          userRepo,
		LoginLimiter:   middleware.NewIPRateLimiter(cfg.Auth.LoginRatePerSecond, cfg.Auth.LoginRateBurst),
		Logger:         log,
		EnableDocs:     !cfg.IsProduction(),
		TrustedProxies: trustedProxies,
		Probes: map[string]handler.Pinger{
			"mongodb": mongodb.NewPinger(mongoClient),
			"redis":   redisdb.NewPinger(rdb),
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
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
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
