package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-online/internal/catalog"
	"github.com/stemsi/exstem-online/internal/config"
	"github.com/stemsi/exstem-online/internal/database"
	"github.com/stemsi/exstem-online/internal/handler"
	"github.com/stemsi/exstem-online/internal/logger"
	"github.com/stemsi/exstem-online/internal/repository"
	"github.com/stemsi/exstem-online/internal/router"
	"github.com/stemsi/exstem-online/internal/service"
	"github.com/stemsi/exstem-online/internal/store"
	"github.com/stemsi/exstem-online/internal/validator"
	"github.com/stemsi/exstem-online/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExStem Online")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Load Catalog ──────────────────────────────────────────────────
	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		loaded, err := catalog.Load(cfg.CatalogFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.CatalogFile).Msg("Failed to load catalog")
		}
		cat = loaded
	}
	log.Info().
		Int("subjects", len(cat.Subjects)).
		Int("students", len(cat.Students)).
		Msg("Catalog loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	violationRepo := repository.NewViolationRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	kv := store.NewRedisStore(rdb)
	archive := worker.NewAttemptQueue(rdb)

	authService := service.NewAuthService(cfg)
	identityService := service.NewIdentityService(cfg, cat, kv, archive, log)
	examService := service.NewExamService(cat, identityService, log,
		service.WithViolationLog(worker.NewViolationQueue(rdb)),
	)
	resultService := service.NewResultService(cat, identityService)
	monitorService := service.NewMonitorService(examService, violationRepo)
	userService := service.NewUserService(cfg, userRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	redisPing := handler.PingFunc(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	deps := map[string]handler.Pinger{
		"postgres": pool,
		"redis":    redisPing,
	}

	subjectIDs := make([]string, 0, len(cat.Subjects))
	for _, subj := range cat.Subjects {
		subjectIDs = append(subjectIDs, subj.ID)
	}

	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, identityService, log),
		StudentPortal: handler.NewStudentPortalHandler(examService, resultService),
		Admin:         handler.NewAdminHandler(resultService, log),
		WS:            handler.NewWSHandler(examService, log, cfg.AllowedOrigins),
		System:        handler.NewSystemHandler(deps, examService, log),
		Monitor:       handler.NewMonitorHandler(monitorService, subjectIDs, log),
		User:          handler.NewUserHandler(userService, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	attemptWorker := worker.NewAttemptWorker(attemptRepo, rdb, log)
	violationWorker := worker.NewViolationWorker(violationRepo, rdb, log)

	workers.Add(2)
	go func() {
		defer workers.Done()
		attemptWorker.Start(workerCtx)
	}()
	go func() {
		defer workers.Done()
		violationWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, identityService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().
		Str("signal", sig.String()).
		Int("active_sessions", examService.ActiveCount()).
		Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop session timers. Unsubmitted sessions are abandoned.
	examService.Shutdown()

	// 3. Stop the workers and wait for their final flush.
	workerCancel()
	workersDone := make(chan struct{})
	go func() {
		workers.Wait()
		close(workersDone)
	}()
	select {
	case <-workersDone:
	case <-time.After(7 * time.Second):
		log.Warn().Msg("Background workers did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
