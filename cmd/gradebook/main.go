package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/gradebook/gradebook/internal/app"
	"github.com/gradebook/gradebook/internal/auth"
	"github.com/gradebook/gradebook/internal/catalog"
	"github.com/gradebook/gradebook/internal/grades"
	"github.com/gradebook/gradebook/internal/knowledgetests"
	"github.com/gradebook/gradebook/internal/observability"
	"github.com/gradebook/gradebook/internal/platform/cache"
	"github.com/gradebook/gradebook/internal/platform/db"
	"github.com/gradebook/gradebook/internal/rbac"
	"github.com/gradebook/gradebook/internal/shared"
	"github.com/gradebook/gradebook/internal/students"
	"github.com/gradebook/gradebook/internal/users"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("gradebook stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.PGAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
		logger.Info("schema applied")
	}

	locker, closeLocker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	router, err := buildRouter(cfg, logger, pool, locker)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newLocker returns a Redis backed locker when REDIS_ADDR is set and an
// in-process one otherwise.
func newLocker(ctx context.Context, cfg *app.Config, logger *slog.Logger) (shared.Locker, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, using in-process admin lock")
		return shared.NewLocalLocker(), func() {}, nil
	}
	client, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}
	return cache.NewRedisLocker(client, 0), closeFn, nil
}

func buildRouter(cfg *app.Config, logger *slog.Logger, pool *pgxpool.Pool, locker shared.Locker) (http.Handler, error) {
	metrics := observability.NewMetrics()
	rbacMiddleware := rbac.Middleware{Logger: logger}

	classRepo := catalog.NewRepository(pool, catalog.Classes)
	subjectRepo := catalog.NewRepository(pool, catalog.Subjects)
	userRepo := users.NewRepository(pool)
	studentRepo := students.NewRepository(pool)
	testRepo := knowledgetests.NewRepository(pool)
	gradeRepo := grades.NewRepository(pool)

	codec, err := auth.NewTokenCodec(cfg.JWTSecret, auth.WithTTL(cfg.TokenTTL))
	if err != nil {
		return nil, err
	}
	resolver := auth.NewIdentityResolver(app.StaffDirectory(userRepo), app.LearnerDirectory(studentRepo))
	authService := auth.NewService(resolver, codec)
	authenticator := auth.NewAuthenticator(codec, resolver, logger, metrics)

	userService := users.NewService(users.Deps{
		Repo:     userRepo,
		Emails:   authService,
		Guard:    rbac.NewAdminGuard(userRepo, locker),
		Classes:  classRepo,
		Subjects: subjectRepo,
	})
	studentService := students.NewService(studentRepo, authService, classRepo)
	testService := knowledgetests.NewService(knowledgetests.Deps{
		Repo:     testRepo,
		Classes:  classRepo,
		Subjects: subjectRepo,
		Staff:    userRepo,
	})
	gradeService := grades.NewService(gradeRepo, testService, studentRepo)

	return app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Authenticator:   authenticator,
		Metrics:         metrics,
		AuthHandler:     auth.NewHandler(logger, authService),
		UsersHandler:    users.NewHandler(logger, userService, rbacMiddleware),
		StudentsHandler: students.NewHandler(logger, studentService, rbacMiddleware),
		ClassesHandler:  catalog.NewHandler(logger, catalog.NewService(classRepo, catalog.Classes), rbacMiddleware),
		SubjectsHandler: catalog.NewHandler(logger, catalog.NewService(subjectRepo, catalog.Subjects), rbacMiddleware),
		TestsHandler:    knowledgetests.NewHandler(logger, testService, rbacMiddleware),
		GradesHandler:   grades.NewHandler(logger, gradeService, rbacMiddleware),
	}), nil
}
