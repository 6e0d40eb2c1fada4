package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/xboot/internal/config"
	"github.com/simp-lee/xboot/internal/domain"
	"github.com/simp-lee/xboot/internal/middleware"
	"github.com/simp-lee/xboot/internal/module/playground"
	"github.com/simp-lee/xboot/internal/module/user"
	"github.com/simp-lee/xboot/internal/pkg"
	"github.com/simp-lee/xboot/internal/repository"
)

const (
	defaultRequestTimeout = 30 * time.Second
	shutdownTimeout       = 5 * time.Second
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      2 * timeout,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New wires logging, the database, the modules and the middleware chain
// from cfg. cfg must have passed Validate.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if !success {
			log.Close()
		}
	}()

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 exposes permissive CORS")
	}

	db, err := config.SetupDatabase(ctx, &cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if !success {
			closeDatabase(db, log.Logger)
		}
	}()

	if cfg.Server.Mode == gin.DebugMode {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Info("auto migration completed")
	}

	repoOpts := []repository.Option{
		repository.WithLogger(log.Logger),
		repository.WithBatchSize(cfg.Repository.BulkBatchSize),
	}
	limits := pkg.PageLimits{
		DefaultSize: cfg.Repository.DefaultPageSize,
		MaxSize:     cfg.Repository.MaxPageSize,
	}

	userHandler := user.NewUserHandler(user.NewUserService(user.NewUserRepository(db, repoOpts...)), limits)
	playgroundHandler := playground.NewHandler(
		repository.New[domain.User](db, repoOpts...),
		limits,
		cfg.Repository.PageListMaxCount,
	)

	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestID(),
		middleware.Actor(cfg.Audit.ActorHeader),
		middleware.Logger(log.Logger, "/health"),
		middleware.CORSWithConfig(resolveCORSConfig(cfg)),
	)

	if err := RegisterRoutes(engine, &RouteDeps{
		Modules: []Module{
			user.NewModule(userHandler),
			playground.NewModule(playgroundHandler),
		},
		DB: db,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{engine: engine, db: db, logger: log, cfg: cfg}, nil
}

// Migrate creates or alters the tables of every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// RunMigrations connects with cfg, migrates and disconnects.
func RunMigrations(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer log.Close()

	db, err := config.SetupDatabase(ctx, &cfg.Database, log.Logger)
	if err != nil {
		return fmt.Errorf("setup database: %w", err)
	}
	defer closeDatabase(db, log.Logger)

	if err := Migrate(db); err != nil {
		return err
	}
	log.Info("migration completed", slog.String("driver", cfg.Database.Driver))
	return nil
}

func resolveCORSConfig(cfg *config.Config) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	src := cfg.Server.CORS

	switch {
	case len(src.AllowOrigins) > 0:
		cors.AllowOrigins = src.AllowOrigins
	case cfg.Server.Mode == gin.ReleaseMode:
		// deny cross-origin requests unless an allowlist is configured
		cors.AllowOrigins = []string{}
	}
	if len(src.AllowMethods) > 0 {
		cors.AllowMethods = src.AllowMethods
	}
	if len(src.AllowHeaders) > 0 {
		cors.AllowHeaders = src.AllowHeaders
	}
	if h := cfg.Audit.ActorHeader; h != "" && !lo.Contains(cors.AllowHeaders, h) {
		cors.AllowHeaders = append(cors.AllowHeaders, h)
	}
	cors.AllowCredentials = src.AllowCredentials
	if d, err := time.ParseDuration(src.MaxAge); err == nil && d > 0 {
		cors.MaxAge = d
	}
	return cors
}

func requestTimeout(s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultRequestTimeout
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

func closeDatabase(db *gorm.DB, log *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close error", slog.Any("error", err))
		return
	}
	log.Info("database connection closed")
}

// Handler exposes the configured gin engine.
func (a *App) Handler() http.Handler {
	return a.engine
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully and
// releases the database and the logger.
func (a *App) Run() error {
	if a == nil || a.cfg == nil || a.engine == nil {
		return errors.New("app is not initialized")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
		defer a.logger.Close()
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, requestTimeout(a.cfg.Server.Timeout))

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if a.db != nil {
		closeDatabase(a.db, log)
	}
	log.Info("server stopped")
	return runErr
}
