package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/youngsunson/updatev2/common/id"
	"github.com/youngsunson/updatev2/common/llm"
	"github.com/youngsunson/updatev2/common/logger"
	"github.com/youngsunson/updatev2/common/otel"
	"github.com/youngsunson/updatev2/core/config"
	"github.com/youngsunson/updatev2/core/db"
	"github.com/youngsunson/updatev2/internal/http/middleware"
	httprouter "github.com/youngsunson/updatev2/internal/http/router"
	"github.com/youngsunson/updatev2/internal/service"
	"github.com/youngsunson/updatev2/internal/settings"
	"github.com/youngsunson/updatev2/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "proofread server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	settingsStore, closeSettings, err := openSettings(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open settings store", "error", err, "backend", cfg.Settings.Backend)
		os.Exit(1)
	}
	defer closeSettings()

	live, err := settings.NewLive(ctx, settingsStore, cfg.Analysis.APIKey)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load settings", "error", err)
		os.Exit(1)
	}

	analyzer, err := llm.New(llm.Config{
		BaseURL:        cfg.Analysis.BaseURL,
		Model:          cfg.Analysis.Model,
		MaxTokens:      cfg.Analysis.MaxTokens,
		ResponseFormat: cfg.Analysis.ResponseFormat,
		Temperature:    llm.Temp(cfg.Analysis.Temperature),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create analysis client", "error", err)
		os.Exit(1)
	}

	var runs store.RunStore
	if cfg.DB.Enabled() {
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to migrate database", "error", err)
			os.Exit(1)
		}
		runs = store.NewRunStore(database.Conn())
		slog.InfoContext(ctx, "database connected, run history enabled")
	} else {
		slog.InfoContext(ctx, "run history disabled (no DATABASE_URL)")
	}

	services := service.NewServices(analyzer, live, runs)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// A check runs up to four analyses in sequence.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// openSettings returns the configured settings backend and a function that
// releases it.
func openSettings(ctx context.Context, cfg config.Config) (settings.Store, func(), error) {
	if cfg.Settings.Backend == config.SettingsBackendFile {
		path := cfg.Settings.FilePath
		if path == "" {
			var err error
			if path, err = settings.DefaultPath(); err != nil {
				return nil, nil, err
			}
		}
		slog.InfoContext(ctx, "settings stored on disk", "path", path)
		return settings.NewFileStore(path), func() {}, nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	slog.InfoContext(ctx, "redis connected", "profile", cfg.Settings.Profile)

	return settings.NewRedisStore(redisClient, cfg.Settings.Profile), func() { redisClient.Close() }, nil
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services)

	return router
}

const banner = `
 ____  ____   ___   ___  _____ ____  _____    _    ____  
|  _ \|  _ \ / _ \ / _ \|  ___|  _ \| ____|  / \  |  _ \ 
| |_) | |_) | | | | | | | |_  | |_) |  _|   / _ \ | | | |
|  __/|  _ <| |_| | |_| |  _| |  _ <| |___ / ___ \| |_| |
|_|   |_| \_\\___/ \___/|_|   |_| \_\_____/_/   \_\____/ 
`
