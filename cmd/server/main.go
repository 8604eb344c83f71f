package main // Entry point package

import (
	"context"
	_ "embed"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seating-chart/internal/config"
	"github.com/iliyamo/seating-chart/internal/database"
	"github.com/iliyamo/seating-chart/internal/handler"
	"github.com/iliyamo/seating-chart/internal/middleware"
	"github.com/iliyamo/seating-chart/internal/queue"
	"github.com/iliyamo/seating-chart/internal/repository"
	"github.com/iliyamo/seating-chart/internal/router"
	"github.com/iliyamo/seating-chart/internal/seating"
	"github.com/iliyamo/seating-chart/internal/service"
	"github.com/iliyamo/seating-chart/internal/utils"
)

//go:embed seed.json
var defaultSeed []byte

func main() {
	cfg := config.Load() // Load environment config
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed, err := seating.LoadSeed(cfg.SeedFile, defaultSeed)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	var rdb *redis.Client
	if cfg.StorageBackend == config.BackendRedis {
		if rdb = config.NewRedisClient(); rdb != nil {
			defer rdb.Close()
		}
	}
	store, closeStore, err := openStore(ctx, cfg, rdb, logger)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStore()

	opts := seating.DefaultOptions()
	opts.GridPitch = cfg.GridPitch
	opts.RestoreOccupancy = cfg.RestoreOccupancyOnLoad
	opts.CloseLedgerOnOutOfService = cfg.CloseLedgerOnOutOfService

	venue, err := service.NewVenue(ctx, service.VenueConfig{
		Seed:      seed,
		Options:   opts,
		Layouts:   repository.NewLayoutRepo(store),
		Sessions:  repository.NewSessionRepo(store),
		Logger:    logger,
		ExportDir: cfg.ExportDir,
	})
	if err != nil {
		log.Fatalf("venue: %v", err)
	}

	adminHash, err := utils.AdminHash(cfg.AdminPasswordHash, cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("admin password: %v", err)
	}

	go venue.RunAutosave(ctx, cfg.AutosaveInterval)

	if cfg.ActivityPublishEnabled {
		pub := service.NewActivityPublisher(cfg.RabbitMQURL, 0, logger)
		venue.Ledger.Subscribe(pub.Handle)
		go pub.Run(ctx)
	}
	if cfg.ActivityConsumerEnabled {
		go func() {
			if err := queue.StartActivityConsumer(ctx, cfg.RabbitMQURL, cfg.ActivityLogPath, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("activity consumer stopped", "err", err)
			}
		}()
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	auth := handler.NewAuthHandler(venue, cfg.JWTSecret, cfg.AccessTTLMin, adminHash)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, middleware.LoginThrottle(cfg.LoginLimit, rdb))
	router.RegisterConsole(e, router.Handlers{
		Auth:      auth,
		Seats:     handler.NewSeatHandler(venue),
		Layout:    handler.NewLayoutHandler(venue),
		Analytics: handler.NewAnalyticsHandler(venue),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env, "storage", cfg.StorageBackend)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}
	if err := venue.Shutdown(sctx); err != nil {
		logger.Error("final save failed", "err", err)
	}
}

// openStore builds the blob store named by STORAGE_BACKEND.  A nil rdb
// for the redis backend falls back to files.
func openStore(ctx context.Context, cfg config.Config, rdb *redis.Client, logger *slog.Logger) (repository.BlobStore, func(), error) {
	noop := func() {}
	switch cfg.StorageBackend {
	case config.BackendMemory:
		logger.Warn("memory storage: nothing survives a restart")
		return repository.NewMemoryStore(), noop, nil
	case config.BackendRedis:
		if rdb != nil {
			return repository.NewRedisStore(rdb, cfg.RedisPrefix), noop, nil
		}
		logger.Warn("redis unreachable, using file storage", "dir", cfg.DataDir)
	case config.BackendMySQL:
		db, err := database.Open(ctx, database.Conn{
			User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		})
		if err != nil {
			return nil, noop, err
		}
		s := repository.NewMySQLStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return s, func() { _ = db.Close() }, nil
	case config.BackendFile:
	default:
		logger.Warn("unknown storage backend, using file storage", "backend", cfg.StorageBackend)
	}
	fs, err := repository.NewFileStore(filepath.Clean(cfg.DataDir))
	if err != nil {
		return nil, noop, err
	}
	return fs, noop, nil
}
