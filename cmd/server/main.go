package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkkit/internal/config"
	"linkkit/internal/export"
	"linkkit/internal/handler"
	"linkkit/internal/logging"
	"linkkit/internal/repository"
	"linkkit/internal/service"

	"github.com/gorilla/handlers"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/redis/go-redis/v9"
)

func main() {
	dotenvErr := config.LoadDotEnv()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logrus.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		logrus.Fatal(err)
	}
	if dotenvErr != nil {
		log.Info("no .env file loaded")
	}

	var (
		repo repository.BlobStore
		db   *sql.DB
	)
	switch cfg.Store {
	case config.StorePostgres:
		db, err = sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			log.Fatal(err)
		}
		if err := db.Ping(); err != nil {
			log.WithError(err).Fatal("db ping")
		}
		pg := repository.NewPostgresStore(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			log.WithError(err).Fatal("db schema")
		}
		repo = pg
	case config.StoreFile:
		fs, err := repository.NewFileStore(cfg.StorePath)
		if err != nil {
			log.Fatal(err)
		}
		repo = fs
	default:
		repo = repository.NewMemoryStore()
	}
	log.WithField("store", cfg.Store).Info("link store ready")

	// Redis optional
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Warn("redis ping failed")
			rdb = nil
		} else {
			log.Info("redis connected")
		}
	}

	svc := service.NewService(repo, rdb, cfg.BaseURL, log)
	h := handler.NewHandler(svc, log)
	h.AdminToken = cfg.AdminToken
	h.DevHTTP = cfg.DevHTTP
	h.RateLimiter = handler.NewSimpleRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	h.Exports = exportSink(cfg, log)

	stopPrune := make(chan struct{})
	go h.RateLimiter.PruneLoop(5*time.Minute, 10*time.Minute, stopPrune)

	r := h.Routes()

	// CORS
	allowed := handlers.AllowedOrigins([]string{"*"})
	allowedHeaders := handlers.AllowedHeaders([]string{"Content-Type", "X-Admin-Token", "X-Request-ID"})
	allowedMethods := handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(log), handlers.PrintRecoveryStack(true))

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      recovery(handlers.CORS(allowed, allowedHeaders, allowedMethods)(r)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")
	close(stopPrune)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}

	if rdb != nil {
		_ = rdb.Close()
	}
	if db != nil {
		_ = db.Close()
	}
	log.Info("server gracefully stopped")
}

// exportSink returns nil when neither MinIO nor an export dir is configured.
func exportSink(cfg *config.Config, log logrus.FieldLogger) export.Sink {
	if cfg.Minio.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := export.NewMinioSink(ctx, export.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			log.WithError(err).Warn("minio unavailable, exports disabled")
			return nil
		}
		log.WithField("bucket", cfg.Minio.Bucket).Info("exports go to minio")
		return s
	}
	if cfg.ExportDir != "" {
		s, err := export.NewFileSink(cfg.ExportDir)
		if err != nil {
			log.WithError(err).Warn("export dir unusable, exports disabled")
			return nil
		}
		return s
	}
	return nil
}
