package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/datalens-ai/internal/application"
	appai "github.com/bryanwahyu/datalens-ai/internal/application/ai"
	"github.com/bryanwahyu/datalens-ai/internal/config"
	"github.com/bryanwahyu/datalens-ai/internal/domain/interaction"
	"github.com/bryanwahyu/datalens-ai/internal/infra/ai/factory"
	mongop "github.com/bryanwahyu/datalens-ai/internal/infra/db/mongo"
	mysqlp "github.com/bryanwahyu/datalens-ai/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/datalens-ai/internal/infra/db/postgres"
	"github.com/bryanwahyu/datalens-ai/internal/infra/httpserver"
	"github.com/bryanwahyu/datalens-ai/internal/infra/imageprep"
	minioStore "github.com/bryanwahyu/datalens-ai/internal/infra/storage"
	"github.com/bryanwahyu/datalens-ai/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	log := logrus.New()

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	setupLogger(log, cfg)

	ctx := context.Background()

	// init inference backend
	backend, closer, err := factory.NewBackend(ctx, cfg, log)
	if err != nil {
		log.Fatalf("inference backend init error: %v", err)
	}
	defer closer.Close()

	svc := appai.NewService(backend, cfg.Inference.Model, cfg.Inference.VisionModel)
	svc.Clock = application.SystemClock{}
	svc.Logger = log

	checkers := map[string]middleware.HealthChecker{}

	if cfg.Imaging.Enabled {
		svc.Images = imageprep.New(cfg.Imaging.MaxDimension)
	}

	// init recorder
	recorder, shutdownRecorder, err := openRecorder(ctx, cfg, checkers)
	if err != nil {
		log.Fatalf("recorder init error: %v", err)
	}
	defer shutdownRecorder()
	if recorder != nil {
		svc.Recorder = recorder
		log.WithField("driver", cfg.Recorder.Driver).Info("interaction recorder enabled")
	}

	// init minio
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		svc.Archive = store
		checkers["minio"] = middleware.CheckFunc(store.Check)
	}

	handler := httpserver.NewRouter(svc, httpserver.Options{
		APIKeys:        cfg.Server.APIKeys,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		HealthCheckers: checkers,
		Logger:         log,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.InferenceTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.WithFields(logrus.Fields{
			"addr":     addr,
			"provider": cfg.Inference.Provider,
			"model":    cfg.Inference.Model,
		}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.WithError(err).Error("shutdown error")
	}
}

func setupLogger(log *logrus.Logger, cfg *config.Config) {
	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(lvl)
	} else {
		log.WithField("level", cfg.Log.Level).Warn("unknown log level, using info")
	}
	if strings.EqualFold(cfg.Log.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)
}

// openRecorder connects the configured interaction store. It returns a nil
// repository when recording is disabled.
func openRecorder(ctx context.Context, cfg *config.Config, checkers map[string]middleware.HealthChecker) (interaction.Repository, func(), error) {
	noop := func() {}
	switch cfg.Recorder.Driver {
	case "mysql", "postgres":
		var (
			db  *sql.DB
			err error
		)
		if cfg.Recorder.Driver == "mysql" {
			db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		} else {
			db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		}
		if err != nil {
			return nil, noop, err
		}
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}

		var repo interface {
			interaction.Repository
			EnsureSchema(context.Context) error
		}
		if cfg.Recorder.Driver == "mysql" {
			repo = mysqlp.NewInteractionRepository(db)
		} else {
			repo = postgresp.NewInteractionRepository(db)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return repo, func() { db.Close() }, nil

	case "mongo":
		client, err := mongop.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, noop, err
		}
		closeClient := func() { _ = client.Disconnect(context.Background()) }
		checkers["mongo"] = middleware.CheckFunc(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		})

		repo := mongop.NewInteractionRepository(client.Database(cfg.Mongo.Database))
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeClient()
			return nil, noop, err
		}
		return repo, closeClient, nil
	}
	return nil, noop, nil
}
