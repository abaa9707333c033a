// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fdadash/devicefeed/internal/api"
	"github.com/fdadash/devicefeed/internal/archive"
	"github.com/fdadash/devicefeed/internal/config"
	"github.com/fdadash/devicefeed/internal/history"
	"github.com/fdadash/devicefeed/internal/logging"
	"github.com/fdadash/devicefeed/internal/metrics"
	"github.com/fdadash/devicefeed/internal/notify"
)

// App holds all the shared, long-lived services for the application.
// It is initialized once at startup and reached by commands through the
// cobra command context.
type App struct {
	Logger  *zap.Logger
	Archive archive.Provider
	History history.Store
	Notify  notify.Publisher
	Status  *api.StatusTracker

	ops *http.Server
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.Logger
}

// GetArchive exposes the configured artifact archive provider.
func (a *App) GetArchive() archive.Provider {
	return a.Archive
}

// GetHistory provides access to the run-history store.
func (a *App) GetHistory() history.Store {
	return a.History
}

// GetNotifier returns the publisher used to announce finished runs.
func (a *App) GetNotifier() notify.Publisher {
	return a.Notify
}

// GetStatus returns the tracker behind the ops server's /v1/status endpoint.
func (a *App) GetStatus() *api.StatusTracker {
	return a.Status
}

// NewApp creates and initializes a new App based on the application's
// configuration. It reads provider names from Viper and instantiates the
// matching implementations, failing fast when a critical service cannot be
// initialized.
func NewApp(ctx context.Context) (*App, error) {
	l := logging.L
	l.Info("Initializing application services...")
	metrics.Init()

	archiveProvider, err := buildArchiveProvider(ctx, l)
	if err != nil {
		return nil, err
	}

	historyStore, err := buildHistoryStore(ctx, l)
	if err != nil {
		return nil, err
	}

	publisher, err := buildPublisher(ctx, l)
	if err != nil {
		return nil, err
	}

	a := &App{
		Logger:  l,
		Archive: archiveProvider,
		History: historyStore,
		Notify:  publisher,
		Status:  api.NewStatusTracker(),
	}

	opsCfg, err := config.LoadOpsConfig(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load ops config: %w", err)
	}
	if opsCfg.Enabled {
		a.startOpsServer(opsCfg.Addr)
	}

	l.Info("Application services initialized successfully.")
	return a, nil
}

func buildArchiveProvider(ctx context.Context, l *zap.Logger) (archive.Provider, error) {
	switch provider := viper.GetString("archive.provider"); provider {
	case "gcs":
		bucketName := viper.GetString("archive.gcs.bucket_name")
		if bucketName == "" {
			return nil, fmt.Errorf("archive provider is 'gcs' but archive.gcs.bucket_name is not set")
		}
		l.Info("Using GCS archive provider", zap.String("bucket", bucketName))
		store, err := archive.NewGCSProvider(ctx, bucketName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize archive: %w", err)
		}
		return store, nil
	case "local":
		baseDir := viper.GetString("archive.local.base_dir")
		if baseDir == "" {
			return nil, fmt.Errorf("archive provider is 'local' but archive.local.base_dir is not set")
		}
		l.Info("Using local archive provider", zap.String("dir", baseDir))
		store, err := archive.NewLocalProvider(baseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize archive: %w", err)
		}
		return store, nil
	case "noop":
		l.Info("Using No-Op archive provider. Artifacts will not be archived.")
		return archive.NoopProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown archive provider: %s", provider)
	}
}

func buildHistoryStore(ctx context.Context, l *zap.Logger) (history.Store, error) {
	switch provider := viper.GetString("history.provider"); provider {
	case "postgres":
		dsn := viper.GetString("history.postgres.dsn")
		if dsn == "" {
			return nil, fmt.Errorf("history provider is 'postgres' but history.postgres.dsn is not set")
		}
		l.Info("Connecting to PostgreSQL for run history...")
		store, err := history.NewPostgresStore(ctx, history.PostgresConfig{
			DSN:   dsn,
			Table: viper.GetString("history.postgres.table"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize history store: %w", err)
		}
		return store, nil
	case "noop":
		l.Info("Using No-Op history store. Run history will be discarded.")
		return history.NoopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown history provider: %s", provider)
	}
}

func buildPublisher(ctx context.Context, l *zap.Logger) (notify.Publisher, error) {
	switch provider := viper.GetString("notify.provider"); provider {
	case "pubsub":
		projectID := viper.GetString("notify.gcp.project_id")
		topicID := viper.GetString("notify.gcp.topic_id")
		if projectID == "" || topicID == "" {
			return nil, fmt.Errorf("notify provider is 'pubsub' but project_id or topic_id is not set")
		}
		l.Info("Connecting to GCP Pub/Sub", zap.String("topic", topicID))
		publisher, err := notify.NewPubSubPublisher(ctx, projectID, topicID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize publisher: %w", err)
		}
		return publisher, nil
	case "noop":
		l.Info("Using No-Op event publisher. No messages will be sent.")
		return notify.NoopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown notify provider: %s", provider)
	}
}

func (a *App) startOpsServer(addr string) {
	server := api.NewServer(a.Status, a.Logger)
	a.ops = &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.Logger.Info("Starting ops server", zap.String("addr", addr))
		if err := a.ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("Ops server failed", zap.Error(err))
		}
	}()
}

// Close gracefully shuts down all services in the App container.
// It is called by a Cobra hook after the command finishes execution.
func (a *App) Close() {
	a.Logger.Info("Shutting down application services...")
	if a.ops != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.ops.Shutdown(ctx); err != nil {
			a.Logger.Warn("Error shutting down ops server", zap.Error(err))
		}
		cancel()
	}
	if a.History != nil {
		a.History.Close()
	}
	if a.Notify != nil {
		if err := a.Notify.Close(); err != nil {
			a.Logger.Warn("Error closing event publisher", zap.Error(err))
		}
	}
	if a.Archive != nil {
		if err := a.Archive.Close(); err != nil {
			a.Logger.Warn("Error closing archive provider", zap.Error(err))
		}
	}

	// Flush buffered log entries before the process exits.
	if err := a.Logger.Sync(); err != nil {
		a.Logger.Warn("Error syncing logger on shutdown", zap.Error(err))
	}
}
