// Package cmd defines and implements the CLI commands for the devicefeed executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fdadash/devicefeed/internal/config"
	"github.com/fdadash/devicefeed/internal/dataset"
	"github.com/fdadash/devicefeed/internal/fetch"
	"github.com/fdadash/devicefeed/internal/history"
	"github.com/fdadash/devicefeed/internal/logging"
	"github.com/fdadash/devicefeed/internal/notify"
	"github.com/fdadash/devicefeed/internal/openfda"
)

// newUpdateCmd creates and configures the 'update' subcommand. It refreshes
// the canonical device records from the FDA source feed, enriches them
// against openFDA, and rewrites the dataset artifacts.
func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Refreshes the device dataset from the FDA source feed",
		Long: `Downloads the FDA source feed, normalizes it into canonical device
records, enriches each record with openFDA submission dates, and rewrites
the enriched JSON artifact and the rawData block embedded in the dashboard
HTML.`,

		RunE: runUpdateCommand,
	}

	flags := cmd.Flags()
	flags.String("source-url", "https://www.fda.gov/media/178565/download?attachment", "URL of the FDA source feed")
	flags.String("source-xml", "ai-ml-enabled-devices-xml.xml", "path of the local feed mirror")
	flags.String("output-json", "data/ai-ml-enabled-devices-enriched.json", "path of the enriched JSON artifact")
	flags.String("index-html", "index.html", "dashboard HTML file carrying the rawData block")
	flags.String("openfda-cache", "data/openfda-cache.json", "path of the persistent openFDA lookup cache")
	flags.Bool("skip-download", false, "parse the local feed mirror instead of downloading")
	flags.Bool("skip-openfda", false, "skip openFDA enrichment entirely")
	flags.Duration("throttle", 100*time.Millisecond, "pause between openFDA lookups")

	bindFlag(cmd, "update.source_url", "source-url")
	bindFlag(cmd, "update.source_xml", "source-xml")
	bindFlag(cmd, "update.output_json", "output-json")
	bindFlag(cmd, "update.index_html", "index-html")
	bindFlag(cmd, "update.openfda_cache", "openfda-cache")
	bindFlag(cmd, "update.skip_download", "skip-download")
	bindFlag(cmd, "update.skip_openfda", "skip-openfda")
	bindFlag(cmd, "update.throttle", "throttle")

	return cmd
}

func runUpdateCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()

	updateCfg, err := config.LoadUpdateConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load update config: %w", err)
	}
	fetchCfg, err := config.LoadFetchConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load fetch config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := fetch.NewClient(fetchCfg, logger)
	if err != nil {
		return fmt.Errorf("init fetch client: %w", err)
	}
	defer func() {
		if cerr := client.Close(ctx); cerr != nil {
			logger.Warn("Failed to close fetch client", zap.Error(cerr))
		}
	}()

	runID := uuid.New()
	started := time.Now().UTC()
	appInstance.GetStatus().Begin(runID.String(), "update", started)
	logger.Info("Starting dataset update", zap.String("run_id", runID.String()))

	recordCount, runErr := executeUpdate(ctx, appInstance, client, updateCfg, logger)
	finished := time.Now().UTC()

	// Bookkeeping still runs when the pipeline context is canceled.
	bookCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	run := history.Run{
		ID:          runID,
		Command:     "update",
		StartedAt:   started,
		FinishedAt:  finished,
		RecordCount: recordCount,
		Succeeded:   runErr == nil,
	}
	if runErr != nil {
		run.ErrorCount = 1
		run.Detail = map[string]string{"error": runErr.Error()}
	}
	if err := appInstance.GetHistory().RecordRun(bookCtx, run); err != nil {
		logger.Warn("Failed to record run history", zap.Error(err))
	}

	if runErr == nil {
		event := notify.Event{
			RunID:       runID.String(),
			Command:     "update",
			RecordCount: recordCount,
			GeneratedAt: finished,
		}
		if err := appInstance.GetNotifier().DatasetUpdated(bookCtx, event); err != nil {
			logger.Warn("Failed to publish dataset event", zap.Error(err))
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run update: %w", runErr)
	}

	logging.L.Info("Update command finished.")
	return nil
}

func executeUpdate(ctx context.Context, appInstance App, client *fetch.Client, cfg config.UpdateConfig, logger *zap.Logger) (int, error) {
	feedData, err := dataset.LoadFeed(ctx, client, cfg)
	if err != nil {
		return 0, err
	}
	records, err := dataset.ParseFeed(feedData)
	if err != nil {
		return 0, err
	}
	logger.Info("Parsed source feed", zap.Int("records", len(records)))
	appInstance.GetStatus().SetCount("records", int64(len(records)))

	if cfg.SkipOpenFDA {
		logger.Info("Skipping openFDA enrichment")
	} else {
		cache, err := openfda.LoadCache(cfg.OpenFDACache)
		if err != nil {
			return len(records), err
		}
		enricher := openfda.NewClient(client, cache, openfda.Config{
			Throttle: cfg.Throttle,
			Retries:  cfg.Retries,
		}, logger)
		if err := dataset.NewBuilder(enricher, logger).Enrich(ctx, records); err != nil {
			return len(records), err
		}
		appInstance.GetStatus().SetCount("cached_lookups", int64(cache.Len()))
	}

	if err := dataset.WriteEnrichedJSON(cfg.OutputJSON, records); err != nil {
		return len(records), err
	}
	if err := dataset.UpdateIndexHTML(cfg.IndexHTML, records); err != nil {
		return len(records), err
	}
	logger.Info("Dataset artifacts written",
		zap.String("json", cfg.OutputJSON),
		zap.String("html", cfg.IndexHTML),
	)

	archiveArtifact(ctx, appInstance, cfg.OutputJSON, logger)
	return len(records), nil
}

// archiveArtifact ships a finished artifact to the configured archive
// provider. Archive failures never fail the run.
func archiveArtifact(ctx context.Context, appInstance App, artifactPath string, logger *zap.Logger) {
	blob, err := os.ReadFile(artifactPath)
	if err != nil {
		logger.Warn("Failed to read artifact for archiving", zap.Error(err))
		return
	}
	name := path.Join("dataset", filepath.Base(artifactPath))
	if err := appInstance.GetArchive().Save(ctx, name, blob); err != nil {
		logger.Warn("Failed to archive artifact", zap.Error(err))
	}
}
