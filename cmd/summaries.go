package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fdadash/devicefeed/internal/config"
	"github.com/fdadash/devicefeed/internal/dataset"
	"github.com/fdadash/devicefeed/internal/extract"
	"github.com/fdadash/devicefeed/internal/fetch"
	"github.com/fdadash/devicefeed/internal/history"
	"github.com/fdadash/devicefeed/internal/logging"
	"github.com/fdadash/devicefeed/internal/notify"
	"github.com/fdadash/devicefeed/internal/summary"
)

// newSummariesCmd creates and configures the 'summaries' subcommand. It
// scans each record's reference page for summary documents, downloads the
// best candidates, and extracts their text.
func newSummariesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summaries",
		Short: "Downloads and extracts summary documents for the dataset",
		Long: `Walks the enriched device records, scans each submission's reference
page for linked PDF documents, ranks them by how likely they are to be the
decision summary, downloads the selected candidates, and extracts their
plain text. Discovered links are cached so interrupted runs resume where
they left off.`,

		RunE: runSummariesCommand,
	}

	flags := cmd.Flags()
	flags.String("input-json", "data/ai-ml-enabled-devices-enriched.json", "enriched dataset to read records from")
	flags.String("index-html", "index.html", "dashboard HTML fallback for records when the JSON artifact is absent")
	flags.String("pdf-dir", "data/summary-pdfs", "directory for downloaded PDF documents")
	flags.String("text-dir", "data/summary-text", "directory for extracted text files")
	flags.String("cache", "data/summary-cache.json", "path of the discovered-link cache")
	flags.Int("limit", 0, "maximum records to process (0 = unlimited)")
	flags.Bool("force", false, "rescan pages and replace existing documents")
	flags.Bool("all", false, "download every ranked candidate instead of the best one")
	flags.Duration("throttle", 400*time.Millisecond, "pause between document fetches")

	bindFlag(cmd, "summaries.input_json", "input-json")
	bindFlag(cmd, "summaries.index_html", "index-html")
	bindFlag(cmd, "summaries.pdf_dir", "pdf-dir")
	bindFlag(cmd, "summaries.text_dir", "text-dir")
	bindFlag(cmd, "summaries.cache", "cache")
	bindFlag(cmd, "summaries.limit", "limit")
	bindFlag(cmd, "summaries.force", "force")
	bindFlag(cmd, "summaries.all", "all")
	bindFlag(cmd, "summaries.throttle", "throttle")

	return cmd
}

func runSummariesCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()

	summariesCfg, err := config.LoadSummariesConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load summaries config: %w", err)
	}
	fetchCfg, err := config.LoadFetchConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load fetch config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := dataset.LoadRecords(summariesCfg.InputJSON, summariesCfg.IndexHTML)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	logger.Info("Loaded device records", zap.Int("records", len(records)))

	linkCache, err := summary.LoadLinkCache(summariesCfg.CachePath)
	if err != nil {
		return fmt.Errorf("load link cache: %w", err)
	}

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
	appInstance.GetStatus().Begin(runID.String(), "summaries", started)
	logger.Info("Starting summary run", zap.String("run_id", runID.String()))

	orchestrator := summary.NewOrchestrator(
		client,
		extract.NewExtractor(),
		linkCache,
		appInstance.GetArchive(),
		summariesCfg,
		logger,
	)
	stats, runErr := orchestrator.Run(ctx, records)
	finished := time.Now().UTC()

	status := appInstance.GetStatus()
	status.SetCount("processed", int64(stats.Processed))
	status.SetCount("extracted", int64(stats.Extracted))
	status.SetCount("failed", int64(stats.Failed))

	// Bookkeeping still runs when the pipeline context is canceled.
	bookCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	run := history.Run{
		ID:          runID,
		Command:     "summaries",
		StartedAt:   started,
		FinishedAt:  finished,
		RecordCount: stats.Processed,
		ErrorCount:  stats.Failed,
		Succeeded:   runErr == nil,
		Detail: map[string]string{
			"extracted": strconv.Itoa(stats.Extracted),
		},
	}
	if runErr != nil {
		run.Detail["error"] = runErr.Error()
	}
	if err := appInstance.GetHistory().RecordRun(bookCtx, run); err != nil {
		logger.Warn("Failed to record run history", zap.Error(err))
	}

	if runErr == nil {
		event := notify.Event{
			RunID:       runID.String(),
			Command:     "summaries",
			RecordCount: stats.Processed,
			GeneratedAt: finished,
		}
		if err := appInstance.GetNotifier().DatasetUpdated(bookCtx, event); err != nil {
			logger.Warn("Failed to publish dataset event", zap.Error(err))
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run summaries: %w", runErr)
	}

	logging.L.Info("Summaries command finished.")
	return nil
}
