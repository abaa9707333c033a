// Package config initializes the application's configuration. It uses the
// Viper library to read settings from a config file, environment variables,
// and command-line flags, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fdadash/devicefeed/internal/logging"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. This function is designed to be called
// once at application startup so that configuration is loaded and available
// to all other packages.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/devicefeed/")
	viper.AddConfigPath("$HOME/.devicefeed")

	// Update pipeline defaults.
	viper.SetDefault("update.source_url", "https://www.fda.gov/media/178565/download?attachment")
	viper.SetDefault("update.source_xml", "ai-ml-enabled-devices-xml.xml")
	viper.SetDefault("update.output_json", "data/ai-ml-enabled-devices-enriched.json")
	viper.SetDefault("update.index_html", "index.html")
	viper.SetDefault("update.openfda_cache", "data/openfda-cache.json")
	viper.SetDefault("update.skip_download", false)
	viper.SetDefault("update.skip_openfda", false)
	viper.SetDefault("update.throttle", "100ms")
	viper.SetDefault("update.retries", 3)

	// Summary pipeline defaults.
	viper.SetDefault("summaries.input_json", "data/ai-ml-enabled-devices-enriched.json")
	viper.SetDefault("summaries.index_html", "index.html")
	viper.SetDefault("summaries.pdf_dir", "data/summary-pdfs")
	viper.SetDefault("summaries.text_dir", "data/summary-text")
	viper.SetDefault("summaries.cache", "data/summary-cache.json")
	viper.SetDefault("summaries.limit", 0)
	viper.SetDefault("summaries.force", false)
	viper.SetDefault("summaries.all", false)
	viper.SetDefault("summaries.throttle", "400ms")

	// Shared HTTP fetch defaults.
	viper.SetDefault("fetch.user_agent", "fda-ai-ml-dashboard-bot/1.0")
	viper.SetDefault("fetch.request_timeout", "30s")
	viper.SetDefault("fetch.respect_robots", false)
	viper.SetDefault("fetch.rate_limit_rps", 0.0)
	viper.SetDefault("fetch.rate_limit_burst", 1)
	viper.SetDefault("fetch.render_js", false)
	viper.SetDefault("fetch.render_timeout", "15s")
	viper.SetDefault("fetch.render_max_tabs", 2)

	viper.SetDefault("detector.min_html_bytes", 2000)
	viper.SetDefault("detector.selector_must", "")
	viper.SetDefault("detector.keywords", []string{
		"__NEXT_DATA__",
		"data-reactroot",
		"ng-app",
		"window.__APOLLO_STATE__",
	})

	// Operational surface defaults.
	viper.SetDefault("ops.enabled", false)
	viper.SetDefault("ops.addr", ":9090")

	viper.SetDefault("archive.provider", "noop")
	viper.SetDefault("archive.gcs.bucket_name", "")
	viper.SetDefault("archive.local.base_dir", "data/archive")

	viper.SetDefault("history.provider", "noop")
	viper.SetDefault("history.postgres.dsn", "")
	viper.SetDefault("history.postgres.table", "pipeline_runs")

	viper.SetDefault("notify.provider", "noop")
	viper.SetDefault("notify.gcp.project_id", "")
	viper.SetDefault("notify.gcp.topic_id", "")

	viper.SetEnvPrefix("DEVICEFEED") // e.g. DEVICEFEED_UPDATE_THROTTLE=1s
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logging.L.Debug("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
