// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// UpdateConfig captures every knob that influences a dataset update run.
// All values originate from Viper so the pipeline can be configured via
// files, env vars, or CLI flags.
type UpdateConfig struct {
	SourceURL    string
	SourceXML    string
	OutputJSON   string
	IndexHTML    string
	OpenFDACache string
	SkipDownload bool
	SkipOpenFDA  bool
	Throttle     time.Duration
	Retries      int
}

// LoadUpdateConfig constructs an UpdateConfig by reading from Viper.
func LoadUpdateConfig(v *viper.Viper) (UpdateConfig, error) {
	cfg := UpdateConfig{
		SourceURL:    v.GetString("update.source_url"),
		SourceXML:    v.GetString("update.source_xml"),
		OutputJSON:   v.GetString("update.output_json"),
		IndexHTML:    v.GetString("update.index_html"),
		OpenFDACache: v.GetString("update.openfda_cache"),
		SkipDownload: v.GetBool("update.skip_download"),
		SkipOpenFDA:  v.GetBool("update.skip_openfda"),
		Throttle:     v.GetDuration("update.throttle"),
		Retries:      v.GetInt("update.retries"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c UpdateConfig) Validate() error {
	if c.SourceURL == "" && !c.SkipDownload {
		return fmt.Errorf("update.source_url must be set unless update.skip_download is true")
	}
	if c.SourceXML == "" {
		return fmt.Errorf("update.source_xml must be set")
	}
	if c.OutputJSON == "" {
		return fmt.Errorf("update.output_json must be set")
	}
	if c.IndexHTML == "" {
		return fmt.Errorf("update.index_html must be set")
	}
	if c.OpenFDACache == "" {
		return fmt.Errorf("update.openfda_cache must be set")
	}
	if c.Throttle < 0 {
		return fmt.Errorf("update.throttle must be >= 0")
	}
	if c.Retries <= 0 {
		return fmt.Errorf("update.retries must be > 0")
	}
	return nil
}

// SummariesConfig captures every knob that influences a summary
// discovery/extraction run.
type SummariesConfig struct {
	InputJSON string
	IndexHTML string
	PDFDir    string
	TextDir   string
	CachePath string
	Limit     int
	Force     bool
	All       bool
	Throttle  time.Duration
}

// LoadSummariesConfig constructs a SummariesConfig by reading from Viper.
func LoadSummariesConfig(v *viper.Viper) (SummariesConfig, error) {
	cfg := SummariesConfig{
		InputJSON: v.GetString("summaries.input_json"),
		IndexHTML: v.GetString("summaries.index_html"),
		PDFDir:    v.GetString("summaries.pdf_dir"),
		TextDir:   v.GetString("summaries.text_dir"),
		CachePath: v.GetString("summaries.cache"),
		Limit:     v.GetInt("summaries.limit"),
		Force:     v.GetBool("summaries.force"),
		All:       v.GetBool("summaries.all"),
		Throttle:  v.GetDuration("summaries.throttle"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c SummariesConfig) Validate() error {
	if c.InputJSON == "" {
		return fmt.Errorf("summaries.input_json must be set")
	}
	if c.IndexHTML == "" {
		return fmt.Errorf("summaries.index_html must be set")
	}
	if c.PDFDir == "" {
		return fmt.Errorf("summaries.pdf_dir must be set")
	}
	if c.TextDir == "" {
		return fmt.Errorf("summaries.text_dir must be set")
	}
	if c.CachePath == "" {
		return fmt.Errorf("summaries.cache must be set")
	}
	if c.Limit < 0 {
		return fmt.Errorf("summaries.limit must be >= 0")
	}
	if c.Throttle < 0 {
		return fmt.Errorf("summaries.throttle must be >= 0")
	}
	return nil
}

// FetchConfig governs the shared HTTP fetch layer: user agent, timeouts,
// politeness, and the optional headless renderer.
type FetchConfig struct {
	UserAgent            string
	RequestTimeout       time.Duration
	RespectRobots        bool
	RateLimitRPS         float64
	RateLimitBurst       int
	RenderJS             bool
	RenderTimeout        time.Duration
	RenderMaxTabs        int
	DetectorMinHTMLBytes int
	DetectorSelectorMust []string
	DetectorKeywords     []string
}

// LoadFetchConfig constructs a FetchConfig by reading from Viper.
func LoadFetchConfig(v *viper.Viper) (FetchConfig, error) {
	cfg := FetchConfig{
		UserAgent:            v.GetString("fetch.user_agent"),
		RequestTimeout:       v.GetDuration("fetch.request_timeout"),
		RespectRobots:        v.GetBool("fetch.respect_robots"),
		RateLimitRPS:         v.GetFloat64("fetch.rate_limit_rps"),
		RateLimitBurst:       v.GetInt("fetch.rate_limit_burst"),
		RenderJS:             v.GetBool("fetch.render_js"),
		RenderTimeout:        v.GetDuration("fetch.render_timeout"),
		RenderMaxTabs:        v.GetInt("fetch.render_max_tabs"),
		DetectorMinHTMLBytes: v.GetInt("detector.min_html_bytes"),
		DetectorSelectorMust: splitSelectors(v.GetString("detector.selector_must")),
		DetectorKeywords:     normalizeKeywords(v.GetStringSlice("detector.keywords")),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c FetchConfig) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("fetch.user_agent must be set")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("fetch.request_timeout must be > 0")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("fetch.rate_limit_rps must be >= 0")
	}
	if c.RenderJS && c.RenderTimeout <= 0 {
		return fmt.Errorf("fetch.render_timeout must be > 0 when rendering is enabled")
	}
	if c.RenderJS && c.RenderMaxTabs <= 0 {
		return fmt.Errorf("fetch.render_max_tabs must be > 0 when rendering is enabled")
	}
	if c.DetectorMinHTMLBytes < 0 {
		return fmt.Errorf("detector.min_html_bytes must be >= 0")
	}
	return nil
}

// OpsConfig controls the optional operational HTTP server.
type OpsConfig struct {
	Enabled bool
	Addr    string
}

// LoadOpsConfig constructs an OpsConfig by reading from Viper.
func LoadOpsConfig(v *viper.Viper) (OpsConfig, error) {
	cfg := OpsConfig{
		Enabled: v.GetBool("ops.enabled"),
		Addr:    v.GetString("ops.addr"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c OpsConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		return fmt.Errorf("ops.addr must be set when ops.enabled is true")
	}
	return nil
}

func splitSelectors(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{})
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
