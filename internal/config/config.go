package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Gemini settings
	GeminiAPIKey     string
	GeminiModel      string
	MaxLabelRequests int // per-run request budget (0 = unlimited)

	// Pipeline files
	SourcesPath  string
	CorpusPath   string
	FeaturesPath string
	ExportPath   string

	// Rate limiting. The inference service enforces a hard 30 RPM ceiling;
	// the 2.5s spacing is a contract, not a tunable.
	RateLimitDelay time.Duration

	// HTTP timeouts
	FeedTimeout    time.Duration
	ListingTimeout time.Duration
	ExtractTimeout time.Duration
	LabelTimeout   time.Duration

	// Text policy
	MinFullTextChars int // below this, fall back to title+summary
	MaxPromptChars   int // prompt slice sent to the model
	MaxTextChars     int // persisted text bound

	// Acquisition caps
	ScrapePerSourceCap   int
	BackfillPerSourceCap int
	ScrapeDelay          time.Duration

	// Dedup
	FuzzyThreshold float64

	// Labeling cache
	CacheTTL time.Duration

	// App settings
	EnableMonitoring bool
	MonitoringPort   string
}

func Load() (*Config, error) {
	cfg := &Config{
		GeminiModel:          "gemini-1.5-flash",
		SourcesPath:          "configs/sources.yaml",
		CorpusPath:           "data/training_data.jsonl",
		FeaturesPath:         "data/forecast_features.csv",
		ExportPath:           "data/training_data_unsloth.json",
		RateLimitDelay:       2500 * time.Millisecond,
		FeedTimeout:          15 * time.Second,
		ListingTimeout:       10 * time.Second,
		ExtractTimeout:       15 * time.Second,
		LabelTimeout:         30 * time.Second,
		MinFullTextChars:     100,
		MaxPromptChars:       2000,
		MaxTextChars:         4000,
		ScrapePerSourceCap:   15,
		BackfillPerSourceCap: 200,
		ScrapeDelay:          1 * time.Second,
		FuzzyThreshold:       0.90,
		CacheTTL:             6 * time.Hour,
		MonitoringPort:       "8080",
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.GeminiModel = model
	}

	cfg.SourcesPath = getEnvOrDefault("SOURCES_PATH", cfg.SourcesPath)
	cfg.CorpusPath = getEnvOrDefault("CORPUS_PATH", cfg.CorpusPath)
	cfg.FeaturesPath = getEnvOrDefault("FEATURES_PATH", cfg.FeaturesPath)
	cfg.ExportPath = getEnvOrDefault("EXPORT_PATH", cfg.ExportPath)

	cfg.MaxLabelRequests = getEnvIntOrDefault("MAX_LABEL_REQUESTS", 0)
	cfg.ScrapePerSourceCap = getEnvIntOrDefault("SCRAPE_PER_SOURCE_CAP", cfg.ScrapePerSourceCap)
	cfg.BackfillPerSourceCap = getEnvIntOrDefault("BACKFILL_PER_SOURCE_CAP", cfg.BackfillPerSourceCap)

	if v := os.Getenv("RATE_LIMIT_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.RateLimitDelay = time.Duration(ms) * time.Millisecond
		}
	}

	if v := os.Getenv("FUZZY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f < 1 {
			cfg.FuzzyThreshold = f
		}
	}

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		cfg.EnableMonitoring = true
	}
	cfg.MonitoringPort = getEnvOrDefault("MONITORING_PORT", cfg.MonitoringPort)

	return cfg, nil
}

// Validate checks credentials needed by labeling commands. Maintenance-only
// commands (dedup, export, status) run without them.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
