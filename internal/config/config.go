package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the essay API.
type Config struct {
	AppName      string
	AppEnv       string
	AppPort      string
	DatabaseURL  string
	RedisURL     string
	NATSURL      string
	NATSSubject  string
	JWTSecret    string
	AIProvider   string
	OpenAIAPIKey string
	AIModel      string
	AITimeout    time.Duration

	CompletionThreshold float64
	AutoSaveWordDelta   int
	AutoSaveInterval    time.Duration
	AnalysisFreshness   time.Duration
	AnalysisMinChars    int

	AnalyticsCacheTTL     time.Duration
	AnalysisRateLimit     int
	AnalysisRateLimitSpan time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// LiveAIEnabled reports whether a live AI provider is configured.
func (c Config) LiveAIEnabled() bool {
	return c.AIProvider == "openai" && c.OpenAIAPIKey != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Essay API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("nats.subject", "essay.analysis.recorded")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("essay.completion_threshold", 0.90)
	v.SetDefault("essay.autosave_word_delta", 50)
	v.SetDefault("essay.autosave_interval", "15m")
	v.SetDefault("essay.analysis_freshness", "1h")
	v.SetDefault("essay.analysis_min_chars", 50)
	v.SetDefault("analytics.cache_ttl", "5m")
	v.SetDefault("analysis.rate_limit", 10)
	v.SetDefault("analysis.rate_limit_window", "1m")

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		NATSSubject:         v.GetString("nats.subject"),
		JWTSecret:           v.GetString("jwt.secret"),
		AIProvider:          strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		OpenAIAPIKey:        v.GetString("openai_api_key"),
		AIModel:             v.GetString("ai.model"),
		CompletionThreshold: v.GetFloat64("essay.completion_threshold"),
		AutoSaveWordDelta:   v.GetInt("essay.autosave_word_delta"),
		AnalysisMinChars:    v.GetInt("essay.analysis_min_chars"),
		AnalysisRateLimit:   v.GetInt("analysis.rate_limit"),
	}

	durations := map[string]*time.Duration{
		"ai.timeout":                 &cfg.AITimeout,
		"essay.autosave_interval":    &cfg.AutoSaveInterval,
		"essay.analysis_freshness":   &cfg.AnalysisFreshness,
		"analytics.cache_ttl":        &cfg.AnalyticsCacheTTL,
		"analysis.rate_limit_window": &cfg.AnalysisRateLimitSpan,
	}

	for key, target := range durations {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		*target = parsed
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.CompletionThreshold <= 0 || cfg.CompletionThreshold > 1 {
		cfg.CompletionThreshold = 0.90
	}
	if cfg.AutoSaveWordDelta <= 0 {
		cfg.AutoSaveWordDelta = 50
	}
	if cfg.AnalysisMinChars <= 0 {
		cfg.AnalysisMinChars = 50
	}
	if cfg.AnalysisRateLimit <= 0 {
		cfg.AnalysisRateLimit = 10
	}

	return cfg, nil
}
