package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	LLM       LLMConfig
	Analysis  AnalysisConfig
	Extract   ExtractConfig
	Artifacts ArtifactsConfig
	Session   SessionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// MaxUploadBytes returns the request body limit in bytes.
func (s *ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds settings for a single completion provider.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// LLMConfig holds the ordered completion provider chain.
type LLMConfig struct {
	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
	Tertiary  ProviderConfig `mapstructure:"tertiary"`
}

// Providers returns the configured providers in fallback order. Entries without
// a provider name are omitted.
func (l *LLMConfig) Providers() []*ProviderConfig {
	var out []*ProviderConfig
	for _, p := range []*ProviderConfig{&l.Primary, &l.Secondary, &l.Tertiary} {
		if p.Provider != "" {
			out = append(out, p)
		}
	}
	return out
}

// AnalysisConfig holds structured extraction settings.
type AnalysisConfig struct {
	CompletionTimeout time.Duration `mapstructure:"completion_timeout"`
	MinLineItems      int           `mapstructure:"min_line_items"`
	FinancialMaxChars int           `mapstructure:"financial_max_chars"`
	EarningsMaxChars  int           `mapstructure:"earnings_max_chars"`
	IncomeThreshold   int           `mapstructure:"income_threshold"`
	BalanceThreshold  int           `mapstructure:"balance_threshold"`
	CashFlowThreshold int           `mapstructure:"cash_flow_threshold"`
}

// ExtractConfig holds text extraction settings.
type ExtractConfig struct {
	OCREnabled     bool `mapstructure:"ocr_enabled"`
	OCRDPI         int  `mapstructure:"ocr_dpi"`
	OCRConcurrency int  `mapstructure:"ocr_concurrency"`
}

// ArtifactsConfig selects where extraction reports are written.
type ArtifactsConfig struct {
	Sink string `mapstructure:"sink"`
	Dir  string `mapstructure:"dir"`
	S3   S3Config
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// SessionConfig holds session store settings.
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load reads configuration from environment variables with the FINLENS_ prefix.
// Values in .env.local and .env are loaded first without overriding the process
// environment.
func Load() (*Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("FINLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":3016")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 50)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:3016,http://127.0.0.1:3016")

	// Completion provider defaults
	v.SetDefault("llm.primary.provider", "groq")
	v.SetDefault("llm.primary.api_key", "")
	v.SetDefault("llm.primary.default_model", "")
	v.SetDefault("llm.primary.base_url", "")
	v.SetDefault("llm.primary.timeout_secs", 120)
	v.SetDefault("llm.secondary.provider", "")
	v.SetDefault("llm.secondary.api_key", "")
	v.SetDefault("llm.secondary.default_model", "")
	v.SetDefault("llm.secondary.base_url", "")
	v.SetDefault("llm.secondary.timeout_secs", 120)
	v.SetDefault("llm.tertiary.provider", "")
	v.SetDefault("llm.tertiary.api_key", "")
	v.SetDefault("llm.tertiary.default_model", "")
	v.SetDefault("llm.tertiary.base_url", "")
	v.SetDefault("llm.tertiary.timeout_secs", 120)

	// Analysis defaults
	v.SetDefault("analysis.completion_timeout", "60s")
	v.SetDefault("analysis.min_line_items", 3)
	v.SetDefault("analysis.financial_max_chars", 25000)
	v.SetDefault("analysis.earnings_max_chars", 15000)
	v.SetDefault("analysis.income_threshold", 5)
	v.SetDefault("analysis.balance_threshold", 5)
	v.SetDefault("analysis.cash_flow_threshold", 3)

	// Extraction defaults
	v.SetDefault("extract.ocr_enabled", true)
	v.SetDefault("extract.ocr_dpi", 300)
	v.SetDefault("extract.ocr_concurrency", 4)

	// Artifact defaults
	v.SetDefault("artifacts.sink", "local")
	v.SetDefault("artifacts.dir", "extractions")
	v.SetDefault("artifacts.s3.region", "us-east-1")
	v.SetDefault("artifacts.s3.bucket", "finlens-extractions")
	v.SetDefault("artifacts.s3.endpoint", "")
	v.SetDefault("artifacts.s3.prefix", "extractions/")

	// Session defaults
	v.SetDefault("session.ttl", "2h")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "FINLENS_SERVER_PORT",
		"server.read_timeout":          "FINLENS_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "FINLENS_SERVER_WRITE_TIMEOUT",
		"server.environment":           "FINLENS_SERVER_ENVIRONMENT",
		"server.max_upload_mb":         "FINLENS_SERVER_MAX_UPLOAD_MB",
		"log.level":                    "FINLENS_LOG_LEVEL",
		"log.format":                   "FINLENS_LOG_FORMAT",
		"cors.allowed_origins":         "FINLENS_CORS_ALLOWED_ORIGINS",
		"llm.primary.provider":         "FINLENS_LLM_PRIMARY_PROVIDER",
		"llm.primary.default_model":    "FINLENS_LLM_PRIMARY_DEFAULT_MODEL",
		"llm.primary.base_url":         "FINLENS_LLM_PRIMARY_BASE_URL",
		"llm.primary.timeout_secs":     "FINLENS_LLM_PRIMARY_TIMEOUT_SECS",
		"llm.secondary.provider":       "FINLENS_LLM_SECONDARY_PROVIDER",
		"llm.secondary.api_key":        "FINLENS_LLM_SECONDARY_API_KEY",
		"llm.secondary.default_model":  "FINLENS_LLM_SECONDARY_DEFAULT_MODEL",
		"llm.secondary.base_url":       "FINLENS_LLM_SECONDARY_BASE_URL",
		"llm.secondary.timeout_secs":   "FINLENS_LLM_SECONDARY_TIMEOUT_SECS",
		"llm.tertiary.provider":        "FINLENS_LLM_TERTIARY_PROVIDER",
		"llm.tertiary.api_key":         "FINLENS_LLM_TERTIARY_API_KEY",
		"llm.tertiary.default_model":   "FINLENS_LLM_TERTIARY_DEFAULT_MODEL",
		"llm.tertiary.base_url":        "FINLENS_LLM_TERTIARY_BASE_URL",
		"llm.tertiary.timeout_secs":    "FINLENS_LLM_TERTIARY_TIMEOUT_SECS",
		"analysis.completion_timeout":  "FINLENS_ANALYSIS_COMPLETION_TIMEOUT",
		"analysis.min_line_items":      "FINLENS_ANALYSIS_MIN_LINE_ITEMS",
		"analysis.financial_max_chars": "FINLENS_ANALYSIS_FINANCIAL_MAX_CHARS",
		"analysis.earnings_max_chars":  "FINLENS_ANALYSIS_EARNINGS_MAX_CHARS",
		"analysis.income_threshold":    "FINLENS_ANALYSIS_INCOME_THRESHOLD",
		"analysis.balance_threshold":   "FINLENS_ANALYSIS_BALANCE_THRESHOLD",
		"analysis.cash_flow_threshold": "FINLENS_ANALYSIS_CASH_FLOW_THRESHOLD",
		"extract.ocr_enabled":          "FINLENS_EXTRACT_OCR_ENABLED",
		"extract.ocr_dpi":              "FINLENS_EXTRACT_OCR_DPI",
		"extract.ocr_concurrency":      "FINLENS_EXTRACT_OCR_CONCURRENCY",
		"artifacts.sink":               "FINLENS_ARTIFACTS_SINK",
		"artifacts.dir":                "FINLENS_ARTIFACTS_DIR",
		"artifacts.s3.region":          "FINLENS_ARTIFACTS_S3_REGION",
		"artifacts.s3.bucket":          "FINLENS_ARTIFACTS_S3_BUCKET",
		"artifacts.s3.endpoint":        "FINLENS_ARTIFACTS_S3_ENDPOINT",
		"artifacts.s3.access_key":      "FINLENS_ARTIFACTS_S3_ACCESS_KEY",
		"artifacts.s3.secret_key":      "FINLENS_ARTIFACTS_S3_SECRET_KEY",
		"artifacts.s3.prefix":          "FINLENS_ARTIFACTS_S3_PREFIX",
		"session.ttl":                  "FINLENS_SESSION_TTL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	// The primary key also accepts the bare GROQ_API_KEY used by older deployments.
	_ = v.BindEnv("llm.primary.api_key", "FINLENS_LLM_PRIMARY_API_KEY", "GROQ_API_KEY")

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FINLENS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FINLENS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxUploadMB:  v.GetInt64("server.max_upload_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.LLM = LLMConfig{
		Primary:   providerConfig(v, "llm.primary"),
		Secondary: providerConfig(v, "llm.secondary"),
		Tertiary:  providerConfig(v, "llm.tertiary"),
	}
	cfg.Analysis = AnalysisConfig{
		CompletionTimeout: v.GetDuration("analysis.completion_timeout"),
		MinLineItems:      v.GetInt("analysis.min_line_items"),
		FinancialMaxChars: v.GetInt("analysis.financial_max_chars"),
		EarningsMaxChars:  v.GetInt("analysis.earnings_max_chars"),
		IncomeThreshold:   v.GetInt("analysis.income_threshold"),
		BalanceThreshold:  v.GetInt("analysis.balance_threshold"),
		CashFlowThreshold: v.GetInt("analysis.cash_flow_threshold"),
	}
	cfg.Extract = ExtractConfig{
		OCREnabled:     v.GetBool("extract.ocr_enabled"),
		OCRDPI:         v.GetInt("extract.ocr_dpi"),
		OCRConcurrency: v.GetInt("extract.ocr_concurrency"),
	}
	cfg.Artifacts = ArtifactsConfig{
		Sink: v.GetString("artifacts.sink"),
		Dir:  v.GetString("artifacts.dir"),
		S3: S3Config{
			Region:    v.GetString("artifacts.s3.region"),
			Bucket:    v.GetString("artifacts.s3.bucket"),
			Endpoint:  v.GetString("artifacts.s3.endpoint"),
			AccessKey: v.GetString("artifacts.s3.access_key"),
			SecretKey: v.GetString("artifacts.s3.secret_key"),
			Prefix:    v.GetString("artifacts.s3.prefix"),
		},
	}
	cfg.Session = SessionConfig{
		TTL: v.GetDuration("session.ttl"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		BaseURL:      v.GetString(prefix + ".base_url"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}

// splitList parses a comma-separated string, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
