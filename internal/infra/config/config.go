package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig              `yaml:"http"`
	Encoder   EncoderConfig           `yaml:"encoder"`
	Retrieval RetrievalConfig         `yaml:"retrieval"`
	Postgres  PostgresConfig          `yaml:"postgres"`
	Valkey    ValkeyConfig            `yaml:"valkey"`
	Line      LineConfig              `yaml:"line"`
	Export    ExportConfig            `yaml:"export"`
	Tenants   map[string]TenantConfig `yaml:"tenants"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// EncoderConfig selects and configures the embedding encoder.
type EncoderConfig struct {
	// Mode is "provider" or "offline".
	Mode      string        `yaml:"mode"`
	APIKey    string        `yaml:"apiKey"`
	BaseURL   string        `yaml:"baseUrl"`
	Model     string        `yaml:"model"`
	Dimension int           `yaml:"dimension"`
	CacheTTL  time.Duration `yaml:"cacheTtl"`
}

// RetrievalConfig holds the default retrieval policy knobs.
type RetrievalConfig struct {
	SimilarityThreshold float64 `yaml:"similarityThreshold"`
	EscalateThreshold   float64 `yaml:"escalateThreshold"`
	EscalationAnswer    string  `yaml:"escalationAnswer"`
	HedgeDisclaimer     string  `yaml:"hedgeDisclaimer"`
	FailureAnswer       string  `yaml:"failureAnswer"`
	SeedOnCreate        bool    `yaml:"seedOnCreate"`
}

// PostgresConfig contains DSN and pooling settings for corpus storage.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for the embedding cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LineConfig contains LINE push notification credentials.
type LineConfig struct {
	ChannelToken string `yaml:"channelToken"`
	RecipientID  string `yaml:"recipientId"`
	PushURL      string `yaml:"pushUrl"`
}

// ExportConfig configures optional CSV snapshot archiving.
type ExportConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"useSsl"`
}

// TenantConfig overrides retrieval settings for one tenant.
type TenantConfig struct {
	SimilarityThreshold float64 `yaml:"similarityThreshold"`
	EscalateThreshold   float64 `yaml:"escalateThreshold"`
	EncoderMode         string  `yaml:"encoderMode"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ENCODER_MODE"); v != "" {
		cfg.Encoder.Mode = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Encoder.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.Encoder.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Encoder.Model = v
	}
	if v := os.Getenv("EMBEDDING_DIMENSION"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Encoder.Dimension = parsed
		}
	}
	if v := os.Getenv("EMBEDDING_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Encoder.CacheTTL = parsed
		}
	}
	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Retrieval.SimilarityThreshold = parsed
		}
	}
	if v := os.Getenv("ESCALATE_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Retrieval.EscalateThreshold = parsed
		}
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Valkey.Addr = v
	}
	if v := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"); v != "" {
		cfg.Line.ChannelToken = v
	}
	if v := os.Getenv("LINE_RECIPIENT_ID"); v != "" {
		cfg.Line.RecipientID = v
	}
	if v := os.Getenv("EXPORT_ARCHIVE_ENABLED"); v != "" {
		cfg.Export.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
		},
		Encoder: EncoderConfig{
			Mode:      "provider",
			Model:     "text-embedding-3-small",
			Dimension: 1536,
			CacheTTL:  24 * time.Hour,
		},
		Retrieval: RetrievalConfig{
			SimilarityThreshold: 0.6,
			EscalateThreshold:   0.4,
			EscalationAnswer:    "We are sorry, we need to check this question with our staff. Could you please wait a moment?",
			HedgeDisclaimer:     "If anything about this answer is unclear, please ask our staff directly.",
			FailureAnswer:       "An error occurred. Please contact our staff.",
			SeedOnCreate:        true,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	switch c.Encoder.Mode {
	case "provider", "offline":
	default:
		return fmt.Errorf("encoder.mode must be provider or offline, got %q", c.Encoder.Mode)
	}
	if c.Encoder.Mode == "provider" && strings.TrimSpace(c.Encoder.Model) == "" {
		return errors.New("encoder.model cannot be empty in provider mode")
	}
	if c.Encoder.Dimension <= 0 {
		return errors.New("encoder.dimension must be positive")
	}
	if c.Retrieval.SimilarityThreshold <= 0 || c.Retrieval.SimilarityThreshold > 1 {
		return errors.New("retrieval.similarityThreshold must be in (0, 1]")
	}
	if c.Retrieval.EscalateThreshold <= 0 || c.Retrieval.EscalateThreshold > c.Retrieval.SimilarityThreshold {
		return errors.New("retrieval.escalateThreshold must be positive and not exceed similarityThreshold")
	}
	if c.Retrieval.EscalationAnswer == "" {
		return errors.New("retrieval.escalationAnswer cannot be empty")
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when the embedding cache is enabled")
	}
	if c.Export.Enabled {
		if c.Export.Endpoint == "" || c.Export.Bucket == "" {
			return errors.New("export.endpoint and export.bucket cannot be empty when archiving is enabled")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	for tenant, override := range c.Tenants {
		if override.SimilarityThreshold < 0 || override.SimilarityThreshold > 1 {
			return fmt.Errorf("tenants.%s.similarityThreshold must be in [0, 1]", tenant)
		}
		if override.EscalateThreshold < 0 {
			return fmt.Errorf("tenants.%s.escalateThreshold must be non-negative", tenant)
		}
		// check the pair the tenant will actually run with: an unset
		// threshold inherits the global default
		similarity := override.SimilarityThreshold
		if similarity == 0 {
			similarity = c.Retrieval.SimilarityThreshold
		}
		escalate := override.EscalateThreshold
		if escalate == 0 {
			escalate = c.Retrieval.EscalateThreshold
		}
		if escalate > similarity {
			return fmt.Errorf("tenants.%s: effective escalateThreshold %.2f exceeds similarityThreshold %.2f", tenant, escalate, similarity)
		}
		switch override.EncoderMode {
		case "", "provider", "offline":
		default:
			return fmt.Errorf("tenants.%s.encoderMode must be provider or offline", tenant)
		}
	}
	return nil
}
