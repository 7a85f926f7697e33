package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, "provider", cfg.Encoder.Mode)
	require.Equal(t, 1536, cfg.Encoder.Dimension)
	require.Equal(t, 0.6, cfg.Retrieval.SimilarityThreshold)
	require.Equal(t, 0.4, cfg.Retrieval.EscalateThreshold)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
http:
  address: ":9090"
encoder:
  mode: offline
  dimension: 64
retrieval:
  similarityThreshold: 0.7
  escalateThreshold: 0.5
tenants:
  grand-plaza:
    similarityThreshold: 0.65
    encoderMode: offline
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "offline", cfg.Encoder.Mode)
	require.Equal(t, 64, cfg.Encoder.Dimension)
	require.Equal(t, 0.7, cfg.Retrieval.SimilarityThreshold)
	require.Equal(t, 0.5, cfg.Retrieval.EscalateThreshold)
	require.Equal(t, "offline", cfg.Tenants["grand-plaza"].EncoderMode)
}

func TestEnvOverridesTakePrecedence(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("HTTP_ADDRESS", ":7070")
	t.Setenv("ENCODER_MODE", "offline")
	t.Setenv("EMBEDDING_DIMENSION", "256")
	t.Setenv("SIMILARITY_THRESHOLD", "0.8")
	t.Setenv("ESCALATE_THRESHOLD", "0.3")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.HTTP.Address)
	require.Equal(t, "offline", cfg.Encoder.Mode)
	require.Equal(t, 256, cfg.Encoder.Dimension)
	require.Equal(t, 0.8, cfg.Retrieval.SimilarityThreshold)
	require.Equal(t, 0.3, cfg.Retrieval.EscalateThreshold)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty address", func(c *Config) { c.HTTP.Address = "" }},
		{"unknown encoder mode", func(c *Config) { c.Encoder.Mode = "remote" }},
		{"zero dimension", func(c *Config) { c.Encoder.Dimension = 0 }},
		{"threshold above one", func(c *Config) { c.Retrieval.SimilarityThreshold = 1.5 }},
		{"escalate above similarity", func(c *Config) { c.Retrieval.EscalateThreshold = 0.9 }},
		{"empty escalation answer", func(c *Config) { c.Retrieval.EscalationAnswer = "" }},
		{"valkey enabled without addr", func(c *Config) { c.Valkey.Enabled = true }},
		{"export enabled without bucket", func(c *Config) { c.Export.Enabled = true; c.Export.Endpoint = "s3.local" }},
		{"bad tenant encoder mode", func(c *Config) {
			c.Tenants = map[string]TenantConfig{"t": {EncoderMode: "gpu"}}
		}},
		{"tenant escalate above similarity", func(c *Config) {
			c.Tenants = map[string]TenantConfig{"t": {SimilarityThreshold: 0.5, EscalateThreshold: 0.6}}
		}},
		{"tenant similarity below inherited escalate", func(c *Config) {
			// escalate inherits the 0.4 default, exceeding the override
			c.Tenants = map[string]TenantConfig{"t": {SimilarityThreshold: 0.3}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
