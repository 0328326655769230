// internal/common/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
workers:
  extract-unit-mix:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "listing-unitmix", cfg.App.Name)
	assert.Equal(t, 10, cfg.Camunda.MaxJobsActive)
	assert.True(t, cfg.Camunda.Plaintext)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.False(t, cfg.Database.Redis.Enabled())

	w := GetWorkerConfig(cfg, "extract-unit-mix")
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 3, w.MaxRetries)

	ex := cfg.Extraction
	assert.Equal(t, 10000, ex.MaxTextLength)
	assert.Equal(t, 30000, ex.LLMTimeout)
	assert.Equal(t, 86400, ex.CacheTTL)
	assert.Equal(t, 80, ex.Heuristics.StrictWindow)
	assert.Equal(t, 200, ex.Heuristics.InferenceWindow)
	assert.Equal(t, 40, ex.Resolver.LongCitationChars)
	assert.True(t, ex.Resolver.SingleUnitUsesStatedTotal)
	assert.Equal(t, 50.0, ex.Underwriting.PassThreshold)
	assert.Equal(t, 1, ex.Underwriting.LowCapBeds)
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_ZEEBE_ADDRESS", "zeebe:26500")
	t.Setenv("TEST_GENAI_URL", "http://llm.local/v1")
	t.Setenv("GENAI_API_KEY", "sk-test")

	path := writeConfig(t, `
camunda:
  broker_address: ${TEST_ZEEBE_ADDRESS}
database:
  redis:
    address: ${TEST_REDIS_ADDRESS_UNSET}
apis:
  genai:
    base_url: ${TEST_GENAI_URL}
extraction:
  llm_fallback_enabled: true
  resolver:
    single_unit_uses_stated_total: false
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "http://llm.local/v1", cfg.APIs.GenAI.BaseURL)
	assert.Equal(t, "sk-test", cfg.APIs.GenAI.APIKey)
	assert.Empty(t, cfg.Database.Redis.Address)
	assert.False(t, cfg.Database.Redis.Enabled())
	assert.True(t, cfg.Extraction.LLMFallbackEnabled)
	assert.False(t, cfg.Extraction.Resolver.SingleUnitUsesStatedTotal)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "logging:\n  level: debug\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name:    "llm without base url",
			body:    "camunda:\n  broker_address: x:1\nextraction:\n  llm_fallback_enabled: true\n",
			wantErr: "apis.genai.base_url is required",
		},
		{
			name:    "threshold out of range",
			body:    "camunda:\n  broker_address: x:1\nextraction:\n  underwriting:\n    pass_threshold: 150\n",
			wantErr: "pass_threshold must be within 0..100",
		},
		{
			name:    "bad heuristic confidence",
			body:    "camunda:\n  broker_address: x:1\nextraction:\n  heuristics:\n    plural_bare:\n      beds: 2\n      confidence: SURE\n",
			wantErr: "extraction.heuristics.plural_bare",
		},
		{
			name:    "heuristic row without assumption code",
			body:    "camunda:\n  broker_address: x:1\nextraction:\n  heuristics:\n    singular:\n      beds: 1\n      confidence: LOW\n",
			wantErr: "assumption_code is required",
		},
		{
			name:    "negative ttl",
			body:    "camunda:\n  broker_address: x:1\nextraction:\n  cache_ttl: -5\n",
			wantErr: "cache_ttl must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWorkerHelpers(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"extract-unit-mix": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "extract-unit-mix"))
	assert.True(t, IsWorkerEnabled(cfg, "other"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "extract-unit-mix").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "other").MaxJobsActive)
	assert.Equal(t, int64(1500), GetDuration(1500).Milliseconds())
}

func TestLoadFromFile_RepositoryConfig(t *testing.T) {
	t.Setenv("ZEEBE_ADDRESS", "localhost:26500")

	cfg, err := LoadFromFile(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, 8, GetWorkerConfig(cfg, "extract-unit-mix").MaxJobsActive)
	assert.Equal(t, "LOW", cfg.Extraction.Heuristics.PluralBare.Confidence)
	assert.Equal(t, "PLURAL_SPACIOUS_2BR", cfg.Extraction.Heuristics.PluralSpacious.AssumptionCode)
	assert.False(t, cfg.Extraction.LLMFallbackEnabled)
}
