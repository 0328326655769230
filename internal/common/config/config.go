// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	APIs       APIsConfig              `mapstructure:"apis"`
	Logging    LoggingConfig           `mapstructure:"logging"`
	Extraction ExtractionConfig        `mapstructure:"extraction"`
	Server     ServerConfig            `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	Plaintext      bool   `mapstructure:"plaintext"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig backs the extraction cache. An empty Address disables it.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI GenAIConfig `mapstructure:"genai"`
}

// GenAIConfig points at an OpenAI-compatible chat completions endpoint.
type GenAIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// --- Extraction ---

// ExtractionConfig tunes the unit-mix pipeline. Zero values take the
// pipeline defaults.
type ExtractionConfig struct {
	MaxTextLength      int  `mapstructure:"max_text_length"`
	LLMFallbackEnabled bool `mapstructure:"llm_fallback_enabled"`
	LLMTimeout         int  `mapstructure:"llm_timeout"` // milliseconds
	CacheTTL           int  `mapstructure:"cache_ttl"`   // seconds

	Heuristics   HeuristicsConfig   `mapstructure:"heuristics"`
	Resolver     ResolverConfig     `mapstructure:"resolver"`
	Underwriting UnderwritingConfig `mapstructure:"underwriting"`
}

type HeuristicsConfig struct {
	StrictWindow    int `mapstructure:"strict_window"`
	InferenceWindow int `mapstructure:"inference_window"`

	// Count-free inference table. A row with an empty confidence keeps the
	// built-in outcome.
	PluralSupported OutcomeConfig `mapstructure:"plural_supported"`
	PluralSpacious  OutcomeConfig `mapstructure:"plural_spacious"`
	PluralBare      OutcomeConfig `mapstructure:"plural_bare"`
	Singular        OutcomeConfig `mapstructure:"singular"`
}

type OutcomeConfig struct {
	Beds           int    `mapstructure:"beds"`
	Confidence     string `mapstructure:"confidence"`
	AssumptionCode string `mapstructure:"assumption_code"`
}

type ResolverConfig struct {
	LongCitationChars         int     `mapstructure:"long_citation_chars"`
	MaxAvgBedsPerUnit         float64 `mapstructure:"max_avg_beds_per_unit"`
	EqualDistMaxBeds          int     `mapstructure:"equal_dist_max_beds"`
	SingleUnitUsesStatedTotal bool    `mapstructure:"single_unit_uses_stated_total"`
}

type UnderwritingConfig struct {
	PassThreshold        float64 `mapstructure:"pass_threshold"`
	MaxLowConfidenceBeds int     `mapstructure:"max_low_confidence_beds"`
	LowCapBeds           int     `mapstructure:"low_cap_beds"`
	MediumCapBeds        int     `mapstructure:"medium_cap_beds"`
}
