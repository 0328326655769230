// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on
// top, then applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	if root := findProjectRoot(); root != "" {
		v.AddConfigPath(filepath.Join(root, "configs"))
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("extraction.resolver.single_unit_uses_stated_total", true)
	v.SetDefault("camunda.plaintext", true)
	return v
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory to the nearest go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values. Unset
// variables expand to the empty string.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that were left blank in yaml from their
// conventional environment variables.
func overrideEmptyConfig(cfg *Config) {
	if cfg.APIs.GenAI.APIKey == "" {
		if val := os.Getenv("GENAI_API_KEY"); val != "" {
			cfg.APIs.GenAI.APIKey = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "listing-unitmix"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	if cfg.APIs.GenAI.Timeout == 0 {
		cfg.APIs.GenAI.Timeout = 30000
	}
	if cfg.APIs.GenAI.MaxTokens == 0 {
		cfg.APIs.GenAI.MaxTokens = 1024
	}

	ex := &cfg.Extraction
	if ex.MaxTextLength == 0 {
		ex.MaxTextLength = 10000
	}
	if ex.LLMTimeout == 0 {
		ex.LLMTimeout = cfg.APIs.GenAI.Timeout
	}
	if ex.CacheTTL == 0 {
		ex.CacheTTL = 86400
	}
	if ex.Heuristics.StrictWindow == 0 {
		ex.Heuristics.StrictWindow = 80
	}
	if ex.Heuristics.InferenceWindow == 0 {
		ex.Heuristics.InferenceWindow = 200
	}
	if ex.Resolver.LongCitationChars == 0 {
		ex.Resolver.LongCitationChars = 40
	}
	if ex.Resolver.MaxAvgBedsPerUnit == 0 {
		ex.Resolver.MaxAvgBedsPerUnit = 2
	}
	if ex.Resolver.EqualDistMaxBeds == 0 {
		ex.Resolver.EqualDistMaxBeds = 2
	}
	if ex.Underwriting.PassThreshold == 0 {
		ex.Underwriting.PassThreshold = 50
	}
	if ex.Underwriting.MaxLowConfidenceBeds == 0 {
		ex.Underwriting.MaxLowConfidenceBeds = 2
	}
	if ex.Underwriting.LowCapBeds == 0 {
		ex.Underwriting.LowCapBeds = 1
	}
	if ex.Underwriting.MediumCapBeds == 0 {
		ex.Underwriting.MediumCapBeds = 2
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	ex := cfg.Extraction
	if ex.MaxTextLength < 0 {
		return fmt.Errorf("extraction.max_text_length must be positive, got %d", ex.MaxTextLength)
	}
	if ex.CacheTTL < 0 {
		return fmt.Errorf("extraction.cache_ttl must be positive, got %d", ex.CacheTTL)
	}
	if ex.Underwriting.PassThreshold < 0 || ex.Underwriting.PassThreshold > 100 {
		return fmt.Errorf("extraction.underwriting.pass_threshold must be within 0..100, got %v", ex.Underwriting.PassThreshold)
	}
	rows := map[string]OutcomeConfig{
		"plural_supported": ex.Heuristics.PluralSupported,
		"plural_spacious":  ex.Heuristics.PluralSpacious,
		"plural_bare":      ex.Heuristics.PluralBare,
		"singular":         ex.Heuristics.Singular,
	}
	for name, row := range rows {
		if err := validateOutcome(row); err != nil {
			return fmt.Errorf("extraction.heuristics.%s: %w", name, err)
		}
	}
	if ex.LLMFallbackEnabled && cfg.APIs.GenAI.BaseURL == "" {
		return fmt.Errorf("apis.genai.base_url is required when extraction.llm_fallback_enabled is set")
	}

	return nil
}

func validateOutcome(o OutcomeConfig) error {
	if o.Confidence == "" {
		return nil
	}
	switch strings.ToUpper(o.Confidence) {
	case "HIGH", "MEDIUM", "LOW":
	default:
		return fmt.Errorf("confidence must be HIGH, MEDIUM or LOW, got %q", o.Confidence)
	}
	if o.Beds < 0 || o.Beds > 4 {
		return fmt.Errorf("beds must be within 0..4, got %d", o.Beds)
	}
	if o.AssumptionCode == "" && !strings.EqualFold(o.Confidence, "HIGH") {
		return fmt.Errorf("assumption_code is required below HIGH confidence")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
