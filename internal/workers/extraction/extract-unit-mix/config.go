// internal/workers/extraction/extract-unit-mix/config.go
package extractunitmix

import (
	"fmt"
	"strings"
	"time"

	"listing-unitmix/internal/common/config"
	"listing-unitmix/internal/models"
	"listing-unitmix/internal/unitmix/extractor"
	"listing-unitmix/internal/unitmix/inference"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	CacheTTL      time.Duration
	Extraction    *extractor.Config
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       60 * time.Second,
		CacheTTL:      24 * time.Hour,
		Extraction:    extractor.DefaultConfig(),
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	return nil
}

// NewConfig builds the worker config from the application config, keeping
// pipeline defaults for anything left at zero.
func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if app == nil {
		return cfg
	}

	wc := config.GetWorkerConfig(app, TaskType)
	cfg.Enabled = wc.Enabled
	if wc.MaxJobsActive > 0 {
		cfg.MaxJobsActive = wc.MaxJobsActive
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}

	ex := app.Extraction
	if ex.CacheTTL > 0 {
		cfg.CacheTTL = time.Duration(ex.CacheTTL) * time.Second
	}

	e := cfg.Extraction
	if ex.MaxTextLength > 0 {
		e.MaxTextLength = ex.MaxTextLength
		e.Strict.MaxTextLength = ex.MaxTextLength
		e.Inference.MaxTextLength = ex.MaxTextLength
	}
	if ex.LLMTimeout > 0 {
		e.LLMTimeout = config.GetDuration(ex.LLMTimeout)
	}
	if ex.Heuristics.StrictWindow > 0 {
		e.Strict.WindowSize = ex.Heuristics.StrictWindow
	}
	if ex.Heuristics.InferenceWindow > 0 {
		e.Inference.WindowSize = ex.Heuristics.InferenceWindow
	}
	applyOutcome(&e.Inference.PluralSupported, ex.Heuristics.PluralSupported)
	applyOutcome(&e.Inference.PluralSpacious, ex.Heuristics.PluralSpacious)
	applyOutcome(&e.Inference.PluralBare, ex.Heuristics.PluralBare)
	applyOutcome(&e.Inference.Singular, ex.Heuristics.Singular)

	if ex.Resolver.LongCitationChars > 0 {
		e.Resolver.LongCitationChars = ex.Resolver.LongCitationChars
	}
	if ex.Resolver.MaxAvgBedsPerUnit > 0 {
		e.Resolver.MaxAvgBedsPerUnit = ex.Resolver.MaxAvgBedsPerUnit
	}
	if ex.Resolver.EqualDistMaxBeds > 0 {
		e.Resolver.EqualDistMaxBeds = ex.Resolver.EqualDistMaxBeds
	}
	e.Resolver.SingleUnitUsesStatedTotal = ex.Resolver.SingleUnitUsesStatedTotal

	if ex.Underwriting.PassThreshold > 0 {
		e.Underwriting.PassThreshold = ex.Underwriting.PassThreshold
	}
	if ex.Underwriting.MaxLowConfidenceBeds > 0 {
		e.Underwriting.MaxLowConfidenceBeds = ex.Underwriting.MaxLowConfidenceBeds
	}
	if ex.Underwriting.LowCapBeds > 0 {
		e.Underwriting.LowCapBeds = ex.Underwriting.LowCapBeds
	}
	if ex.Underwriting.MediumCapBeds > 0 {
		e.Underwriting.MediumCapBeds = ex.Underwriting.MediumCapBeds
	}

	return cfg
}

// applyOutcome overrides a decision-table row when the configured row names
// a confidence. Rows are validated by the config loader.
func applyOutcome(dst *inference.Outcome, row config.OutcomeConfig) {
	if row.Confidence == "" {
		return
	}
	*dst = inference.Outcome{
		Beds:           row.Beds,
		Confidence:     models.Confidence(strings.ToUpper(row.Confidence)),
		AssumptionCode: row.AssumptionCode,
	}
}
