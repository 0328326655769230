// internal/unitmix/inference/config.go
package inference

import "listing-unitmix/internal/models"

// Outcome is one row of the count-free decision table.
type Outcome struct {
	Beds           int
	Confidence     models.Confidence
	AssumptionCode string
}

type Config struct {
	MaxTextLength int
	WindowSize    int

	// plural + "each have/has/feature" or "multiple/several"
	PluralSupported Outcome
	// plural + "spacious" only
	PluralSpacious Outcome
	// plural without a supporting modifier
	PluralBare Outcome
	// singular or ambiguous "bedroom(s)"
	Singular Outcome
}

func DefaultConfig() *Config {
	return &Config{
		MaxTextLength: 10000,
		WindowSize:    200,
		PluralSupported: Outcome{
			Beds:           2,
			Confidence:     models.ConfidenceHigh,
			AssumptionCode: models.AssumptionPluralEachHave2BR,
		},
		PluralSpacious: Outcome{
			Beds:           2,
			Confidence:     models.ConfidenceMedium,
			AssumptionCode: models.AssumptionPluralSpacious2BR,
		},
		PluralBare: Outcome{
			Beds:           2,
			Confidence:     models.ConfidenceLow,
			AssumptionCode: models.AssumptionPluralAssume2BR,
		},
		Singular: Outcome{
			Beds:           1,
			Confidence:     models.ConfidenceMedium,
			AssumptionCode: models.AssumptionSingularAssume1BR,
		},
	}
}
