// internal/unitmix/underwriting/validator.go
package underwriting

import (
	"fmt"
	"math"

	"listing-unitmix/internal/common/logger"
	"listing-unitmix/internal/models"
)

// Report is the outcome of one underwriting evaluation. Adjusted is only set
// when the mix failed.
type Report struct {
	Score    float64
	Passed   bool
	Reasons  []string
	Adjusted []models.UnitType
}

func (r Report) Summary() models.UnderwritingSummary {
	return models.UnderwritingSummary{Score: r.Score, Passed: r.Passed}
}

// Validator scores a resolved mix for use in downstream valuation.
type Validator struct {
	config *Config
	logger logger.Logger
}

func New(config *Config, log logger.Logger) *Validator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Validator{
		config: config,
		logger: log.With(map[string]interface{}{
			"component": "underwriting-validator",
		}),
	}
}

func (v *Validator) Evaluate(res models.MixResolution) Report {
	report := Report{Reasons: []string{}}
	if len(res.FinalMix) == 0 {
		report.Reasons = append(report.Reasons, "empty mix")
		report.Adjusted = []models.UnitType{}
		return report
	}

	total := 0.0
	for _, u := range res.FinalMix {
		total += UnitScore(u)
		if u.Confidence == models.ConfidenceLow && u.Beds > v.config.MaxLowConfidenceBeds {
			report.Reasons = append(report.Reasons,
				fmt.Sprintf("%s: LOW confidence unit claims %d bedrooms", u.UnitID, u.Beds))
		}
	}
	report.Score = math.Round(total/float64(len(res.FinalMix))*100) / 100
	if report.Score < v.config.PassThreshold {
		report.Reasons = append(report.Reasons,
			fmt.Sprintf("score %.2f below threshold %.2f", report.Score, v.config.PassThreshold))
	}

	report.Passed = len(report.Reasons) == 0
	if !report.Passed {
		report.Adjusted = v.Adjust(res.FinalMix)
		v.logger.Info("mix failed underwriting", map[string]interface{}{
			"score":   report.Score,
			"reasons": report.Reasons,
		})
	}
	return report
}

// UnitScore rates one unit fact from 0 to 100. Larger claims backed by weaker
// evidence score lower.
func UnitScore(u models.UnitType) float64 {
	var score float64
	switch u.Confidence {
	case models.ConfidenceHigh:
		score = 95
		if u.Source == models.SourceStrict {
			score = 100
		}
	case models.ConfidenceMedium:
		score = 80 - 15*float64(max(0, u.Beds-2))
	default:
		score = 60 - 15*float64(max(0, u.Beds-1))
	}
	return math.Max(0, math.Min(100, score))
}

// Adjust caps LOW and MEDIUM units. HIGH units and units already within their
// cap are returned unchanged. Capped default units get a note describing the
// cap; units cited from the listing keep their citation.
func (v *Validator) Adjust(units []models.UnitType) []models.UnitType {
	out := models.SortUnits(units)
	for i, u := range out {
		limit := -1
		switch u.Confidence {
		case models.ConfidenceLow:
			limit = v.config.LowCapBeds
		case models.ConfidenceMedium:
			limit = v.config.MediumCapBeds
		}
		if limit >= 0 && u.Beds > limit {
			capped := u.WithBeds(limit, models.AssumptionUnderwritingCapped)
			// default units carry a generated note, not listing text
			if u.Source == models.SourceDefault {
				capped.Citation = models.TruncateCitation(
					fmt.Sprintf("capped from %d to %d bedrooms by underwriting", u.Beds, limit))
			}
			out[i] = capped
		}
	}
	return out
}
