// internal/unitmix/resolver/validate.go
package resolver

import (
	"fmt"

	"listing-unitmix/internal/models"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

const (
	FindingUnitCountMismatch     = "UNIT_COUNT_MISMATCH"
	FindingDuplicateUnitID       = "DUPLICATE_UNIT_ID"
	FindingBedroomTotalMismatch  = "BEDROOM_TOTAL_MISMATCH"
	FindingMissingAssumptionCode = "MISSING_ASSUMPTION_CODE"
	FindingMissingCitation       = "MISSING_CITATION"
	FindingConfidenceMismatch    = "CONFIDENCE_MISMATCH"
)

// Finding is one provenance or consistency problem in a resolution.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	UnitID   string   `json:"unitId,omitempty"`
	Message  string   `json:"message"`
}

// Validate reports problems with res. It never fails.
func Validate(res models.MixResolution, expectedUnits int, statedTotal *int) []Finding {
	findings := []Finding{}

	if len(res.FinalMix) != expectedUnits {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Code:     FindingUnitCountMismatch,
			Message:  fmt.Sprintf("final mix has %d units, expected %d", len(res.FinalMix), expectedUnits),
		})
	}

	seen := make(map[string]struct{}, len(res.FinalMix))
	for _, u := range res.FinalMix {
		if _, dup := seen[u.UnitID]; dup {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Code:     FindingDuplicateUnitID,
				UnitID:   u.UnitID,
				Message:  "unit id appears more than once",
			})
		}
		seen[u.UnitID] = struct{}{}

		if u.Confidence != models.ConfidenceHigh && u.AssumptionCode == "" {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Code:     FindingMissingAssumptionCode,
				UnitID:   u.UnitID,
				Message:  fmt.Sprintf("%s unit has no assumption code", u.Confidence),
			})
		}
		if u.Citation == "" {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Code:     FindingMissingCitation,
				UnitID:   u.UnitID,
				Message:  "unit has no citation",
			})
		}
		if u.Source == models.SourceStrict && u.Confidence != models.ConfidenceHigh {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Code:     FindingConfidenceMismatch,
				UnitID:   u.UnitID,
				Message:  "strict unit is not HIGH confidence",
			})
		}
	}

	if statedTotal != nil {
		if sum := models.SumBeds(res.FinalMix); sum != *statedTotal {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Code:     FindingBedroomTotalMismatch,
				Message:  fmt.Sprintf("final mix has %d bedrooms, stated total is %d", sum, *statedTotal),
			})
		}
	}

	return findings
}
