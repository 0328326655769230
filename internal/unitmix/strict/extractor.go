// internal/unitmix/strict/extractor.go
package strict

import (
	"listing-unitmix/internal/common/logger"
	"listing-unitmix/internal/models"
	"listing-unitmix/internal/unitmix/patterns"
)

const component = "strict-extractor"

// Hints are the structured facts known before text extraction.
type Hints struct {
	// ExpectedUnits bounds which unit ids are accepted. Zero means unknown.
	ExpectedUnits int
}

// Extractor finds explicit, unit-scoped statements only.
type Extractor struct {
	config *Config
	logger logger.Logger
}

func New(config *Config, log logger.Logger) *Extractor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Extractor{
		config: config,
		logger: log.With(map[string]interface{}{
			"component": component,
		}),
	}
}

// Extract returns HIGH/STRICT units in first-mention order. Duplicate ids
// keep their first occurrence.
func (e *Extractor) Extract(text string, hints Hints) []models.UnitType {
	text = patterns.BoundText(text, e.config.MaxTextLength)
	refs := patterns.FindUnitRefs(text)

	units := make([]models.UnitType, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))

	for i, ref := range refs {
		start, end := patterns.ScopeWindow(text, refs, i, e.config.WindowSize, true)
		fact, ok := patterns.FirstUnitFact(text[start:end])
		if !ok {
			continue
		}

		citation := models.TruncateCitation(text[ref.Start : start+fact.End])
		if !models.ValidBeds(fact.Value) {
			e.logger.Warn("discarding out-of-range bedroom count", map[string]interface{}{
				"unitIds":  ref.UnitIDs,
				"beds":     fact.Value,
				"citation": citation,
			})
			continue
		}

		for _, id := range ref.UnitIDs {
			if hints.ExpectedUnits > 0 && models.UnitPosition(id) > hints.ExpectedUnits {
				e.logger.Warn("discarding reference beyond expected unit count", map[string]interface{}{
					"unitId":        id,
					"expectedUnits": hints.ExpectedUnits,
				})
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			units = append(units, models.NewUnit(id, fact.Value, models.ConfidenceHigh, models.SourceStrict, "", citation))
		}
	}

	e.logger.Debug("strict pass complete", map[string]interface{}{
		"references": len(refs),
		"units":      len(units),
	})
	return units
}

// TotalBedrooms returns the first explicit property-level bedroom total in
// range, or nil when the text states none.
func (e *Extractor) TotalBedrooms(text string) *int {
	text = patterns.BoundText(text, e.config.MaxTextLength)
	for _, m := range patterns.FindTotalBedrooms(text) {
		if m.Value < 0 || m.Value > models.MaxStatedTotal {
			e.logger.Warn("ignoring out-of-range bedroom total", map[string]interface{}{
				"total":    m.Value,
				"citation": text[m.Start:m.End],
			})
			continue
		}
		total := m.Value
		return &total
	}
	return nil
}

// UnitCountFromType maps property type/style vocabulary to a unit count.
func UnitCountFromType(typeOrStyle string) (int, bool) {
	return patterns.UnitCountFromType(typeOrStyle)
}
