// internal/unitmix/inference/inferrer.go
package inference

import (
	"regexp"

	"listing-unitmix/internal/common/logger"
	"listing-unitmix/internal/models"
	"listing-unitmix/internal/unitmix/patterns"
)

const component = "heuristic-inferrer"

var (
	eachHaveRe = regexp.MustCompile(`(?i)\beach\s+(?:have|has|features?)\b`)
	multipleRe = regexp.MustCompile(`(?i)\b(?:multiple|several)\b`)
	spaciousRe = regexp.MustCompile(`(?i)\bspacious\b`)
	pluralRe   = regexp.MustCompile(`(?i)\b(?:bedrooms|beds)\b`)
	singularRe = regexp.MustCompile(`(?i)\bbedroom\b`)
)

// Inferrer fills units Pass A could not resolve, under tightly scoped rules.
type Inferrer struct {
	config *Config
	logger logger.Logger
}

func New(config *Config, log logger.Logger) *Inferrer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Inferrer{
		config: config,
		logger: log.With(map[string]interface{}{
			"component": component,
		}),
	}
}

// Infer returns INFERRED units for ids absent from strict. expectedUnits of
// zero means no upper bound on unit positions.
func (i *Inferrer) Infer(text string, strict []models.UnitType, expectedUnits int) []models.UnitType {
	text = patterns.BoundText(text, i.config.MaxTextLength)
	refs := patterns.FindUnitRefs(text)

	used := make(map[string]struct{}, len(strict)+len(refs))
	for _, u := range strict {
		used[u.UnitID] = struct{}{}
	}

	inferred := make([]models.UnitType, 0, len(refs))
	for idx, ref := range refs {
		start, end := patterns.ScopeWindow(text, refs, idx, i.config.WindowSize, false)
		window := text[start:end]

		outcome, litEnd, ok := i.classify(window)
		if !ok {
			continue
		}
		citation := models.TruncateCitation(text[ref.Start : start+litEnd])

		for _, id := range ref.UnitIDs {
			if expectedUnits > 0 && models.UnitPosition(id) > expectedUnits {
				continue
			}
			if _, taken := used[id]; taken {
				continue
			}
			used[id] = struct{}{}
			inferred = append(inferred, models.NewUnit(id, outcome.Beds, outcome.Confidence, models.SourceInferred, outcome.AssumptionCode, citation))
		}
	}

	i.logger.Debug("heuristic pass complete", map[string]interface{}{
		"references": len(refs),
		"inferred":   len(inferred),
	})
	return inferred
}

// classify applies studio detection, then the count-free table. It returns
// the outcome and the end offset of the literal evidence within window.
func (i *Inferrer) classify(window string) (Outcome, int, bool) {
	if studio, ok := patterns.FindStudio(window); ok {
		return Outcome{Beds: 0, Confidence: models.ConfidenceHigh}, studio.End, true
	}
	// an explicit count belongs to Pass A, even when Pass A rejected it
	if patterns.HasExplicitBedCount(window) {
		return Outcome{}, 0, false
	}

	if loc := pluralRe.FindStringIndex(window); loc != nil {
		litEnd := loc[1]
		switch {
		case eachHaveRe.MatchString(window) || multipleRe.MatchString(window):
			return i.config.PluralSupported, maxEnd(litEnd, eachHaveRe, multipleRe, window), true
		case spaciousRe.MatchString(window):
			return i.config.PluralSpacious, maxEnd(litEnd, spaciousRe, nil, window), true
		default:
			return i.config.PluralBare, litEnd, true
		}
	}
	if loc := singularRe.FindStringIndex(window); loc != nil {
		return i.config.Singular, loc[1], true
	}
	return Outcome{}, 0, false
}

// maxEnd widens the citation so it also covers the modifier that decided the
// outcome.
func maxEnd(end int, a, b *regexp.Regexp, window string) int {
	for _, re := range []*regexp.Regexp{a, b} {
		if re == nil {
			continue
		}
		if loc := re.FindStringIndex(window); loc != nil && loc[1] > end {
			end = loc[1]
		}
	}
	return end
}

// Merge returns strict ∪ inferred sorted by unit id. Strict wins on collision.
func Merge(strict, inferred []models.UnitType) []models.UnitType {
	seen := make(map[string]struct{}, len(strict)+len(inferred))
	out := make([]models.UnitType, 0, len(strict)+len(inferred))
	for _, set := range [][]models.UnitType{strict, inferred} {
		for _, u := range set {
			if _, dup := seen[u.UnitID]; dup {
				continue
			}
			seen[u.UnitID] = struct{}{}
			out = append(out, u)
		}
	}
	return models.SortUnits(out)
}
