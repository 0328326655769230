// internal/unitmix/resolver/strategies.go
package resolver

import (
	"fmt"

	"listing-unitmix/internal/models"
	"listing-unitmix/internal/unitmix/patterns"
)

// FillContext is the read-only view a fill strategy decides from.
type FillContext struct {
	Known       []models.UnitType
	OpenIDs     []string
	Expected    int
	StatedTotal *int
	Text        string
}

// FillStrategy proposes units for every open slot, or declines.
type FillStrategy struct {
	Name string
	Fill func(fc FillContext) ([]models.UnitType, bool)
}

// DefaultStrategies returns the fill order for config.
func DefaultStrategies(config *Config) []FillStrategy {
	strategies := make([]FillStrategy, 0, 4)
	if config.SingleUnitUsesStatedTotal {
		strategies = append(strategies, SingleUnitStatedTotal())
	}
	return append(strategies,
		EqualDistribution(config.EqualDistMaxBeds),
		StudioPattern(),
		Conservative(),
	)
}

// SingleUnitStatedTotal gives a lone, unknown unit the property's stated
// bedroom total when that total is a valid unit size.
func SingleUnitStatedTotal() FillStrategy {
	return FillStrategy{
		Name: models.AssumptionSingleUnitStatedTotal,
		Fill: func(fc FillContext) ([]models.UnitType, bool) {
			if fc.Expected != 1 || len(fc.Known) != 0 || fc.StatedTotal == nil || !models.ValidBeds(*fc.StatedTotal) {
				return nil, false
			}
			total := *fc.StatedTotal
			return []models.UnitType{
				models.NewUnit(fc.OpenIDs[0], total, models.ConfidenceMedium, models.SourceDefault,
					models.AssumptionSingleUnitStatedTotal,
					fmt.Sprintf("single unit assigned the stated total of %d bedrooms", total)),
			}, true
		},
	}
}

// EqualDistribution splits the bedrooms the stated total leaves over the
// known units evenly across open slots, if the split is exact and small.
func EqualDistribution(maxBeds int) FillStrategy {
	return FillStrategy{
		Name: models.AssumptionDefaultEqualDist,
		Fill: func(fc FillContext) ([]models.UnitType, bool) {
			if fc.StatedTotal == nil || len(fc.OpenIDs) == 0 {
				return nil, false
			}
			remaining := *fc.StatedTotal - models.SumBeds(fc.Known)
			slots := len(fc.OpenIDs)
			if remaining < 0 || remaining%slots != 0 || remaining/slots > maxBeds {
				return nil, false
			}
			per := remaining / slots
			note := fmt.Sprintf("%d remaining of %d stated bedrooms split across %d units", remaining, *fc.StatedTotal, slots)
			fills := make([]models.UnitType, 0, slots)
			for _, id := range fc.OpenIDs {
				fills = append(fills, models.NewUnit(id, per, models.ConfidenceLow, models.SourceDefault, models.AssumptionDefaultEqualDist, note))
			}
			return fills, true
		},
	}
}

// StudioPattern covers three-unit listings that mention a studio nobody has
// claimed: one open slot becomes the studio, the rest default to 1BR.
func StudioPattern() FillStrategy {
	return FillStrategy{
		Name: models.AssumptionDefaultStudioPattern,
		Fill: func(fc FillContext) ([]models.UnitType, bool) {
			if fc.Expected != 3 || len(fc.OpenIDs) == 0 || !patterns.HasStudioCue(fc.Text) {
				return nil, false
			}
			for _, u := range fc.Known {
				if u.Beds == 0 {
					return nil, false
				}
			}
			fills := make([]models.UnitType, 0, len(fc.OpenIDs))
			for i, id := range fc.OpenIDs {
				if i == 0 {
					fills = append(fills, models.NewUnit(id, 0, models.ConfidenceLow, models.SourceDefault,
						models.AssumptionDefaultStudioPattern, "studio mentioned in listing without a unit reference"))
					continue
				}
				fills = append(fills, conservativeUnit(id))
			}
			return fills, true
		},
	}
}

// Conservative fills every open slot with a 1BR.
func Conservative() FillStrategy {
	return FillStrategy{
		Name: models.AssumptionDefaultConservative,
		Fill: func(fc FillContext) ([]models.UnitType, bool) {
			fills := make([]models.UnitType, 0, len(fc.OpenIDs))
			for _, id := range fc.OpenIDs {
				fills = append(fills, conservativeUnit(id))
			}
			return fills, true
		},
	}
}

func conservativeUnit(id string) models.UnitType {
	return models.NewUnit(id, 1, models.ConfidenceLow, models.SourceDefault,
		models.AssumptionDefaultConservative, "no unit-scoped evidence, conservative 1BR default")
}
