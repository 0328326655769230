// internal/unitmix/resolver/resolver.go
package resolver

import (
	"listing-unitmix/internal/common/logger"
	"listing-unitmix/internal/models"
)

const component = "mix-resolver"

// Input is everything the resolver decides from.
type Input struct {
	Strict        []models.UnitType
	Combined      []models.UnitType
	ExpectedUnits int
	StatedTotal   *int
	Text          string
}

// Resolver turns pass output and count hints into one MixResolution.
type Resolver struct {
	config     *Config
	strategies []FillStrategy
	logger     logger.Logger
}

func New(config *Config, log logger.Logger) *Resolver {
	if config == nil {
		config = DefaultConfig()
	}
	return &Resolver{
		config:     config,
		strategies: DefaultStrategies(config),
		logger: log.With(map[string]interface{}{
			"component": component,
		}),
	}
}

// WithStrategies returns a copy of r that fills open slots with the given
// strategies, in order.
func (r *Resolver) WithStrategies(strategies ...FillStrategy) *Resolver {
	cp := *r
	cp.strategies = append([]FillStrategy(nil), strategies...)
	return &cp
}

// Resolve walks the decision ladder; the first matching rule wins.
func (r *Resolver) Resolve(in Input) models.MixResolution {
	if res, ok := r.strictComplete(in); ok {
		return res
	}
	if res, ok := r.inferredComplete(in); ok {
		return res
	}
	return r.defaultFill(in)
}

func (r *Resolver) strictComplete(in Input) (models.MixResolution, bool) {
	if len(in.Strict) != in.ExpectedUnits {
		return models.MixResolution{}, false
	}

	mix := models.SortUnits(in.Strict)
	res := models.MixResolution{
		FinalMix: mix,
		Source:   models.MixStrict,
		Flags:    []string{},
	}
	if in.StatedTotal != nil && models.SumBeds(mix) != *in.StatedTotal {
		r.logger.Warn("strict units disagree with stated total", map[string]interface{}{
			"strictBeds":  models.SumBeds(mix),
			"statedTotal": *in.StatedTotal,
		})
		res.Flags = models.MergeFlags(res.Flags, models.FlagBedroomCountMismatch)
	}
	return res, true
}

func (r *Resolver) inferredComplete(in Input) (models.MixResolution, bool) {
	combined := models.SortUnits(in.Combined)
	if len(combined) != in.ExpectedUnits {
		return models.MixResolution{}, false
	}
	for _, u := range combined {
		if u.Confidence == models.ConfidenceLow {
			return models.MixResolution{}, false
		}
	}

	flags := []string{}
	sum := models.SumBeds(combined)
	if avg := float64(sum) / float64(in.ExpectedUnits); avg > r.config.MaxAvgBedsPerUnit {
		flags = models.MergeFlags(flags, models.FlagHighAvgBedsPerUnit)
	}

	if in.StatedTotal != nil && sum != *in.StatedTotal {
		reconciled, ok := Reconcile(combined, *in.StatedTotal)
		if !ok {
			r.logger.Info("reconciliation impossible, falling through to default fill", map[string]interface{}{
				"inferredBeds": sum,
				"statedTotal":  *in.StatedTotal,
			})
			return models.MixResolution{}, false
		}
		return models.MixResolution{
			FinalMix:       reconciled,
			Source:         models.MixInferredReconciled,
			ReviewRequired: true,
			Flags:          models.MergeFlags(flags, models.FlagMLSReconciled, models.FlagReviewRequired),
		}, true
	}

	res := models.MixResolution{
		FinalMix: combined,
		Source:   models.MixInferred,
		Flags:    flags,
	}
	for _, u := range combined {
		if u.Confidence != models.ConfidenceHigh {
			res.ReviewRequired = true
			res.Flags = models.MergeFlags(res.Flags, models.FlagReviewRequired)
			break
		}
	}
	return res, true
}

// Reconcile lowers MEDIUM units, largest first, one bed at a time until the
// mix sums to target. HIGH units are never touched and beds never go up. It
// reports false when the target cannot be reached.
func Reconcile(units []models.UnitType, target int) ([]models.UnitType, bool) {
	excess := models.SumBeds(units) - target
	if excess < 0 {
		return nil, false
	}
	capacity := 0
	for _, u := range units {
		if u.Confidence == models.ConfidenceMedium {
			capacity += u.Beds
		}
	}
	if capacity < excess {
		return nil, false
	}

	out := models.SortUnits(units)
	for ; excess > 0; excess-- {
		pick := -1
		for i, u := range out {
			if u.Confidence != models.ConfidenceMedium || u.Beds == 0 {
				continue
			}
			if pick < 0 || u.Beds > out[pick].Beds {
				pick = i
			}
		}
		out[pick] = out[pick].WithBeds(out[pick].Beds-1, models.AssumptionMLSReconciled)
	}
	return out, true
}

func (r *Resolver) defaultFill(in Input) models.MixResolution {
	known := r.knownSet(in)
	if len(known) > in.ExpectedUnits {
		r.logger.Warn("more known units than expected, keeping the first", map[string]interface{}{
			"known":         len(known),
			"expectedUnits": in.ExpectedUnits,
		})
		known = known[:in.ExpectedUnits]
	}

	fc := FillContext{
		Known:       known,
		OpenIDs:     openIDs(known, in.ExpectedUnits),
		Expected:    in.ExpectedUnits,
		StatedTotal: in.StatedTotal,
		Text:        in.Text,
	}

	var fills []models.UnitType
	if len(fc.OpenIDs) > 0 {
		for _, s := range r.strategies {
			if f, ok := s.Fill(fc); ok {
				r.logger.Debug("default fill strategy applied", map[string]interface{}{
					"strategy": s.Name,
					"slots":    len(fc.OpenIDs),
				})
				fills = f
				break
			}
		}
	}

	flags := []string{models.FlagReviewRequired}
	for _, f := range fills {
		flags = append(flags, f.AssumptionCode)
	}

	mix := models.SortUnits(append(append([]models.UnitType(nil), known...), fills...))
	if in.StatedTotal != nil && models.SumBeds(mix) != *in.StatedTotal {
		flags = append(flags, models.FlagBedroomCountMismatch)
	}

	source := models.MixDefaultConservative
	switch {
	case len(fc.OpenIDs) == 0:
		source = models.MixKnownComplete
	case len(known) > 0:
		source = models.MixDefaultPartial
	}

	return models.MixResolution{
		FinalMix:       mix,
		Source:         source,
		ReviewRequired: true,
		Flags:          models.MergeFlags(flags),
	}
}

// knownSet is strict plus inferred units trusted enough to keep: HIGH, or
// MEDIUM with a long citation.
func (r *Resolver) knownSet(in Input) []models.UnitType {
	seen := make(map[string]struct{}, len(in.Combined))
	known := make([]models.UnitType, 0, len(in.Combined))
	for _, u := range in.Strict {
		if _, dup := seen[u.UnitID]; dup {
			continue
		}
		seen[u.UnitID] = struct{}{}
		known = append(known, u)
	}
	for _, u := range in.Combined {
		if _, dup := seen[u.UnitID]; dup {
			continue
		}
		trusted := u.Confidence == models.ConfidenceHigh ||
			(u.Confidence == models.ConfidenceMedium && len(u.Citation) >= r.config.LongCitationChars)
		if !trusted {
			continue
		}
		seen[u.UnitID] = struct{}{}
		known = append(known, u)
	}
	return models.SortUnits(known)
}

// openIDs lists the smallest unused U<n> ids needed to reach expected.
func openIDs(known []models.UnitType, expected int) []string {
	used := make(map[string]struct{}, len(known))
	for _, u := range known {
		used[u.UnitID] = struct{}{}
	}
	open := make([]string, 0, expected-len(known))
	for n := 1; len(open) < expected-len(known); n++ {
		id := models.UnitID(n)
		if _, taken := used[id]; !taken {
			open = append(open, id)
		}
	}
	return open
}
