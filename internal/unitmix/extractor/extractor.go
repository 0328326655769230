// internal/unitmix/extractor/extractor.go
package extractor

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"listing-unitmix/internal/common/errors"
	"listing-unitmix/internal/common/logger"
	"listing-unitmix/internal/common/observability"
	"listing-unitmix/internal/models"
	"listing-unitmix/internal/unitmix/inference"
	"listing-unitmix/internal/unitmix/llmfallback"
	"listing-unitmix/internal/unitmix/patterns"
	"listing-unitmix/internal/unitmix/resolver"
	"listing-unitmix/internal/unitmix/strict"
	"listing-unitmix/internal/unitmix/underwriting"
)

// Extractor runs the full pipeline for one listing at a time. It holds no
// per-call state and is safe for concurrent use.
type Extractor struct {
	config      *Config
	strict      *strict.Extractor
	inferrer    *inference.Inferrer
	llm         *llmfallback.Extractor
	resolver    *resolver.Resolver
	underwriter *underwriting.Validator
	logger      logger.Logger
}

// New wires the passes. llm may be nil, in which case Pass C never runs.
func New(config *Config, llm llmfallback.Client, log logger.Logger) *Extractor {
	config = config.withDefaults()
	return &Extractor{
		config:      config,
		strict:      strict.New(config.Strict, log),
		inferrer:    inference.New(config.Inference, log),
		llm:         llmfallback.New(llm, config.LLMTimeout, log),
		resolver:    resolver.New(config.Resolver, log),
		underwriter: underwriting.New(config.Underwriting, log),
		logger: log.With(map[string]interface{}{
			"component": "unitmix-extractor",
		}),
	}
}

// Extract derives the unit mix for listing. The only error is an invalid
// unit count hint; every other problem degrades into flags.
func (e *Extractor) Extract(ctx context.Context, listing models.ListingMetadata) (*models.ExtractionResult, error) {
	if listing.Units != nil && *listing.Units <= 0 {
		return nil, errors.NewInvalidUnitCountError(*listing.Units)
	}

	ctx, span := observability.StartSpan(ctx, "unitmix.extract")
	defer span.End()

	text := BoundedText(listing, e.config.MaxTextLength)
	expected := e.expectedUnits(listing)
	stated := e.statedTotal(listing, text)
	span.SetAttributes(attribute.Int("unitmix.expected_units", expected))

	_, passA := observability.StartSpan(ctx, "unitmix.strict")
	strictUnits := e.strict.Extract(text, strict.Hints{ExpectedUnits: expected})
	passA.SetAttributes(attribute.Int("unitmix.units", len(strictUnits)))
	passA.End()

	_, passB := observability.StartSpan(ctx, "unitmix.inference")
	inferred := e.inferrer.Infer(text, strictUnits, expected)
	passB.SetAttributes(attribute.Int("unitmix.units", len(inferred)))
	passB.End()

	combined := inference.Merge(strictUnits, inferred)

	llmUnits := []models.UnitType{}
	var flags []string
	if len(combined) < expected && e.llm.Enabled() {
		llmCtx, passC := observability.StartSpan(ctx, "unitmix.llm_fallback")
		out := e.llm.Extract(llmCtx, llmfallback.Request{
			Text:          text,
			Metadata:      listing,
			ExpectedUnits: expected,
		}, combined)
		passC.SetAttributes(
			attribute.Int("unitmix.units", len(out.Units)),
			attribute.Bool("unitmix.failed", out.Failed),
		)
		passC.End()

		if out.Failed {
			flags = append(flags, models.FlagLLMFallbackUnavailable)
		}
		if len(out.Units) > 0 {
			flags = append(flags, models.FlagLLMFallbackUsed)
			llmUnits = out.Units
			combined = inference.Merge(combined, out.Units)
		}
	}

	_, resolveSpan := observability.StartSpan(ctx, "unitmix.resolve")
	res := e.resolver.Resolve(resolver.Input{
		Strict:        strictUnits,
		Combined:      combined,
		ExpectedUnits: expected,
		StatedTotal:   stated,
		Text:          text,
	})
	res.Flags = models.MergeFlags(res.Flags, flags...)

	report := e.underwriter.Evaluate(res)
	if !report.Passed {
		res.FinalMix = report.Adjusted
		res.ReviewRequired = true
		res.Flags = models.MergeFlags(res.Flags, models.FlagUnderwritingAdjusted, models.FlagReviewRequired)
		if stated != nil && models.SumBeds(res.FinalMix) != *stated {
			res.Flags = models.MergeFlags(res.Flags, models.FlagBedroomCountMismatch)
		}
	}
	resolveSpan.SetAttributes(
		attribute.String("unitmix.source", string(res.Source)),
		attribute.Bool("unitmix.review_required", res.ReviewRequired),
	)
	resolveSpan.End()

	for _, f := range resolver.Validate(res, expected, stated) {
		e.logger.Warn("mix validation finding", map[string]interface{}{
			"severity": string(f.Severity),
			"code":     f.Code,
			"unitId":   f.UnitID,
			"message":  f.Message,
		})
	}

	e.logger.Info("unit mix resolved", map[string]interface{}{
		"expectedUnits":  expected,
		"source":         string(res.Source),
		"reviewRequired": res.ReviewRequired,
		"flags":          res.Flags,
		"score":          report.Score,
	})

	return &models.ExtractionResult{
		Units:                 expected,
		TotalBeds:             stated,
		UnitBreakdownStrict:   strictUnits,
		UnitBreakdownInferred: inferred,
		UnitBreakdownLLM:      llmUnits,
		MixResolution:         res,
		Underwriting:          report.Summary(),
	}, nil
}

// BoundedText joins the listing's free-text fields and caps the result at
// maxChars characters.
func BoundedText(listing models.ListingMetadata, maxChars int) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{listing.Description, listing.Remarks, listing.PropertyType, listing.Style} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return patterns.BoundText(strings.Join(parts, "\n"), maxChars)
}

// expectedUnits prefers the hint, then type/style vocabulary, then a single
// unit. Description text never sets the count.
func (e *Extractor) expectedUnits(listing models.ListingMetadata) int {
	if listing.Units != nil {
		return *listing.Units
	}
	if n, ok := strict.UnitCountFromType(listing.PropertyType + " " + listing.Style); ok {
		return n
	}
	return 1
}

func (e *Extractor) statedTotal(listing models.ListingMetadata, text string) *int {
	if listing.Bedrooms != nil {
		if b := *listing.Bedrooms; b >= 0 && b <= models.MaxStatedTotal {
			return &b
		}
		e.logger.Warn("ignoring out-of-range bedrooms hint", map[string]interface{}{
			"bedrooms": *listing.Bedrooms,
		})
	}
	return e.strict.TotalBedrooms(text)
}
