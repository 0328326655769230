// internal/unitmix/llmfallback/extractor.go
package llmfallback

import (
	"context"
	"errors"
	"strings"
	"time"

	"listing-unitmix/internal/common/logger"
	"listing-unitmix/internal/models"
	"listing-unitmix/internal/unitmix/patterns"
)

const component = "llm-fallback"

var (
	// ErrUnavailable is returned by clients that cannot serve a request.
	ErrUnavailable = errors.New("LLM_FALLBACK_UNAVAILABLE")
)

// Request is what the language model sees.
type Request struct {
	Text          string                 `json:"text"`
	Metadata      models.ListingMetadata `json:"metadata"`
	ExpectedUnits int                    `json:"expectedUnits"`
	KnownUnitIDs  []string               `json:"knownUnitIds"`
}

// Candidate is one unit proposed by the model. Nothing is trusted until it
// passes validation.
type Candidate struct {
	UnitID         string `json:"unit_id"`
	Beds           int    `json:"beds"`
	Confidence     string `json:"confidence,omitempty"`
	AssumptionCode string `json:"assumption_code,omitempty"`
	Citation       string `json:"citation"`
}

// Client is the language-understanding capability.
type Client interface {
	ExtractUnits(ctx context.Context, req Request) ([]Candidate, error)
}

// Outcome reports what Pass C did.
type Outcome struct {
	Attempted bool
	Failed    bool
	Units     []models.UnitType
	Rejected  int
}

type Extractor struct {
	client  Client
	timeout time.Duration
	logger  logger.Logger
}

// New returns an Extractor. A nil client disables the pass.
func New(client Client, timeout time.Duration, log logger.Logger) *Extractor {
	return &Extractor{
		client:  client,
		timeout: timeout,
		logger: log.With(map[string]interface{}{
			"component": component,
		}),
	}
}

func (e *Extractor) Enabled() bool {
	return e != nil && e.client != nil
}

// Extract asks the client for a breakdown and returns only validated units for
// ids not already in known. It never returns an error; failures degrade to an
// empty outcome.
func (e *Extractor) Extract(ctx context.Context, req Request, known []models.UnitType) Outcome {
	if !e.Enabled() {
		return Outcome{Units: []models.UnitType{}}
	}

	claimed := make(map[string]struct{}, len(known))
	req.KnownUnitIDs = make([]string, 0, len(known))
	for _, u := range known {
		claimed[u.UnitID] = struct{}{}
		req.KnownUnitIDs = append(req.KnownUnitIDs, u.UnitID)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	candidates, err := e.client.ExtractUnits(ctx, req)
	if err != nil {
		fields := map[string]interface{}{
			"error": err.Error(),
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			fields["timeout"] = e.timeout.String()
		}
		e.logger.Warn("llm fallback unavailable, continuing without it", fields)
		return Outcome{Attempted: true, Failed: true, Units: []models.UnitType{}}
	}

	units := make([]models.UnitType, 0, len(candidates))
	rejected := 0
	for _, c := range candidates {
		u, reason, ok := validate(c, req.Text, req.ExpectedUnits)
		if !ok {
			rejected++
			e.logger.Warn("rejecting llm candidate", map[string]interface{}{
				"unitId": c.UnitID,
				"beds":   c.Beds,
				"reason": reason,
			})
			continue
		}
		if _, taken := claimed[u.UnitID]; taken {
			continue
		}
		claimed[u.UnitID] = struct{}{}
		units = append(units, u)
	}

	e.logger.Info("llm fallback complete", map[string]interface{}{
		"candidates": len(candidates),
		"accepted":   len(units),
		"rejected":   rejected,
	})
	return Outcome{Attempted: true, Units: models.SortUnits(units), Rejected: rejected}
}

// validate applies the acceptance checks: a canonical id within the expected
// count, beds in range, and a citation that is a literal span of text.
func validate(c Candidate, text string, expectedUnits int) (models.UnitType, string, bool) {
	id, ok := patterns.NormalizeUnitRef(c.UnitID)
	if !ok {
		return models.UnitType{}, "unrecognised unit id", false
	}
	if expectedUnits > 0 && models.UnitPosition(id) > expectedUnits {
		return models.UnitType{}, "unit beyond expected count", false
	}
	if !models.ValidBeds(c.Beds) {
		return models.UnitType{}, "beds out of range", false
	}
	citation := strings.TrimSpace(c.Citation)
	if citation == "" || !strings.Contains(text, citation) {
		return models.UnitType{}, "citation not found in text", false
	}

	conf := models.ConfidenceMedium
	if models.Confidence(strings.ToUpper(c.Confidence)) == models.ConfidenceLow {
		conf = models.ConfidenceLow
	}
	code := c.AssumptionCode
	if code == "" {
		code = models.AssumptionLLMExtracted
	}
	return models.NewUnit(id, c.Beds, conf, models.SourceLLM, code, models.TruncateCitation(citation)), "", true
}
