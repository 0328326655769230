// internal/unitmix/llmfallback/genai.go
package llmfallback

import (
	"context"
	"encoding/json"
	"fmt"

	"listing-unitmix/internal/common/validation"
	"listing-unitmix/internal/unitmix/patterns"
)

const systemPrompt = `You extract the per-unit bedroom breakdown of a residential listing.
Reply with a JSON object {"units":[...]} and nothing else. Each item has:
unit_id (U1, U2, ...), beds (integer 0-4, 0 means studio), confidence (MEDIUM or LOW),
assumption_code (short UPPER_SNAKE reason), citation (an exact, verbatim span copied from the listing text).
Only report a unit when the text supports it. Never paraphrase a citation.
Skip units listed in knownUnitIds.`

// Completer is the chat capability GenAIClient needs. *genai.Client satisfies it.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string, schema *validation.JSONSchema, out interface{}) error
}

// ResponseSchema is the shape every model reply must have before any item
// is considered.
var ResponseSchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{"units"},
	Properties: map[string]validation.Property{
		"units": {
			Type:     "array",
			MaxItems: validation.IntPtr(patterns.MaxUnitsFromVocabulary),
			Items: &validation.Property{
				Type:     "object",
				Required: []string{"unit_id", "beds", "citation"},
				Properties: map[string]validation.Property{
					"unit_id":         {Type: "string", MinLength: validation.IntPtr(1)},
					"beds":            {Type: "integer"},
					"confidence":      {Type: "string"},
					"assumption_code": {Type: "string"},
					"citation":        {Type: "string"},
				},
			},
		},
	},
}

// GenAIClient implements Client over an OpenAI-compatible chat model.
type GenAIClient struct {
	completer Completer
}

func NewGenAIClient(completer Completer) *GenAIClient {
	return &GenAIClient{completer: completer}
}

func (g *GenAIClient) ExtractUnits(ctx context.Context, req Request) ([]Candidate, error) {
	user, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal llm request: %w", err)
	}

	var reply struct {
		Units []Candidate `json:"units"`
	}
	if err := g.completer.CompleteJSON(ctx, systemPrompt, string(user), &ResponseSchema, &reply); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return reply.Units, nil
}
