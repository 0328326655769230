// internal/workers/extraction/extract-unit-mix/validation.go
package extractunitmix

import "listing-unitmix/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"listingId", "listing"},
		Properties: map[string]validation.Property{
			"listingId": {
				Type:        "string",
				Description: "Identifier of the listing being underwritten",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(128),
			},
			"listing": {
				Type:        "object",
				Description: "Listing metadata from ingestion",
				Properties: map[string]validation.Property{
					"description":  {Type: "string"},
					"remarks":      {Type: "string"},
					"propertyType": {Type: "string", MaxLength: validation.IntPtr(200)},
					"style":        {Type: "string", MaxLength: validation.IntPtr(200)},
					"bedrooms":     {Type: "integer", Description: "Stated bedroom total"},
					"bathrooms":    {Type: "number", Minimum: validation.FloatPtr(0)},
					"units":        {Type: "integer", Description: "Unit count hint"},
				},
			},
		},
	}
}
