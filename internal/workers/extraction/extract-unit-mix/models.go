// internal/workers/extraction/extract-unit-mix/models.go
package extractunitmix

import "listing-unitmix/internal/models"

type Input struct {
	ListingID string                 `json:"listingId"`
	Listing   models.ListingMetadata `json:"listing"`
}

// Output is written back to the process instance.
type Output struct {
	ListingID  string                   `json:"listingId"`
	RunID      string                   `json:"runId"`
	Extraction *models.ExtractionResult `json:"extraction"`
	Cached     bool                     `json:"cached"`
}
