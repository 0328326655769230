// internal/models/listing.go
package models

// ListingMetadata is the record handed over by listing ingestion. Every field is optional.
type ListingMetadata struct {
	Description  string   `json:"description,omitempty"`
	Remarks      string   `json:"remarks,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`
	Style        string   `json:"style,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *float64 `json:"bathrooms,omitempty"`
	Units        *int     `json:"units,omitempty"`
}

// IntPtr is a small helper for building optional hints.
func IntPtr(v int) *int {
	return &v
}
