package dataset

import "strings"

// WasteRecord is one labeled sample of a waste-classification dataset:
// a photographed item and the bin it belongs in.
type WasteRecord struct {
	// ID uniquely identifies the sample.
	ID string `json:"id" parquet:"id"`

	// ImagePath points at the sample image, relative to the dataset file.
	ImagePath string `json:"image_path" parquet:"image_path"`

	// Label is the ground-truth category (Organic, Recyclable, Hazardous,
	// Landfill).
	Label string `json:"label" parquet:"label"`

	// Material is an optional free-text description of the item.
	Material string `json:"material,omitempty" parquet:"material,optional"`
}

// ExpectedLabel returns the ground-truth label normalized for comparison.
func (r *WasteRecord) ExpectedLabel() string {
	return strings.TrimSpace(r.Label)
}
