package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ecolens/binscan/internal/scan"
)

// Labels is the fixed classification set the presenter highlights against.
var Labels = []string{"Organic", "Recyclable", "Hazardous", "Landfill"}

// Document is the exportable scan report.
type Document struct {
	FileName    string    `json:"fileName"`
	Preview     string    `json:"preview"`
	ScannedAt   time.Time `json:"scannedAt"`
	Detected    bool      `json:"detected"`
	Label       string    `json:"label"`
	Confidence  float64   `json:"confidence"`
	Suggestions []string  `json:"suggestions"`
}

// ConfidencePercent converts a [0,1] confidence into a rounded display
// percentage.
func ConfidencePercent(confidence float64) int {
	return int(math.Round(confidence * 100))
}

// ActiveLabel returns the canonical member of the fixed label set matching
// the result, or an empty string for labels outside the set.
func ActiveLabel(res *scan.Result) string {
	if res == nil {
		return ""
	}
	for _, label := range Labels {
		if strings.EqualFold(label, res.Label) {
			return label
		}
	}
	return ""
}

// Build assembles the export document from the session's source file,
// preview reference, and result. The controller never enters the result
// mode without a result, so res is always non-nil here.
func Build(fileName, preview string, res *scan.Result, scannedAt time.Time) Document {
	suggestions := res.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return Document{
		FileName:    fileName,
		Preview:     preview,
		ScannedAt:   scannedAt,
		Detected:    res.Detected,
		Label:       res.Label,
		Confidence:  res.Confidence,
		Suggestions: suggestions,
	}
}

// ExportName returns the collision-free download name for a report
// generated at t.
func ExportName(t time.Time) string {
	return fmt.Sprintf("scan-report-%d.json", t.UnixMilli())
}

// Marshal serializes the document as indented JSON.
func Marshal(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// Save writes the report into dir and returns the written path.
func Save(dir string, doc Document) (string, error) {
	data, err := Marshal(doc)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, ExportName(doc.ScannedAt))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
