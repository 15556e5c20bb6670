package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJSONL(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.jsonl")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	path := "./waste-bench/test.jsonl"
	loader := NewLoader(path)

	if loader.datasetPath != path {
		t.Errorf("Expected path %s, got %s", path, loader.datasetPath)
	}
	if loader.Dir() != "waste-bench" {
		t.Errorf("Expected dir waste-bench, got %s", loader.Dir())
	}
}

func TestLoadJSONL(t *testing.T) {
	path := writeJSONL(t,
		`{"id":"w1","image_path":"images/banana.jpg","label":"Organic"}`,
		``,
		`{"id":"w2","image_path":"images/bottle.jpg","label":"Recyclable","material":"PET plastic"}`,
	)

	records, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records (blank lines skipped), got %d", len(records))
	}
	if records[0].ID != "w1" || records[0].Label != "Organic" {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[1].Material != "PET plastic" {
		t.Errorf("Expected material carried through, got %+v", records[1])
	}
}

func TestLoadJSONLInvalidLine(t *testing.T) {
	path := writeJSONL(t, `{"id":"w1"`, `{"id":"w2"}`)
	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for malformed JSON line")
	}
}

func TestLoadSampleLimits(t *testing.T) {
	path := writeJSONL(t,
		`{"id":"w1","image_path":"a.jpg","label":"Organic"}`,
		`{"id":"w2","image_path":"b.jpg","label":"Landfill"}`,
		`{"id":"w3","image_path":"c.jpg","label":"Hazardous"}`,
	)
	loader := NewLoader(path)

	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"limited", 2, 2},
		{"limit above size", 10, 3},
		{"all records", -1, 3},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := loader.LoadSample(tt.limit)
			if err != nil {
				t.Fatalf("LoadSample failed: %v", err)
			}
			if len(records) != tt.expected {
				t.Errorf("Expected %d records, got %d", tt.expected, len(records))
			}
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := NewLoader("./data.csv").Load(); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestExpectedLabel(t *testing.T) {
	record := WasteRecord{Label: "  Organic "}
	if got := record.ExpectedLabel(); got != "Organic" {
		t.Errorf("Expected trimmed label, got %q", got)
	}
}
