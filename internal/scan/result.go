package scan

import (
	"fmt"
	"os"
	"strings"
)

// Result is the classification outcome returned by the scan endpoint.
// It is never mutated after it has been parsed.
type Result struct {
	Detected    bool     `json:"detected"`
	Label       string   `json:"label"`
	Confidence  float64  `json:"confidence"`
	Suggestions []string `json:"suggestions"`
}

// RequestError reports a failed scan submission. Status is the HTTP status
// code for non-2xx responses and zero for transport or parse failures.
type RequestError struct {
	Status int
	Reason string
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("scan request failed: status %d", e.Status)
	}
	return "scan request failed: " + e.Reason
}

// DefaultBaseURL is used when no endpoint override is configured.
const DefaultBaseURL = "http://localhost:8090"

// ResolveBaseURL returns the scan endpoint base URL, preferring the
// SCAN_API_URL environment variable over the localhost default.
func ResolveBaseURL() string {
	if v := os.Getenv("SCAN_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return DefaultBaseURL
}
