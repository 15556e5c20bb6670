package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ecolens/binscan/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	DatasetPath string `yaml:"datasetpath"`
	SampleSize  int    `yaml:"samplesize"`
	Timestamp   string `yaml:"timestamp"`
}

// EvalSummary represents the aggregate section of the eval YAML
type EvalSummary struct {
	TotalRecords   int                `yaml:"totalrecords"`
	SuccessCount   int                `yaml:"successcount"`
	FailureCount   int                `yaml:"failurecount"`
	CorrectCount   int                `yaml:"correctcount"`
	Accuracy       float64            `yaml:"accuracy"`
	MeanConfidence float64            `yaml:"meanconfidence"`
	LabelAccuracy  map[string]float64 `yaml:"labelaccuracy"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier string  `yaml:"identifier"`
	Expected   string  `yaml:"expected"`
	Predicted  string  `yaml:"predicted"`
	Confidence float64 `yaml:"confidence"`
	Correct    bool    `yaml:"correct"`
	Error      string  `yaml:"error,omitempty"`
}

// EvalSpec represents the complete evaluation specification
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// SaveToYAML saves evaluation results to a YAML file in evals/ directory
func SaveToYAML(datasetPath string, sampleSize int, summary *metrics.Summary, results []metrics.RecordResult) error {
	if err := os.MkdirAll("evals", 0755); err != nil {
		return fmt.Errorf("failed to create evals directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")

	labelAccuracy := make(map[string]float64, len(summary.PerLabel))
	for label, stats := range summary.PerLabel {
		labelAccuracy[label] = stats.Accuracy()
	}

	spec := EvalSpec{
		Config: EvalConfig{
			Provider:    summary.Provider,
			Model:       summary.Model,
			DatasetPath: datasetPath,
			SampleSize:  sampleSize,
			Timestamp:   timestamp,
		},
		Summary: EvalSummary{
			TotalRecords:   summary.TotalRecords,
			SuccessCount:   summary.SuccessCount,
			FailureCount:   summary.FailureCount,
			CorrectCount:   summary.CorrectCount,
			Accuracy:       summary.Accuracy,
			MeanConfidence: summary.MeanConfidence,
			LabelAccuracy:  labelAccuracy,
		},
		Results: make([]EvalResult, 0, len(results)),
	}

	for _, r := range results {
		spec.Results = append(spec.Results, EvalResult{
			Identifier: r.ID,
			Expected:   r.Expected,
			Predicted:  r.Predicted,
			Confidence: r.Confidence,
			Correct:    r.Correct(),
			Error:      r.Error,
		})
	}

	filename := fmt.Sprintf("evals/%s-%s.yaml", summary.Model, timestamp)

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	fmt.Printf("\nEvaluation results saved to: %s\n", absPath)

	return nil
}
