package metrics

import (
	"fmt"
	"strings"
	"time"
)

// RecordResult represents the outcome of classifying a single sample
type RecordResult struct {
	ID             string
	Expected       string
	Predicted      string
	Confidence     float64
	ProcessingTime time.Duration
	Error          string // If classification failed
}

// Correct reports whether the prediction matches the ground truth.
func (r *RecordResult) Correct() bool {
	return r.Error == "" && strings.EqualFold(strings.TrimSpace(r.Expected), strings.TrimSpace(r.Predicted))
}

// LabelStats contains statistics for a single ground-truth label
type LabelStats struct {
	Total   int
	Correct int
}

// Accuracy returns the per-label accuracy.
func (s LabelStats) Accuracy() float64 {
	if s.Total == 0 {
		return 0.0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Summary represents aggregated evaluation metrics
type Summary struct {
	TotalRecords int
	SuccessCount int
	FailureCount int
	CorrectCount int

	// Accuracy over successfully classified records
	Accuracy float64

	// MeanConfidence over successfully classified records
	MeanConfidence float64

	// PerLabel statistics keyed by ground-truth label
	PerLabel map[string]LabelStats

	// Timing
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	// Metadata
	EvaluationDate time.Time
	Provider       string
	Model          string
}

// Aggregate computes summary metrics over a set of record results
func Aggregate(results []RecordResult, provider, model string) *Summary {
	summary := &Summary{
		TotalRecords:   len(results),
		PerLabel:       make(map[string]LabelStats),
		EvaluationDate: time.Now(),
		Provider:       provider,
		Model:          model,
	}

	totalConfidence := 0.0
	var totalDuration time.Duration
	var successDuration time.Duration

	for _, result := range results {
		totalDuration += result.ProcessingTime

		if result.Error != "" {
			summary.FailureCount++
			continue
		}

		summary.SuccessCount++
		successDuration += result.ProcessingTime
		totalConfidence += result.Confidence

		label := strings.TrimSpace(result.Expected)
		stats := summary.PerLabel[label]
		stats.Total++
		if result.Correct() {
			stats.Correct++
			summary.CorrectCount++
		}
		summary.PerLabel[label] = stats
	}

	if summary.SuccessCount > 0 {
		summary.Accuracy = float64(summary.CorrectCount) / float64(summary.SuccessCount)
		summary.MeanConfidence = totalConfidence / float64(summary.SuccessCount)
		summary.AverageProcessingTime = successDuration / time.Duration(summary.SuccessCount)
	}
	summary.TotalProcessingTime = totalDuration

	return summary
}

// PrintSummary prints a human-readable summary of the evaluation
func (s *Summary) PrintSummary() {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("BINSCAN EVALUATION SUMMARY")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Evaluation Date: %s\n", s.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Printf("Provider: %s\n", s.Provider)
	fmt.Printf("Model: %s\n", s.Model)
	fmt.Println()

	fmt.Println("PROCESSING STATISTICS")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Total Records: %d\n", s.TotalRecords)
	if s.TotalRecords > 0 {
		fmt.Printf("Successful: %d (%.1f%%)\n", s.SuccessCount, float64(s.SuccessCount)/float64(s.TotalRecords)*100)
		fmt.Printf("Failed: %d (%.1f%%)\n", s.FailureCount, float64(s.FailureCount)/float64(s.TotalRecords)*100)
	}
	fmt.Printf("Average Processing Time: %s\n", s.AverageProcessingTime)
	fmt.Printf("Total Processing Time: %s\n", s.TotalProcessingTime)
	fmt.Println()

	fmt.Println("PER-LABEL ACCURACY")
	fmt.Println(strings.Repeat("-", 70))
	for label, stats := range s.PerLabel {
		fmt.Printf("%-12s %d/%d (%.1f%%)\n", label+":", stats.Correct, stats.Total, stats.Accuracy()*100)
	}
	fmt.Println()

	fmt.Println("OVERALL")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Accuracy: %.2f%% (%d/%d)\n", s.Accuracy*100, s.CorrectCount, s.SuccessCount)
	fmt.Printf("Mean Confidence: %.3f\n", s.MeanConfidence)
	fmt.Println(strings.Repeat("=", 70))
}
