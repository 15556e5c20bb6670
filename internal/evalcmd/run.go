package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ecolens/binscan/internal/classify"
	"github.com/ecolens/binscan/internal/eval/dataset"
	"github.com/ecolens/binscan/internal/eval/metrics"
	"github.com/ecolens/binscan/internal/eval/results"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command for evaluating classifier accuracy
func NewRunCmd() *cobra.Command {
	var datasetPath string
	var sampleSize int
	var provider string
	var model string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate classifier accuracy against a labeled dataset",
		Long: `Runs every sample of a labeled waste dataset through the configured
vision-LLM provider and measures classification accuracy.

The dataset is a Parquet or JSONL file of records with id, image_path, and
label columns; image paths are resolved relative to the dataset file.`,
		Example: `  # Evaluate 10 samples with Ollama
  binscan eval run --dataset ./waste-bench/test.parquet --sample 10

  # Evaluate the full dataset with OpenAI
  binscan eval run --dataset ./waste-bench/test.jsonl --sample -1 --provider openai --model gpt-4o`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", datasetPath)
			}
			return executeRun(cmd.Context(), datasetPath, sampleSize, provider, model, concurrency)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "./waste-bench/test.jsonl", "Path to labeled dataset file (.parquet or .jsonl)")
	cmd.Flags().IntVar(&sampleSize, "sample", 10, "Number of records to evaluate (-1 for all)")
	cmd.Flags().StringVar(&provider, "provider", "ollama", "Classification provider (ollama, openai, gemini)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (provider default when empty)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 3, "Number of concurrent classifications")

	return cmd
}

func executeRun(ctx context.Context, datasetPath string, sampleSize int, provider, model string, concurrency int) error {
	slog.Info("Starting evaluation run", "dataset", datasetPath, "provider", provider, "model", model)

	loader := dataset.NewLoader(datasetPath)
	records, err := loader.LoadSample(sampleSize)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "records", len(records))

	classifier := classify.NewService()

	slog.Info("Processing records", "concurrency", concurrency)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)
	resultsChan := make(chan metrics.RecordResult, len(records))

	for i, record := range records {
		wg.Add(1)
		go func(idx int, record dataset.WasteRecord) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Info("Processing record", "id", record.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(records)))
			resultsChan <- processRecord(ctx, classifier, loader.Dir(), record, provider, model)
		}(i, record)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	recordResults := make([]metrics.RecordResult, 0, len(records))
	for result := range resultsChan {
		recordResults = append(recordResults, result)
	}

	summary := metrics.Aggregate(recordResults, provider, model)

	if err := results.SaveToYAML(datasetPath, sampleSize, summary, recordResults); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	summary.PrintSummary()
	return nil
}

func processRecord(ctx context.Context, classifier *classify.Service, baseDir string, record dataset.WasteRecord, provider, model string) metrics.RecordResult {
	result := metrics.RecordResult{
		ID:       record.ID,
		Expected: record.ExpectedLabel(),
	}

	imagePath := record.ImagePath
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(baseDir, imagePath)
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read image: %v", err)
		return result
	}

	start := time.Now()
	scanResult, err := classifier.Classify(ctx, imageData, provider, model)
	result.ProcessingTime = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Predicted = scanResult.Label
	result.Confidence = scanResult.Confidence
	return result
}
