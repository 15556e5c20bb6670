package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ecolens/binscan/internal/gemini"
	"github.com/ecolens/binscan/internal/ollama"
	"github.com/ecolens/binscan/internal/openai"
	"github.com/ecolens/binscan/internal/providers"
	"github.com/ecolens/binscan/internal/report"
	"github.com/ecolens/binscan/internal/scan"
)

// Service classifies waste images through a configured vision-LLM provider.
// It backs the hosted /api/scan endpoint and the eval runs.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Classify runs the image through the provider and parses the structured
// classification.
func (s *Service) Classify(ctx context.Context, imageData []byte, provider, model string) (*scan.Result, error) {
	if provider == "" {
		provider = os.Getenv("SCAN_PROVIDER")
		if provider == "" {
			provider = "ollama"
		}
	}
	if model == "" {
		model = defaultModel(provider)
	}

	p, err := providerFor(provider)
	if err != nil {
		return nil, err
	}

	raw, err := p.Analyze(ctx, providers.Config{
		Model:       model,
		Temperature: 0.1,
		Prompt:      buildClassifyPrompt(),
		Image:       imageData,
	})
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	result, err := extractResult(raw)
	if err != nil {
		return nil, err
	}

	slog.Info("Image classified", "provider", provider, "model", model, "label", result.Label, "confidence", result.Confidence)
	return result, nil
}

func providerFor(name string) (providers.Provider, error) {
	switch name {
	case "ollama":
		return ollama.New(), nil
	case "openai":
		return openai.New(), nil
	case "gemini":
		return gemini.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		if model := os.Getenv("OPENAI_MODEL"); model != "" {
			return model
		}
		return "gpt-4o"
	case "gemini":
		if model := os.Getenv("GEMINI_MODEL"); model != "" {
			return model
		}
		return "gemini-1.5-flash"
	case "ollama":
		if model := os.Getenv("OLLAMA_MODEL"); model != "" {
			return model
		}
		return "llava:13b"
	default:
		return ""
	}
}

// buildClassifyPrompt asks the provider for exactly the JSON shape the scan
// endpoint promises to its clients.
func buildClassifyPrompt() string {
	return fmt.Sprintf(`You are a waste-sorting assistant. Look at the photographed item and decide how it should be disposed of.

INSTRUCTIONS:
1. Identify the most prominent discardable item in the image.
2. Classify it into exactly one of these categories: %s.
3. Estimate your confidence as a number between 0 and 1.
4. Offer one to three short, practical disposal suggestions.
5. If no discardable item is visible, set "detected" to false and leave the other fields at sensible defaults.

OUTPUT FORMAT:
Respond with ONLY a JSON object:

{
  "detected": true,
  "label": "Organic",
  "confidence": 0.87,
  "suggestions": ["Compost this item"]
}

Do not add commentary outside the JSON object.`, strings.Join(report.Labels, ", "))
}

// extractResult parses the provider output, tolerating markdown code fences
// around the JSON object.
func extractResult(response string) (*scan.Result, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var result scan.Result
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		slog.Warn("Provider returned unparseable classification", "error", err)
		return nil, fmt.Errorf("failed to parse classification response: %w", err)
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	return &result, nil
}
