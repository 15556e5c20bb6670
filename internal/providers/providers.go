package providers

import (
	"context"
)

// Config represents the configuration for a vision-LLM provider call
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	Image       []byte
}

// Provider defines the interface for a vision-LLM provider
type Provider interface {
	Analyze(ctx context.Context, config Config) (string, error)
}
