// File: internal/services/completion/config.go
package completion

import (
	"fmt"
	"time"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	MaxTokens   int
	Temperature float32
	TopP        float32

	// HistoryWindow is how many trailing prior messages go with each request.
	HistoryWindow int
	Timeout       time.Duration
	// RatePerMinute throttles outgoing requests; zero disables throttling.
	RatePerMinute int
}

func DefaultConfig() *Config {
	return &Config{
		Model:         "gpt-4",
		MaxTokens:     500,
		Temperature:   0.7,
		TopP:          1,
		HistoryWindow: 15,
		Timeout:       60 * time.Second,
		RatePerMinute: 30,
	}
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("completion model is required")
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("history window must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RatePerMinute < 0 {
		return fmt.Errorf("rate per minute cannot be negative")
	}
	return nil
}
