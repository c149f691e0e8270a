// File: cmd/diagnostic/llm_diagnostic.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iyunix/go-onyom/internal/app"
	"github.com/iyunix/go-onyom/internal/config"
	"github.com/iyunix/go-onyom/internal/domain"
	"github.com/iyunix/go-onyom/internal/services"
	"github.com/iyunix/go-onyom/internal/services/completion"
)

// Sends one persona turn through the completion bridge and prints the reply.
func main() {
	envFile := flag.String("env", ".env", "env file to load before reading configuration")
	tone := flag.String("tone", string(domain.ToneSupportive), "therapist tone: supportive, analytical or gentle")
	prompt := flag.String("prompt", "I've been feeling overwhelmed lately.", "user message to send")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("Warning: Could not load %s: %v", *envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY not set in environment")
	}

	logger := services.NewLogger("diagnostic")
	if pl, ok := logger.(*services.ProductionLogger); ok {
		pl.SetLevel(services.LogLevelDebug)
	}

	ccfg := app.ProvideCompletionConfig(cfg)
	provider, err := completion.NewOpenAIProvider(ccfg)
	if err != nil {
		log.Fatalf("Provider error: %v", err)
	}
	bridge, err := completion.NewBridge(provider, ccfg, logger)
	if err != nil {
		log.Fatalf("Bridge error: %v", err)
	}

	fmt.Printf("Model: %s  Base URL: %s  Tone: %s\n", ccfg.Model, baseURL(ccfg), *tone)

	start := time.Now()
	reply, err := bridge.Reply(context.Background(), domain.PersonaFor(domain.TherapistTone(*tone)), nil, *prompt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Completion failed after %s: %v\n", time.Since(start).Round(time.Millisecond), err)
		os.Exit(1)
	}
	fmt.Printf("Reply (%s):\n%s\n", time.Since(start).Round(time.Millisecond), reply)
}

func baseURL(c *completion.Config) string {
	if c.BaseURL == "" {
		return "default"
	}
	return c.BaseURL
}
