// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string

	JWTSecretKey             string
	TokenTTL                 time.Duration
	RequireEmailVerification bool

	// Completion service
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	CompletionModel       string
	CompletionHistory     int // trailing turns sent with each request
	CompletionTimeout     time.Duration
	CompletionRatePerMin  int
	CompletionMaxTokens   int
	CompletionTemperature float32

	// Upper bounds on remote calls
	IdentityTimeout time.Duration
	ProfileTimeout  time.Duration
	StoreTimeout    time.Duration
}

// Load reads configuration from environment variables or .env file.
func Load() (*Config, error) {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:               getEnv("SERVER_PORT", "8080"),
		DBPath:                   getEnv("DB_PATH", "onyom.db"),
		Environment:              env,
		JWTSecretKey:             getEnv("JWT_SECRET_KEY", ""),
		TokenTTL:                 getEnvAsDuration("TOKEN_TTL", 7*24*time.Hour),
		RequireEmailVerification: getEnvAsBool("REQUIRE_EMAIL_VERIFICATION", true),
		OpenAIAPIKey:             getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:            getEnv("OPENAI_BASE_URL", ""),
		CompletionModel:          getEnv("COMPLETION_MODEL", "gpt-4"),
		CompletionHistory:        getEnvAsInt("COMPLETION_HISTORY_WINDOW", 15),
		CompletionTimeout:        getEnvAsDuration("COMPLETION_TIMEOUT", 60*time.Second),
		CompletionRatePerMin:     getEnvAsInt("COMPLETION_RATE_PER_MINUTE", 30),
		CompletionMaxTokens:      getEnvAsInt("COMPLETION_MAX_TOKENS", 500),
		CompletionTemperature:    0.7,
		IdentityTimeout:          getEnvAsDuration("IDENTITY_TIMEOUT", 10*time.Second),
		ProfileTimeout:           getEnvAsDuration("PROFILE_TIMEOUT", 15*time.Second),
		StoreTimeout:             getEnvAsDuration("STORE_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks bounds everywhere and required secrets in production.
func (c *Config) Validate() error {
	if c.CompletionHistory <= 0 {
		return fmt.Errorf("COMPLETION_HISTORY_WINDOW must be > 0")
	}
	for name, d := range map[string]time.Duration{
		"IDENTITY_TIMEOUT":   c.IdentityTimeout,
		"PROFILE_TIMEOUT":    c.ProfileTimeout,
		"STORE_TIMEOUT":      c.StoreTimeout,
		"COMPLETION_TIMEOUT": c.CompletionTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.IsProduction() {
		missing := []string{}
		if c.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required production environment variables: %v", missing)
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(strValue))
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
