// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"portfolio-assistant/internal/domain"
)

// Config holds all application configuration. Environment variables are read
// only by Load.
type Config struct {
	Port           int      `validate:"gt=0,lte=65535"`
	AllowedOrigins []string `validate:"min=1,dive,required"`

	// ParamPrefix enables SSM lookups for credentials that are not set
	// directly in the environment.
	ParamPrefix    string
	PortfolioPath  string
	PortfolioParam string
	ExchangeTable  string

	Enhancer  Upstream
	Generator Upstream
	Persona   domain.Persona
}

// Upstream configures one OpenAI-compatible completion dependency and the
// circuit breaker guarding it.
type Upstream struct {
	Name        string        `validate:"required"`
	APIKey      string        `validate:"-"`
	TokenParam  string        // SSM parameter holding {"token": "..."}
	BaseURL     string        `validate:"required,url"`
	Model       string        `validate:"required"`
	Timeout     time.Duration `validate:"gt=0"`
	MaxTokens   int           `validate:"gt=0"`
	Temperature float64       `validate:"gte=0,lte=2"`
	TopP        float64       `validate:"gte=0,lte=1"` // 0 leaves the provider default

	BreakerThreshold int           `validate:"gt=0"`
	BreakerReset     time.Duration `validate:"gte=0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	prefix := strings.TrimRight(strings.TrimSpace(getEnv("PARAM_PREFIX", "")), "/")

	cfg := &Config{
		Port:           getEnvInt("PORT", 8080),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ParamPrefix:    prefix,
		PortfolioPath:  getEnv("PORTFOLIO_DATA_PATH", "data/data.json"),
		PortfolioParam: getEnv("PORTFOLIO_DATA_PARAM", ""),
		ExchangeTable:  getEnv("EXCHANGE_TABLE", ""),
		Enhancer: Upstream{
			Name:             "enhancer",
			APIKey:           getEnv("ENHANCER_API_KEY", ""),
			TokenParam:       tokenParam(prefix, "ENHANCER_TOKEN_PARAM", "enhancer-token"),
			BaseURL:          getEnv("ENHANCER_BASE_URL", "https://api.fireworks.ai/inference/v1"),
			Model:            getEnv("ENHANCER_MODEL", "accounts/fireworks/models/llama-v3p1-405b-instruct"),
			Timeout:          getEnvDuration("ENHANCER_TIMEOUT", 10*time.Second),
			MaxTokens:        getEnvInt("ENHANCER_MAX_TOKENS", 150),
			Temperature:      getEnvFloat("ENHANCER_TEMPERATURE", 0.3),
			TopP:             getEnvFloat("ENHANCER_TOP_P", 0),
			BreakerThreshold: getEnvInt("ENHANCER_BREAKER_THRESHOLD", 2),
			BreakerReset:     getEnvDuration("ENHANCER_BREAKER_RESET", 30*time.Second),
		},
		Generator: Upstream{
			Name:             "generator",
			APIKey:           getEnv("GENERATOR_API_KEY", ""),
			TokenParam:       tokenParam(prefix, "GENERATOR_TOKEN_PARAM", "generator-token"),
			BaseURL:          getEnv("GENERATOR_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:            getEnv("GENERATOR_MODEL", "llama3-70b-8192"),
			Timeout:          getEnvDuration("GENERATOR_TIMEOUT", 15*time.Second),
			MaxTokens:        getEnvInt("GENERATOR_MAX_TOKENS", 1500),
			Temperature:      getEnvFloat("GENERATOR_TEMPERATURE", 0.7),
			TopP:             getEnvFloat("GENERATOR_TOP_P", 0.9),
			BreakerThreshold: getEnvInt("GENERATOR_BREAKER_THRESHOLD", 3),
			BreakerReset:     getEnvDuration("GENERATOR_BREAKER_RESET", 60*time.Second),
		},
		Persona: domain.Persona{
			AssistantName: getEnv("ASSISTANT_NAME", ""),
			OwnerName:     getEnv("OWNER_NAME", ""),
			Email:         getEnv("OWNER_EMAIL", ""),
			Phone:         getEnv("OWNER_PHONE", ""),
			LinkedIn:      getEnv("OWNER_LINKEDIN", ""),
			GitHub:        getEnv("OWNER_GITHUB", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks field ranges and required values.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func tokenParam(prefix, key, suffix string) string {
	if v := getEnv(key, ""); v != "" {
		return v
	}
	if prefix == "" {
		return ""
	}
	return prefix + "/" + suffix
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

// getEnvDuration accepts Go duration strings ("30s") or plain seconds ("30").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
