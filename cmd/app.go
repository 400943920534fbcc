package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"portfolio-assistant/handler"
	"portfolio-assistant/internal/breaker"
	"portfolio-assistant/internal/config"
	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/integrations/openai"
	"portfolio-assistant/internal/integrations/paramstore"
	"portfolio-assistant/internal/portfolio"
	"portfolio-assistant/internal/repository"
	"portfolio-assistant/internal/rulebased"
	"portfolio-assistant/internal/usecase"
)

// app holds the wired components shared by every command.
type app struct {
	cfg       *config.Config
	service   *usecase.ChatService
	handler   *handler.Handler
	exchanges *repository.Client // nil when EXCHANGE_TABLE is unset
}

func newApp(ctx context.Context) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// ---- AWS clients, only when something needs them ----
	var (
		params    *paramstore.Client
		exchanges *repository.Client
	)
	if needsAWS(cfg) {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		if needsSSM(cfg) {
			params, err = paramstore.New(awsssm.NewFromConfig(awsCfg))
			if err != nil {
				return nil, fmt.Errorf("create SSM client: %w", err)
			}
		}
		if cfg.ExchangeTable != "" {
			exchanges, err = repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.ExchangeTable)
			if err != nil {
				return nil, fmt.Errorf("create exchange log client: %w", err)
			}
		}
	}

	if params != nil {
		if err := params.Prefetch(ctx, parameterNames(cfg)...); err != nil {
			// Each lookup below retries individually.
			slog.Warn("failed to prefetch parameters", "err", err)
		}
		isNotFound := func(err error) bool { return errors.Is(err, paramstore.ErrNotFound) }
		if err := cfg.ResolveCredentials(ctx, params, isNotFound); err != nil {
			// Upstreams without a key report unavailable; the pipeline still answers.
			slog.Error("failed to resolve upstream credentials", "err", err)
		}
	}

	// ---- Portfolio data (absence is not fatal) ----
	data := loadPortfolio(ctx, cfg, params)
	persona := cfg.Persona.Complete(data)

	// ---- Pipeline ----
	enhancerBreaker, err := breaker.New(cfg.Enhancer.Name, cfg.Enhancer.BreakerThreshold, cfg.Enhancer.BreakerReset)
	if err != nil {
		return nil, err
	}
	generatorBreaker, err := breaker.New(cfg.Generator.Name, cfg.Generator.BreakerThreshold, cfg.Generator.BreakerReset)
	if err != nil {
		return nil, err
	}

	enhancerClient, err := newCompletionClient(cfg.Enhancer)
	if err != nil {
		return nil, err
	}
	generatorClient, err := newCompletionClient(cfg.Generator)
	if err != nil {
		return nil, err
	}

	enhancer, err := usecase.NewEnhancer(enhancerClient, persona, modelSettings(cfg.Enhancer))
	if err != nil {
		return nil, err
	}
	generator, err := usecase.NewGenerator(generatorClient, data, persona, modelSettings(cfg.Generator))
	if err != nil {
		return nil, err
	}

	deps := usecase.ChatDeps{
		Enhancer:         enhancer,
		Generator:        generator,
		Responder:        rulebased.New(data, persona),
		EnhancerBreaker:  enhancerBreaker,
		GeneratorBreaker: generatorBreaker,
		AssistantName:    persona.AssistantName,
	}
	if exchanges != nil {
		deps.Exchanges = exchanges
	}
	service, err := usecase.NewChatService(deps)
	if err != nil {
		return nil, fmt.Errorf("create chat service: %w", err)
	}

	h, err := handler.NewHandler(service, handler.WithAllowedOrigins(cfg.AllowedOrigins))
	if err != nil {
		return nil, fmt.Errorf("create handler: %w", err)
	}

	slog.Info("portfolio assistant ready",
		"enhancer_available", enhancer.Available(),
		"generator_available", generator.Available(),
		"portfolio_loaded", data != nil,
		"exchange_log", exchanges != nil,
	)
	return &app{cfg: cfg, service: service, handler: h, exchanges: exchanges}, nil
}

// parameterNames lists the SSM parameters this configuration reads.
func parameterNames(cfg *config.Config) []string {
	var names []string
	for _, up := range []config.Upstream{cfg.Enhancer, cfg.Generator} {
		if up.APIKey == "" && up.TokenParam != "" {
			names = append(names, up.TokenParam)
		}
	}
	if cfg.PortfolioParam != "" {
		names = append(names, cfg.PortfolioParam)
	}
	return names
}

func needsSSM(cfg *config.Config) bool {
	return len(parameterNames(cfg)) > 0
}

func needsAWS(cfg *config.Config) bool {
	return needsSSM(cfg) || cfg.ExchangeTable != ""
}

// loadPortfolio prefers the SSM parameter and falls back to the local file.
func loadPortfolio(ctx context.Context, cfg *config.Config, params *paramstore.Client) *domain.Portfolio {
	if params != nil && cfg.PortfolioParam != "" {
		data, err := portfolio.LoadParameter(ctx, params, cfg.PortfolioParam)
		if err == nil {
			return data
		}
		slog.Warn("failed to load portfolio from parameter store", "name", cfg.PortfolioParam, "err", err)
	}
	if cfg.PortfolioPath == "" {
		return nil
	}
	data, err := portfolio.LoadFile(cfg.PortfolioPath)
	if err != nil {
		slog.Warn("portfolio data unavailable, rule-based replies use static text", "path", cfg.PortfolioPath, "err", err)
		return nil
	}
	return data
}

func newCompletionClient(up config.Upstream) (*openai.Client, error) {
	c, err := openai.NewClient(up.Name, up.APIKey,
		openai.WithBaseURL(up.BaseURL),
		openai.WithTimeout(up.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", up.Name, err)
	}
	return c, nil
}

func modelSettings(up config.Upstream) usecase.ModelSettings {
	return usecase.ModelSettings{
		Model:       up.Model,
		MaxTokens:   up.MaxTokens,
		Temperature: up.Temperature,
		TopP:        up.TopP,
		Timeout:     up.Timeout,
	}
}
