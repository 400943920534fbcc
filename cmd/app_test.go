package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-assistant/internal/config"
)

func TestParameterNames(t *testing.T) {
	cfg := &config.Config{
		PortfolioParam: "/p/portfolio",
		Enhancer:       config.Upstream{TokenParam: "/p/enhancer-token"},
		Generator:      config.Upstream{APIKey: "gq-1", TokenParam: "/p/generator-token"},
	}
	require.Equal(t, []string{"/p/enhancer-token", "/p/portfolio"}, parameterNames(cfg))
	require.True(t, needsSSM(cfg))
	require.True(t, needsAWS(cfg))
}

func TestNeedsAWS(t *testing.T) {
	cfg := &config.Config{
		Enhancer:  config.Upstream{APIKey: "fw-1", TokenParam: "/p/enhancer-token"},
		Generator: config.Upstream{APIKey: "gq-1"},
	}
	require.Empty(t, parameterNames(cfg))
	require.False(t, needsSSM(cfg))
	require.False(t, needsAWS(cfg))

	cfg.ExchangeTable = "exchanges"
	require.False(t, needsSSM(cfg))
	require.True(t, needsAWS(cfg))
}

func TestModelSettings(t *testing.T) {
	up := config.Upstream{
		Model:       "llama-3.1-8b-instant",
		MaxTokens:   1500,
		Temperature: 0.7,
		TopP:        0.9,
		Timeout:     15 * time.Second,
	}
	got := modelSettings(up)
	require.Equal(t, up.Model, got.Model)
	require.Equal(t, 1500, got.MaxTokens)
	require.InDelta(t, 0.7, got.Temperature, 1e-9)
	require.InDelta(t, 0.9, got.TopP, 1e-9)
	require.Equal(t, 15*time.Second, got.Timeout)
}

func TestLoadPortfolio_MissingFileIsNotFatal(t *testing.T) {
	cfg := &config.Config{PortfolioPath: t.TempDir() + "/missing.json"}
	require.Nil(t, loadPortfolio(t.Context(), cfg, nil))

	cfg.PortfolioPath = ""
	require.Nil(t, loadPortfolio(t.Context(), cfg, nil))
}
