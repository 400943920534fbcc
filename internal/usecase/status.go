package usecase

import (
	"context"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"portfolio-assistant/internal/breaker"
)

const (
	healthHealthy  = "healthy"
	healthDegraded = "degraded"

	probeSuccess = "success"
	probeError   = "error"

	maxProbeOutput = 100
)

var ruleBasedProbes = []string{
	"Hello",
	"What are his skills?",
	"Tell me about projects",
	"How can I contact him?",
}

type UpstreamHealth struct {
	Available      bool   `json:"available"`
	CircuitBreaker string `json:"circuit_breaker"`
	FailureCount   int    `json:"failure_count"`
}

type RuleBasedHealth struct {
	Available           bool `json:"available"`
	PortfolioDataLoaded bool `json:"portfolio_data_loaded"`
}

type ServicesHealth struct {
	Enhancer  UpstreamHealth  `json:"enhancer"`
	Generator UpstreamHealth  `json:"generator"`
	RuleBased RuleBasedHealth `json:"rule_based"`
}

type HealthReport struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  ServicesHealth `json:"services"`
}

type HomeReport struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Services map[string]bool `json:"services"`
}

type ProbeResult struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Result  string            `json:"test_result,omitempty"`
	Results map[string]string `json:"test_results,omitempty"`
}

type SelfTestReport struct {
	Status string                 `json:"status"`
	Tests  map[string]ProbeResult `json:"tests"`
}

// Health reports per-dependency availability and breaker state. The status
// is degraded when the generator breaker is open and no portfolio data is
// loaded.
func (s *ChatService) Health(now time.Time) HealthReport {
	gen := s.generatorBreaker.Snapshot()
	loaded := s.responder.DataLoaded()

	status := healthHealthy
	if gen.State == breaker.StateOpen && !loaded {
		status = healthDegraded
	}
	return HealthReport{
		Status:    status,
		Timestamp: now.UTC().Format(time.RFC3339),
		Services: ServicesHealth{
			Enhancer:  upstreamHealth(s.enhancer.Available(), s.enhancerBreaker.Snapshot()),
			Generator: upstreamHealth(s.generator.Available(), gen),
			RuleBased: RuleBasedHealth{Available: true, PortfolioDataLoaded: loaded},
		},
	}
}

func upstreamHealth(available bool, snap breaker.Snapshot) UpstreamHealth {
	return UpstreamHealth{
		Available:      available,
		CircuitBreaker: snap.State.String(),
		FailureCount:   snap.Failures,
	}
}

// Home is the liveness summary.
func (s *ChatService) Home() HomeReport {
	return HomeReport{
		Status:  healthHealthy,
		Message: s.assistantName + " backend is running",
		Services: map[string]bool{
			"enhancer":   s.enhancer.Available(),
			"generator":  s.generator.Available(),
			"rule_based": true,
		},
	}
}

// SelfTest probes each stage directly, bypassing the circuit breakers.
func (s *ChatService) SelfTest(ctx context.Context) SelfTestReport {
	var enh, gen, rb ProbeResult

	var g errgroup.Group
	g.Go(func() error {
		enh = s.probeEnhancer(ctx)
		return nil
	})
	g.Go(func() error {
		gen = s.probeGenerator(ctx)
		return nil
	})
	g.Go(func() error {
		rb = s.probeRuleBased()
		return nil
	})
	_ = g.Wait()

	return SelfTestReport{
		Status: "completed",
		Tests: map[string]ProbeResult{
			"enhancer":   enh,
			"generator":  gen,
			"rule_based": rb,
		},
	}
}

func (s *ChatService) probeEnhancer(ctx context.Context) ProbeResult {
	if !s.enhancer.Available() {
		return ProbeResult{Status: probeError, Message: "API key not configured"}
	}
	const q = "Hello"
	out, err := s.enhancer.Enhance(ctx, q)
	if err != nil {
		return ProbeResult{Status: probeError, Message: "Connection failed: " + err.Error()}
	}
	return ProbeResult{
		Status:  probeSuccess,
		Message: "Enhancer connection successful",
		Result:  "'" + q + "' -> '" + out + "'",
	}
}

func (s *ChatService) probeGenerator(ctx context.Context) ProbeResult {
	if !s.generator.Available() {
		return ProbeResult{Status: probeError, Message: "API key not configured"}
	}
	out, err := s.generator.Generate(ctx, "Hello, who are you?", "Hello")
	if err != nil {
		return ProbeResult{Status: probeError, Message: "Connection failed: " + err.Error()}
	}
	return ProbeResult{
		Status:  probeSuccess,
		Message: "Generator connection successful",
		Result:  shorten(out),
	}
}

func (s *ChatService) probeRuleBased() (res ProbeResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = ProbeResult{Status: probeError, Message: "Rule-based responder test failed"}
		}
	}()
	results := make(map[string]string, len(ruleBasedProbes))
	for _, q := range ruleBasedProbes {
		results[q] = shorten(s.responder.Respond(q).Text)
	}
	msg := "Rule-based responder is working"
	if !s.responder.DataLoaded() {
		msg += " (no portfolio data loaded)"
	}
	return ProbeResult{Status: probeSuccess, Message: msg, Results: results}
}

func shorten(s string) string {
	if utf8.RuneCountInString(s) <= maxProbeOutput {
		return s
	}
	return string([]rune(s)[:maxProbeOutput]) + "..."
}
