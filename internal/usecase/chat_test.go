package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-assistant/internal/breaker"
	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/rulebased"
)

type fakeEnhancer struct {
	unavailable bool
	out         string
	err         error
	calls       []string
}

func (f *fakeEnhancer) Available() bool { return !f.unavailable }

func (f *fakeEnhancer) Enhance(_ context.Context, raw string) (string, error) {
	f.calls = append(f.calls, raw)
	if f.err != nil {
		return "", f.err
	}
	if f.out == "" {
		return raw, nil
	}
	return f.out, nil
}

type generateCall struct {
	enhanced string
	original string
}

type fakeGenerator struct {
	unavailable bool
	out         string
	err         error
	panicWith   any
	calls       []generateCall
}

func (f *fakeGenerator) Available() bool { return !f.unavailable }

func (f *fakeGenerator) Generate(_ context.Context, enhanced, original string) (string, error) {
	f.calls = append(f.calls, generateCall{enhanced, original})
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.out, f.err
}

// fakeResponder returns LevelEmergency for messages listed in failFor and
// panics when panics is set.
type fakeResponder struct {
	failFor map[string]bool
	panics  bool
	loaded  bool
	calls   []string
}

func (f *fakeResponder) Respond(message string) rulebased.Reply {
	f.calls = append(f.calls, message)
	if f.panics {
		panic("responder exploded")
	}
	if f.failFor[message] {
		return rulebased.Reply{Text: f.Emergency(), Level: rulebased.LevelEmergency}
	}
	return rulebased.Reply{Text: "rule-based: " + message, Level: rulebased.LevelTemplate}
}

func (f *fakeResponder) Emergency() string { return "emergency text" }
func (f *fakeResponder) DataLoaded() bool  { return f.loaded }

type fakeRecorder struct {
	err       error
	exchanges []domain.Exchange
}

func (f *fakeRecorder) RecordExchange(_ context.Context, ex domain.Exchange) (domain.Exchange, error) {
	f.exchanges = append(f.exchanges, ex)
	return ex, f.err
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type harness struct {
	enhancer  *fakeEnhancer
	generator *fakeGenerator
	responder *fakeResponder
	recorder  *fakeRecorder
	enhBreak  *breaker.Breaker
	genBreak  *breaker.Breaker
	clock     *fixedClock
	svc       *ChatService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		enhancer:  &fakeEnhancer{},
		generator: &fakeGenerator{out: "generated answer"},
		responder: &fakeResponder{loaded: true},
		recorder:  &fakeRecorder{},
		clock:     &fixedClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
	var err error
	h.enhBreak, err = breaker.New("enhancer", 2, 30*time.Second, breaker.WithClock(h.clock.Now))
	require.NoError(t, err)
	h.genBreak, err = breaker.New("generator", 3, 60*time.Second, breaker.WithClock(h.clock.Now))
	require.NoError(t, err)

	h.svc, err = NewChatService(ChatDeps{
		Enhancer:         h.enhancer,
		Generator:        h.generator,
		Responder:        h.responder,
		EnhancerBreaker:  h.enhBreak,
		GeneratorBreaker: h.genBreak,
		Exchanges:        h.recorder,
		AssistantName:    "Ada AI",
	})
	require.NoError(t, err)
	return h
}

func (h *harness) chat(t *testing.T, msg string) domain.ChatResponse {
	t.Helper()
	resp, err := h.svc.Chat(context.Background(), ChatInput{Message: msg, CorrelationID: "corr-1"})
	require.NoError(t, err)
	require.True(t, resp.Source.Valid())
	require.NotEmpty(t, resp.Response)
	return resp
}

// ---------------------------------------------------------------------------
// Constructor and input validation
// ---------------------------------------------------------------------------

func TestNewChatService_RequiresCollaborators(t *testing.T) {
	h := newHarness(t)
	base := ChatDeps{
		Enhancer:         h.enhancer,
		Generator:        h.generator,
		Responder:        h.responder,
		EnhancerBreaker:  h.enhBreak,
		GeneratorBreaker: h.genBreak,
	}

	for name, mutate := range map[string]func(*ChatDeps){
		"enhancer":  func(d *ChatDeps) { d.Enhancer = nil },
		"generator": func(d *ChatDeps) { d.Generator = nil },
		"responder": func(d *ChatDeps) { d.Responder = nil },
		"breaker":   func(d *ChatDeps) { d.GeneratorBreaker = nil },
	} {
		t.Run(name, func(t *testing.T) {
			d := base
			mutate(&d)
			_, err := NewChatService(d)
			require.Error(t, err)
		})
	}
}

func TestChat_BlankMessage(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Chat(context.Background(), ChatInput{Message: "  \t "})
	uerr := requireCode(t, err, ErrorInvalidInput)
	require.Equal(t, "empty_message", uerr.Reason)
	require.Empty(t, h.enhancer.calls)
	require.Empty(t, h.generator.calls)
	require.Empty(t, h.responder.calls)
	require.Empty(t, h.recorder.exchanges)
}

// ---------------------------------------------------------------------------
// Pipeline stages
// ---------------------------------------------------------------------------

func TestChat_EnhancedAndGenerated(t *testing.T) {
	h := newHarness(t)
	h.enhancer.out = "What are Ada's technical skills?"

	resp := h.chat(t, "  skills ")
	require.Equal(t, domain.ChatResponse{
		Response:        "generated answer",
		Source:          domain.SourceGenerated,
		EnhancedQuery:   true,
		OriginalMessage: "skills",
		EnhancedMessage: "What are Ada's technical skills?",
	}, resp)
	require.Equal(t, []generateCall{{"What are Ada's technical skills?", "skills"}}, h.generator.calls)
}

func TestChat_UnchangedEnhancementOmitsEnhancedMessage(t *testing.T) {
	h := newHarness(t)
	resp := h.chat(t, "skills")
	require.False(t, resp.EnhancedQuery)
	require.Empty(t, resp.EnhancedMessage)
	require.Equal(t, domain.SourceGenerated, resp.Source)
}

func TestChat_EnhancerFailureUsesOriginal(t *testing.T) {
	h := newHarness(t)
	h.enhancer.err = errors.New("timeout")

	resp := h.chat(t, "projects")
	require.Equal(t, domain.SourceGenerated, resp.Source)
	require.False(t, resp.EnhancedQuery)
	require.Equal(t, []generateCall{{"projects", "projects"}}, h.generator.calls)
	require.Equal(t, 1, h.enhBreak.Snapshot().Failures)
}

func TestChat_EnhancerBreakerOpensAndSkips(t *testing.T) {
	h := newHarness(t)
	h.enhancer.err = errors.New("down")

	h.chat(t, "one")
	h.chat(t, "two")
	require.Equal(t, breaker.StateOpen, h.enhBreak.State())

	h.chat(t, "three")
	require.Len(t, h.enhancer.calls, 2)
}

func TestChat_UnavailableEnhancerSkipped(t *testing.T) {
	h := newHarness(t)
	h.enhancer.unavailable = true

	resp := h.chat(t, "skills")
	require.Empty(t, h.enhancer.calls)
	require.Equal(t, domain.SourceGenerated, resp.Source)
}

func TestChat_GeneratorFailureFallsBackToRuleBased(t *testing.T) {
	h := newHarness(t)
	h.enhancer.out = "What are Ada's skills?"
	h.generator.err = errors.New("502")

	resp := h.chat(t, "skills")
	require.Equal(t, domain.SourceRuleBased, resp.Source)
	require.Equal(t, "rule-based: What are Ada's skills?", resp.Response)
	require.Equal(t, "API services unavailable or circuit breaker open", resp.FallbackReason)
	require.True(t, resp.EnhancedQuery)
	require.Equal(t, "What are Ada's skills?", resp.EnhancedMessage)
}

func TestChat_GeneratorBreakerOpensAfterThreeFailures(t *testing.T) {
	h := newHarness(t)
	h.generator.err = errors.New("down")

	for i := 0; i < 3; i++ {
		resp := h.chat(t, "skills")
		require.Equal(t, domain.SourceRuleBased, resp.Source)
	}
	require.Equal(t, breaker.StateOpen, h.genBreak.State())

	resp := h.chat(t, "skills")
	require.Equal(t, domain.SourceRuleBased, resp.Source)
	require.Len(t, h.generator.calls, 3)

	// After the reset timeout one probe is admitted; success closes it.
	h.clock.t = h.clock.t.Add(61 * time.Second)
	h.generator.err = nil
	resp = h.chat(t, "skills")
	require.Equal(t, domain.SourceGenerated, resp.Source)
	require.Equal(t, breaker.StateClosed, h.genBreak.State())
}

func TestChat_UnavailableGeneratorDoesNotTouchBreaker(t *testing.T) {
	h := newHarness(t)
	h.generator.unavailable = true

	resp := h.chat(t, "skills")
	require.Equal(t, domain.SourceRuleBased, resp.Source)
	require.Empty(t, h.generator.calls)
	require.Zero(t, h.genBreak.Snapshot().Failures)
}

func TestChat_RuleBasedRetryWithOriginal(t *testing.T) {
	h := newHarness(t)
	h.enhancer.out = "enhanced text"
	h.generator.unavailable = true
	h.responder.failFor = map[string]bool{"enhanced text": true}

	resp := h.chat(t, "raw text")
	require.Equal(t, domain.ChatResponse{
		Response:        "rule-based: raw text",
		Source:          domain.SourceRuleBasedFallback,
		OriginalMessage: "raw text",
		FallbackReason:  "Enhanced message failed, used original",
	}, resp)
	require.Equal(t, []string{"enhanced text", "raw text"}, h.responder.calls)
}

func TestChat_EmergencyWhenEveryLevelFails(t *testing.T) {
	h := newHarness(t)
	h.generator.unavailable = true
	h.responder.failFor = map[string]bool{"hello": true}

	resp := h.chat(t, "hello")
	require.Equal(t, domain.SourceEmergency, resp.Source)
	require.Equal(t, "emergency text", resp.Response)
	require.Equal(t, "All systems temporarily unavailable", resp.FallbackReason)
	require.False(t, resp.EnhancedQuery)
}

func TestChat_PanicRecoveredWithRuleBased(t *testing.T) {
	h := newHarness(t)
	h.enhancer.out = "enhanced"
	h.generator.panicWith = "boom"

	resp := h.chat(t, "original")
	require.Equal(t, domain.SourceRuleBased, resp.Source)
	require.Equal(t, "rule-based: original", resp.Response)
	require.Equal(t, "Unexpected error occurred", resp.FallbackReason)
	require.False(t, resp.EnhancedQuery)
}

func TestChat_PanicEverywhereReturnsApology(t *testing.T) {
	h := newHarness(t)
	h.generator.panicWith = "boom"
	h.responder.panics = true

	resp := h.chat(t, "original")
	require.Equal(t, domain.SourceError, resp.Source)
	require.Equal(t, "I'm sorry, I'm experiencing technical difficulties. Please try again later.", resp.Response)
	require.Equal(t, "original", resp.OriginalMessage)
}

// ---------------------------------------------------------------------------
// Exchange log
// ---------------------------------------------------------------------------

func TestChat_RecordsExchange(t *testing.T) {
	h := newHarness(t)
	h.enhancer.out = "better"

	h.chat(t, "raw")
	require.Len(t, h.recorder.exchanges, 1)
	ex := h.recorder.exchanges[0]
	require.Equal(t, "corr-1", ex.CorrelationID)
	require.Equal(t, "raw", ex.OriginalMessage)
	require.Equal(t, "better", ex.EnhancedMessage)
	require.Equal(t, "generated answer", ex.Response)
	require.Equal(t, domain.SourceGenerated, ex.Source)
}

func TestChat_RecorderFailureIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.recorder.err = errors.New("dynamodb down")

	resp := h.chat(t, "skills")
	require.Equal(t, domain.SourceGenerated, resp.Source)
}

// ---------------------------------------------------------------------------
// Health, home and self-test
// ---------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	h := newHarness(t)
	h.enhancer.unavailable = true

	rep := h.svc.Health(h.clock.t)
	require.Equal(t, "healthy", rep.Status)
	require.Equal(t, "2026-01-02T03:04:05Z", rep.Timestamp)
	require.False(t, rep.Services.Enhancer.Available)
	require.Equal(t, "closed", rep.Services.Generator.CircuitBreaker)
	require.True(t, rep.Services.RuleBased.Available)
	require.True(t, rep.Services.RuleBased.PortfolioDataLoaded)
}

func TestHealth_DegradedWhenGeneratorOpenWithoutData(t *testing.T) {
	h := newHarness(t)
	h.responder.loaded = false
	for i := 0; i < 3; i++ {
		h.genBreak.RecordFailure()
	}

	rep := h.svc.Health(h.clock.t)
	require.Equal(t, "degraded", rep.Status)
	require.Equal(t, "open", rep.Services.Generator.CircuitBreaker)
	require.Equal(t, 3, rep.Services.Generator.FailureCount)

	h.responder.loaded = true
	require.Equal(t, "healthy", h.svc.Health(h.clock.t).Status)
}

func TestHome(t *testing.T) {
	h := newHarness(t)
	h.generator.unavailable = true

	rep := h.svc.Home()
	require.Equal(t, "healthy", rep.Status)
	require.Equal(t, "Ada AI backend is running", rep.Message)
	require.Equal(t, map[string]bool{"enhancer": true, "generator": false, "rule_based": true}, rep.Services)
}

func TestSelfTest(t *testing.T) {
	h := newHarness(t)
	h.enhancer.out = "Hello there, who is Ada?"
	h.generator.out = strings.Repeat("g", 150)

	rep := h.svc.SelfTest(context.Background())
	require.Equal(t, "completed", rep.Status)

	enh := rep.Tests["enhancer"]
	require.Equal(t, "success", enh.Status)
	require.Equal(t, "'Hello' -> 'Hello there, who is Ada?'", enh.Result)

	gen := rep.Tests["generator"]
	require.Equal(t, "success", gen.Status)
	require.Equal(t, strings.Repeat("g", 100)+"...", gen.Result)

	rb := rep.Tests["rule_based"]
	require.Equal(t, "success", rb.Status)
	require.Len(t, rb.Results, 4)
	require.Equal(t, "rule-based: Hello", rb.Results["Hello"])

	// Self-test bypasses the breakers.
	require.Zero(t, h.enhBreak.Snapshot().Failures)
}

func TestSelfTest_Failures(t *testing.T) {
	h := newHarness(t)
	h.enhancer.unavailable = true
	h.generator.err = errors.New("502")
	h.responder.panics = true

	rep := h.svc.SelfTest(context.Background())
	require.Equal(t, "error", rep.Tests["enhancer"].Status)
	require.Equal(t, "API key not configured", rep.Tests["enhancer"].Message)
	require.Equal(t, "error", rep.Tests["generator"].Status)
	require.Contains(t, rep.Tests["generator"].Message, "502")
	require.Equal(t, "error", rep.Tests["rule_based"].Status)
}
