package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/integrations/openai"
)

// Completer is an OpenAI-compatible chat completion dependency.
type Completer interface {
	Name() string
	Available() bool
	Complete(ctx context.Context, in openai.CompletionRequest) (string, error)
}

// ModelSettings are the per-call request parameters of one completion stage.
// TopP of zero leaves the provider default.
type ModelSettings struct {
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

func (m ModelSettings) request(messages []domain.ChatMessage) openai.CompletionRequest {
	req := openai.CompletionRequest{
		Model:       m.Model,
		Messages:    messages,
		MaxTokens:   m.MaxTokens,
		Temperature: openai.Float(m.Temperature),
	}
	if m.TopP > 0 {
		req.TopP = openai.Float(m.TopP)
	}
	return req
}

func (m ModelSettings) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.Timeout)
}

// Enhancer rewrites a raw user question into a clearer one.
type Enhancer struct {
	llm      Completer
	prompt   string
	settings ModelSettings
}

func NewEnhancer(llm Completer, persona domain.Persona, settings ModelSettings) (*Enhancer, error) {
	if llm == nil {
		return nil, errors.New("usecase: enhancer completer must not be nil")
	}
	if strings.TrimSpace(settings.Model) == "" {
		return nil, errors.New("usecase: enhancer model must not be empty")
	}
	return &Enhancer{
		llm:      llm,
		prompt:   buildEnhancerPrompt(persona.Complete(nil)),
		settings: settings,
	}, nil
}

// Available reports whether the enhancer has a credential.
func (e *Enhancer) Available() bool { return e.llm.Available() }

// Enhance returns the rewritten question, without surrounding quotes.
func (e *Enhancer) Enhance(ctx context.Context, raw string) (string, error) {
	if !e.Available() {
		return "", newError(ErrorUpstream, "enhancer_unavailable", openai.ErrNotConfigured)
	}
	ctx, cancel := e.settings.withTimeout(ctx)
	defer cancel()

	out, err := e.llm.Complete(ctx, e.settings.request([]domain.ChatMessage{
		{Role: "system", Content: e.prompt},
		{Role: "user", Content: enhancerUserMessage(raw)},
	}))
	if err != nil {
		return "", upstreamError("enhancer", err)
	}
	out = stripQuotes(strings.TrimSpace(out))
	if out == "" {
		return "", newError(ErrorUpstream, "enhancer_empty_response", nil)
	}
	return out, nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
