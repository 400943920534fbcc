package usecase

import (
	"context"
	"errors"
	"strings"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/integrations/openai"
)

// Generator answers a question from a relevance-filtered portfolio excerpt.
type Generator struct {
	llm      Completer
	data     *domain.Portfolio
	persona  domain.Persona
	settings ModelSettings
}

// NewGenerator returns a Generator over data, which may be nil.
func NewGenerator(llm Completer, data *domain.Portfolio, persona domain.Persona, settings ModelSettings) (*Generator, error) {
	if llm == nil {
		return nil, errors.New("usecase: generator completer must not be nil")
	}
	if strings.TrimSpace(settings.Model) == "" {
		return nil, errors.New("usecase: generator model must not be empty")
	}
	return &Generator{
		llm:      llm,
		data:     data,
		persona:  persona.Complete(data),
		settings: settings,
	}, nil
}

// Available reports whether the generator has a credential.
func (g *Generator) Available() bool { return g.llm.Available() }

// Generate answers enhanced. When enhanced differs from original, the
// request carries a note with both.
func (g *Generator) Generate(ctx context.Context, enhanced, original string) (string, error) {
	enhanced = strings.TrimSpace(enhanced)
	if enhanced == "" {
		return "", newError(ErrorInvalidInput, "empty_question", nil)
	}
	if !g.Available() {
		return "", newError(ErrorUpstream, "generator_unavailable", openai.ErrNotConfigured)
	}

	ctx, cancel := g.settings.withTimeout(ctx)
	defer cancel()

	out, err := g.llm.Complete(ctx, g.settings.request(g.messages(enhanced, strings.TrimSpace(original))))
	if err != nil {
		return "", upstreamError("generator", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", newError(ErrorUpstream, "generator_empty_response", nil)
	}
	return out, nil
}

func (g *Generator) messages(enhanced, original string) []domain.ChatMessage {
	relevant := relevantData(strings.ToLower(enhanced), g.data, g.persona)
	messages := []domain.ChatMessage{
		{Role: "system", Content: buildGeneratorPrompt(g.persona, relevant)},
		{Role: "user", Content: enhanced},
	}
	if original != "" && original != enhanced {
		messages = append(messages, domain.ChatMessage{Role: "system", Content: enhancementNote(original, enhanced)})
	}
	return messages
}
