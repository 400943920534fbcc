package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"portfolio-assistant/internal/breaker"
	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/rulebased"
)

const (
	reasonAPIUnavailable = "API services unavailable or circuit breaker open"
	reasonUsedOriginal   = "Enhanced message failed, used original"
	reasonAllFailed      = "All systems temporarily unavailable"
	reasonUnexpected     = "Unexpected error occurred"

	apologyText = "I'm sorry, I'm experiencing technical difficulties. Please try again later."
)

type Breaker interface {
	CanExecute() bool
	RecordSuccess()
	RecordFailure()
	Snapshot() breaker.Snapshot
}

type QuestionEnhancer interface {
	Available() bool
	Enhance(ctx context.Context, raw string) (string, error)
}

type AnswerGenerator interface {
	Available() bool
	Generate(ctx context.Context, enhanced, original string) (string, error)
}

type Responder interface {
	Respond(message string) rulebased.Reply
	Emergency() string
	DataLoaded() bool
}

type ExchangeRecorder interface {
	RecordExchange(ctx context.Context, ex domain.Exchange) (domain.Exchange, error)
}

// ChatDeps are the collaborators of ChatService. Exchanges and Logger are
// optional.
type ChatDeps struct {
	Enhancer         QuestionEnhancer
	Generator        AnswerGenerator
	Responder        Responder
	EnhancerBreaker  Breaker
	GeneratorBreaker Breaker
	Exchanges        ExchangeRecorder
	AssistantName    string
	Logger           *slog.Logger
}

// ChatService runs the enhance, generate, rule-based fallback pipeline.
type ChatService struct {
	enhancer         QuestionEnhancer
	generator        AnswerGenerator
	responder        Responder
	enhancerBreaker  Breaker
	generatorBreaker Breaker
	exchanges        ExchangeRecorder
	assistantName    string
	logger           *slog.Logger
}

type ChatInput struct {
	Message       string
	CorrelationID string
}

func NewChatService(d ChatDeps) (*ChatService, error) {
	if d.Enhancer == nil {
		return nil, errors.New("usecase: enhancer must not be nil")
	}
	if d.Generator == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	if d.Responder == nil {
		return nil, errors.New("usecase: responder must not be nil")
	}
	if d.EnhancerBreaker == nil || d.GeneratorBreaker == nil {
		return nil, errors.New("usecase: circuit breakers must not be nil")
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := strings.TrimSpace(d.AssistantName)
	if name == "" {
		name = domain.DefaultAssistantName
	}
	return &ChatService{
		enhancer:         d.Enhancer,
		generator:        d.Generator,
		responder:        d.Responder,
		enhancerBreaker:  d.EnhancerBreaker,
		generatorBreaker: d.GeneratorBreaker,
		exchanges:        d.Exchanges,
		assistantName:    name,
		logger:           logger,
	}, nil
}

// Chat answers one message. The only error is INVALID_INPUT for a blank
// message; every other failure degrades to a fallback answer.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (domain.ChatResponse, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return domain.ChatResponse{}, newError(ErrorInvalidInput, "empty_message", nil)
	}

	resp := s.answer(ctx, message)
	s.logger.Info("chat answered",
		"correlation_id", in.CorrelationID,
		"source", resp.Source,
		"enhanced", resp.EnhancedQuery,
		"fallback_reason", resp.FallbackReason,
	)
	s.recordExchange(ctx, in.CorrelationID, resp)
	return resp, nil
}

func (s *ChatService) answer(ctx context.Context, message string) (resp domain.ChatResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("chat pipeline panicked", "panic", rec)
			resp = s.recoverAnswer(message)
		}
	}()
	return s.pipeline(ctx, message)
}

func (s *ChatService) recoverAnswer(message string) (resp domain.ChatResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("rule-based recovery panicked", "panic", rec)
			resp = domain.ChatResponse{
				Response:        apologyText,
				Source:          domain.SourceError,
				OriginalMessage: message,
			}
		}
	}()
	reply := s.responder.Respond(message)
	return domain.ChatResponse{
		Response:        reply.Text,
		Source:          domain.SourceRuleBased,
		OriginalMessage: message,
		FallbackReason:  reasonUnexpected,
	}
}

func (s *ChatService) pipeline(ctx context.Context, message string) domain.ChatResponse {
	enhanced := s.enhance(ctx, message)
	changed := enhanced != message

	base := domain.ChatResponse{
		EnhancedQuery:   changed,
		OriginalMessage: message,
	}
	if changed {
		base.EnhancedMessage = enhanced
	}

	if answer, ok := s.generate(ctx, enhanced, message); ok {
		out := base
		out.Response = answer
		out.Source = domain.SourceGenerated
		return out
	}

	reply := s.responder.Respond(enhanced)
	if reply.Level != rulebased.LevelEmergency {
		out := base
		out.Response = reply.Text
		out.Source = domain.SourceRuleBased
		out.FallbackReason = reasonAPIUnavailable
		return out
	}

	s.logger.Warn("rule-based reply failed for enhanced message, retrying original", "intent", reply.Intent)
	reply = s.responder.Respond(message)
	if reply.Level != rulebased.LevelEmergency {
		return domain.ChatResponse{
			Response:        reply.Text,
			Source:          domain.SourceRuleBasedFallback,
			OriginalMessage: message,
			FallbackReason:  reasonUsedOriginal,
		}
	}

	s.logger.Error("all fallbacks failed, using emergency reply")
	return domain.ChatResponse{
		Response:        s.responder.Emergency(),
		Source:          domain.SourceEmergency,
		OriginalMessage: message,
		FallbackReason:  reasonAllFailed,
	}
}

// enhance returns the rewritten message, or message itself when the
// enhancer is skipped or fails.
func (s *ChatService) enhance(ctx context.Context, message string) string {
	if !s.enhancerBreaker.CanExecute() || !s.enhancer.Available() {
		s.logger.Info("enhancer skipped", "breaker", s.enhancerBreaker.Snapshot().State.String(), "available", s.enhancer.Available())
		return message
	}
	enhanced, err := s.enhancer.Enhance(ctx, message)
	if err != nil {
		s.enhancerBreaker.RecordFailure()
		s.logger.Warn("enhancer failed, continuing with original message", "err", err)
		return message
	}
	s.enhancerBreaker.RecordSuccess()
	return enhanced
}

func (s *ChatService) generate(ctx context.Context, enhanced, original string) (string, bool) {
	if !s.generatorBreaker.CanExecute() || !s.generator.Available() {
		s.logger.Info("generator skipped", "breaker", s.generatorBreaker.Snapshot().State.String(), "available", s.generator.Available())
		return "", false
	}
	answer, err := s.generator.Generate(ctx, enhanced, original)
	if err != nil {
		s.generatorBreaker.RecordFailure()
		s.logger.Warn("generator failed, falling back to rule-based reply", "err", err)
		return "", false
	}
	s.generatorBreaker.RecordSuccess()
	return answer, true
}

func (s *ChatService) recordExchange(ctx context.Context, correlationID string, resp domain.ChatResponse) {
	if s.exchanges == nil {
		return
	}
	_, err := s.exchanges.RecordExchange(ctx, domain.Exchange{
		CorrelationID:   correlationID,
		OriginalMessage: resp.OriginalMessage,
		EnhancedMessage: resp.EnhancedMessage,
		Response:        resp.Response,
		Source:          resp.Source,
		FallbackReason:  resp.FallbackReason,
	})
	if err != nil {
		s.logger.Warn("failed to record exchange", "correlation_id", correlationID, "err", err)
	}
}
