// Package handler exposes the chat service over API Gateway (Lambda) and
// plain HTTP. Both transports share one route table.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/middleware"
	"portfolio-assistant/internal/usecase"
)

const (
	headerCorrelationID = "X-Correlation-Id"
	codeNotFound        = "NOT_FOUND"
	codeMethod          = "METHOD_NOT_ALLOWED"
	codeInternal        = "INTERNAL_ERROR"
)

// ChatUseCase is the service surface the handler routes to.
type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (domain.ChatResponse, error)
	Health(now time.Time) usecase.HealthReport
	Home() usecase.HomeReport
	SelfTest(ctx context.Context) usecase.SelfTestReport
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// request is the transport-neutral view of an incoming call.
type request struct {
	correlationID string
	body          []byte
}

// reply is the transport-neutral result of a route.
type reply struct {
	status int
	body   any
}

type route func(ctx context.Context, req request) reply

type Handler struct {
	uc             ChatUseCase
	allowedOrigins []string
	validate       *validator.Validate
	now            func() time.Time
	routes         map[string]map[string]route // path -> method -> route
}

type Option func(*Handler)

// WithAllowedOrigins sets the CORS origins; the default allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) {
		if len(origins) > 0 {
			h.allowedOrigins = origins
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

func NewHandler(uc ChatUseCase, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	h := &Handler{
		uc:             uc,
		allowedOrigins: []string{"*"},
		validate:       validator.New(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.routes = map[string]map[string]route{
		"/":         {http.MethodGet: h.home},
		"/health":   {http.MethodGet: h.health},
		"/api/chat": {http.MethodPost: h.chat},
		"/chat":     {http.MethodPost: h.chat},
		"/api/test": {http.MethodPost: h.selfTest},
	}
	return h, nil
}

// Handle is the API Gateway proxy entry point.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := correlationIDFrom(event.Headers)
	headers := map[string]string{
		"Content-Type":      "application/json",
		headerCorrelationID: correlationID,
	}
	for k, v := range middleware.CORSHeaders(h.allowedOrigins, headerValue(event.Headers, "Origin")) {
		headers[k] = v
	}

	if event.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: headers}, nil
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := decodeBase64(event.Body)
		if err != nil {
			return toProxy(badRequest("request body is not valid base64"), headers), nil
		}
		body = decoded
	}

	out := h.dispatch(ctx, event.HTTPMethod, event.Path, request{correlationID: correlationID, body: body})
	return toProxy(out, headers), nil
}

func (h *Handler) dispatch(ctx context.Context, method, path string, req request) reply {
	methods, ok := h.routes[normalizePath(path)]
	if !ok {
		return reply{status: http.StatusNotFound, body: errorResponse{Error: codeNotFound, Message: "Endpoint not found"}}
	}
	fn, ok := methods[method]
	if !ok {
		return reply{status: http.StatusMethodNotAllowed, body: errorResponse{Error: codeMethod, Message: "Method not allowed"}}
	}
	return fn(ctx, req)
}

func (h *Handler) chat(ctx context.Context, req request) reply {
	var in chatRequest
	if err := json.Unmarshal(req.body, &in); err != nil {
		return badRequest("request body must be a JSON object with a message")
	}
	if err := h.validate.Struct(in); err != nil {
		return badRequest("Message is required")
	}

	out, err := h.uc.Chat(ctx, usecase.ChatInput{Message: in.Message, CorrelationID: req.correlationID})
	if err != nil {
		return h.errorReply(req.correlationID, err)
	}
	return reply{status: http.StatusOK, body: out}
}

func (h *Handler) health(_ context.Context, _ request) reply {
	return reply{status: http.StatusOK, body: h.uc.Health(h.now())}
}

func (h *Handler) home(_ context.Context, _ request) reply {
	return reply{status: http.StatusOK, body: h.uc.Home()}
}

func (h *Handler) selfTest(ctx context.Context, _ request) reply {
	return reply{status: http.StatusOK, body: h.uc.SelfTest(ctx)}
}

func (h *Handler) errorReply(correlationID string, err error) reply {
	var uerr *usecase.Error
	if !errors.As(err, &uerr) {
		slog.Error("unexpected chat error", "correlation_id", correlationID, "err", err)
		return reply{status: http.StatusInternalServerError, body: errorResponse{Error: codeInternal, Message: "Internal server error"}}
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	switch uerr.Code {
	case usecase.ErrorInvalidInput:
		status, message = http.StatusBadRequest, "Message is required"
	case usecase.ErrorRateLimited:
		status, message = http.StatusTooManyRequests, "Too many requests"
	case usecase.ErrorUpstream:
		status, message = http.StatusBadGateway, "Upstream service error"
	case usecase.ErrorDataUnavailable:
		status, message = http.StatusServiceUnavailable, "Portfolio data unavailable"
	}
	if status >= http.StatusInternalServerError {
		slog.Error("chat failed", "correlation_id", correlationID, "code", uerr.Code, "reason", uerr.Reason, "err", err)
	}
	return reply{status: status, body: errorResponse{Error: string(uerr.Code), Message: message}}
}

func badRequest(message string) reply {
	return reply{status: http.StatusBadRequest, body: errorResponse{Error: string(usecase.ErrorInvalidInput), Message: message}}
}

func toProxy(out reply, headers map[string]string) events.APIGatewayProxyResponse {
	b, err := json.Marshal(out.body)
	if err != nil {
		slog.Error("failed to encode response", "err", err)
		b, _ = json.Marshal(errorResponse{Error: codeInternal, Message: "Internal server error"})
		out.status = http.StatusInternalServerError
	}
	return events.APIGatewayProxyResponse{StatusCode: out.status, Headers: headers, Body: string(b)}
}

func correlationIDFrom(headers map[string]string) string {
	if id := strings.TrimSpace(headerValue(headers, headerCorrelationID)); id != "" {
		return id
	}
	return uuid.NewString()
}

// headerValue looks up key case-insensitively; API Gateway preserves the
// client's casing.
func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
