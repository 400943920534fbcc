package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"portfolio-assistant/internal/middleware"
)

const maxBodyBytes = 64 << 10

// Router returns an HTTP router serving the same routes as Handle.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.StripSlashes)
	r.Use(middleware.CORS(h.allowedOrigins))

	for path, methods := range h.routes {
		for method, fn := range methods {
			r.Method(method, path, h.serve(fn))
		}
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, "", reply{status: http.StatusNotFound, body: errorResponse{Error: codeNotFound, Message: "Endpoint not found"}})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, "", reply{status: http.StatusMethodNotAllowed, body: errorResponse{Error: codeMethod, Message: "Method not allowed"}})
	})
	return r
}

func (h *Handler) serve(fn route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		correlationID := correlationIDFrom(map[string]string{headerCorrelationID: r.Header.Get(headerCorrelationID)})

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeJSON(w, correlationID, badRequest("request body too large or unreadable"))
			return
		}
		writeJSON(w, correlationID, fn(r.Context(), request{correlationID: correlationID, body: body}))
	}
}

func writeJSON(w http.ResponseWriter, correlationID string, out reply) {
	w.Header().Set("Content-Type", "application/json")
	if correlationID != "" {
		w.Header().Set(headerCorrelationID, correlationID)
	}
	w.WriteHeader(out.status)
	if err := json.NewEncoder(w).Encode(out.body); err != nil {
		slog.Error("failed to write response", "err", err)
	}
}
