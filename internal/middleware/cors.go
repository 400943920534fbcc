// Package middleware provides HTTP middleware for the assistant API.
package middleware

import "net/http"

// CORSHeaders returns the CORS response headers for a request from origin,
// or nil when the origin is not allowed. A "*" entry allows any origin.
func CORSHeaders(allowedOrigins []string, origin string) map[string]string {
	allowed, explicit := false, false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowed = true
		}
		if origin != "" && o == origin {
			allowed, explicit = true, true
		}
	}
	if !allowed {
		return nil
	}

	h := map[string]string{
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, X-Correlation-Id",
		"Access-Control-Allow-Origin":  "*",
	}
	if origin != "" {
		h["Access-Control-Allow-Origin"] = origin
		h["Vary"] = "Origin"
	}
	// Only allow credentials for explicit origins, not wildcard matches.
	if explicit {
		h["Access-Control-Allow-Credentials"] = "true"
	}
	return h
}

// CORS returns middleware that sets CORS headers and answers preflight
// requests.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for k, v := range CORSHeaders(allowedOrigins, r.Header.Get("Origin")) {
				w.Header().Set(k, v)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
