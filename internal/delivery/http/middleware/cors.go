package middleware

import (
	"net/http"
	"strings"
)

// Methods match the routes in router.go. Retry-After accompanies 503 responses when the reservation
// store is unavailable.
const (
	corsAllowMethods   = "GET, POST, PATCH, DELETE, OPTIONS"
	corsAllowHeaders   = "Authorization, Content-Type, Accept"
	corsExposeHeaders  = "Retry-After"
	corsPreflightCache = "600"
)

// normalizeOrigin lowercases an origin and drops any trailing slash.
func normalizeOrigin(o string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(o), "/"))
}

// CORS allows cross-origin calls from allowedOrigins only. Preflights always get 204; the allow headers
// are only set for a listed origin.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = normalizeOrigin(o); o != "" {
			allowed[o] = struct{}{}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		_, ok := allowed[normalizeOrigin(origin)]
		if origin != "" {
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			if ok {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Max-Age", corsPreflightCache)
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if ok {
			next.ServeHTTP(&corsResponseWriter{ResponseWriter: w, origin: origin}, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsResponseWriter sets the allow headers once, when the status line is written.
type corsResponseWriter struct {
	http.ResponseWriter
	origin      string
	wroteHeader bool
}

func (w *corsResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		h := w.ResponseWriter.Header()
		h.Set("Access-Control-Allow-Origin", w.origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
	}
	w.ResponseWriter.WriteHeader(code)
}

// Write covers handlers that never call WriteHeader explicitly.
func (w *corsResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
