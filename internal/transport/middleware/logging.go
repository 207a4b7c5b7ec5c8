package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/performance-bonus/pkg/logger"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

const maxLoggedBody = 4 << 10

var sensitiveFields = []string{
	"authorization",
	"token",
	"secret",
	"password",
	"cookie",
	"salary",
}

// LoggingMiddleware stores a request-scoped logger tagged with the trace id
// and writes one line per request and one per response. Bodies are only
// captured at debug level, with sensitive keys masked.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := base.With("trace_id", chiMiddleware.GetReqID(r.Context()))
			r = r.WithContext(logger.NewContext(r.Context(), lg))
			debug := lg.Enabled(r.Context(), slog.LevelDebug)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"headers", maskHeaders(r.Header),
			}
			if debug && r.Body != nil {
				body, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
				attrs = append(attrs, "body", maskBody(body))
			}
			lg.Info("incoming request", attrs...)

			rw := &responseWriter{ResponseWriter: w, capture: debug}
			next.ServeHTTP(rw, r)

			status := rw.statusCode
			if status == 0 {
				status = http.StatusOK
			}
			out := []any{
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rw.size,
			}
			if debug {
				out = append(out, "body", maskBody(rw.body.Bytes()))
			}
			lg.Log(r.Context(), levelFor(status), "response", out...)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
	capture    bool
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.capture && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func isSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, f := range sensitiveFields {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

func maskHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = "[FILTERED]"
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func maskBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "[non-JSON body omitted]"
	}

	masked, err := json.Marshal(maskJSON(data))
	if err != nil {
		return "[unloggable body]"
	}
	return string(masked)
}

func maskJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				out[key] = "[FILTERED]"
				continue
			}
			out[key] = maskJSON(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = maskJSON(item)
		}
		return out
	default:
		return v
	}
}
