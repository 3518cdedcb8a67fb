package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/drive-sharing/pkg/logger"
)

const filtered = "[FILTERED]"

// maxLoggedBody caps how much of a request or response body is logged.
const maxLoggedBody = 4096

var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"cookie",
	"credential",
}

// LoggingMiddleware logs each request and its response through the request-scoped
// logger, masking credentials in headers and JSON bodies.
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lg := logger.From(r.Context()).With(requestFields(r)...)

			lg.Info("incoming request",
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", maskHeaders(r.Header),
				"body", maskBody(readBody(r)),
			)

			rec := &recordingWriter{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}

			lg.Log(r.Context(), levelForStatus(status), "response",
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rec.size,
				"body", maskBody(rec.body.Bytes()),
			)
		})
	}
}

func requestFields(r *http.Request) []any {
	fields := []any{"method", r.Method, "path", r.URL.Path}
	if r.URL.RawQuery != "" {
		fields = append(fields, "query", r.URL.RawQuery)
	}
	return fields
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// readBody drains the request body and puts an identical reader back.
func readBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil
	}
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data
}

type recordingWriter struct {
	http.ResponseWriter
	status int
	size   int
	body   bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	if rw.body.Len() < maxLoggedBody {
		rw.body.Write(b[:min(len(b), maxLoggedBody-rw.body.Len())])
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

func maskHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// maskBody renders a body for logging. Non-JSON bodies that mention a sensitive
// field are dropped entirely.
func maskBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		if isSensitive(string(body)) {
			return filtered
		}
		return string(body)
	}

	out, err := json.Marshal(maskJSON(doc))
	if err != nil {
		return filtered
	}
	return string(out)
}

func maskJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				out[key] = filtered
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
