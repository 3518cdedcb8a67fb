package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/drive-sharing/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = Describe("RequestID", func() {
	It("echoes an incoming trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set(TraceIDHeader, "trace-123")
		w := httptest.NewRecorder()

		RequestID(okHandler).ServeHTTP(w, req)

		Expect(w.Header().Get(TraceIDHeader)).To(Equal("trace-123"))
	})

	It("generates a trace id when none is sent", func() {
		w := httptest.NewRecorder()

		RequestID(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

		Expect(w.Header().Get(TraceIDHeader)).To(HaveLen(36))
	})
})

var _ = Describe("CORS", func() {
	It("answers preflight requests without calling the handler", func() {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/shares", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		CORS("http://localhost:3000")(next).ServeHTTP(w, req)

		Expect(called).To(BeFalse())
		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
		Expect(w.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring("PATCH"))
	})

	It("does not allow origins outside the list", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()

		CORS("http://localhost:3000")(okHandler).ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("allows any origin with a wildcard", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()

		CORS("*")(okHandler).ServeHTTP(w, req)

		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	var lg *slog.Logger

	BeforeEach(func() {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	})

	It("turns a panic into a 500 error body", func() {
		boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("nil map") })
		w := httptest.NewRecorder()

		RecoveryMiddleware(lg)(boom).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/shares/with-me", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(MatchJSON(`{"error":{"type":"INTERNAL_ERROR","code":"INTERNAL_ERROR","message":"internal server error"}}`))
	})

	It("lets an aborted handler propagate", func() {
		abort := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic(http.ErrAbortHandler) })

		Expect(func() {
			RecoveryMiddleware(lg)(abort).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}).To(PanicWith(http.ErrAbortHandler))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		logger.Configure(buf, "debug", "json")
		DeferCleanup(func() { logger.Configure(io.Discard, "info", "json") })
	})

	It("logs the request and response with credentials masked", func() {
		handler := LoggingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			Expect(string(body)).To(ContainSubstring("secret-password"))
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"INVALID_CREDENTIALS"}}`))
		}))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"usuario@ejemplo.com","password":"secret-password"}`))
		req.Header.Set("Authorization", "Bearer abc")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		out := buf.String()
		Expect(out).NotTo(ContainSubstring("secret-password"))
		Expect(out).NotTo(ContainSubstring("Bearer abc"))
		Expect(out).To(ContainSubstring("usuario@ejemplo.com"))

		lines := strings.Split(strings.TrimSpace(out), "\n")
		var last map[string]interface{}
		Expect(json.Unmarshal([]byte(lines[len(lines)-1]), &last)).To(Succeed())
		Expect(last).To(HaveKeyWithValue("level", "WARN"))
		Expect(last).To(HaveKeyWithValue("status_code", float64(http.StatusUnauthorized)))
		Expect(last).To(HaveKeyWithValue("path", "/api/v1/auth/login"))
	})
})

var _ = Describe("maskBody", func() {
	It("masks nested sensitive keys", func() {
		masked := maskBody([]byte(`{"refresh_token":"abc","user":{"email":"a@x.com","Password":"p"},"items":[{"secret":"s"}]}`))

		Expect(masked).To(MatchJSON(`{"refresh_token":"[FILTERED]","user":{"email":"a@x.com","Password":"[FILTERED]"},"items":[{"secret":"[FILTERED]"}]}`))
	})

	It("drops non-JSON bodies that mention credentials", func() {
		Expect(maskBody([]byte("password=hunter2"))).To(Equal(filtered))
		Expect(maskBody([]byte("hello"))).To(Equal("hello"))
		Expect(maskBody(nil)).To(BeEmpty())
	})
})
