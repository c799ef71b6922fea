package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/time/rate"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

var _ = Describe("RateLimit", func() {
	It("should answer 429 once a caller's bucket is empty", func() {
		// Given
		limiter := NewKeyedRateLimiter(rate.Every(time.Hour), 2)
		handler := RateLimit(limiter, silentLogger())(okHandler)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:5000"
			w := httptest.NewRecorder()

			// When
			handler.ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		// Then
		Expect(codes).To(Equal([]int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}))
	})

	It("should keep separate buckets per principal", func() {
		limiter := NewKeyedRateLimiter(rate.Every(time.Hour), 1)
		handler := RateLimit(limiter, silentLogger())(okHandler)

		for _, email := range []string{"a@example.com", "b@example.com"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(internal.ContextWithUser(req.Context(), &internal.User{ID: 1, Email: email}))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
		}
	})

	It("should derive a bucket from configuration", func() {
		limiter := NewKeyedRateLimiterFromConfig(internal.RateLimitConfig{Requests: 60, Window: time.Minute})

		Expect(limiter.Limiter("k").Burst()).To(Equal(60))
		Expect(float64(limiter.Limiter("k").Limit())).To(BeNumerically("~", 1.0, 0.001))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("should render a panic as an internal error", func() {
		handler := RecoveryMiddleware(silentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Error.Code).To(Equal("INTERNAL_ERROR"))
		Expect(body.Error.Message).NotTo(ContainSubstring("boom"))
	})
})

var _ = Describe("RequestID", func() {
	It("should mint a trace id when none is sent", func() {
		var seen string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = TraceIDFromContext(r.Context())
		}))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(seen).NotTo(BeEmpty())
		Expect(w.Header().Get(TraceIDHeader)).To(Equal(seen))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("should mask credentials in logged bodies", func() {
		out := filterSensitiveBody([]byte(`{"email":"a@example.com","password":"hunter22","nested":{"token":"x"}}`))

		Expect(out).To(ContainSubstring(`"email":"a@example.com"`))
		Expect(out).NotTo(ContainSubstring("hunter22"))
		Expect(out).To(ContainSubstring(`"token":"[FILTERED]"`))
	})

	It("should mask authorization headers", func() {
		headers := http.Header{}
		headers.Set("Authorization", "Bearer abc")
		headers.Set("Accept", "application/json")

		filtered := filterSensitiveHeaders(headers)

		Expect(filtered["Authorization"]).To(Equal("[FILTERED]"))
		Expect(filtered["Accept"]).To(Equal("application/json"))
	})

	It("should log the response status", func() {
		buf := &bytes.Buffer{}
		lg := slog.New(slog.NewJSONHandler(buf, nil))
		handler := LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

		Expect(buf.String()).To(ContainSubstring(`"status_code":418`))
		Expect(buf.String()).To(ContainSubstring(`"level":"WARN"`))
	})
})
