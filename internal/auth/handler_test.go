package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
}

var _ = ginkgo.Describe("Auth middleware", func() {
	var (
		router  *chi.Mux
		service *Service
	)

	ginkgo.BeforeEach(func() {
		service = NewService(newMockPrincipalRepository(), NewJWTTokenGenerator(testSecret, time.Hour), testLogger())
		handler := NewHandler(service, testLogger())
		rbac := NewRBACAuthorization(testLogger())

		whoami := func(w http.ResponseWriter, r *http.Request) {
			u, _ := internal.UserFromContext(r.Context())
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": u.ID, "role": u.Role.String()})
		}

		router = chi.NewRouter()
		router.Group(func(r chi.Router) {
			r.Use(handler.AuthMiddleware)
			r.Get("/me", whoami)
			r.With(rbac.RequireReviewer()).Get("/review", whoami)
			r.With(rbac.RequireAdmin()).Get("/admin", whoami)
		})
	})

	call := func(path, email string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if email != "" {
			token, err := service.IssueToken(req.Context(), email)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	ginkgo.It("should return 401 without a token", func() {
		rec := call("/me", "")

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		var body errorEnvelope
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
		gomega.Expect(body.Error.Code).To(gomega.Equal("NOT_AUTHENTICATED"))
		gomega.Expect(body.Error.Message).To(gomega.Equal("User not authorised"))
	})

	ginkgo.It("should return 401 for a garbage token", func() {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should attach the principal for a valid token", func() {
		rec := call("/me", "staff@example.com")

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"role":"staff"`))
	})

	ginkgo.Context("role gates", func() {
		ginkgo.It("should forbid staff from reviewer routes", func() {
			rec := call("/review", "staff@example.com")

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should admit managers to reviewer routes", func() {
			gomega.Expect(call("/review", "manager@example.com").Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should admit only admins to admin routes", func() {
			gomega.Expect(call("/admin", "manager@example.com").Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(call("/admin", "admin@example.com").Code).To(gomega.Equal(http.StatusOK))
		})
	})
})
