package leavetype_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/core/testdb"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	leaveTypePostgres "github.com/frahmantamala/leave-management/internal/leavetype/postgres"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
}

var _ = Describe("Leave Type Handler Integration", func() {
	var (
		db      *gorm.DB
		service *leavetype.Service
		router  *chi.Mux
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		service = leavetype.NewService(leaveTypePostgres.NewLeaveTypeRepository(db), slogger)
		handler := leavetype.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/leave-types", handler.GetLeaveTypes)
		router.Post("/leave-types", handler.CreateLeaveType)
		router.Get("/leave-types/{id}", handler.GetLeaveType)
		router.Patch("/leave-types/{id}", handler.UpdateLeaveType)
		router.Delete("/leave-types/{id}", handler.DeleteLeaveType)

		_, err = service.Create(context.Background(), &leavetype.CreateLeaveTypeDTO{Name: leavetype.AnnualLeave})
		Expect(err).NotTo(HaveOccurred())
	})

	do := func(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var env envelope
		if w.Body.Len() > 0 {
			Expect(json.Unmarshal(w.Body.Bytes(), &env)).To(Succeed())
		}
		return w, env
	}

	It("should list leave types", func() {
		w, env := do(http.MethodGet, "/leave-types", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		var types []leavetype.LeaveType
		Expect(json.Unmarshal(env.Data, &types)).To(Succeed())
		Expect(types).To(HaveLen(1))
		Expect(types[0].DefaultBalance).To(Equal(25))
		Expect(types[0].MaxRollover).To(Equal(5))
	})

	It("should create a leave type with explicit zero rollover", func() {
		w, env := do(http.MethodPost, "/leave-types", map[string]interface{}{
			"name":            "Sick Leave",
			"default_balance": 10,
			"max_rollover":    0,
		})

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(env.Message).To(Equal("Leave type created successfully"))
		var created leavetype.LeaveType
		Expect(json.Unmarshal(env.Data, &created)).To(Succeed())
		Expect(created.MaxRollover).To(Equal(0))
	})

	It("should refuse a duplicate name", func() {
		w, env := do(http.MethodPost, "/leave-types", map[string]interface{}{"name": "annual leave"})

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(env.Error.Code).To(Equal("CONFLICT"))
	})

	It("should reject a negative balance", func() {
		w, env := do(http.MethodPost, "/leave-types", map[string]interface{}{"name": "Study", "default_balance": -1})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(env.Error.Message).To(Equal("default_balance must be at least 0"))
	})

	It("should return 404 for an unknown id and 400 for a malformed one", func() {
		w, _ := do(http.MethodGet, "/leave-types/999", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))

		w, _ = do(http.MethodGet, "/leave-types/abc", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should update the rollover cap", func() {
		w, env := do(http.MethodPatch, "/leave-types/1", map[string]interface{}{"max_rollover": 3})

		Expect(w.Code).To(Equal(http.StatusOK))
		var updated leavetype.LeaveType
		Expect(json.Unmarshal(env.Data, &updated)).To(Succeed())
		Expect(updated.MaxRollover).To(Equal(3))
		Expect(updated.DefaultBalance).To(Equal(25))
	})

	Context("when leave requests use the type", func() {
		BeforeEach(func() {
			u, err := testdb.CreateUser(db, "staff@example.com", testdb.StaffRoleID, 25)
			Expect(err).NotTo(HaveOccurred())
			start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
			Expect(db.Omit("User").Create(&leaveDatamodel.LeaveRequest{
				UserID:    u.ID,
				LeaveType: leavetype.AnnualLeave,
				StartDate: start,
				EndDate:   start.AddDate(0, 0, 2),
				Status:    "Pending",
			}).Error).To(Succeed())
		})

		It("should refuse to delete it", func() {
			w, env := do(http.MethodDelete, "/leave-types/1", nil)

			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(env.Error.Code).To(Equal("LEAVE_TYPE_IN_USE"))
		})

		It("should refuse to rename it", func() {
			w, _ := do(http.MethodPatch, "/leave-types/1", map[string]interface{}{"name": "Vacation"})

			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	It("should delete an unused type", func() {
		w, _ := do(http.MethodDelete, "/leave-types/1", nil)
		Expect(w.Code).To(Equal(http.StatusNoContent))

		w, _ = do(http.MethodGet, "/leave-types/1", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
