package leave_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/core/testdb"
	coreuser "github.com/frahmantamala/leave-management/internal/core/user"
	"github.com/frahmantamala/leave-management/internal/leave"
	leavePostgres "github.com/frahmantamala/leave-management/internal/leave/postgres"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	leaveTypePostgres "github.com/frahmantamala/leave-management/internal/leavetype/postgres"
	"github.com/frahmantamala/leave-management/internal/management"
	managementPostgres "github.com/frahmantamala/leave-management/internal/management/postgres"
	"github.com/frahmantamala/leave-management/internal/user"
	userPostgres "github.com/frahmantamala/leave-management/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
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

type principal struct {
	id   int64
	role coreuser.Role
}

const principalHeader = "X-Test-Principal"

// withPrincipal stands in for the auth middleware: "id:role".
func withPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(principalHeader); raw != "" {
			parts := strings.SplitN(raw, ":", 2)
			id, _ := strconv.ParseInt(parts[0], 10, 64)
			r = r.WithContext(internal.ContextWithUser(r.Context(), &internal.User{ID: id, Role: coreuser.ParseRole(parts[1])}))
		}
		next.ServeHTTP(w, r)
	})
}

var _ = Describe("Leave Handler Integration", func() {
	var (
		router                          *chi.Mux
		bus                             *events.EventBus
		staff, manager, admin, outsider principal
	)

	BeforeEach(func() {
		ctx := context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		sqlxDB, err := testdb.SQLX(db)
		Expect(err).NotTo(HaveOccurred())

		staffRow, err := testdb.CreateUser(db, "staff@example.com", testdb.StaffRoleID, 10)
		Expect(err).NotTo(HaveOccurred())
		managerRow, err := testdb.CreateUser(db, "manager@example.com", testdb.ManagerRoleID, 25)
		Expect(err).NotTo(HaveOccurred())
		adminRow, err := testdb.CreateUser(db, "admin@example.com", testdb.AdminRoleID, 25)
		Expect(err).NotTo(HaveOccurred())
		outsiderRow, err := testdb.CreateUser(db, "outsider@example.com", testdb.ManagerRoleID, 25)
		Expect(err).NotTo(HaveOccurred())

		staff = principal{staffRow.ID, coreuser.RoleStaff}
		manager = principal{managerRow.ID, coreuser.RoleManager}
		admin = principal{adminRow.ID, coreuser.RoleAdmin}
		outsider = principal{outsiderRow.ID, coreuser.RoleManager}

		userService := user.NewService(userPostgres.NewUserRepository(db), userPostgres.NewRoleRepository(sqlxDB), logger)
		managementService := management.NewService(managementPostgres.NewRepository(db), userService, logger)
		leaveTypeService := leavetype.NewService(leaveTypePostgres.NewLeaveTypeRepository(db), logger)

		_, err = managementService.Assign(ctx, &management.AssignDTO{StaffID: staff.id, ManagerID: manager.id})
		Expect(err).NotTo(HaveOccurred())

		bus = events.NewEventBus(logger)
		leave.NewAuditHandler(logger).RegisterEventHandlers(bus)

		service := leave.NewService(leavePostgres.NewRepository(db), userService, managementService, leaveTypeService, bus, logger)
		handler := leave.NewHandler(service, logger)

		router = chi.NewRouter()
		router.Use(withPrincipal)
		router.Route("/leave-requests", func(r chi.Router) {
			r.Post("/", handler.CreateLeaveRequest)
			r.Get("/", handler.ListLeaveRequests)
			r.Get("/mine", handler.ListMyLeaveRequests)
			r.Get("/pending", handler.ListPendingLeaveRequests)
			r.Get("/user/{userId}", handler.ListUserLeaveRequests)
			r.Get("/balance/{userId}", handler.GetBalance)
			r.Patch("/balance/{userId}", handler.UpdateBalance)
			r.Get("/{id}", handler.GetLeaveRequest)
			r.Patch("/{id}/approve", handler.ApproveLeaveRequest)
			r.Patch("/{id}/reject", handler.RejectLeaveRequest)
			r.Patch("/{id}/cancel", handler.CancelLeaveRequest)
		})
	})

	AfterEach(func() {
		Expect(bus.Drain(time.Second)).To(BeTrue())
	})

	do := func(as *principal, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		if as != nil {
			req.Header.Set(principalHeader, fmt.Sprintf("%d:%s", as.id, as.role))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var env envelope
		if w.Body.Len() > 0 {
			Expect(json.Unmarshal(w.Body.Bytes(), &env)).To(Succeed())
		}
		return w, env
	}

	balanceOf := func(id int64) int {
		w, env := do(&admin, http.MethodGet, fmt.Sprintf("/leave-requests/balance/%d", id), nil)
		ExpectWithOffset(1, w.Code).To(Equal(http.StatusOK))
		var b leave.BalanceResponse
		ExpectWithOffset(1, json.Unmarshal(env.Data, &b)).To(Succeed())
		return b.AnnualLeaveBalance
	}

	submit := func(start, end string) int64 {
		w, env := do(&staff, http.MethodPost, "/leave-requests", map[string]string{"start_date": start, "end_date": end})
		ExpectWithOffset(1, w.Code).To(Equal(http.StatusCreated))
		var created struct {
			ID int64 `json:"id"`
		}
		ExpectWithOffset(1, json.Unmarshal(env.Data, &created)).To(Succeed())
		return created.ID
	}

	It("should walk a request through approval and cancellation", func() {
		// When
		w, env := do(&staff, http.MethodPost, "/leave-requests", map[string]string{
			"start_date": "2025-08-01",
			"end_date":   "2025-08-03",
			"reason":     "family trip",
		})

		// Then
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(env.Message).To(Equal("Leave request submitted successfully"))
		var created map[string]interface{}
		Expect(json.Unmarshal(env.Data, &created)).To(Succeed())
		Expect(created["status"]).To(Equal("Pending"))
		Expect(created["days"]).To(BeNumerically("==", 3))
		Expect(created["remaining_balance"]).To(BeNumerically("==", 7))
		Expect(created["start_date"]).To(Equal("2025-08-01"))
		id := int64(created["id"].(float64))

		// When
		w, env = do(&manager, http.MethodPatch, fmt.Sprintf("/leave-requests/%d/approve", id), nil)

		// Then
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(env.Message).To(Equal("Leave request approved"))
		Expect(balanceOf(staff.id)).To(Equal(7))

		// When
		w, _ = do(&staff, http.MethodPatch, fmt.Sprintf("/leave-requests/%d/cancel", id), nil)

		// Then
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(balanceOf(staff.id)).To(Equal(10))
	})

	It("should require a principal", func() {
		w, env := do(nil, http.MethodPost, "/leave-requests", map[string]string{"start_date": "2025-08-01", "end_date": "2025-08-03"})

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(env.Error.Message).To(Equal("User not authorised"))
	})

	It("should report the invalid range message", func() {
		w, env := do(&staff, http.MethodPost, "/leave-requests", map[string]string{"start_date": "2025-08-03", "end_date": "2025-08-01"})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(env.Error.Code).To(Equal("INVALID_DATE_RANGE"))
		Expect(env.Error.Message).To(Equal("End date of 2025-08-01 is before the start date of 2025-08-03"))
	})

	It("should reject malformed JSON", func() {
		req := httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader("{"))
		req.Header.Set(principalHeader, fmt.Sprintf("%d:%s", staff.id, staff.role))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should refuse overlapping requests over HTTP", func() {
		submit("2025-08-04", "2025-08-06")

		w, env := do(&staff, http.MethodPost, "/leave-requests", map[string]string{"start_date": "2025-08-05", "end_date": "2025-08-07"})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(env.Error.Code).To(Equal("OVERLAPPING_REQUEST"))
	})

	It("should give an unmapped manager an empty list with a message", func() {
		submit("2025-08-01", "2025-08-02")

		w, env := do(&outsider, http.MethodGet, "/leave-requests", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(env.Message).To(Equal("No staff are currently assigned to you"))
		Expect(string(env.Data)).To(Equal("[]"))
	})

	It("should show a mapped manager the pending requests of their staff", func() {
		submit("2025-08-01", "2025-08-02")

		w, env := do(&manager, http.MethodGet, "/leave-requests/pending", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		var requests []leave.LeaveRequestResponse
		Expect(json.Unmarshal(env.Data, &requests)).To(Succeed())
		Expect(requests).To(HaveLen(1))
		Expect(requests[0].User.Email).To(Equal("staff@example.com"))
	})

	It("should refuse an outsider approving", func() {
		id := submit("2025-08-01", "2025-08-02")

		w, _ := do(&outsider, http.MethodPatch, fmt.Sprintf("/leave-requests/%d/approve", id), nil)

		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should reject with an empty body using the default reason", func() {
		id := submit("2025-08-01", "2025-08-02")

		w, env := do(&manager, http.MethodPatch, fmt.Sprintf("/leave-requests/%d/reject", id), nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		var rejected leave.LeaveRequestResponse
		Expect(json.Unmarshal(env.Data, &rejected)).To(Succeed())
		Expect(rejected.Status).To(Equal(leave.StatusRejected))
		Expect(*rejected.RejectionReason).To(Equal(leave.DefaultRejectionReason))

		w, env = do(&manager, http.MethodPatch, fmt.Sprintf("/leave-requests/%d/approve", id), nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(env.Error.Message).To(Equal("Cannot approve request with status: Rejected"))
	})

	It("should reject malformed ids and filters", func() {
		w, env := do(&staff, http.MethodGet, "/leave-requests/abc", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(env.Error.Message).To(Equal("Invalid leave request ID"))

		w, env = do(&admin, http.MethodGet, "/leave-requests?status=archived", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(env.Error.Message).To(Equal("Invalid status filter"))

		w, _ = do(&admin, http.MethodGet, "/leave-requests/999", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should let admins overwrite balances", func() {
		w, env := do(&admin, http.MethodPatch, fmt.Sprintf("/leave-requests/balance/%d", staff.id), map[string]interface{}{"annual_leave_balance": 15})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(env.Message).To(Equal("Leave balance successfully updated"))
		Expect(balanceOf(staff.id)).To(Equal(15))

		w, env = do(&admin, http.MethodPatch, fmt.Sprintf("/leave-requests/balance/%d", staff.id), map[string]interface{}{"annual_leave_balance": "abc"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(env.Error.Message).To(Equal("Annual leave balance must be a valid number"))

		w, _ = do(&manager, http.MethodPatch, fmt.Sprintf("/leave-requests/balance/%d", staff.id), map[string]interface{}{"annual_leave_balance": 1})
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should list a user's requests with a message when there are none", func() {
		w, env := do(&admin, http.MethodGet, fmt.Sprintf("/leave-requests/user/%d", manager.id), nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(env.Message).To(Equal("No leave requests found for Test User"))
	})
})
