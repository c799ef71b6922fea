package leave

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto *CreateLeaveRequestDTO) (*CreatedLeaveRequest, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	ListMine(ctx context.Context) (*ListResult, error)
	ListPending(ctx context.Context) (*ListResult, error)
	ListForUser(ctx context.Context, userID int64) (*ListResult, error)
	Get(ctx context.Context, id int64) (*LeaveRequestResponse, error)
	Approve(ctx context.Context, id int64) (*LeaveRequestResponse, error)
	Reject(ctx context.Context, id int64, dto *RejectDTO) (*LeaveRequestResponse, error)
	Cancel(ctx context.Context, id int64) (*LeaveRequestResponse, error)
	GetBalance(ctx context.Context, userID int64) (*BalanceResponse, error)
	UpdateBalance(ctx context.Context, userID int64, dto *UpdateBalanceDTO) (*BalanceResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

var (
	errInvalidLeaveRequestID = internal.NewValidationError("Invalid leave request ID", internal.ErrCodeInvalidInput)
	errInvalidUserID         = internal.NewValidationError("Invalid user ID", internal.ErrCodeInvalidInput)
	errInvalidStatusFilter   = internal.NewValidationError("Invalid status filter", internal.ErrCodeInvalidValue)
)

// CreateLeaveRequest handles POST /leave-requests
func (h *Handler) CreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	var dto CreateLeaveRequestDTO
	if err := h.DecodeJSON(r, &dto, false); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	created, err := h.Service.Create(r.Context(), &dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, created, "Leave request submitted successfully")
}

// ListLeaveRequests handles GET /leave-requests?status=&user_id=
func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := ParseStatus(raw)
		if !ok {
			h.HandleServiceError(w, r, errInvalidStatusFilter)
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.HandleServiceError(w, r, errInvalidUserID)
			return
		}
		filter.UserID = &id
	}

	h.writeList(w, r, func(ctx context.Context) (*ListResult, error) {
		return h.Service.List(ctx, filter)
	})
}

// ListMyLeaveRequests handles GET /leave-requests/mine
func (h *Handler) ListMyLeaveRequests(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.Service.ListMine)
}

// ListPendingLeaveRequests handles GET /leave-requests/pending
func (h *Handler) ListPendingLeaveRequests(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.Service.ListPending)
}

// ListUserLeaveRequests handles GET /leave-requests/user/{userId}
func (h *Handler) ListUserLeaveRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := h.PathID(r, "userId", errInvalidUserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.writeList(w, r, func(ctx context.Context) (*ListResult, error) {
		return h.Service.ListForUser(ctx, userID)
	})
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, fetch func(context.Context) (*ListResult, error)) {
	result, err := fetch(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, result.Requests, result.Message)
}

// GetLeaveRequest handles GET /leave-requests/{id}
func (h *Handler) GetLeaveRequest(w http.ResponseWriter, r *http.Request) {
	h.withRequestID(w, r, "", h.Service.Get)
}

// ApproveLeaveRequest handles PATCH /leave-requests/{id}/approve
func (h *Handler) ApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	h.withRequestID(w, r, "Leave request approved", h.Service.Approve)
}

// RejectLeaveRequest handles PATCH /leave-requests/{id}/reject. The body is
// optional.
func (h *Handler) RejectLeaveRequest(w http.ResponseWriter, r *http.Request) {
	var dto RejectDTO
	if err := h.DecodeJSON(r, &dto, true); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.withRequestID(w, r, "Leave request rejected", func(ctx context.Context, id int64) (*LeaveRequestResponse, error) {
		return h.Service.Reject(ctx, id, &dto)
	})
}

// CancelLeaveRequest handles PATCH /leave-requests/{id}/cancel
func (h *Handler) CancelLeaveRequest(w http.ResponseWriter, r *http.Request) {
	h.withRequestID(w, r, "Leave request cancelled", h.Service.Cancel)
}

func (h *Handler) withRequestID(w http.ResponseWriter, r *http.Request, message string, do func(context.Context, int64) (*LeaveRequestResponse, error)) {
	id, err := h.PathID(r, "id", errInvalidLeaveRequestID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := do(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, resp, message)
}

// GetBalance handles GET /leave-requests/balance/{userId}
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := h.PathID(r, "userId", errInvalidUserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	balance, err := h.Service.GetBalance(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, balance, "")
}

// UpdateBalance handles PATCH /leave-requests/balance/{userId}
func (h *Handler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := h.PathID(r, "userId", errInvalidUserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateBalanceDTO
	if err := h.DecodeJSON(r, &dto, false); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	balance, err := h.Service.UpdateBalance(r.Context(), userID, &dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, balance, "Leave balance successfully updated")
}
