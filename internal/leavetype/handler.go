package leavetype

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type ServiceAPI interface {
	GetAll(ctx context.Context) ([]*LeaveType, error)
	GetByID(ctx context.Context, id int64) (*LeaveType, error)
	Create(ctx context.Context, dto *CreateLeaveTypeDTO) (*LeaveType, error)
	Update(ctx context.Context, id int64, dto *UpdateLeaveTypeDTO) (*LeaveType, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

var errInvalidLeaveTypeID = internal.NewValidationError("Invalid leave type ID", internal.ErrCodeInvalidInput)

func (h *Handler) GetLeaveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.GetAll(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, types, "")
}

func (h *Handler) GetLeaveType(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id", errInvalidLeaveTypeID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	t, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, t, "")
}

func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	var dto CreateLeaveTypeDTO
	if err := h.DecodeJSON(r, &dto, false); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	t, err := h.Service.Create(r.Context(), &dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, t, "Leave type created successfully")
}

func (h *Handler) UpdateLeaveType(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id", errInvalidLeaveTypeID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateLeaveTypeDTO
	if err := h.DecodeJSON(r, &dto, false); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	t, err := h.Service.Update(r.Context(), id, &dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, t, "Leave type updated successfully")
}

func (h *Handler) DeleteLeaveType(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id", errInvalidLeaveTypeID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
