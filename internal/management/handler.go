package management

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type ServiceAPI interface {
	Assign(ctx context.Context, dto *AssignDTO) (*AssignmentResponse, error)
	ListMappings(ctx context.Context, managerID *int64) ([]*Mapping, error)
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

// Assign handles POST /user-management/assign
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var dto AssignDTO
	if err := h.DecodeJSON(r, &dto, false); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.Assign(r.Context(), &dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, resp, "Manager assigned to staff successfully")
}

// ListMappings handles GET /user-management/mappings?manager_id=
func (h *Handler) ListMappings(w http.ResponseWriter, r *http.Request) {
	var managerID *int64
	if raw := r.URL.Query().Get("manager_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.HandleServiceError(w, r, internal.ErrInvalidID)
			return
		}
		managerID = &id
	}

	mappings, err := h.Service.ListMappings(r.Context(), managerID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, mappings, "")
}
