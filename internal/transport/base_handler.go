package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// SuccessResponse is the envelope of every successful response.
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

type ErrorBody struct {
	*internal.AppError
	Timestamp time.Time `json:"-"`
}

func (b ErrorBody) MarshalJSON() ([]byte, error) {
	raw, err := b.AppError.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["timestamp"] = b.Timestamp.UTC().Format(time.RFC3339)
	return json.Marshal(fields)
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteSuccess wraps data in the success envelope.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	h.WriteJSON(w, status, SuccessResponse{Message: message, Data: data})
}

// WriteAppError renders err in the error envelope with its own status.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err *internal.AppError) {
	status := err.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	h.WriteJSON(w, status, ErrorResponse{Error: ErrorBody{AppError: err, Timestamp: time.Now()}})
}

// WriteError writes an error response with an explicit status and message.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Warn("http error", "status", status, "message", message)
	h.WriteAppError(w, &internal.AppError{
		Type:       errorTypeForStatus(status),
		Code:       errorCodeForStatus(status),
		Message:    message,
		StatusCode: status,
	})
}

// HandleServiceError renders a service failure. Anything that is not an
// AppError is logged and shown as the generic Internal error.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := internal.AsAppError(err)
	lg := logger.From(r.Context())
	if appErr.StatusCode >= http.StatusInternalServerError {
		lg.Error("request failed", "path", r.URL.Path, "code", appErr.Code, "error", err)
	} else {
		lg.Info("request rejected", "path", r.URL.Path, "code", appErr.Code, "message", appErr.PublicMessage())
	}
	h.WriteAppError(w, appErr)
}

// DecodeJSON decodes the request body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}, allowEmpty bool) error {
	if r.Body == nil {
		if allowEmpty {
			return nil
		}
		return internal.ErrInvalidRequestBody
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return internal.ErrInvalidRequestBody.WithCause(err)
	}
	return nil
}

// PathID parses the named chi URL parameter as a positive integer id.
func (h *BaseHandler) PathID(r *http.Request, name string, invalid *internal.AppError) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		if invalid == nil {
			invalid = internal.ErrInvalidID
		}
		return 0, invalid
	}
	return id, nil
}

// Pagination reads limit and offset query parameters. Out-of-range values
// fall back to the defaults.
func (h *BaseHandler) Pagination(r *http.Request, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 && l <= maxLimit {
			limit = l
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if o, err := strconv.Atoi(raw); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	const prefix = "bearer "
	if len(authHeader) < len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(authHeader[len(prefix):])
}

func errorTypeForStatus(status int) internal.ErrorType {
	switch status {
	case http.StatusBadRequest:
		return internal.ErrorTypeValidation
	case http.StatusUnauthorized:
		return internal.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return internal.ErrorTypeForbidden
	case http.StatusNotFound:
		return internal.ErrorTypeNotFound
	case http.StatusConflict:
		return internal.ErrorTypeConflict
	case http.StatusTooManyRequests:
		return internal.ErrorTypeRateLimited
	default:
		return internal.ErrorTypeInternal
	}
}

func errorCodeForStatus(status int) internal.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return internal.ErrCodeInvalidInput
	case http.StatusUnauthorized:
		return internal.ErrCodeNotAuthenticated
	case http.StatusForbidden:
		return internal.ErrCodeForbidden
	case http.StatusNotFound:
		return internal.ErrCodeNotFound
	case http.StatusConflict:
		return internal.ErrCodeConflict
	case http.StatusTooManyRequests:
		return internal.ErrCodeRateLimited
	default:
		return internal.ErrCodeInternal
	}
}
