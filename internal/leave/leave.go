package leave

import (
	"math"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

const DefaultLeaveType = "Annual Leave"

// ParseStatus matches a status name ignoring case.
func ParseStatus(raw string) (Status, bool) {
	for _, s := range []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled} {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, true
		}
	}
	return "", false
}

// Active statuses block overlapping requests.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// Owner is the requester summary embedded in responses.
type Owner struct {
	ID         int64   `json:"id"`
	Email      string  `json:"email"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Department *string `json:"department,omitempty"`
}

type LeaveRequest struct {
	ID              int64
	UserID          int64
	User            *Owner
	LeaveType       string
	StartDate       time.Time
	EndDate         time.Time
	Status          Status
	Reason          *string
	ReviewedBy      *int64
	ReviewedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DayCount is the inclusive number of calendar days between start and end.
func DayCount(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours()/24)) + 1
}

// Overlaps reports whether two inclusive date ranges share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

func (r *LeaveRequest) Days() int {
	return DayCount(r.StartDate, r.EndDate)
}

func (r *LeaveRequest) OverlapsRange(start, end time.Time) bool {
	return Overlaps(r.StartDate, r.EndDate, start, end)
}

func (r *LeaveRequest) CanBeReviewed() bool {
	return r.Status == StatusPending
}

func (r *LeaveRequest) CanBeCancelled() bool {
	return !r.Status.Terminal()
}

// FindOverlap returns the first active request in existing that shares a day
// with [start, end].
func FindOverlap(existing []*LeaveRequest, start, end time.Time) *LeaveRequest {
	for _, r := range existing {
		if r.Status.Active() && r.OverlapsRange(start, end) {
			return r
		}
	}
	return nil
}

func NewLeaveRequest(userID int64, leaveType string, start, end time.Time, reason *string) *LeaveRequest {
	if strings.TrimSpace(leaveType) == "" {
		leaveType = DefaultLeaveType
	}
	now := time.Now().UTC()
	return &LeaveRequest{
		UserID:    userID,
		LeaveType: strings.TrimSpace(leaveType),
		StartDate: start,
		EndDate:   end,
		Status:    StatusPending,
		Reason:    reason,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LeaveRequestResponse renders dates as YYYY-MM-DD.
type LeaveRequestResponse struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	User            *Owner     `json:"user,omitempty"`
	LeaveType       string     `json:"leave_type"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	Days            int        `json:"days"`
	Status          Status     `json:"status"`
	Reason          *string    `json:"reason,omitempty"`
	ReviewedBy      *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (r *LeaveRequest) ToResponse() *LeaveRequestResponse {
	return &LeaveRequestResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		User:            r.User,
		LeaveType:       r.LeaveType,
		StartDate:       r.StartDate.Format(validation.DateLayout),
		EndDate:         r.EndDate.Format(validation.DateLayout),
		Days:            r.Days(),
		Status:          r.Status,
		Reason:          r.Reason,
		ReviewedBy:      r.ReviewedBy,
		ReviewedAt:      r.ReviewedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func ToResponses(requests []*LeaveRequest) []*LeaveRequestResponse {
	out := make([]*LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, r.ToResponse())
	}
	return out
}

func ToDataModel(r *LeaveRequest) *leaveDatamodel.LeaveRequest {
	return &leaveDatamodel.LeaveRequest{
		ID:              r.ID,
		UserID:          r.UserID,
		LeaveType:       r.LeaveType,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Status:          string(r.Status),
		Reason:          r.Reason,
		ReviewedBy:      r.ReviewedBy,
		ReviewedAt:      r.ReviewedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// FromDataModel fills User only when the association was preloaded.
func FromDataModel(m *leaveDatamodel.LeaveRequest) *LeaveRequest {
	r := &LeaveRequest{
		ID:              m.ID,
		UserID:          m.UserID,
		LeaveType:       m.LeaveType,
		StartDate:       m.StartDate.UTC(),
		EndDate:         m.EndDate.UTC(),
		Status:          Status(m.Status),
		Reason:          m.Reason,
		ReviewedBy:      m.ReviewedBy,
		ReviewedAt:      m.ReviewedAt,
		RejectionReason: m.RejectionReason,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.User.ID != 0 {
		r.User = ownerFromDataModel(&m.User)
	}
	return r
}

func ownerFromDataModel(u *userDatamodel.User) *Owner {
	return &Owner{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Department: u.Department,
	}
}
