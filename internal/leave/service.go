package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"github.com/frahmantamala/leave-management/internal/user"
)

// ErrStatusChanged is returned by the repository when a conditional status
// update matched no row because another request moved the leave first.
var ErrStatusChanged = errors.New("leave request status changed concurrently")

type Repository interface {
	// Create inserts r unless an active request of the same user overlaps it.
	Create(ctx context.Context, r *LeaveRequest) error
	GetByID(ctx context.Context, id int64) (*LeaveRequest, error)
	List(ctx context.Context, q Query) ([]*LeaveRequest, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]*LeaveRequest, error)
	// Approve debits days from ownerID and marks the request Approved in one
	// transaction. It returns the owner's balance afterwards.
	Approve(ctx context.Context, id, ownerID, reviewerID int64, days int) (int, error)
	Reject(ctx context.Context, id, reviewerID int64, reason string) error
	// Cancel moves the request from status `from` to Cancelled and credits
	// credit days back to ownerID.
	Cancel(ctx context.Context, id, ownerID int64, from Status, credit int) error
	Rollover(ctx context.Context, next func(current int) int, dryRun bool) ([]BalanceChange, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	SetBalance(ctx context.Context, id int64, balance int) error
}

type StaffDirectory interface {
	StaffIDs(ctx context.Context, managerID int64) ([]int64, error)
	Manages(ctx context.Context, managerID, staffID int64) (bool, error)
}

type PolicySource interface {
	Policy(ctx context.Context, name string) (*leavetype.LeaveType, error)
}

var (
	errNotReviewer  = internal.NewForbiddenError("Not authorised to review this request", internal.ErrCodeForbidden)
	errNotCanceller = internal.NewForbiddenError("Not authorised to cancel this request", internal.ErrCodeForbidden)
	errNotViewer    = internal.NewForbiddenError("Not authorised to view this request", internal.ErrCodeForbidden)
	errNotStaffOf   = internal.NewForbiddenError("Not authorised to view leave requests of this user", internal.ErrCodeForbidden)
)

const (
	msgNoStaff        = "No staff are currently assigned to you"
	msgNoPendingStaff = "No pending requests for your staff"
)

type Service struct {
	repo      Repository
	users     UserDirectory
	staff     StaffDirectory
	policies  PolicySource
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, users UserDirectory, staff StaffDirectory, policies PolicySource, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		staff:     staff,
		policies:  policies,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) fail(ctx context.Context, msg string, err error, args ...any) error {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	s.logger.ErrorContext(ctx, msg, append(args, "error", err)...)
	return internal.NewInternalError(err)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func principal(ctx context.Context) (*internal.User, error) {
	p, ok := internal.UserFromContext(ctx)
	if !ok {
		return nil, internal.ErrNotAuthenticated
	}
	return p, nil
}

// Create files a Pending leave request for the principal.
func (s *Service) Create(ctx context.Context, dto *CreateLeaveRequestDTO) (*CreatedLeaveRequest, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return nil, s.fail(ctx, "failed to load requester", err, "user_id", p.ID)
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}
	start, end, err := dto.Period()
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListActiveByUser(ctx, owner.ID)
	if err != nil {
		return nil, s.fail(ctx, "failed to load existing requests", err, "user_id", owner.ID)
	}
	if clash := FindOverlap(existing, start, end); clash != nil {
		s.logger.InfoContext(ctx, "leave request overlaps existing request",
			"user_id", owner.ID,
			"existing_id", clash.ID)
		return nil, internal.ErrOverlappingRequest
	}

	days := DayCount(start, end)
	if days > owner.AnnualLeaveBalance {
		return nil, internal.ErrExceedsBalance
	}

	req := NewLeaveRequest(owner.ID, dto.leaveType(), start, end, dto.Reason)
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, s.fail(ctx, "failed to create leave request", err, "user_id", owner.ID)
	}
	req.User = &Owner{
		ID:         owner.ID,
		Email:      owner.Email,
		FirstName:  owner.FirstName,
		LastName:   owner.LastName,
		Department: owner.Department,
	}

	s.logger.InfoContext(ctx, "leave request created",
		"request_id", req.ID,
		"user_id", owner.ID,
		"days", days)
	s.publish(ctx, events.NewLeaveEvent(events.EventTypeLeaveCreated, req.ID, owner.ID, p.ID, days, "", string(StatusPending)))

	return &CreatedLeaveRequest{
		LeaveRequestResponse: req.ToResponse(),
		RemainingBalance:     owner.AnnualLeaveBalance - days,
	}, nil
}

// ListMine returns the principal's own requests, newest first.
func (s *Service) ListMine(ctx context.Context) (*ListResult, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, Query{UserIDs: []int64{p.ID}}, "")
}

// List returns the requests visible to the principal: their own for staff,
// those of currently mapped staff for managers, everything for admins.
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	return s.scopedList(ctx, filter, msgNoStaff)
}

// ListPending is List restricted to Pending requests.
func (s *Service) ListPending(ctx context.Context) (*ListResult, error) {
	pending := StatusPending
	return s.scopedList(ctx, ListFilter{Status: &pending}, msgNoPendingStaff)
}

func (s *Service) scopedList(ctx context.Context, filter ListFilter, noStaffMessage string) (*ListResult, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	q := Query{Status: filter.Status}
	switch {
	case p.Role.IsAdmin():
		if filter.UserID != nil {
			q.UserIDs = []int64{*filter.UserID}
		}
	case p.Role.IsManager():
		ids, err := s.staff.StaffIDs(ctx, p.ID)
		if err != nil {
			return nil, s.fail(ctx, "failed to load managed staff", err, "manager_id", p.ID)
		}
		if len(ids) == 0 {
			return &ListResult{Requests: []*LeaveRequestResponse{}, Message: noStaffMessage}, nil
		}
		q.UserIDs = narrow(ids, filter.UserID)
	case p.Role.Valid():
		q.UserIDs = narrow([]int64{p.ID}, filter.UserID)
	default:
		return nil, internal.ErrForbidden
	}

	return s.list(ctx, q, "")
}

// narrow keeps only userID when it is inside scope; outside scope nothing
// matches.
func narrow(scope []int64, userID *int64) []int64 {
	if userID == nil {
		return scope
	}
	for _, id := range scope {
		if id == *userID {
			return []int64{id}
		}
	}
	return []int64{}
}

func (s *Service) list(ctx context.Context, q Query, emptyMessage string) (*ListResult, error) {
	if q.UserIDs != nil && len(q.UserIDs) == 0 {
		return &ListResult{Requests: []*LeaveRequestResponse{}, Message: emptyMessage}, nil
	}
	requests, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, s.fail(ctx, "failed to list leave requests", err)
	}
	result := &ListResult{Requests: ToResponses(requests)}
	if len(requests) == 0 {
		result.Message = emptyMessage
	}
	return result, nil
}

// ListForUser returns every request of userID. Admins may ask for anyone,
// managers only for staff they currently manage.
func (s *Service) ListForUser(ctx context.Context, userID int64) (*ListResult, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case p.Role.IsAdmin():
	case p.Role.IsManager():
		ok, err := s.staff.Manages(ctx, p.ID, userID)
		if err != nil {
			return nil, s.fail(ctx, "failed to check manager mapping", err, "manager_id", p.ID)
		}
		if !ok {
			return nil, errNotStaffOf
		}
	default:
		return nil, errNotStaffOf
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "failed to load user", err, "user_id", userID)
	}

	return s.list(ctx, Query{UserIDs: []int64{target.ID}}, fmt.Sprintf("No leave requests found for %s", target.FullName()))
}

// Get returns a single request to its owner, an admin, or the owner's
// current manager.
func (s *Service) Get(ctx context.Context, id int64) (*LeaveRequestResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	visible, err := s.canSee(ctx, p, req.UserID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, errNotViewer
	}
	return req.ToResponse(), nil
}

func (s *Service) load(ctx context.Context, id int64) (*LeaveRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "failed to load leave request", err, "request_id", id)
	}
	return req, nil
}

// canSee reports whether p may read data owned by ownerID.
func (s *Service) canSee(ctx context.Context, p *internal.User, ownerID int64) (bool, error) {
	if p.Role.IsAdmin() || p.ID == ownerID {
		return true, nil
	}
	if !p.Role.IsManager() {
		return false, nil
	}
	ok, err := s.staff.Manages(ctx, p.ID, ownerID)
	if err != nil {
		return false, s.fail(ctx, "failed to check manager mapping", err, "manager_id", p.ID)
	}
	return ok, nil
}

// authorizeReview allows admins, and managers who currently manage ownerID.
func (s *Service) authorizeReview(ctx context.Context, p *internal.User, ownerID int64) error {
	if !p.Role.CanReview() {
		return internal.ErrForbidden
	}
	if p.Role.IsAdmin() {
		return nil
	}
	ok, err := s.staff.Manages(ctx, p.ID, ownerID)
	if err != nil {
		return s.fail(ctx, "failed to check manager mapping", err, "manager_id", p.ID)
	}
	if !ok {
		return errNotReviewer
	}
	return nil
}

func transitionError(verb string, status Status) error {
	return internal.NewInvalidStateTransitionError(fmt.Sprintf("Cannot %s with status: %s", verb, status))
}

// staleTransition reloads a request whose conditional update lost a race and
// reports the status it moved to.
func (s *Service) staleTransition(ctx context.Context, id int64, verb string) error {
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	s.logger.WarnContext(ctx, "leave request changed during transition",
		"request_id", id,
		"status", current.Status)
	return transitionError(verb, current.Status)
}

// Approve debits the owner's balance and marks the request Approved.
func (s *Service) Approve(ctx context.Context, id int64) (*LeaveRequestResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReview(ctx, p, req.UserID); err != nil {
		return nil, err
	}
	if !req.CanBeReviewed() {
		return nil, transitionError("approve request", req.Status)
	}

	days := req.Days()
	owner, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, s.fail(ctx, "failed to load request owner", err, "user_id", req.UserID)
	}
	if owner.AnnualLeaveBalance < days {
		return nil, internal.ErrInsufficientBalance
	}

	balance, err := s.repo.Approve(ctx, req.ID, req.UserID, p.ID, days)
	if err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return nil, s.staleTransition(ctx, req.ID, "approve request")
		}
		return nil, s.fail(ctx, "failed to approve leave request", err, "request_id", req.ID)
	}

	s.logger.InfoContext(ctx, "leave request approved",
		"request_id", req.ID,
		"user_id", req.UserID,
		"reviewer_id", p.ID,
		"days", days,
		"balance", balance)

	event := events.NewLeaveEvent(events.EventTypeLeaveApproved, req.ID, req.UserID, p.ID, days, string(StatusPending), string(StatusApproved))
	event.BalanceAfter = &balance
	s.publish(ctx, event)

	return s.reload(ctx, req.ID)
}

// Reject marks a Pending request Rejected. The balance is untouched.
func (s *Service) Reject(ctx context.Context, id int64, dto *RejectDTO) (*LeaveRequestResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if dto != nil {
		if err := dto.Validate(); err != nil {
			return nil, err
		}
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReview(ctx, p, req.UserID); err != nil {
		return nil, err
	}
	if !req.CanBeReviewed() {
		return nil, transitionError("reject leave request", req.Status)
	}

	reason := dto.ReasonOrDefault()
	if err := s.repo.Reject(ctx, req.ID, p.ID, reason); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return nil, s.staleTransition(ctx, req.ID, "reject leave request")
		}
		return nil, s.fail(ctx, "failed to reject leave request", err, "request_id", req.ID)
	}

	s.logger.InfoContext(ctx, "leave request rejected",
		"request_id", req.ID,
		"user_id", req.UserID,
		"reviewer_id", p.ID)
	s.publish(ctx, events.NewLeaveEvent(events.EventTypeLeaveRejected, req.ID, req.UserID, p.ID, req.Days(), string(StatusPending), string(StatusRejected)))

	return s.reload(ctx, req.ID)
}

// Cancel withdraws a Pending or Approved request. Approved days go back to
// the owner's balance.
func (s *Service) Cancel(ctx context.Context, id int64) (*LeaveRequestResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != p.ID && !p.Role.IsAdmin() {
		return nil, errNotCanceller
	}
	if !req.CanBeCancelled() {
		return nil, transitionError("cancel request", req.Status)
	}

	days := req.Days()
	credit := 0
	if req.Status == StatusApproved {
		credit = days
	}

	if err := s.repo.Cancel(ctx, req.ID, req.UserID, req.Status, credit); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return nil, s.staleTransition(ctx, req.ID, "cancel request")
		}
		return nil, s.fail(ctx, "failed to cancel leave request", err, "request_id", req.ID)
	}

	s.logger.InfoContext(ctx, "leave request cancelled",
		"request_id", req.ID,
		"user_id", req.UserID,
		"actor_id", p.ID,
		"credited", credit)
	s.publish(ctx, events.NewLeaveEvent(events.EventTypeLeaveCancelled, req.ID, req.UserID, p.ID, days, string(req.Status), string(StatusCancelled)))

	return s.reload(ctx, req.ID)
}

func (s *Service) reload(ctx context.Context, id int64) (*LeaveRequestResponse, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return req.ToResponse(), nil
}
