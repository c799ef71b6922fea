package leave

import (
	"context"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"github.com/frahmantamala/leave-management/internal/user"
)

var errNotBalanceViewer = internal.NewForbiddenError("Not authorised to view this balance", internal.ErrCodeForbidden)

func balanceOf(u *user.User) *BalanceResponse {
	return &BalanceResponse{
		UserID:             u.ID,
		Email:              u.Email,
		Name:               u.FullName(),
		AnnualLeaveBalance: u.AnnualLeaveBalance,
	}
}

// GetBalance returns the remaining annual leave of userID to the user
// themself, an admin, or their current manager.
func (s *Service) GetBalance(ctx context.Context, userID int64) (*BalanceResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	visible, err := s.canSee(ctx, p, userID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, errNotBalanceViewer
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "failed to load user balance", err, "user_id", userID)
	}
	return balanceOf(u), nil
}

// UpdateBalance overwrites the balance of userID. Admin only.
func (s *Service) UpdateBalance(ctx context.Context, userID int64, dto *UpdateBalanceDTO) (*BalanceResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if !p.Role.IsAdmin() {
		return nil, internal.ErrForbidden
	}

	value, err := dto.Value()
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "failed to load user", err, "user_id", userID)
	}

	previous := u.AnnualLeaveBalance
	if err := s.users.SetBalance(ctx, userID, value); err != nil {
		return nil, s.fail(ctx, "failed to update balance", err, "user_id", userID)
	}
	u.AnnualLeaveBalance = value

	s.logger.InfoContext(ctx, "leave balance overwritten",
		"user_id", userID,
		"actor_id", p.ID,
		"previous", previous,
		"current", value)
	s.publish(ctx, events.NewBalanceUpdatedEvent(userID, p.ID, previous, value))

	return balanceOf(u), nil
}

// RolloverBalances resets every balance to the annual allowance plus the
// carried-over days allowed by the Annual Leave policy. With dryRun nothing
// is written.
func (s *Service) RolloverBalances(ctx context.Context, dryRun bool) ([]BalanceChange, error) {
	policy, err := s.policies.Policy(ctx, leavetype.AnnualLeave)
	if err != nil {
		return nil, s.fail(ctx, "failed to load annual leave policy", err)
	}

	changes, err := s.repo.Rollover(ctx, policy.RolloverBalance, dryRun)
	if err != nil {
		return nil, s.fail(ctx, "failed to roll over balances", err)
	}

	s.logger.InfoContext(ctx, "leave balances rolled over",
		"users", len(changes),
		"default_balance", policy.DefaultBalance,
		"max_rollover", policy.MaxRollover,
		"dry_run", dryRun)

	if !dryRun {
		for _, c := range changes {
			if c.Previous != c.Current {
				s.publish(ctx, events.NewBalanceUpdatedEvent(c.UserID, 0, c.Previous, c.Current))
			}
		}
	}
	return changes, nil
}
