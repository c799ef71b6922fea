package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
	"github.com/frahmantamala/leave-management/internal/leave"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var activeStatuses = []string{string(leave.StatusPending), string(leave.StatusApproved)}

// lockUser serialises writers on the same user row. SQLite ignores the
// locking clause.
func lockUser(tx *gorm.DB, userID int64) error {
	var u userDatamodel.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return internal.ErrUserNotFound
	}
	return err
}

func activeByUser(tx *gorm.DB, userID int64) ([]*leave.LeaveRequest, error) {
	var rows []leaveDatamodel.LeaveRequest
	err := tx.Where("user_id = ? AND status IN ?", userID, activeStatuses).
		Order("start_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func fromRows(rows []leaveDatamodel.LeaveRequest) []*leave.LeaveRequest {
	out := make([]*leave.LeaveRequest, len(rows))
	for i := range rows {
		out[i] = leave.FromDataModel(&rows[i])
	}
	return out
}

// Create re-checks overlap inside the insert transaction, with the owner's
// row locked, so two concurrent submissions cannot both pass.
func (r *Repository) Create(ctx context.Context, req *leave.LeaveRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, req.UserID); err != nil {
			return err
		}

		existing, err := activeByUser(tx, req.UserID)
		if err != nil {
			return err
		}
		if leave.FindOverlap(existing, req.StartDate, req.EndDate) != nil {
			return internal.ErrOverlappingRequest
		}

		model := leave.ToDataModel(req)
		if err := tx.Omit("User").Create(model).Error; err != nil {
			return err
		}
		req.ID = model.ID
		req.CreatedAt = model.CreatedAt
		req.UpdatedAt = model.UpdatedAt
		return nil
	})
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*leave.LeaveRequest, error) {
	var model leaveDatamodel.LeaveRequest
	err := r.db.WithContext(ctx).Preload("User").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrLeaveRequestNotFound
		}
		return nil, err
	}
	return leave.FromDataModel(&model), nil
}

func (r *Repository) List(ctx context.Context, q leave.Query) ([]*leave.LeaveRequest, error) {
	query := r.db.WithContext(ctx).Preload("User").Order("created_at DESC, id DESC")
	if q.UserIDs != nil {
		query = query.Where("user_id IN ?", q.UserIDs)
	}
	if q.Status != nil {
		query = query.Where("status = ?", string(*q.Status))
	}

	var rows []leaveDatamodel.LeaveRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *Repository) ListActiveByUser(ctx context.Context, userID int64) ([]*leave.LeaveRequest, error) {
	return activeByUser(r.db.WithContext(ctx), userID)
}

// transition moves request id from one status to another. No matching row
// means another writer got there first.
func transition(tx *gorm.DB, id int64, from, to leave.Status, extra map[string]interface{}) error {
	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": time.Now().UTC(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	res := tx.Model(&leaveDatamodel.LeaveRequest{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leave.ErrStatusChanged
	}
	return nil
}

func (r *Repository) Approve(ctx context.Context, id, ownerID, reviewerID int64, days int) (int, error) {
	var balance int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := transition(tx, id, leave.StatusPending, leave.StatusApproved, map[string]interface{}{
			"reviewed_by": reviewerID,
			"reviewed_at": now,
		}); err != nil {
			return err
		}

		res := tx.Model(&userDatamodel.User{}).
			Where("id = ? AND annual_leave_balance >= ?", ownerID, days).
			UpdateColumn("annual_leave_balance", gorm.Expr("annual_leave_balance - ?", days))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrInsufficientBalance
		}

		var balances []int
		if err := tx.Model(&userDatamodel.User{}).
			Where("id = ?", ownerID).
			Pluck("annual_leave_balance", &balances).Error; err != nil {
			return err
		}
		if len(balances) == 1 {
			balance = balances[0]
		}
		return nil
	})
	return balance, err
}

func (r *Repository) Reject(ctx context.Context, id, reviewerID int64, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transition(tx, id, leave.StatusPending, leave.StatusRejected, map[string]interface{}{
			"reviewed_by":      reviewerID,
			"reviewed_at":      time.Now().UTC(),
			"rejection_reason": reason,
		})
	})
}

func (r *Repository) Cancel(ctx context.Context, id, ownerID int64, from leave.Status, credit int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := transition(tx, id, from, leave.StatusCancelled, nil); err != nil {
			return err
		}
		if credit <= 0 {
			return nil
		}

		res := tx.Model(&userDatamodel.User{}).
			Where("id = ?", ownerID).
			UpdateColumn("annual_leave_balance", gorm.Expr("annual_leave_balance + ?", credit))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrUserNotFound
		}
		return nil
	})
}

// Rollover applies next to every user's balance in one transaction.
func (r *Repository) Rollover(ctx context.Context, next func(current int) int, dryRun bool) ([]leave.BalanceChange, error) {
	var changes []leave.BalanceChange
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users []userDatamodel.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "email", "annual_leave_balance").
			Order("id ASC").
			Find(&users).Error; err != nil {
			return err
		}

		changes = make([]leave.BalanceChange, 0, len(users))
		for _, u := range users {
			change := leave.BalanceChange{
				UserID:   u.ID,
				Email:    u.Email,
				Previous: u.AnnualLeaveBalance,
				Current:  next(u.AnnualLeaveBalance),
			}
			changes = append(changes, change)

			if dryRun || change.Current == change.Previous {
				continue
			}
			if err := tx.Model(&userDatamodel.User{}).
				Where("id = ?", u.ID).
				UpdateColumn("annual_leave_balance", change.Current).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}
