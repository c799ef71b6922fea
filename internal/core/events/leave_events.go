package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLeaveCreated   = "leave.created"
	EventTypeLeaveApproved  = "leave.approved"
	EventTypeLeaveRejected  = "leave.rejected"
	EventTypeLeaveCancelled = "leave.cancelled"
	EventTypeBalanceUpdated = "balance.updated"
)

// LeaveEventTypes lists every lifecycle event the leave service emits.
var LeaveEventTypes = []string{
	EventTypeLeaveCreated,
	EventTypeLeaveApproved,
	EventTypeLeaveRejected,
	EventTypeLeaveCancelled,
	EventTypeBalanceUpdated,
}

type LeaveEvent struct {
	BaseEvent
	RequestID    int64  `json:"request_id"`
	OwnerID      int64  `json:"owner_id"`
	ActorID      int64  `json:"actor_id"`
	Days         int    `json:"days"`
	FromStatus   string `json:"from_status,omitempty"`
	ToStatus     string `json:"to_status"`
	BalanceAfter *int   `json:"balance_after,omitempty"`
}

func NewLeaveEvent(eventType string, requestID, ownerID, actorID int64, days int, from, to string) *LeaveEvent {
	return &LeaveEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":  requestID,
				"owner_id":    ownerID,
				"actor_id":    actorID,
				"days":        days,
				"from_status": from,
				"to_status":   to,
			},
		},
		RequestID:  requestID,
		OwnerID:    ownerID,
		ActorID:    actorID,
		Days:       days,
		FromStatus: from,
		ToStatus:   to,
	}
}

type BalanceUpdatedEvent struct {
	BaseEvent
	UserID   int64 `json:"user_id"`
	ActorID  int64 `json:"actor_id"`
	Previous int   `json:"previous"`
	Current  int   `json:"current"`
}

func NewBalanceUpdatedEvent(userID, actorID int64, previous, current int) *BalanceUpdatedEvent {
	return &BalanceUpdatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBalanceUpdated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":  userID,
				"actor_id": actorID,
				"previous": previous,
				"current":  current,
			},
		},
		UserID:   userID,
		ActorID:  actorID,
		Previous: previous,
		Current:  current,
	}
}
