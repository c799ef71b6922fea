package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal/core/events"
)

// AuditHandler writes every leave lifecycle event to the audit log.
type AuditHandler struct {
	logger *slog.Logger
}

func NewAuditHandler(logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		logger: logger.With("component", "leave_audit"),
	}
}

func (h *AuditHandler) HandleLeaveEvent(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case *events.LeaveEvent:
		args := []any{
			"event_id", e.EventID(),
			"request_id", e.RequestID,
			"owner_id", e.OwnerID,
			"actor_id", e.ActorID,
			"days", e.Days,
			"from_status", e.FromStatus,
			"to_status", e.ToStatus,
		}
		if e.BalanceAfter != nil {
			args = append(args, "balance_after", *e.BalanceAfter)
		}
		h.logger.InfoContext(ctx, e.EventType(), args...)
	case *events.BalanceUpdatedEvent:
		h.logger.InfoContext(ctx, e.EventType(),
			"event_id", e.EventID(),
			"user_id", e.UserID,
			"actor_id", e.ActorID,
			"previous", e.Previous,
			"current", e.Current)
	default:
		h.logger.Error("invalid event type for leave audit handler", "event_type", event.EventType())
		return fmt.Errorf("unexpected leave event %T", event)
	}
	return nil
}

func (h *AuditHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	for _, eventType := range events.LeaveEventTypes {
		eventBus.Subscribe(eventType, h.HandleLeaveEvent)
	}

	h.logger.Info("leave audit handlers registered", "handlers", events.LeaveEventTypes)
}
