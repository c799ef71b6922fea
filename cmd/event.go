package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the leave lifecycle events and the audit subscriber`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a synthetic leave event",
	Long:  `Publish a synthetic leave event through the audit subscriber for testing and debugging`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), logger.LoggerWrapper(), args[0])
	},
}

var (
	eventRequestID int64
	eventUserID    int64
	eventDays      int
)

func init() {
	publishEventCmd.Flags().Int64Var(&eventRequestID, "request-id", 1, "Leave request id carried by the event")
	publishEventCmd.Flags().Int64Var(&eventUserID, "user-id", 1, "Owner of the request or balance")
	publishEventCmd.Flags().IntVar(&eventDays, "days", 1, "Number of days carried by the event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}

func syntheticEvent(eventType string) (events.Event, error) {
	if !slices.Contains(events.LeaveEventTypes, eventType) {
		return nil, fmt.Errorf("unknown event type %q, expected one of %v", eventType, events.LeaveEventTypes)
	}

	switch eventType {
	case events.EventTypeBalanceUpdated:
		return events.NewBalanceUpdatedEvent(eventUserID, 0, 0, eventDays), nil
	case events.EventTypeLeaveCreated:
		return events.NewLeaveEvent(eventType, eventRequestID, eventUserID, eventUserID, eventDays, "", string(leave.StatusPending)), nil
	case events.EventTypeLeaveApproved:
		return events.NewLeaveEvent(eventType, eventRequestID, eventUserID, 0, eventDays, string(leave.StatusPending), string(leave.StatusApproved)), nil
	case events.EventTypeLeaveRejected:
		return events.NewLeaveEvent(eventType, eventRequestID, eventUserID, 0, eventDays, string(leave.StatusPending), string(leave.StatusRejected)), nil
	default:
		return events.NewLeaveEvent(eventType, eventRequestID, eventUserID, eventUserID, eventDays, string(leave.StatusPending), string(leave.StatusCancelled)), nil
	}
}

func publishTestEvent(ctx context.Context, lg *slog.Logger, eventType string) error {
	event, err := syntheticEvent(eventType)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(lg)
	leave.NewAuditHandler(lg).RegisterEventHandlers(bus)

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())
	if err := bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	if !bus.Drain(5 * time.Second) {
		return fmt.Errorf("audit handler did not finish handling %s", eventType)
	}

	lg.Info("test event published successfully")
	return nil
}
