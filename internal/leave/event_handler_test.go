package leave

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type unknownEvent struct {
	events.BaseEvent
}

var _ = Describe("AuditHandler", func() {
	var (
		out *bytes.Buffer
		bus *events.EventBus
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
		bus = events.NewEventBus(logger)
		NewAuditHandler(logger).RegisterEventHandlers(bus)
	})

	It("should record approvals with the resulting balance", func() {
		event := events.NewLeaveEvent(events.EventTypeLeaveApproved, 7, 1, 2, 3, "Pending", "Approved")
		balance := 7
		event.BalanceAfter = &balance

		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())

		Expect(out.String()).To(ContainSubstring(`"msg":"leave.approved"`))
		Expect(out.String()).To(ContainSubstring(`"balance_after":7`))
		Expect(out.String()).To(ContainSubstring(`"component":"leave_audit"`))
	})

	It("should record balance overwrites", func() {
		Expect(bus.PublishSync(context.Background(), events.NewBalanceUpdatedEvent(1, 3, 10, 15))).To(Succeed())

		Expect(out.String()).To(ContainSubstring(`"msg":"balance.updated"`))
		Expect(out.String()).To(ContainSubstring(`"current":15`))
	})

	It("should fail on events it does not understand", func() {
		err := bus.PublishSync(context.Background(), unknownEvent{events.BaseEvent{Type: events.EventTypeLeaveCreated}})

		Expect(err).To(HaveOccurred())
	})
})
