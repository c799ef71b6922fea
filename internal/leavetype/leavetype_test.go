package leavetype_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/frahmantamala/leave-management/internal"
	leaveTypeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leavetype"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockRepository struct {
	types map[string]*leaveTypeDatamodel.LeaveType
	err   error
}

func (m *mockRepository) GetAll(ctx context.Context) ([]*leaveTypeDatamodel.LeaveType, error) {
	var out []*leaveTypeDatamodel.LeaveType
	for _, t := range m.types {
		out = append(out, t)
	}
	return out, m.err
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*leaveTypeDatamodel.LeaveType, error) {
	for _, t := range m.types {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, m.err
}

func (m *mockRepository) GetByName(ctx context.Context, name string) (*leaveTypeDatamodel.LeaveType, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.types[name], nil
}

func (m *mockRepository) Create(ctx context.Context, t *leaveTypeDatamodel.LeaveType) error {
	t.ID = int64(len(m.types) + 1)
	m.types[t.Name] = t
	return nil
}

func (m *mockRepository) Update(ctx context.Context, t *leaveTypeDatamodel.LeaveType) error {
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	return nil
}

func (m *mockRepository) CountRequestsUsing(ctx context.Context, name string) (int64, error) {
	return 0, nil
}

var _ = Describe("Leave policy", func() {
	var (
		repo    *mockRepository
		service *leavetype.Service
	)

	BeforeEach(func() {
		repo = &mockRepository{types: map[string]*leaveTypeDatamodel.LeaveType{}}
		service = leavetype.NewService(repo, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	})

	It("should fall back to 25 days with 5 rollover when unconfigured", func() {
		policy, err := service.Policy(context.Background(), leavetype.AnnualLeave)

		Expect(err).NotTo(HaveOccurred())
		Expect(policy.DefaultBalance).To(Equal(25))
		Expect(policy.MaxRollover).To(Equal(5))
	})

	It("should use the configured type", func() {
		repo.types[leavetype.AnnualLeave] = &leaveTypeDatamodel.LeaveType{ID: 1, Name: leavetype.AnnualLeave, DefaultBalance: 20, MaxRollover: 2}

		policy, err := service.Policy(context.Background(), leavetype.AnnualLeave)

		Expect(err).NotTo(HaveOccurred())
		Expect(policy.RolloverBalance(7)).To(Equal(22))
	})

	It("should hide repository failures", func() {
		repo.err = errors.New("db down")

		_, err := service.Policy(context.Background(), leavetype.AnnualLeave)

		Expect(internal.KindOf(err)).To(Equal(internal.ErrCodeInternal))
	})

	DescribeTable("RolloverBalance",
		func(current, expected int) {
			Expect(leavetype.Fallback().RolloverBalance(current)).To(Equal(expected))
		},
		Entry("nothing left", 0, 25),
		Entry("below the cap", 3, 28),
		Entry("at the cap", 5, 30),
		Entry("above the cap", 12, 30),
	)
})
