package leave

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDayCount(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"three days", "2025-08-01", "2025-08-03", 3},
		{"two days", "2025-08-01", "2025-08-02", 2},
		{"same day", "2025-08-01", "2025-08-01", 1},
		{"across month", "2025-08-30", "2025-09-02", 4},
		{"leap day", "2024-02-28", "2024-03-01", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayCount(date(tt.start), date(tt.end)))
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name         string
		aStart, aEnd string
		bStart, bEnd string
		want         bool
	}{
		{"partial overlap", "2025-08-04", "2025-08-06", "2025-08-05", "2025-08-07", true},
		{"touching end", "2025-08-04", "2025-08-06", "2025-08-06", "2025-08-08", true},
		{"contained", "2025-08-01", "2025-08-10", "2025-08-04", "2025-08-05", true},
		{"before", "2025-08-01", "2025-08-03", "2025-08-04", "2025-08-05", false},
		{"after", "2025-08-10", "2025-08-12", "2025-08-04", "2025-08-09", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(date(tt.aStart), date(tt.aEnd), date(tt.bStart), date(tt.bEnd))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, Overlaps(date(tt.bStart), date(tt.bEnd), date(tt.aStart), date(tt.aEnd)))
		})
	}
}

func TestFindOverlapIgnoresInactive(t *testing.T) {
	existing := []*LeaveRequest{
		{ID: 1, StartDate: date("2025-08-04"), EndDate: date("2025-08-06"), Status: StatusCancelled},
		{ID: 2, StartDate: date("2025-08-04"), EndDate: date("2025-08-06"), Status: StatusRejected},
	}
	assert.Nil(t, FindOverlap(existing, date("2025-08-05"), date("2025-08-07")))

	existing = append(existing, &LeaveRequest{ID: 3, StartDate: date("2025-08-04"), EndDate: date("2025-08-06"), Status: StatusApproved})
	clash := FindOverlap(existing, date("2025-08-05"), date("2025-08-07"))
	require.NotNil(t, clash)
	assert.Equal(t, int64(3), clash.ID)
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("pending")
	assert.True(t, ok)
	assert.Equal(t, StatusPending, s)

	s, ok = ParseStatus(" CANCELLED ")
	assert.True(t, ok)
	assert.Equal(t, StatusCancelled, s)

	_, ok = ParseStatus("archived")
	assert.False(t, ok)
}

func TestUpdateBalanceValue(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantMsg string
	}{
		{"whole number", `{"annual_leave_balance": 15}`, 15, ""},
		{"zero", `{"annual_leave_balance": 0}`, 0, ""},
		{"numeric string", `{"annual_leave_balance": "12"}`, 12, ""},
		{"fraction", `{"annual_leave_balance": 1.5}`, 0, "Annual leave balance must be a valid number"},
		{"text", `{"annual_leave_balance": "abc"}`, 0, "Annual leave balance must be a valid number"},
		{"missing", `{}`, 0, "Annual leave balance must be a valid number"},
		{"boolean", `{"annual_leave_balance": true}`, 0, "Annual leave balance must be a valid number"},
		{"negative", `{"annual_leave_balance": -1}`, 0, "Annual leave balance cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dto UpdateBalanceDTO
			require.NoError(t, json.Unmarshal([]byte(tt.body), &dto))

			got, err := dto.Value()
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			appErr, ok := internal.IsAppError(err)
			require.True(t, ok)
			assert.Equal(t, internal.ErrCodeInvalidValue, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestCreateDTOPeriod(t *testing.T) {
	dto := &CreateLeaveRequestDTO{StartDate: "2025-08-03", EndDate: "2025-08-03"}
	_, _, err := dto.Period()

	appErr, ok := internal.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, internal.ErrCodeInvalidDateRange, appErr.Code)
	assert.Equal(t, "End date of 2025-08-03 is before the start date of 2025-08-03", appErr.Message)

	dto = &CreateLeaveRequestDTO{StartDate: "2025-08-01", EndDate: "2025-08-03"}
	start, end, err := dto.Period()
	require.NoError(t, err)
	assert.Equal(t, date("2025-08-01"), start)
	assert.Equal(t, date("2025-08-03"), end)
}

func TestNewLeaveRequestDefaults(t *testing.T) {
	r := NewLeaveRequest(7, "  ", date("2025-08-01"), date("2025-08-02"), nil)

	assert.Equal(t, DefaultLeaveType, r.LeaveType)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, 2, r.Days())
	assert.Equal(t, "2025-08-01", r.ToResponse().StartDate)
}
