package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/PT-BookingService/pkg/ptr"
	"github.com/m04kA/PT-BookingService/pkg/types"
)

func TestBooking_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusPending, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCancelled, false},
	}

	for _, tc := range cases {
		b := &Booking{Status: tc.from}
		assert.Equal(t, tc.allowed, b.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestBooking_Occupies(t *testing.T) {
	b := &Booking{BookingDate: "2024-07-01", StartTime: "10:00", Status: StatusConfirmed}
	assert.True(t, b.Occupies("2024-07-01", "10:00"))
	assert.False(t, b.Occupies("2024-07-01", "11:00"))
	assert.False(t, b.Occupies("2024-07-02", "10:00"))

	b.Status = StatusCancelled
	assert.False(t, b.Occupies("2024-07-01", "10:00"))
}

func TestBookingsFilter_Matches(t *testing.T) {
	active := &Booking{UserID: 1, BookingDate: "2024-07-01", Status: StatusPending}
	cancelled := &Booking{UserID: 1, BookingDate: "2024-07-01", Status: StatusCancelled}

	day := types.DateString("2024-07-01")
	f := BookingsFilter{StartDate: &day, EndDate: &day}
	assert.True(t, f.IsSingleDate())
	assert.True(t, f.Matches(active))
	assert.False(t, f.Matches(cancelled))

	f.IncludeCancelled = true
	assert.True(t, f.Matches(cancelled))

	f = BookingsFilter{Status: ptr.Ptr(StatusCancelled)}
	assert.True(t, f.Matches(cancelled))
	assert.False(t, f.Matches(active))

	f = BookingsFilter{UserID: ptr.Ptr(int64(2))}
	assert.False(t, f.Matches(active))
}

func TestRulesFilter_Matches(t *testing.T) {
	monday := &AvailabilityRule{DayOfWeek: ptr.Ptr(1)}
	onDate := &AvailabilityRule{SpecificDate: ptr.Ptr(types.DateString("2024-07-04"))}

	assert.True(t, RulesFilter{}.Matches(monday))
	assert.True(t, RulesFilter{Scope: RuleScopeRecurring}.Matches(monday))
	assert.False(t, RulesFilter{Scope: RuleScopeRecurring}.Matches(onDate))
	assert.True(t, RulesFilter{Scope: RuleScopeSpecific}.Matches(onDate))
	assert.False(t, RulesFilter{DayOfWeek: ptr.Ptr(2)}.Matches(monday))

	from := types.DateString("2024-07-05")
	assert.False(t, RulesFilter{FromDate: &from}.Matches(onDate))
	assert.True(t, RulesFilter{FromDate: &from}.Matches(monday))
}
