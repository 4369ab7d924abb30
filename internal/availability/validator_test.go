package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"posada/internal/models"
)

// sparseSnapshot gives room 1 the listed June/July day numbers and leaves the
// other rooms fully booked.
func sparseSnapshot(juneDays, julyDays []int) *models.AvailabilitySnapshot {
	june := models.MonthKey{Year: 2025, Month: 6}
	july := june.Next()
	return &models.AvailabilitySnapshot{
		Start: june,
		Records: []models.RoomAvailabilityRecord{
			record(1, "Salinas", june, juneDays),
			record(2, "Faro", june, []int{}),
			record(1, "Salinas", july, julyDays),
			record(2, "Faro", july, []int{}),
		},
	}
}

func newValidator(snap *models.AvailabilitySnapshot) *Validator {
	return NewValidator(NewIndex(snap, testRooms))
}

func TestIsRangeValid(t *testing.T) {
	v := newValidator(sparseSnapshot([]int{5, 6, 7, 8}, nil))

	tests := []struct {
		name  string
		from  time.Time
		to    time.Time
		valid bool
	}{
		{"single night", models.DateOf(2025, 6, 5), models.DateOf(2025, 6, 6), true},
		{"full run", models.DateOf(2025, 6, 5), models.DateOf(2025, 6, 9), true},
		{"gap through occupied day", models.DateOf(2025, 6, 5), models.DateOf(2025, 6, 10), false},
		{"zero nights", models.DateOf(2025, 6, 5), models.DateOf(2025, 6, 5), false},
		{"checkout before checkin", models.DateOf(2025, 6, 6), models.DateOf(2025, 6, 5), false},
		{"start on occupied day", models.DateOf(2025, 6, 4), models.DateOf(2025, 6, 6), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, v.IsRangeValid(tt.from, tt.to))
		})
	}
}

func TestFirstAllowedCheckout(t *testing.T) {
	t.Run("NextDayOccupiedIsBoundary", func(t *testing.T) {
		// Day 6 is the first completely-occupied day after check-in on 5;
		// checkout on an occupied day is legal, so 6 itself is the boundary.
		v := newValidator(sparseSnapshot([]int{5, 10}, nil))
		boundary := v.FirstAllowedCheckout(models.DateOf(2025, 6, 5))
		if assert.NotNil(t, boundary) {
			assert.Equal(t, models.DateOf(2025, 6, 6), *boundary)
		}
	})

	t.Run("BoundaryInFollowingMonth", func(t *testing.T) {
		juneOpen := allDays(models.MonthKey{Year: 2025, Month: 6})
		v := newValidator(sparseSnapshot(juneOpen, []int{1, 2}))
		boundary := v.FirstAllowedCheckout(models.DateOf(2025, 6, 28))
		if assert.NotNil(t, boundary) {
			assert.Equal(t, models.DateOf(2025, 7, 3), *boundary)
		}
	})

	t.Run("NoBoundaryInsideWindow", func(t *testing.T) {
		v := newValidator(sparseSnapshot(
			allDays(models.MonthKey{Year: 2025, Month: 6}),
			allDays(models.MonthKey{Year: 2025, Month: 7})))
		assert.Nil(t, v.FirstAllowedCheckout(models.DateOf(2025, 6, 10)))
	})
}

func allDays(k models.MonthKey) []int {
	days := make([]int, k.Days())
	for i := range days {
		days[i] = i + 1
	}
	return days
}

func TestDisabledDatesNoOpenRange(t *testing.T) {
	v := newValidator(sparseSnapshot([]int{5, 6}, []int{1}))
	disabled := v.DisabledDates(nil)

	assert.Contains(t, disabled, models.DateOf(2025, 6, 1))
	assert.Contains(t, disabled, models.DateOf(2025, 7, 2))
	assert.NotContains(t, disabled, models.DateOf(2025, 6, 5))
	assert.NotContains(t, disabled, models.DateOf(2025, 7, 1))
	// Both displayed months contribute.
	assert.Len(t, disabled, 30-2+31-1)
}

func TestDisabledDatesOpenRange(t *testing.T) {
	t.Run("BeforeCheckInDisabled", func(t *testing.T) {
		v := newValidator(sparseSnapshot(allDays(models.MonthKey{Year: 2025, Month: 6}), nil))
		checkIn := models.DateOf(2025, 6, 10)
		disabled := v.DisabledDates(&checkIn)

		assert.Contains(t, disabled, models.DateOf(2025, 6, 1))
		assert.Contains(t, disabled, models.DateOf(2025, 6, 9))
		assert.NotContains(t, disabled, models.DateOf(2025, 6, 11))
	})

	t.Run("CarveOutsStayClickable", func(t *testing.T) {
		// Day 11 is occupied, so it is also the boundary; 10, 11 stay clickable.
		v := newValidator(sparseSnapshot([]int{10, 15}, nil))
		checkIn := models.DateOf(2025, 6, 10)
		disabled := v.DisabledDates(&checkIn)

		assert.NotContains(t, disabled, models.DateOf(2025, 6, 10))
		assert.NotContains(t, disabled, models.DateOf(2025, 6, 11))
		// Past the boundary everything is disabled, July included.
		assert.Contains(t, disabled, models.DateOf(2025, 6, 12))
		assert.Contains(t, disabled, models.DateOf(2025, 6, 15))
		assert.Contains(t, disabled, models.DateOf(2025, 7, 1))
	})

	t.Run("NoBoundaryLeavesTailSelectable", func(t *testing.T) {
		v := newValidator(sparseSnapshot(
			allDays(models.MonthKey{Year: 2025, Month: 6}),
			allDays(models.MonthKey{Year: 2025, Month: 7})))
		checkIn := models.DateOf(2025, 6, 10)
		disabled := v.DisabledDates(&checkIn)

		for _, d := range disabled {
			assert.Truef(t, d.Before(checkIn), "unexpected disabled date %v after check-in", d)
		}
	})

	t.Run("BoundaryInSecondMonthDisablesOnlyItsTail", func(t *testing.T) {
		v := newValidator(sparseSnapshot(
			allDays(models.MonthKey{Year: 2025, Month: 6}),
			[]int{1, 2}))
		checkIn := models.DateOf(2025, 6, 28)
		disabled := v.DisabledDates(&checkIn)

		// Boundary is July 3; July 1–3 selectable, July 4 onward dark.
		assert.NotContains(t, disabled, models.DateOf(2025, 7, 1))
		assert.NotContains(t, disabled, models.DateOf(2025, 7, 3))
		assert.Contains(t, disabled, models.DateOf(2025, 7, 4))
		assert.Contains(t, disabled, models.DateOf(2025, 7, 31))
	})

	t.Run("CheckInInSecondMonthDisablesFirst", func(t *testing.T) {
		v := newValidator(sparseSnapshot(
			allDays(models.MonthKey{Year: 2025, Month: 6}),
			allDays(models.MonthKey{Year: 2025, Month: 7})))
		checkIn := models.DateOf(2025, 7, 10)
		disabled := v.DisabledDates(&checkIn)

		for day := 1; day <= 30; day++ {
			assert.Contains(t, disabled, models.DateOf(2025, 6, day))
		}
		assert.NotContains(t, disabled, models.DateOf(2025, 7, 11))
	})
}

// A checkout accepted through the disabled-date mechanism always round-trips
// through stay validity for the nights before it.
func TestBoundaryCheckoutRoundTrip(t *testing.T) {
	v := newValidator(sparseSnapshot([]int{10, 11, 12}, nil))
	checkIn := models.DateOf(2025, 6, 10)

	boundary := v.FirstAllowedCheckout(checkIn)
	if assert.NotNil(t, boundary) {
		assert.Equal(t, models.DateOf(2025, 6, 13), *boundary)
	}
	assert.True(t, v.IsRangeValid(checkIn, boundary.AddDate(0, 0, -1)))
}
