package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthKey(t *testing.T) {
	t.Run("Next", func(t *testing.T) {
		assert.Equal(t, MonthKey{2025, 7}, MonthKey{2025, 6}.Next())
		assert.Equal(t, MonthKey{2026, 1}, MonthKey{2025, 12}.Next())
	})

	t.Run("Days", func(t *testing.T) {
		assert.Equal(t, 30, MonthKey{2025, 6}.Days())
		assert.Equal(t, 31, MonthKey{2025, 7}.Days())
		assert.Equal(t, 28, MonthKey{2025, 2}.Days())
		assert.Equal(t, 29, MonthKey{2024, 2}.Days())
		assert.Equal(t, 28, MonthKey{1900, 2}.Days())
		assert.Equal(t, 29, MonthKey{2000, 2}.Days())
	})

	t.Run("Contains", func(t *testing.T) {
		k := MonthKey{2025, 6}
		assert.True(t, k.Contains(DateOf(2025, 6, 1)))
		assert.True(t, k.Contains(DateOf(2025, 6, 30)))
		assert.False(t, k.Contains(DateOf(2025, 7, 1)))
	})
}

func TestStayDatesBetween(t *testing.T) {
	t.Run("SingleNight", func(t *testing.T) {
		nights := StayDatesBetween(DateOf(2025, 6, 5), DateOf(2025, 6, 6))
		assert.Equal(t, []StayDate{{2025, 6, 5}}, nights)
	})

	t.Run("MultiNight", func(t *testing.T) {
		nights := StayDatesBetween(DateOf(2025, 6, 5), DateOf(2025, 6, 9))
		assert.Len(t, nights, 4)
		assert.Equal(t, StayDate{2025, 6, 5}, nights[0])
		assert.Equal(t, StayDate{2025, 6, 8}, nights[3])
	})

	t.Run("AcrossMonthBoundary", func(t *testing.T) {
		nights := StayDatesBetween(DateOf(2025, 6, 29), DateOf(2025, 7, 2))
		assert.Equal(t, []StayDate{{2025, 6, 29}, {2025, 6, 30}, {2025, 7, 1}}, nights)
	})

	t.Run("EmptyWhenNotAfter", func(t *testing.T) {
		assert.Empty(t, StayDatesBetween(DateOf(2025, 6, 5), DateOf(2025, 6, 5)))
		assert.Empty(t, StayDatesBetween(DateOf(2025, 6, 5), DateOf(2025, 6, 4)))
	})
}

func TestSnapshotRecordLookup(t *testing.T) {
	tab := "Junio 2025"
	snap := &AvailabilitySnapshot{
		Start: MonthKey{2025, 6},
		Records: []RoomAvailabilityRecord{
			{RoomNumber: 1, RoomName: "Salinas", AvailableDates: []int{1, 2}, Year: 2025, Month: 6, TabTitle: &tab},
			{RoomNumber: 1, RoomName: "Salinas", AvailableDates: []int{}, Year: 2025, Month: 7},
		},
	}

	r := snap.Record(1, MonthKey{2025, 6})
	if assert.NotNil(t, r) {
		assert.True(t, r.IsDayAvailable(2))
		assert.False(t, r.IsDayAvailable(3))
	}
	assert.Nil(t, snap.Record(2, MonthKey{2025, 6}))
	assert.Nil(t, snap.Record(1, MonthKey{2025, 8}))

	assert.Len(t, snap.RecordsForMonth(MonthKey{2025, 6}), 1)
	assert.True(t, snap.Covers(DateOf(2025, 7, 31)))
	assert.False(t, snap.Covers(DateOf(2025, 8, 1)))
	assert.Equal(t, DateOf(2025, 7, 31), snap.End())
}

func TestSelectedRangeNights(t *testing.T) {
	to := DateOf(2025, 6, 8)
	assert.Equal(t, 0, SelectedRange{From: DateOf(2025, 6, 5)}.Nights())
	assert.Equal(t, 3, SelectedRange{From: DateOf(2025, 6, 5), To: &to}.Nights())
}

func TestSortDates(t *testing.T) {
	dates := []time.Time{DateOf(2025, 6, 3), DateOf(2025, 6, 1), DateOf(2025, 6, 2)}
	SortDates(dates)
	assert.Equal(t, DateOf(2025, 6, 1), dates[0])
	assert.Equal(t, DateOf(2025, 6, 3), dates[2])
}
