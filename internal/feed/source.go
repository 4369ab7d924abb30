// Package feed fetches per-room monthly availability from the spreadsheet
// sources backing the booking widget.
package feed

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"posada/internal/models"
)

// Source fetches the availability records of one calendar month for all
// rooms. Implementations must return fail-closed records (empty available
// set, nil tab title) when no data exists for the month, instead of an error.
type Source interface {
	FetchMonth(ctx context.Context, k models.MonthKey) ([]models.RoomAvailabilityRecord, error)
}

// SynthesizeClosedMonth builds records marking every day occupied for the
// configured rooms. Used when a month has no source tab or its fetch failed:
// missing data never reads as vacancy.
func SynthesizeClosedMonth(rooms []models.RoomConfig, k models.MonthKey) []models.RoomAvailabilityRecord {
	occupied := make([]int, k.Days())
	for i := range occupied {
		occupied[i] = i + 1
	}

	records := make([]models.RoomAvailabilityRecord, 0, len(rooms))
	for _, room := range rooms {
		records = append(records, models.RoomAvailabilityRecord{
			RoomNumber:     room.RoomNumber,
			RoomName:       room.RoomName,
			AvailableDates: []int{},
			OccupiedDates:  append([]int(nil), occupied...),
			Year:           k.Year,
			Month:          k.Month,
			TabTitle:       nil,
		})
	}
	return records
}

// parseDayList parses a cell of day numbers separated by commas, semicolons
// or whitespace. Values outside [1, daysInMonth] are dropped; duplicates are
// collapsed; the result is sorted.
func parseDayList(cell string, daysInMonth int) []int {
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})

	seen := make(map[int]bool)
	days := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 1 || n > daysInMonth || seen[n] {
			continue
		}
		seen[n] = true
		days = append(days, n)
	}
	sort.Ints(days)
	return days
}

// complementDays returns the day numbers of the month missing from available.
func complementDays(available []int, daysInMonth int) []int {
	set := make(map[int]bool, len(available))
	for _, d := range available {
		set[d] = true
	}
	out := make([]int, 0, daysInMonth-len(available))
	for d := 1; d <= daysInMonth; d++ {
		if !set[d] {
			out = append(out, d)
		}
	}
	return out
}

// recordFromRow builds one room's record from a source row laid out as
// roomNumber | roomName | available day list. Rows that do not start with a
// positive room number are skipped by returning false.
func recordFromRow(row []string, k models.MonthKey, tabTitle string) (models.RoomAvailabilityRecord, bool) {
	if len(row) < 2 {
		return models.RoomAvailabilityRecord{}, false
	}
	roomNumber, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil || roomNumber <= 0 {
		return models.RoomAvailabilityRecord{}, false
	}

	var dayCell string
	if len(row) > 2 {
		dayCell = row[2]
	}
	available := parseDayList(dayCell, k.Days())

	title := tabTitle
	return models.RoomAvailabilityRecord{
		RoomNumber:     roomNumber,
		RoomName:       strings.TrimSpace(row[1]),
		AvailableDates: available,
		OccupiedDates:  complementDays(available, k.Days()),
		Year:           k.Year,
		Month:          k.Month,
		TabTitle:       &title,
	}, true
}
