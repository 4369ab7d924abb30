// Package availability implements the availability index and the date-range
// validation engine over a two-month availability snapshot.
package availability

import (
	"sort"
	"time"

	"posada/internal/models"
)

// Index answers date-set and room-set queries against an AvailabilitySnapshot.
// All queries are pure functions of (snapshot, room configs); the snapshot is
// small enough that nothing is memoized.
type Index struct {
	snap    *models.AvailabilitySnapshot
	rooms   map[int]models.RoomConfig
	mirador int // 0 = all rooms
}

// Option configures an Index.
type Option func(*Index)

// WithSingleRoom restricts every query to one designated room number before
// the rest of the logic applies.
func WithSingleRoom(roomNumber int) Option {
	return func(ix *Index) { ix.mirador = roomNumber }
}

// NewIndex builds an index over the snapshot and static room configuration.
func NewIndex(snap *models.AvailabilitySnapshot, configs []models.RoomConfig, opts ...Option) *Index {
	ix := &Index{
		snap:  snap,
		rooms: make(map[int]models.RoomConfig, len(configs)),
	}
	for _, c := range configs {
		ix.rooms[c.RoomNumber] = c
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Snapshot returns the snapshot the index was built over.
func (ix *Index) Snapshot() *models.AvailabilitySnapshot {
	return ix.snap
}

func (ix *Index) includeRoom(roomNumber int) bool {
	return ix.mirador == 0 || ix.mirador == roomNumber
}

// fitsParty reports whether the room satisfies the party size. partySize <= 0
// disables the filter. A room without configuration never fits a party filter.
func (ix *Index) fitsParty(roomNumber, partySize int) bool {
	if partySize <= 0 {
		return true
	}
	cfg, ok := ix.rooms[roomNumber]
	return ok && cfg.MaxPersons >= partySize
}

// availableDaySet returns the set of day numbers with at least one room
// available, optionally restricted by party size.
func (ix *Index) availableDaySet(k models.MonthKey, partySize int) map[int]bool {
	days := make(map[int]bool)
	for _, r := range ix.snap.RecordsForMonth(k) {
		if !ix.includeRoom(r.RoomNumber) || !ix.fitsParty(r.RoomNumber, partySize) {
			continue
		}
		limit := k.Days()
		for _, d := range r.AvailableDates {
			if d >= 1 && d <= limit {
				days[d] = true
			}
		}
	}
	return days
}

// AvailableDatesForMonth returns every date of the month on which at least one
// room (fitting partySize, when positive) has a vacancy. A record absent from
// the snapshot contributes nothing.
func (ix *Index) AvailableDatesForMonth(k models.MonthKey, partySize int) []time.Time {
	days := ix.availableDaySet(k, partySize)
	dates := make([]time.Time, 0, len(days))
	for d := range days {
		dates = append(dates, models.DateOf(k.Year, k.Month, d))
	}
	return models.SortDates(dates)
}

// OccupiedDatesForMonth returns the dates of the month on which no room at all
// has a vacancy. Party size never narrows this set: a date is completely
// occupied only when the unfiltered union misses it.
func (ix *Index) OccupiedDatesForMonth(k models.MonthKey) []time.Time {
	available := ix.availableDaySet(k, 0)
	var dates []time.Time
	for d := 1; d <= k.Days(); d++ {
		if !available[d] {
			dates = append(dates, models.DateOf(k.Year, k.Month, d))
		}
	}
	return dates
}

// IsDateFullyOccupied reports whether no room has the date available. Dates
// outside the snapshot window are fully occupied (fail closed).
func (ix *Index) IsDateFullyOccupied(d time.Time) bool {
	if !ix.snap.Covers(d) {
		return true
	}
	return !ix.availableDaySet(models.MonthOf(d), 0)[d.Day()]
}

// EligibleRooms returns the rooms available for every night of the stay
// [from, to). A nil to means the implicit single-night stay [from, from+1).
// Rooms missing a record for any required month are excluded, as are rooms
// without configuration and rooms too small for the party (when partySize is
// positive).
func (ix *Index) EligibleRooms(from time.Time, to *time.Time, partySize int) []models.RoomInfo {
	checkout := from.AddDate(0, 0, 1)
	if to != nil {
		checkout = *to
	}
	nights := models.StayDatesBetween(from, checkout)
	if len(nights) == 0 {
		return []models.RoomInfo{}
	}

	eligible := make([]models.RoomInfo, 0)
	for roomNumber, cfg := range ix.rooms {
		if !ix.includeRoom(roomNumber) || !ix.fitsParty(roomNumber, partySize) {
			continue
		}
		if ix.roomCoversAllNights(roomNumber, nights) {
			eligible = append(eligible, models.RoomInfo{RoomNumber: roomNumber, RoomName: cfg.RoomName})
		}
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].RoomNumber < eligible[j].RoomNumber })
	return eligible
}

func (ix *Index) roomCoversAllNights(roomNumber int, nights []models.StayDate) bool {
	for _, night := range nights {
		rec := ix.snap.Record(roomNumber, models.MonthKey{Year: night.Year, Month: night.Month})
		if rec == nil || !rec.IsDayAvailable(night.Day) {
			return false
		}
	}
	return true
}
