// Package models defines the availability data model shared across the service.
package models

import (
	"sort"
	"time"
)

// MonthKey identifies one calendar month. Month is 1-based.
type MonthKey struct {
	Year  int
	Month int
}

// Next returns the month following k.
func (k MonthKey) Next() MonthKey {
	if k.Month == 12 {
		return MonthKey{Year: k.Year + 1, Month: 1}
	}
	return MonthKey{Year: k.Year, Month: k.Month + 1}
}

// Days returns the number of days in the month.
func (k MonthKey) Days() int {
	return DaysInMonth(time.Month(k.Month), k.Year)
}

// Contains reports whether d falls inside the month.
func (k MonthKey) Contains(d time.Time) bool {
	return d.Year() == k.Year && int(d.Month()) == k.Month
}

// First returns midnight UTC of the first day of the month.
func (k MonthKey) First() time.Time {
	return DateOf(k.Year, k.Month, 1)
}

// Last returns midnight UTC of the last day of the month.
func (k MonthKey) Last() time.Time {
	return DateOf(k.Year, k.Month, k.Days())
}

// MonthOf returns the MonthKey containing d.
func MonthOf(d time.Time) MonthKey {
	return MonthKey{Year: d.Year(), Month: int(d.Month())}
}

// RoomAvailabilityRecord holds one room's availability for one calendar month.
// AvailableDates is authoritative; OccupiedDates is kept for display only.
// A nil TabTitle means no source tab existed for the month and every day must
// be treated as occupied.
type RoomAvailabilityRecord struct {
	RoomNumber     int     `json:"roomNumber"`
	RoomName       string  `json:"roomName"`
	AvailableDates []int   `json:"availableDates"`
	OccupiedDates  []int   `json:"occupiedDates"`
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	TabTitle       *string `json:"tabTitle"`
}

// IsDayAvailable reports whether the given day of the month is listed as available.
func (r *RoomAvailabilityRecord) IsDayAvailable(day int) bool {
	for _, d := range r.AvailableDates {
		if d == day {
			return true
		}
	}
	return false
}

// AvailabilitySnapshot covers exactly two consecutive calendar months for all
// rooms. It is replaced wholesale on every load, never merged.
type AvailabilitySnapshot struct {
	Start   MonthKey
	Records []RoomAvailabilityRecord
}

// Months returns the two months the snapshot covers, in order.
func (s *AvailabilitySnapshot) Months() [2]MonthKey {
	return [2]MonthKey{s.Start, s.Start.Next()}
}

// Covers reports whether d falls inside the snapshot window.
func (s *AvailabilitySnapshot) Covers(d time.Time) bool {
	return s.Start.Contains(d) || s.Start.Next().Contains(d)
}

// End returns the last day of the snapshot window.
func (s *AvailabilitySnapshot) End() time.Time {
	return s.Start.Next().Last()
}

// Record returns the record for (room, month), or nil when the snapshot has none.
func (s *AvailabilitySnapshot) Record(roomNumber int, k MonthKey) *RoomAvailabilityRecord {
	for i := range s.Records {
		r := &s.Records[i]
		if r.RoomNumber == roomNumber && r.Year == k.Year && r.Month == k.Month {
			return r
		}
	}
	return nil
}

// RecordsForMonth returns every record matching the month.
func (s *AvailabilitySnapshot) RecordsForMonth(k MonthKey) []RoomAvailabilityRecord {
	var out []RoomAvailabilityRecord
	for _, r := range s.Records {
		if r.Year == k.Year && r.Month == k.Month {
			out = append(out, r)
		}
	}
	return out
}

// StayDate is one night of occupancy, the night starting on that calendar date.
type StayDate struct {
	Year  int
	Month int
	Day   int
}

// Date returns the stay date at midnight UTC.
func (d StayDate) Date() time.Time {
	return DateOf(d.Year, d.Month, d.Day)
}

// StayDatesBetween decomposes the half-open interval [from, to) into one
// StayDate per night. An empty slice is returned when to is not after from.
func StayDatesBetween(from, to time.Time) []StayDate {
	var nights []StayDate
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		nights = append(nights, StayDate{Year: d.Year(), Month: int(d.Month()), Day: d.Day()})
	}
	return nights
}

// SelectedRange is the picker selection. To == nil means the range is open
// (check-in picked, checkout pending).
type SelectedRange struct {
	From time.Time  `json:"from"`
	To   *time.Time `json:"to,omitempty"`
}

// Nights returns the number of nights of a closed range, 0 otherwise.
func (r SelectedRange) Nights() int {
	if r.To == nil {
		return 0
	}
	return len(StayDatesBetween(r.From, *r.To))
}

// RoomInfo identifies a bookable room in query results.
type RoomInfo struct {
	RoomNumber int    `json:"roomNumber"`
	RoomName   string `json:"roomName"`
}

// RoomConfig is static per-room metadata supplied by configuration, not derived
// from the feed.
type RoomConfig struct {
	RoomNumber  int    `yaml:"room_number" json:"roomNumber"`
	RoomName    string `yaml:"room_name" json:"roomName"`
	MaxPersons  int    `yaml:"max_persons" json:"maxPersons"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// BookingRequest is the record handed to the notification collaborator. It is
// never persisted.
type BookingRequest struct {
	RequestID  string `json:"requestId,omitempty"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Adults     int    `json:"adults"`
	Children   int    `json:"children"`
	Pets       int    `json:"pets"`
	RoomName   string `json:"roomName,omitempty"`
	RoomNumber int    `json:"roomNumber,omitempty"`
	IsMirador  bool   `json:"isMirador,omitempty"`
}

// DateOf returns midnight UTC for the given calendar date.
func DateOf(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the month.
func DaysInMonth(m time.Month, year int) int {
	switch m {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// SortDates sorts a date slice ascending in place and returns it.
func SortDates(dates []time.Time) []time.Time {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
