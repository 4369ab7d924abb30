package availability

import (
	"time"

	"posada/internal/models"
)

// Validator decides stay validity and computes the disabled-date set the
// picker needs while a check-in date is pending a checkout pick.
type Validator struct {
	idx *Index
}

// NewValidator builds a validator over the index.
func NewValidator(idx *Index) *Validator {
	return &Validator{idx: idx}
}

// IsRangeValid reports whether the half-open stay [from, to) places every
// night in a date with at least one room available. Party size is not
// consulted here; it only narrows the bookable-room list, never the calendar.
func (v *Validator) IsRangeValid(from, to time.Time) bool {
	if !to.After(from) {
		return false
	}
	for _, night := range models.StayDatesBetween(from, to) {
		if v.idx.IsDateFullyOccupied(night.Date()) {
			return false
		}
	}
	return true
}

// FirstAllowedCheckout scans forward from the day after check-in through the
// two-month window for the first completely-occupied date. That date itself is
// the furthest allowed checkout, since checking out frees the room before the
// night starts. Nil means no boundary exists inside the window.
func (v *Validator) FirstAllowedCheckout(checkIn time.Time) *time.Time {
	end := v.idx.Snapshot().End()
	for d := checkIn.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if v.idx.IsDateFullyOccupied(d) {
			boundary := d
			return &boundary
		}
	}
	return nil
}

// DisabledDates returns the dates the picker must refuse. With no open range
// (checkIn nil) that is simply the completely-occupied union across both
// displayed months. With a check-in pending, selectable checkout dates narrow:
// everything before check-in, check-in itself, and everything past the first
// allowed checkout boundary goes dark. Check-in, check-in+1 and the boundary
// date are carved back out so a minimal or boundary-limited stay is always
// reachable.
func (v *Validator) DisabledDates(checkIn *time.Time) []time.Time {
	months := v.idx.Snapshot().Months()

	if checkIn == nil {
		var disabled []time.Time
		for _, k := range months {
			disabled = append(disabled, v.idx.OccupiedDatesForMonth(k)...)
		}
		return disabled
	}

	from := *checkIn
	boundary := v.FirstAllowedCheckout(from)

	disabled := make(map[time.Time]bool)
	for _, k := range months {
		for day := 1; day <= k.Days(); day++ {
			d := models.DateOf(k.Year, k.Month, day)
			switch {
			case d.Before(from):
				disabled[d] = true
			case d.Equal(from):
				disabled[d] = true
			case boundary != nil && d.After(*boundary):
				disabled[d] = true
			}
		}
	}

	// Carve-outs: these three must always remain clickable.
	delete(disabled, from)
	delete(disabled, from.AddDate(0, 0, 1))
	if boundary != nil {
		delete(disabled, *boundary)
	}

	out := make([]time.Time, 0, len(disabled))
	for d := range disabled {
		out = append(out, d)
	}
	return models.SortDates(out)
}
