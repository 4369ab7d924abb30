// Package selection implements the date-range selection state machine driving
// the picker: Empty, Open (check-in picked) and Closed (stay chosen).
package selection

import (
	"sync"
	"time"

	"posada/internal/metrics"
	"posada/internal/models"
)

// State names the controller states.
type State string

const (
	StateEmpty  State = "empty"
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// RangeChecker gates the transition to a closed range.
type RangeChecker interface {
	IsRangeValid(from, to time.Time) bool
}

// OnChange is invoked after every transition with the new range, or nil when
// the selection is empty.
type OnChange func(r *models.SelectedRange)

// Controller interprets raw picker events as selection-state transitions.
// Methods are safe for concurrent use; one session's controller is shared by
// every request carrying its id.
type Controller struct {
	checker  RangeChecker
	onChange OnChange

	mu  sync.Mutex
	rng *models.SelectedRange
}

// NewController builds a controller. onChange may be nil.
func NewController(checker RangeChecker, onChange OnChange) *Controller {
	return &Controller{checker: checker, onChange: onChange}
}

func (c *Controller) state() State {
	switch {
	case c.rng == nil:
		return StateEmpty
	case c.rng.To == nil:
		return StateOpen
	default:
		return StateClosed
	}
}

// State returns the controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

// Range returns the current selection, nil when empty. The returned value is
// never mutated in place; transitions replace it wholesale.
func (c *Controller) Range() *models.SelectedRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng
}

// Pick applies a single-date click.
func (c *Controller) Pick(d time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pick(d)
}

func (c *Controller) pick(d time.Time) {
	switch c.state() {
	case StateEmpty:
		c.set(&models.SelectedRange{From: d})
	case StateOpen:
		c.pickCheckout(d)
	case StateClosed:
		// Any click while closed resets and restarts selection.
		c.rng = nil
		c.set(&models.SelectedRange{From: d})
	}
}

// PickEmitted applies a raw picker-library emission. Libraries report a
// re-click of the open date as {from: d, to: d}; that must collapse to a fresh
// open pick, never a zero-night closed range.
func (c *Controller) PickEmitted(from time.Time, to *time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if to == nil || to.Equal(from) {
		c.pick(from)
		return
	}
	if c.state() == StateOpen && from.Equal(c.rng.From) {
		c.pick(*to)
		return
	}
	// A full range arriving in any other state restarts the selection at its
	// check-in first, so the checkout attempt can never close against a
	// check-in the user abandoned.
	c.rng = nil
	c.set(&models.SelectedRange{From: from})
	c.pickCheckout(*to)
}

func (c *Controller) pickCheckout(d time.Time) {
	from := c.rng.From
	if d.Equal(from) {
		// Re-click collapses to a fresh open pick at the same date.
		c.set(&models.SelectedRange{From: from})
		return
	}
	if d.Before(from) {
		// The picker never offers these, but normalize rather than error.
		c.set(&models.SelectedRange{From: d})
		return
	}
	if !d.Equal(from.AddDate(0, 0, 1)) {
		// Multi-night stays need the full period minus the checkout night to
		// be valid; single-night picks are always allowed.
		if c.checker != nil && !c.checker.IsRangeValid(from, d.AddDate(0, 0, -1)) {
			return // silently ignored, state unchanged
		}
	}
	to := d
	c.set(&models.SelectedRange{From: from, To: &to})
}

// Clear empties the selection from any state.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rng = nil
	c.notify()
}

func (c *Controller) set(r *models.SelectedRange) {
	c.rng = r
	c.notify()
}

func (c *Controller) notify() {
	metrics.IncSelectionTransition(string(c.state()))
	if c.onChange != nil {
		c.onChange(c.rng)
	}
}

// SelectableDates augments the raw available-date set for the picker: while a
// range is open, the day after check-in is always selectable so a one-night
// stay stays reachable regardless of feed data. No duplicate is added.
func (c *Controller) SelectableDates(available []time.Time) []time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state() != StateOpen {
		return available
	}
	return ForceIncludeNextDay(available, c.rng.From)
}

// ForceIncludeNextDay adds openFrom+1 to the available set unless already
// present. Callers holding their own range snapshot use this directly.
func ForceIncludeNextDay(available []time.Time, openFrom time.Time) []time.Time {
	next := openFrom.AddDate(0, 0, 1)
	for _, d := range available {
		if d.Equal(next) {
			return available
		}
	}
	out := append(append([]time.Time(nil), available...), next)
	return models.SortDates(out)
}
