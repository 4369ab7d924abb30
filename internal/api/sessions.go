package api

import (
	"encoding/json"
	"net/http"
	"time"

	"posada/internal/availability"
	"posada/internal/events"
	"posada/internal/metrics"
	"posada/internal/models"
	"posada/internal/selection"
)

// CreateSessionRequest is the request body for POST /api/sessions.
type CreateSessionRequest struct {
	PartySize int `json:"partySize,omitempty"`
}

// PickRequest is the request body for POST /api/sessions/{id}/pick. From is
// required; To carries the raw picker emission when the library reports a
// completed or same-instant range.
type PickRequest struct {
	From string  `json:"from"`
	To   *string `json:"to,omitempty"`
}

// CalendarState is what the picker renders: date sets, the current range and
// the rooms bookable for it.
type CalendarState struct {
	AvailableDates []time.Time           `json:"availableDates"`
	OccupiedDates  []time.Time           `json:"occupiedDates"`
	DisabledDates  []time.Time           `json:"disabledDates"`
	EligibleRooms  []models.RoomInfo     `json:"eligibleRooms"`
	Range          *models.SelectedRange `json:"range,omitempty"`
}

// SessionResponse is the envelope for session endpoints.
type SessionResponse struct {
	Success   bool           `json:"success"`
	SessionID string         `json:"sessionId,omitempty"`
	Calendar  *CalendarState `json:"calendar,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// handleCreateSession opens a selection session for one widget instance.
// POST /api/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("session_create")

	var req CreateSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	if req.PartySize < 0 {
		writeError(w, http.StatusBadRequest, "partySize cannot be negative")
		return
	}

	session := s.sessions.Create(req.PartySize, s.checker(), func(rng *models.SelectedRange) {
		if s.bus != nil {
			s.bus.Publish(events.TypeSelectionChanged, rng)
		}
	})

	writeJSON(w, http.StatusOK, SessionResponse{
		Success:   true,
		SessionID: session.ID,
		Calendar:  s.calendarState(session),
	})
}

// handleSessionPick applies a picker event to the session's controller.
// POST /api/sessions/{id}/pick
func (s *Server) handleSessionPick(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("session_pick")

	session := s.sessions.Get(r.PathValue("id"))
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req PickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
		return
	}

	var to *time.Time
	if req.To != nil {
		parsed, err := time.Parse("2006-01-02", *req.To)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
			return
		}
		to = &parsed
	}

	session.Ctl.PickEmitted(from, to)
	session.Touch()

	writeJSON(w, http.StatusOK, SessionResponse{
		Success:  true,
		Calendar: s.calendarState(session),
	})
}

// handleSessionClear empties the session's selection.
// POST /api/sessions/{id}/clear
func (s *Server) handleSessionClear(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("session_clear")

	session := s.sessions.Get(r.PathValue("id"))
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	session.Ctl.Clear()
	session.Touch()

	writeJSON(w, http.StatusOK, SessionResponse{
		Success:  true,
		Calendar: s.calendarState(session),
	})
}

// handleSessionCalendar returns the calendar state without mutating it.
// GET /api/sessions/{id}/calendar
func (s *Server) handleSessionCalendar(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("session_calendar")

	session := s.sessions.Get(r.PathValue("id"))
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		Success:  true,
		Calendar: s.calendarState(session),
	})
}

// checker builds a range checker that resolves the snapshot at call time, so
// open sessions always validate against the freshest availability.
func (s *Server) checker() selection.RangeChecker {
	return checkerFunc(func(from, to time.Time) bool {
		return availability.NewValidator(s.index()).IsRangeValid(from, to)
	})
}

type checkerFunc func(from, to time.Time) bool

func (f checkerFunc) IsRangeValid(from, to time.Time) bool { return f(from, to) }

// calendarState assembles the outgoing date sets for a session.
func (s *Server) calendarState(session *selection.Session) *CalendarState {
	idx := s.index()
	validator := availability.NewValidator(idx)

	months := idx.Snapshot().Months()

	var available, occupied []time.Time
	for _, k := range months {
		available = append(available, idx.AvailableDatesForMonth(k, session.PartySize)...)
		occupied = append(occupied, idx.OccupiedDatesForMonth(k)...)
	}

	// One range snapshot drives the whole response; a concurrent pick on the
	// same session must not mix two selection states in one calendar.
	rng := session.Ctl.Range()

	var openFrom *time.Time
	if rng != nil && rng.To == nil {
		from := rng.From
		openFrom = &from
	}
	disabled := validator.DisabledDates(openFrom)

	if openFrom != nil {
		available = selection.ForceIncludeNextDay(available, *openFrom)
	}

	state := &CalendarState{
		AvailableDates: nonNilDates(available),
		OccupiedDates:  nonNilDates(occupied),
		DisabledDates:  nonNilDates(disabled),
		EligibleRooms:  []models.RoomInfo{},
		Range:          rng,
	}
	if rng != nil && rng.To != nil {
		state.EligibleRooms = idx.EligibleRooms(rng.From, rng.To, session.PartySize)
	}
	return state
}

func nonNilDates(dates []time.Time) []time.Time {
	if dates == nil {
		return []time.Time{}
	}
	return dates
}
