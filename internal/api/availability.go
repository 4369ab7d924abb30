package api

import (
	"net/http"
	"time"

	"posada/internal/metrics"
	"posada/internal/models"
)

// AvailabilityResponse is the response for GET /api/availability.
type AvailabilityResponse struct {
	Success bool                            `json:"success"`
	Data    []models.RoomAvailabilityRecord `json:"data,omitempty"`
	Error   string                          `json:"error,omitempty"`
}

// handleAvailability returns the availability records for the month
// containing the requested date. The widget issues two calls per navigation,
// one per displayed month; the loader fetches the whole two-month window so
// the second call is served from the snapshot.
// GET /api/availability?date=YYYY-MM-DD
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	month := models.MonthKey{Year: date.Year(), Month: int(date.Month())}
	snap := s.loader.Snapshot()
	if snap == nil || !snap.Covers(models.DateOf(month.Year, month.Month, 1)) {
		// Month navigation moved the window; replace the snapshot.
		snap = s.loader.Load(r.Context(), month)
	}

	records := snap.RecordsForMonth(month)
	if records == nil {
		records = []models.RoomAvailabilityRecord{}
	}
	writeJSON(w, http.StatusOK, AvailabilityResponse{Success: true, Data: records})
}

// handleRooms returns the static room metadata.
// GET /api/rooms
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("rooms")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": s.roomConfigs()})
}
