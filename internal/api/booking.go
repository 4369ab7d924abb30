package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"posada/internal/availability"
	"posada/internal/events"
	"posada/internal/metrics"
	"posada/internal/models"
)

// BookingResponse is the response for POST /api/booking.
type BookingResponse struct {
	Success   bool            `json:"success"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// handleBooking validates the stay and forwards the request to the
// notification collaborator. Nothing is stored; availability is advisory and
// the spreadsheet stays the source of truth.
// POST /api/booking
func (s *Server) handleBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booking")

	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many booking requests; try again shortly")
		return
	}

	var req models.BookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start, end, err := s.validateBooking(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.RequestID = uuid.NewString()
	if s.mirador != 0 {
		req.IsMirador = true
	}

	result, err := s.notifier.Submit(r.Context(), req)
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", req.RequestID).Msg("booking notification failed")
		metrics.IncBookingSubmitted("error")
		writeError(w, http.StatusBadGateway, "notification service unavailable")
		return
	}
	if !result.Success {
		metrics.IncBookingSubmitted("rejected")
		writeJSON(w, http.StatusUnprocessableEntity, BookingResponse{
			Success:   false,
			RequestID: req.RequestID,
			Error:     result.Error,
		})
		return
	}

	metrics.IncBookingSubmitted("ok")
	if s.bus != nil {
		s.bus.Publish(events.TypeBookingSubmitted, req)
	}
	s.logger.Info().
		Str("request_id", req.RequestID).
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Int("room", req.RoomNumber).
		Msg("booking forwarded")

	writeJSON(w, http.StatusOK, BookingResponse{
		Success:   true,
		RequestID: req.RequestID,
		Data:      result.Data,
	})
}

func (s *Server) validateBooking(req *models.BookingRequest) (start, end time.Time, err error) {
	if req.StartDate == "" || req.EndDate == "" {
		return start, end, fmt.Errorf("startDate and endDate are required")
	}
	start, err = time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid startDate format; expected YYYY-MM-DD")
	}
	end, err = time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid endDate format; expected YYYY-MM-DD")
	}
	if !end.After(start) {
		return start, end, fmt.Errorf("endDate must be after startDate")
	}
	if req.Name == "" {
		return start, end, fmt.Errorf("name is required")
	}
	if req.Phone == "" {
		return start, end, fmt.Errorf("phone is required")
	}
	if req.Adults < 1 {
		return start, end, fmt.Errorf("at least one adult is required")
	}

	idx := s.index()
	validator := availability.NewValidator(idx)

	// The stay minus the checkout night must be valid; a single night is
	// always submittable if its date was reachable in the picker.
	if end.Sub(start) > 24*time.Hour && !validator.IsRangeValid(start, end.AddDate(0, 0, -1)) {
		return start, end, fmt.Errorf("selected dates are no longer available")
	}

	if req.RoomNumber != 0 {
		eligible := idx.EligibleRooms(start, &end, req.Adults+req.Children)
		found := false
		for _, room := range eligible {
			if room.RoomNumber == req.RoomNumber {
				found = true
				req.RoomName = room.RoomName
				break
			}
		}
		if !found {
			return start, end, fmt.Errorf("room is not available for the selected dates")
		}
	}

	return start, end, nil
}
