package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/OktaWirawan/anitasalonn/internal/models"
	"github.com/OktaWirawan/anitasalonn/internal/store"
	"github.com/OktaWirawan/anitasalonn/internal/transport"
)

// SubmitBookingRequest carries the booking form's field names verbatim.
// Date and time stay free-form strings; the dashboard treats them as
// opaque labels.
type SubmitBookingRequest struct {
	Name    string `json:"bookingName" validate:"required"`
	Email   string `json:"bookingEmail" validate:"required,email"`
	Phone   string `json:"bookingPhone" validate:"omitempty,phone"`
	Service string `json:"bookingService" validate:"required"`
	Date    string `json:"bookingDate" validate:"required"`
	Time    string `json:"bookingTime" validate:"required"`
	Message string `json:"bookingMessage"`
}

func (s *Server) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req SubmitBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("booking submit: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("booking submit: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "booking data incomplete", details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bookings, _ := s.Store.Collection(models.ResourceBookings)
	rec, err := bookings.Insert(ctx, store.Record{
		"name":      req.Name,
		"email":     req.Email,
		"phone":     req.Phone,
		"service":   req.Service,
		"date":      req.Date,
		"time":      req.Time,
		"message":   req.Message,
		"status":    models.BookingStatusPending,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Error("booking submit: storage error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "failed to save booking", nil)
		return
	}

	s.invalidateResource(ctx, models.ResourceBookings)
	log.Info("booking submit: stored", slog.Int("booking_id", store.RecordID(rec)))

	if s.Mailer != nil {
		booking := models.Booking{
			ID:        store.RecordID(rec),
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			Service:   req.Service,
			Date:      req.Date,
			Time:      req.Time,
			Message:   req.Message,
			Status:    models.BookingStatusPending,
			Timestamp: rec["timestamp"].(string),
		}
		go func() {
			mailCtx, mailCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer mailCancel()
			if _, err := s.Mailer.SendBookingConfirmation(mailCtx, booking); err != nil {
				s.Log.Warn("booking submit: confirmation email failed",
					slog.Int("booking_id", booking.ID),
					slog.String("error", err.Error()))
			}
		}()
	}

	transport.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "booking submitted, awaiting confirmation",
	})
}
