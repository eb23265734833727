package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/OktaWirawan/anitasalonn/internal/auth"
	"github.com/OktaWirawan/anitasalonn/internal/cache"
	"github.com/OktaWirawan/anitasalonn/internal/config"
	"github.com/OktaWirawan/anitasalonn/internal/middleware"
	"github.com/OktaWirawan/anitasalonn/internal/models"
	"github.com/OktaWirawan/anitasalonn/internal/store"
	"github.com/OktaWirawan/anitasalonn/internal/validation"
)

type BookingMailer interface {
	SendBookingConfirmation(ctx context.Context, booking models.Booking) (string, error)
}

type Server struct {
	Cfg    *config.Config
	Store  *store.Store
	Val    *validation.Validator
	Log    *slog.Logger
	Cache  cache.Cache
	JWT    *auth.Manager
	Mailer BookingMailer
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
