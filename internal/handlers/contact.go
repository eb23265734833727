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

// SubmitContactRequest carries the contact form's field names verbatim.
type SubmitContactRequest struct {
	Name    string `json:"contactName" validate:"required"`
	Email   string `json:"contactEmail" validate:"required,email"`
	Subject string `json:"contactSubject" validate:"required"`
	Message string `json:"contactMessage" validate:"required"`
}

func (s *Server) SubmitContact(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req SubmitContactRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("contact submit: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("contact submit: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "contact data incomplete", details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	contacts, _ := s.Store.Collection(models.ResourceContacts)
	rec, err := contacts.Insert(ctx, store.Record{
		"name":      req.Name,
		"email":     req.Email,
		"subject":   req.Subject,
		"message":   req.Message,
		"status":    models.ContactStatusNew,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Error("contact submit: storage error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "failed to save contact message", nil)
		return
	}

	s.invalidateResource(ctx, models.ResourceContacts)
	log.Info("contact submit: stored", slog.Int("contact_id", store.RecordID(rec)))
	transport.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "message sent, we will respond shortly",
	})
}
