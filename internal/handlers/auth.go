package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/OktaWirawan/anitasalonn/internal/auth"
	"github.com/OktaWirawan/anitasalonn/internal/models"
	"github.com/OktaWirawan/anitasalonn/internal/store"
	"github.com/OktaWirawan/anitasalonn/internal/transport"
)

var (
	errEmailTaken    = errors.New("email already registered")
	errUserNotFound  = errors.New("user not found")
	errWrongPassword = errors.New("wrong password")
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

type UserSummary struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("signup: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("signup: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "all fields are required", details)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error("signup: hash error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "password error", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, _ := s.Store.Collection(models.ResourceUsers)
	err = users.Mutate(ctx, func(records []store.Record) ([]store.Record, error) {
		for _, rec := range records {
			if email, _ := rec["email"].(string); email == req.Email {
				return nil, errEmailTaken
			}
		}
		records = append(records, store.Record{
			"id":       users.NextID(records),
			"name":     req.Name,
			"email":    req.Email,
			"password": hash,
			"role":     models.RoleUser,
			"date":     time.Now().Format(models.RegistrationDateLayout),
		})
		return records, nil
	})
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			log.Warn("signup: email taken", slog.String("email", req.Email))
			transport.WriteError(w, http.StatusConflict, "email already registered, please sign in", nil)
			return
		}
		log.Error("signup: storage error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "storage error", nil)
		return
	}

	s.invalidateResource(ctx, models.ResourceUsers)
	log.Info("signup: ok", slog.String("email", req.Email))
	transport.WriteJSON(w, http.StatusCreated, SignupResponse{
		Message: "registration successful, please sign in",
		User:    UserSummary{Name: req.Name, Email: req.Email, Role: models.RoleUser},
	})
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
	Token   string      `json:"token,omitempty"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("login: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "email and password are required", details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, _ := s.Store.Collection(models.ResourceUsers)
	rec, found, err := users.Find(ctx, func(rec store.Record) bool {
		email, _ := rec["email"].(string)
		return email == req.Email
	})
	if err != nil {
		log.Error("login: storage error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "storage error", nil)
		return
	}

	hash, _ := rec["password"].(string)
	if !found || auth.ComparePassword(hash, req.Password) != nil {
		log.Warn("login: invalid credentials", slog.String("email", req.Email))
		transport.WriteError(w, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}

	name, _ := rec["name"].(string)
	role, _ := rec["role"].(string)
	if role == "" {
		role = models.RoleUser
	}

	resp := LoginResponse{
		Message: "welcome back, " + name + "!",
		User: UserSummary{
			ID:    store.RecordID(rec),
			Name:  name,
			Email: req.Email,
			Role:  role,
		},
	}
	if s.JWT != nil {
		token, err := s.JWT.NewAccessToken(req.Email, role)
		if err != nil {
			log.Error("login: token error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
			return
		}
		resp.Token = token
	}

	log.Info("login: ok", slog.String("email", req.Email), slog.String("role", role))
	transport.WriteJSON(w, http.StatusOK, resp)
}

type ChangePasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("change password: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("change password: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "all password fields are required", details)
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		log.Error("change password: hash error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "password error", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, _ := s.Store.Collection(models.ResourceUsers)
	err = users.Mutate(ctx, func(records []store.Record) ([]store.Record, error) {
		for i, rec := range records {
			email, _ := rec["email"].(string)
			if email != req.Email {
				continue
			}
			hash, _ := rec["password"].(string)
			if auth.ComparePassword(hash, req.OldPassword) != nil {
				return nil, errWrongPassword
			}
			records[i]["password"] = newHash
			return records, nil
		}
		return nil, errUserNotFound
	})
	if err != nil {
		switch {
		case errors.Is(err, errUserNotFound):
			log.Warn("change password: user not found", slog.String("email", req.Email))
			transport.WriteError(w, http.StatusNotFound, "user not found", nil)
		case errors.Is(err, errWrongPassword):
			log.Warn("change password: wrong old password", slog.String("email", req.Email))
			transport.WriteError(w, http.StatusUnauthorized, "old password is incorrect", nil)
		default:
			log.Error("change password: storage error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "storage error", nil)
		}
		return
	}

	s.invalidateResource(ctx, models.ResourceUsers)
	log.Info("change password: ok", slog.String("email", req.Email))
	transport.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "password updated, please sign in again",
	})
}
