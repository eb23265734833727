package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/OktaWirawan/anitasalonn/internal/auth"
	"github.com/OktaWirawan/anitasalonn/internal/models"
	"github.com/OktaWirawan/anitasalonn/internal/store"
	"github.com/OktaWirawan/anitasalonn/internal/transport"
)

// Generic CRUD over the fixed resource set, used by the user and admin
// dashboards. Payloads are filtered to each resource's declared fields
// before they touch disk, and user passwords are hashed on every write
// path.

type ItemResponse struct {
	Message string       `json:"message"`
	Item    store.Record `json:"item"`
}

func (s *Server) resolveCollection(w http.ResponseWriter, r *http.Request) (*store.Collection, string, bool) {
	name := chi.URLParam(r, "resource")
	col, ok := s.Store.Collection(name)
	if !ok {
		s.logWithRequest(r).Warn("resource: unknown", slog.String("resource", name))
		transport.WriteError(w, http.StatusNotFound, "unknown resource: "+name, nil)
		return nil, "", false
	}
	return col, name, true
}

func (s *Server) ListResource(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	col, name, ok := s.resolveCollection(w, r)
	if !ok {
		return
	}

	cacheKey := s.resourceCacheKey(name)
	if s.Cache != nil {
		if cached, ok, err := s.Cache.Get(r.Context(), cacheKey); err == nil && ok {
			log.Info("resource list: cache hit", slog.String("resource", name))
			writeCachedJSON(w, http.StatusOK, cached)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, err := col.List(ctx)
	if err != nil {
		log.Error("resource list: storage error",
			slog.String("resource", name), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "failed to load "+name, nil)
		return
	}

	if payload, err := encodeJSON(records); err == nil && s.Cache != nil {
		_ = s.Cache.Set(r.Context(), cacheKey, payload, time.Duration(s.Cfg.CacheTTLSeconds)*time.Second)
	}

	log.Info("resource list: ok", slog.String("resource", name), slog.Int("count", len(records)))
	transport.WriteJSON(w, http.StatusOK, records)
}

func (s *Server) CreateResource(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	col, name, ok := s.resolveCollection(w, r)
	if !ok {
		return
	}

	var partial store.Record
	if err := decodeJSON(r, &partial); err != nil {
		log.Warn("resource create: invalid json", slog.String("resource", name))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if name == models.ResourceUsers {
		if !s.hashUserPassword(w, log, partial) {
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rec, err := col.Insert(ctx, partial)
	if err != nil {
		log.Error("resource create: storage error",
			slog.String("resource", name), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "failed to create "+name, nil)
		return
	}

	s.invalidateResource(ctx, name)
	log.Info("resource create: ok", slog.String("resource", name), slog.Int("id", store.RecordID(rec)))
	transport.WriteJSON(w, http.StatusCreated, ItemResponse{
		Message: fmt.Sprintf("%s created", name),
		Item:    rec,
	})
}

func (s *Server) UpdateResource(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	col, name, ok := s.resolveCollection(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("resource update: bad id", slog.String("resource", name))
		transport.WriteError(w, http.StatusNotFound, "record not found", nil)
		return
	}

	var partial store.Record
	if err := decodeJSON(r, &partial); err != nil {
		log.Warn("resource update: invalid json", slog.String("resource", name))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if name == models.ResourceUsers {
		if !s.hashUserPassword(w, log, partial) {
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rec, err := col.Update(ctx, id, partial)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("resource update: not found", slog.String("resource", name), slog.Int("id", id))
			transport.WriteError(w, http.StatusNotFound, "record not found", nil)
			return
		}
		log.Error("resource update: storage error",
			slog.String("resource", name), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "failed to update "+name, nil)
		return
	}

	s.invalidateResource(ctx, name)
	log.Info("resource update: ok", slog.String("resource", name), slog.Int("id", id))
	transport.WriteJSON(w, http.StatusOK, ItemResponse{
		Message: fmt.Sprintf("%s %d updated", name, id),
		Item:    rec,
	})
}

func (s *Server) DeleteResource(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	col, name, ok := s.resolveCollection(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("resource delete: bad id", slog.String("resource", name))
		transport.WriteError(w, http.StatusNotFound, "record not found", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := col.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("resource delete: not found", slog.String("resource", name), slog.Int("id", id))
			transport.WriteError(w, http.StatusNotFound, "record not found", nil)
			return
		}
		log.Error("resource delete: storage error",
			slog.String("resource", name), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "failed to delete "+name, nil)
		return
	}

	s.invalidateResource(ctx, name)
	log.Info("resource delete: ok", slog.String("resource", name), slog.Int("id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%s %d deleted", name, id),
	})
}

// hashUserPassword replaces a plaintext "password" field in a generic
// user payload with its bcrypt hash. Reports false after writing an
// error response.
func (s *Server) hashUserPassword(w http.ResponseWriter, log *slog.Logger, partial store.Record) bool {
	raw, ok := partial["password"].(string)
	if !ok || raw == "" {
		delete(partial, "password")
		return true
	}
	hash, err := auth.HashPassword(raw)
	if err != nil {
		log.Error("resource write: hash error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "password error", nil)
		return false
	}
	partial["password"] = hash
	return true
}
