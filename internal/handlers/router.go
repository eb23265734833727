package handlers

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/OktaWirawan/anitasalonn/internal/middleware"
)

// Routes assembles the full HTTP surface: form and auth endpoints at the
// root, generic resource CRUD under /api, and optionally the static
// frontend. The same router is used by cmd/api and the handler tests.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.Log))
	r.Use(middleware.CORS(s.Cfg.AllowedOrigin))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	window := time.Duration(s.Cfg.RateLimitWindowSec) * time.Second
	authLimiter := middleware.NewRateLimiter(s.Cfg.RateLimitAuth, window)
	formLimiter := middleware.NewRateLimiter(s.Cfg.RateLimitForms, window)

	r.With(authLimiter.Middleware).Post("/signup", s.Signup)
	r.With(authLimiter.Middleware).Post("/login", s.Login)
	r.With(authLimiter.Middleware).Post("/change-password", s.ChangePassword)
	r.With(formLimiter.Middleware).Post("/submit-booking", s.SubmitBooking)
	r.With(formLimiter.Middleware).Post("/submit-contact", s.SubmitContact)

	r.Route("/api", func(api chi.Router) {
		api.Get("/{resource}", s.ListResource)
		api.Group(func(writes chi.Router) {
			writes.Use(middleware.AdminAuth(s.JWT))
			writes.Post("/{resource}", s.CreateResource)
			writes.Put("/{resource}/{id}", s.UpdateResource)
			writes.Delete("/{resource}/{id}", s.DeleteResource)
		})
	})

	if s.Cfg.PublicDir != "" {
		fileServer := http.FileServer(http.Dir(s.Cfg.PublicDir))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(s.Cfg.PublicDir, "register.html"))
		})
		r.Handle("/*", fileServer)
	}

	return r
}
