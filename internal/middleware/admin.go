package middleware

import (
	"net/http"
	"strings"

	"github.com/OktaWirawan/anitasalonn/internal/auth"
	"github.com/OktaWirawan/anitasalonn/internal/models"
	"github.com/OktaWirawan/anitasalonn/internal/transport"
)

// AdminAuth gates a route on a bearer token carrying the admin role.
// With no token manager configured the gate is a pass-through, matching
// the historical open behavior of the dashboard endpoints.
func AdminAuth(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}

			claims, err := manager.Parse(token)
			if err != nil || claims.Role != models.RoleAdmin {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
