package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/OktaWirawan/anitasalonn/internal/httpx"
)

func decodeJSON(r *http.Request, v interface{}) error {
	return httpx.DecodeJSON(r.Body, v)
}

func writeCachedJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

func encodeJSON(payload interface{}) ([]byte, error) {
	return json.Marshal(payload)
}

func (s *Server) resourceCacheKey(resource string) string {
	return "resource:" + resource
}

func (s *Server) invalidateResource(ctx context.Context, resource string) {
	if s.Cache == nil {
		return
	}
	_ = s.Cache.Delete(ctx, s.resourceCacheKey(resource))
}
