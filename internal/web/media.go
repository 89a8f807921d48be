package web

import (
	"log/slog"
	"net/http"
)

// MediaGet handles GET /media/{key}: serves a stored blob.
func (s *Server) MediaGet(w http.ResponseWriter, r *http.Request) {
	data, mime, err := s.Blobs.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		slog.Error("failed to get blob", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write media response", "error", err)
	}
}
