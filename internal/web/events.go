package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// ProductEvents handles GET /events/products: a server-sent-events stream of
// full catalog snapshots. Each event is the entire product list as JSON;
// clients replace their state wholesale on every message. Closing the
// connection releases the subscription.
func (s *Server) ProductEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := s.Feed.Subscribe(r.Context())
	if err != nil {
		slog.Error("failed to subscribe to catalog feed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, ok := <-sub.Snapshots():
			if !ok {
				return
			}
			data, err := json.Marshal(snapshot)
			if err != nil {
				slog.Error("failed to encode snapshot", "error", err)
				return
			}
			fmt.Fprintf(w, "event: products\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
