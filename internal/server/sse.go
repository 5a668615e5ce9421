package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"time"
)

// SSEWriter writes Server-Sent Events.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter prepares a response for event streaming.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one event with a JSON payload.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// streamInterval is how often the session stream re-checks for changes.
const streamInterval = 250 * time.Millisecond

// handleSessionStream pushes session state to the interviewer UI whenever
// it changes, so the countdown and question transitions render live
// without polling.
func (s *Server) handleSessionStream(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	last := s.sessionResponse()
	if err := sse.WriteEvent("session", last); err != nil {
		return
	}

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			current := s.sessionResponse()
			if reflect.DeepEqual(current, last) {
				continue
			}
			last = current
			if err := sse.WriteEvent("session", current); err != nil {
				return
			}
		}
	}
}
