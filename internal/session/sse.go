package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ServeSSE runs one GET /sse connection end to end: opens a session,
// announces the messages endpoint, then streams responses and
// heartbeat comments until the client disconnects or the session is
// closed. messagesPath is the POST path advertised in the endpoint
// event.
func (m *Manager) ServeSSE(w http.ResponseWriter, r *http.Request, messagesPath string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	s, err := m.Open()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer m.closeSession(s, "disconnect")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Disables proxy buffering; without it nginx holds events back.
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sw := streamWriter{w: w, flusher: flusher}
	endpoint := fmt.Sprintf("%s?sessionId=%s", messagesPath, s.ID)
	if err := sw.event("endpoint", []byte(endpoint)); err != nil {
		return
	}

	heartbeat := time.NewTicker(m.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case resp := <-s.events:
			data, err := json.Marshal(resp)
			if err != nil {
				m.logger.Error("encode response", "session_id", s.ID, "error", err)
				continue
			}
			if err := sw.event("message", data); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := sw.comment("ping"); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		case <-s.Done():
			return
		}
	}
}

// streamWriter frames SSE events and flushes after each write so
// events reach the client immediately.
type streamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (sw streamWriter) event(name string, data []byte) error {
	if _, err := fmt.Fprintf(sw.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}

func (sw streamWriter) comment(text string) error {
	if _, err := fmt.Fprintf(sw.w, ": %s\n\n", text); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}
