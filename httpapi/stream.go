package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Pk1316/slot-swapper-backend/notify"
)

// sseSink buffers events for one open stream. A full buffer drops the event
// instead of blocking the emitter: the stream is a best-effort side channel.
type sseSink struct {
	ch chan notify.Event
}

func (s *sseSink) Consume(e notify.Event) error {
	select {
	case s.ch <- e:
		return nil
	default:
		return fmt.Errorf("stream buffer full, event dropped")
	}
}

// handleEventStream pushes the caller's swap notifications over
// server-sent events until the connection closes.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusNotImplemented)
		return
	}

	userID := UserID(r.Context())
	sink := &sseSink{ch: make(chan notify.Event, 16)}
	s.fanout.Subscribe(userID, sink)
	defer s.fanout.Unsubscribe(userID, sink)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-sink.ch:
			data, err := json.Marshal(e.Payload)
			if err != nil {
				s.log.Warn("event payload encoding failed", "event", e.Name, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Name, data)
			flusher.Flush()
		}
	}
}
