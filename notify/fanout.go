package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Fanout broadcasts events to the sinks registered for a user and hands
// emails to a Mailer.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. Fanout is not a message broker.
//
// Fanout is safe for concurrent use by multiple goroutines. A failing sink
// or mailer is logged and skipped; nothing ever propagates to the caller.
type Fanout struct {
	mu       sync.RWMutex
	log      *slog.Logger
	mailer   Mailer
	sessions map[string][]EventSink // map user -> live sinks
}

func NewFanout(log *slog.Logger, mailer Mailer) *Fanout {
	return &Fanout{
		log:      log,
		mailer:   mailer,
		sessions: make(map[string][]EventSink),
	}
}

// Subscribe registers a sink for a user. One user may hold several sinks at
// once (one per open connection).
func (f *Fanout) Subscribe(userID string, sink EventSink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[userID] = append(f.sessions[userID], sink)
}

// Unsubscribe removes one sink of a user, leaving their other connections
// untouched. The user entry is dropped entirely once its last sink is gone.
func (f *Fanout) Unsubscribe(userID string, sink EventSink) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sinks := f.sessions[userID]
	for i, s := range sinks {
		if s == sink {
			f.sessions[userID] = append(sinks[:i], sinks[i+1:]...)
			break
		}
	}
	if len(f.sessions[userID]) == 0 {
		delete(f.sessions, userID)
	}
}

func (f *Fanout) Emit(event string, userID string, payload any) {
	e := Event{Name: event, UserID: userID, Payload: payload, At: time.Now().UTC()}

	f.mu.RLock()
	sinks := make([]EventSink, len(f.sessions[userID]))
	copy(sinks, f.sessions[userID])
	f.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.Consume(e); err != nil {
			f.log.Warn("event sink failed", "event", event, "user", userID, "error", err)
		}
	}
}

func (f *Fanout) SendEmail(to, subject, body string) {
	if f.mailer == nil {
		return
	}
	if err := f.mailer.Send(to, subject, body); err != nil {
		f.log.Warn("email delivery failed", "to", to, "error", err)
	}
}
