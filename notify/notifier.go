//go:generate go run go.uber.org/mock/mockgen -source=notifier.go -destination=../mocks/mock_notifier.go -package=mocks
package notify

import "time"

// Event names emitted by the swap coordinator.
const (
	EventSwapIncoming = "swap:incoming"
	EventSwapOutgoing = "swap:outgoing"
	EventSwapUpdated  = "swap:updated"
)

// Event is what subscribed sinks receive.
type Event struct {
	Name    string
	UserID  string
	Payload any
	At      time.Time
}

// Notifier is the side-channel boundary of the swap engine.
//
// Both methods are declared without an error return on purpose: delivery is
// best effort, and implementations swallow and log their own failures. The
// coordinator calls them after its transaction committed, never before.
type Notifier interface {
	Emit(event string, userID string, payload any)
	SendEmail(to, subject, body string)
}

// EventSink is a single consumer of events for one user, typically a live
// connection held by the transport layer.
type EventSink interface {
	Consume(e Event) error
}
