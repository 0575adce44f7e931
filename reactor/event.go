package reactor

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventTypeString is the string discriminator used for dispatch and
// emit-whitelist checks.
type EventTypeString = string

// UUIDString is the globally unique identity of an event, stable from
// creation and distinct from the store-assigned sequence ID.
type UUIDString = string

// Events is a slice of Event instances.
type Events = []Event

// Body is the opaque structured payload of an event. It is mutable only
// until the event is appended to a store.
type Body = map[string]any

// Event is an immutable stream record: identity, type, originating
// aggregate, payload body, and the causal-metadata triple
// (UUID, CausationID, CorrelationID).
//
// ID is the monotonically increasing sequence number assigned by the store
// on append; it is zero before the event has been appended.
type Event struct {
	ID            int64
	UUID          UUIDString
	Type          EventTypeString
	AggregateID   string
	Body          Body
	CausationID   UUIDString
	CorrelationID UUIDString
	OccurredAt    time.Time
}

// NewEvent creates a new, not yet appended Event with a fresh UUID.
// AggregateID may be empty for process-level events.
func NewEvent(eventType EventTypeString, aggregateID string, body Body) Event {
	if body == nil {
		body = Body{}
	}

	return Event{
		UUID:        uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		Body:        body,
		OccurredAt:  time.Now().UTC(),
	}
}

// CanonicalEventType normalizes an event type name for registration and
// lookup: surrounding whitespace is trimmed, CamelCase is converted to
// lower snake_case, and existing separators are preserved. Both registered
// and queried names go through this function, so "TermsAccepted",
// "terms_accepted" and " termsAccepted " all identify the same type.
func CanonicalEventType(name string) EventTypeString {
	name = strings.TrimSpace(name)

	var b strings.Builder
	b.Grow(len(name) + 4)

	var prevLowerOrDigit bool

	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			if prevLowerOrDigit {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			prevLowerOrDigit = false

		case r == ' ' || r == '-' || r == '.':
			b.WriteByte('_')
			prevLowerOrDigit = false

		default:
			b.WriteRune(r)
			prevLowerOrDigit = (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		}
	}

	return b.String()
}
