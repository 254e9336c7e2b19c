// Package domain defines the token/permission event model. The event type
// set is closed: collaborators must be able to rely on these exact names.
package domain

import (
	"time"

	"github.com/allisson/identity/internal/document"
)

// EventType names an announced token or permission event.
type EventType string

// The closed set of emitted event types.
const (
	EventTokenGenerated EventType = "TokenGenerated"
	EventTokenVerified  EventType = "TokenVerified"
	EventTokenRefreshed EventType = "TokenRefreshed"
	EventTokenRevoked   EventType = "TokenRevoked"
)

// Event is a fire-and-forget notification about a token lifecycle transition.
// The core writes events to the outbound queue and never reads them back;
// delivery is attempted, not guaranteed.
type Event struct {
	ID           string
	Type         EventType
	UserID       string
	MembershipID string
	Payload      *document.Document
	EventTime    time.Time
}
