package chathub

import "courtside/backend/internal/models"

// Conn is the interface for one live client connection (e.g. WebSocket).
// It abstracts the underlying transport, allowing the hub to manage different
// connection types uniformly.
type Conn interface {
	// UserID returns the unique identifier of the user behind the connection.
	UserID() string

	// Send pushes an event to the connection without blocking. A returned
	// error marks the connection dead; the hub unregisters and closes it.
	Send(event models.Event) error

	// Close shuts the connection down. Safe to call more than once.
	Close()
}
