package models

import "time"

// Realtime event names pushed over the websocket.
const (
	EventDMNewMessage     = "dm:new_message"
	EventThreadNewMessage = "thread:new_message"
)

// MessagePayload is the message body carried inside a realtime event.
type MessagePayload struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	SenderID       string    `json:"senderId"`
	SenderUsername string    `json:"senderUsername"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Event is one realtime notification as delivered to a client socket.
type Event struct {
	Event    string         `json:"event"`
	ThreadID string         `json:"threadId"`
	Message  MessagePayload `json:"message"`
}

// Envelope wraps an event for cross-process fanout over Redis pub/sub. Each
// subscribed process unwraps it and delivers the payload to the target user's
// local connections.
type Envelope struct {
	TargetUserID string `json:"target_user_id"`
	Payload      Event  `json:"payload"`
}

// NewMessageEvent builds the realtime event for a freshly appended message.
func NewMessageEvent(event, threadID string, msg MessagePayload) Event {
	return Event{Event: event, ThreadID: threadID, Message: msg}
}
