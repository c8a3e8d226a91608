package chathub

import (
	"context"
	"encoding/json"
	"log"

	"courtside/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis pub/sub channel carrying realtime events between
// backend processes.
const EventsChannel = "dm:events"

// Hub fans realtime events out to connected clients. Local delivery goes
// through the registry; with Redis configured, events are published so every
// process (this one included) forwards them to its own sockets. Without
// Redis the hub degrades to direct local delivery.
//
// Delivery is best effort. A failed or slow connection is dropped, never
// retried; clients resync from the store when they reconnect.
type Hub struct {
	Registry *Registry

	redis *redis.Client // nil when running single-process
}

// NewHub creates a hub. Pass a nil client to run without cross-process
// fanout.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		Registry: NewRegistry(),
		redis:    rdb,
	}
}

// DeliverLocal pushes an event to every connection the user holds in this
// process. Connections that fail to accept the event are unregistered and
// closed. Errors never propagate: the message row is already committed and
// is the source of truth.
func (h *Hub) DeliverLocal(userID string, event models.Event) {
	for _, conn := range h.Registry.ForUser(userID) {
		if err := conn.Send(event); err != nil {
			log.Printf("WARNING: Dropping dead connection for user %s: %v", userID, err)
			h.Registry.Remove(userID, conn)
			conn.Close()
		}
	}
}

// Publish routes an event to the target user across all processes. With
// Redis configured the event goes through pub/sub only; this process
// receives its own publication in Run and delivers it locally, so there is
// exactly one delivery path. Publish failures fall back to local delivery
// and are otherwise swallowed.
func (h *Hub) Publish(userID string, event models.Event) {
	if h.redis == nil {
		h.DeliverLocal(userID, event)
		return
	}

	payload, err := json.Marshal(models.Envelope{TargetUserID: userID, Payload: event})
	if err != nil {
		log.Printf("ERROR: Failed to encode event for user %s: %v", userID, err)
		h.DeliverLocal(userID, event)
		return
	}
	if err := h.redis.Publish(context.Background(), EventsChannel, payload).Err(); err != nil {
		log.Printf("WARNING: Redis publish failed, delivering locally only: %v", err)
		h.DeliverLocal(userID, event)
	}
}

// Run consumes the pub/sub channel and forwards each envelope to local
// connections of the target user. Blocks until ctx is cancelled. Without
// Redis there is nothing to consume and Run returns immediately.
func (h *Hub) Run(ctx context.Context) {
	if h.redis == nil {
		log.Println("INFO: Hub running without Redis, events stay in-process")
		return
	}

	pubsub := h.redis.Subscribe(ctx, EventsChannel)
	defer pubsub.Close()
	log.Printf("INFO: Hub subscribed to %s", EventsChannel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env models.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("ERROR: Failed to decode pub/sub payload: %v", err)
				continue
			}
			h.DeliverLocal(env.TargetUserID, env.Payload)
		}
	}
}
