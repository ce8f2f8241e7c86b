package event

import "context"

// Event names published on room lifecycle transitions. Clients subscribed to a
// room channel (or the global channel) receive these through the realtime layer.
const (
	RoomCreated       = "room-created"
	RoomUpdated       = "room-updated"
	UserJoined        = "user-joined"
	UserLeft          = "user-left"
	MatchStarted      = "match-started"
	SubmissionUpdated = "submission-updated"
	MatchFinished     = "match-finished"
	MatchEnded        = "match-ended"
)

// GlobalTopic carries room list changes visible to every connected client;
// RoomTopic scopes events to one room's subscribers.
const GlobalTopic = "rooms"

func RoomTopic(roomID string) string {
	return "room:" + roomID
}

// Broadcaster delivers lifecycle events to connected clients. The concrete
// transport (Redis pub/sub in production) is opaque to the services publishing
// through it.
type Broadcaster interface {
	Publish(ctx context.Context, topic string, eventName string, payload interface{}) error
}
