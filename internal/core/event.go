package core

// EventKind is a notification the relay delivers to room subscribers.
type EventKind int

const (
	// EventMessageAdded tells subscribers a message was posted; it carries no
	// payload, clients re-fetch the message list.
	EventMessageAdded EventKind = iota
	// EventRoomDestroyed tells subscribers the room is gone and they must leave.
	EventRoomDestroyed
)

// Wire names for event kinds, shared by the relay payload and the
// websocket frames forwarded to clients.
const (
	EventNameMessageAdded  = "chat.message"
	EventNameRoomDestroyed = "chat.destroy"
)

// Event describes something that happened in a room.
type Event struct {
	Kind EventKind
	Room string
}

// Name returns the wire name of the event kind.
func (k EventKind) Name() string {
	if k == EventRoomDestroyed {
		return EventNameRoomDestroyed
	}
	return EventNameMessageAdded
}

// KindFromName maps a wire name back to an event kind. The second return is
// false for unknown names.
func KindFromName(name string) (EventKind, bool) {
	switch name {
	case EventNameMessageAdded:
		return EventMessageAdded, true
	case EventNameRoomDestroyed:
		return EventRoomDestroyed, true
	default:
		return 0, false
	}
}
