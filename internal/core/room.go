package core

import "time"

// MaxParticipants is the hard cap on admitted participants per room.
const MaxParticipants = 2

// Room is the metadata of a live chat room. Connected holds the session
// tokens of admitted participants in join order and never shrinks; the only
// way a slot is freed is the room expiring or being destroyed.
type Room struct {
	ID        string
	Connected []string
	CreatedAt time.Time
}

// HasToken reports whether token already occupies a slot in the room.
func (r *Room) HasToken(token string) bool {
	if token == "" {
		return false
	}
	for _, t := range r.Connected {
		if t == token {
			return true
		}
	}
	return false
}

// Full reports whether both participant slots are taken.
func (r *Room) Full() bool {
	return len(r.Connected) >= MaxParticipants
}
