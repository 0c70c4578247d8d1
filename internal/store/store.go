package store

import (
	"context"
	"time"

	"github.com/burnchat/burnchat-server/internal/core"
)

// RoomStore holds room metadata and per-room message lists with native
// per-key expiry. Metadata, the connected-token list and the message list of
// a room share a single expiry horizon fixed at creation: nothing a
// participant does extends it.
//
// Expected outcomes are the sentinel errors in package core
// (core.ErrRoomNotFound, core.ErrRoomFull); any other error is an
// infrastructure failure and must not be mistaken for an absent room.
type RoomStore interface {
	// CreateRoom allocates a fresh room with an empty participant list and
	// the given time-to-live, returning its id.
	CreateRoom(ctx context.Context, ttl time.Duration) (string, error)

	// GetMeta returns a consistent snapshot of the room metadata, including
	// the connected token list in join order.
	GetMeta(ctx context.Context, roomID string) (*core.Room, error)

	// ConditionalJoin atomically appends token to the room's connected list
	// only if a slot is free. It is the single mutation path for the
	// connected list; a plain read-then-write is not an acceptable
	// implementation because concurrent admissions race on the last slot.
	ConditionalJoin(ctx context.Context, roomID, token string) error

	// RemainingTTL returns the time until the room passively expires.
	RemainingTTL(ctx context.Context, roomID string) (time.Duration, error)

	// AppendMessage assigns the message an id and timestamp and appends it to
	// the room's ordered message list. The list inherits the room's remaining
	// TTL; it is never extended past the metadata horizon.
	AppendMessage(ctx context.Context, roomID, sender, text string) (*core.Message, error)

	// ListMessages returns the room's messages in creation order.
	ListMessages(ctx context.Context, roomID string) ([]core.Message, error)

	// Destroy removes metadata and messages together. Idempotent: destroying
	// an absent room is a silent no-op.
	Destroy(ctx context.Context, roomID string) error

	// Close releases the underlying connection.
	Close() error
}
