package relay

import (
	"context"

	"github.com/burnchat/burnchat-server/internal/core"
)

// Relay fans out room events to currently-connected subscribers. Delivery is
// best-effort and advisory: there is no retained log and no replay, a
// subscriber that attaches late catches up with a full re-fetch through the
// room API. Per subscriber, events for one room arrive in publish order.
type Relay interface {
	// Publish sends an event to the room's channel, fire-and-forget.
	Publish(ctx context.Context, roomID string, kind core.EventKind) error

	// Subscribe attaches to the room's channel for the duration of the
	// caller's connection. Not restartable: a new call starts a fresh
	// subscription with no backlog.
	Subscribe(ctx context.Context, roomID string) (Subscription, error)

	// Close tears down the relay connection.
	Close() error
}

// Subscription is one live attachment to a room's channel.
type Subscription interface {
	// Events yields the subscription's event stream. The channel is closed
	// when the subscription ends.
	Events() <-chan core.Event

	// Close detaches from the channel and closes the event stream.
	Close() error
}
