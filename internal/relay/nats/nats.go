package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/burnchat/burnchat-server/internal/core"
	"github.com/burnchat/burnchat-server/internal/relay"
)

// subjectPrefix scopes room channels; one subject per room keeps ordering
// per room and isolation across rooms.
const subjectPrefix = "room.events."

// eventBuffer is the per-subscription channel depth; slow consumers drop
// events instead of blocking the relay (they re-fetch anyway).
const eventBuffer = 16

// envelope is the wire payload on the room subject.
type envelope struct {
	Event string `json:"event"`
}

// NatsRelay implements relay.Relay over core NATS pub/sub, which already has
// the delivery semantics the relay promises: no persistence, no replay,
// publish-order delivery per subject.
type NatsRelay struct {
	conn *nats.Conn
	log  *zerolog.Logger
}

var _ relay.Relay = (*NatsRelay)(nil)

// New connects to the NATS server at url.
func New(url, name string, logger *zerolog.Logger) (*NatsRelay, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	logger.Info().Str("url", conn.ConnectedUrl()).Msg("connected to nats")
	return &NatsRelay{conn: conn, log: logger}, nil
}

// NewWithConn wraps an existing connection. Used by tests.
func NewWithConn(conn *nats.Conn, logger *zerolog.Logger) *NatsRelay {
	return &NatsRelay{conn: conn, log: logger}
}

func subject(roomID string) string {
	return subjectPrefix + roomID
}

// Publish sends the event to the room's subject.
func (r *NatsRelay) Publish(_ context.Context, roomID string, kind core.EventKind) error {
	payload, err := json.Marshal(envelope{Event: kind.Name()})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := r.conn.Publish(subject(roomID), payload); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscribe attaches to the room's subject and streams decoded events until
// the context ends or the subscription is closed.
func (r *NatsRelay) Subscribe(ctx context.Context, roomID string) (relay.Subscription, error) {
	s := &subscription{
		events: make(chan core.Event, eventBuffer),
		done:   make(chan struct{}),
	}

	sub, err := r.conn.Subscribe(subject(roomID), func(msg *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			r.log.Warn().Err(err).Str("room_id", roomID).Msg("invalid relay payload")
			return
		}
		kind, ok := core.KindFromName(env.Event)
		if !ok {
			r.log.Warn().Str("event", env.Event).Str("room_id", roomID).Msg("unknown relay event")
			return
		}
		s.deliver(core.Event{Kind: kind, Room: roomID})
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe room: %w", err)
	}
	s.sub = sub

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()

	return s, nil
}

// Close drains the connection so in-flight messages finish delivering.
func (r *NatsRelay) Close() error {
	return r.conn.Drain()
}

type subscription struct {
	sub    *nats.Subscription
	events chan core.Event
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// deliver hands an event to the consumer, dropping it if the consumer's
// buffer is full. Holding the mutex while sending keeps the send from racing
// with Close closing the channel.
func (s *subscription) deliver(ev core.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

func (s *subscription) Events() <-chan core.Event {
	return s.events
}

func (s *subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.events)
	close(s.done)
	s.mu.Unlock()

	return s.sub.Unsubscribe()
}
