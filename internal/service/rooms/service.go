package rooms

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/burnchat/burnchat-server/internal/core"
	"github.com/burnchat/burnchat-server/internal/relay"
	"github.com/burnchat/burnchat-server/internal/store"
)

// Service orchestrates the room API over the store and the relay. Store
// writes are authoritative; relay publishes are advisory and never fail the
// operation that triggered them.
type Service struct {
	store store.RoomStore
	relay relay.Relay
	ttl   time.Duration
	log   *zerolog.Logger
}

// New builds the room service. ttl is the fixed lifetime given to every
// room at creation; nothing later extends it.
func New(st store.RoomStore, rl relay.Relay, ttl time.Duration, logger *zerolog.Logger) *Service {
	return &Service{
		store: st,
		relay: rl,
		ttl:   ttl,
		log:   logger,
	}
}

// CreatedRoom describes a freshly created room.
type CreatedRoom struct {
	ID  string
	TTL time.Duration
}

// Create allocates a new room with the service-wide TTL.
func (s *Service) Create(ctx context.Context) (*CreatedRoom, error) {
	roomID, err := s.store.CreateRoom(ctx, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	s.log.Info().Str("room_id", roomID).Dur("ttl", s.ttl).Msg("room created")
	return &CreatedRoom{ID: roomID, TTL: s.ttl}, nil
}

// TTL returns the room's remaining lifetime.
func (s *Service) TTL(ctx context.Context, roomID string) (time.Duration, error) {
	return s.store.RemainingTTL(ctx, roomID)
}

// Messages returns the room's messages in creation order.
func (s *Service) Messages(ctx context.Context, roomID string) ([]core.Message, error) {
	return s.store.ListMessages(ctx, roomID)
}

// Post appends a message and nudges subscribers to re-fetch. The append is
// what counts; a failed publish is logged and swallowed.
func (s *Service) Post(ctx context.Context, roomID, sender, text string) (*core.Message, error) {
	msg, err := s.store.AppendMessage(ctx, roomID, sender, text)
	if err != nil {
		return nil, err
	}

	if err := s.relay.Publish(ctx, roomID, core.EventMessageAdded); err != nil {
		s.log.Warn().Err(err).Str("room_id", roomID).Msg("message-added publish failed")
	}

	return msg, nil
}

// Destroy purges the room and its messages. Idempotent; a second call on the
// same room is a silent success. The destroy notification is published once
// per call, best-effort.
func (s *Service) Destroy(ctx context.Context, roomID string) error {
	if err := s.store.Destroy(ctx, roomID); err != nil {
		return err
	}

	if err := s.relay.Publish(ctx, roomID, core.EventRoomDestroyed); err != nil {
		s.log.Warn().Err(err).Str("room_id", roomID).Msg("room-destroyed publish failed")
	}

	s.log.Info().Str("room_id", roomID).Msg("room destroyed")
	return nil
}
