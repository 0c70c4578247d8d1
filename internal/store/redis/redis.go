package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/burnchat/burnchat-server/internal/core"
	"github.com/burnchat/burnchat-server/internal/store"
)

// RedisStore implements store.RoomStore on Redis. Rooms live under three
// keys that share one expiry horizon:
//
//	meta:{roomId}      hash: created_at, next_id
//	connected:{roomId} list of session tokens in join order
//	messages:{roomId}  list of JSON-encoded messages
//
// Expiry is Redis-native per-key TTL; there is no sweep anywhere in this
// codebase. A missing meta key means the room never existed, expired, or was
// destroyed — deliberately indistinguishable.
type RedisStore struct {
	client *redis.Client
}

var _ store.RoomStore = (*RedisStore)(nil)

// joinScript appends a token to the connected list only while a slot is
// free. Runs as a single atomic server-side step; this is what resolves
// concurrent admissions racing on the last slot.
// Returns -1 when the room is gone, 0 when full, else the new length.
var joinScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
local n = redis.call("LLEN", KEYS[2])
if n >= tonumber(ARGV[2]) then
  return 0
end
redis.call("RPUSH", KEYS[2], ARGV[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
  redis.call("PEXPIRE", KEYS[2], ttl)
end
return n + 1
`)

// appendScript assigns the next message id and pushes the message, aligning
// the message list's expiry with the metadata horizon (never extending it).
// Returns -1 when the room is gone, else the assigned id.
var appendScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
local id = redis.call("HINCRBY", KEYS[1], "next_id", 1)
local msg = cjson.decode(ARGV[1])
msg["id"] = id
redis.call("RPUSH", KEYS[2], cjson.encode(msg))
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
  redis.call("PEXPIRE", KEYS[2], ttl)
end
return id
`)

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func metaKey(roomID string) string      { return "meta:" + roomID }
func connectedKey(roomID string) string { return "connected:" + roomID }
func messagesKey(roomID string) string  { return "messages:" + roomID }

// CreateRoom allocates a fresh room with the given lifetime.
func (s *RedisStore) CreateRoom(ctx context.Context, ttl time.Duration) (string, error) {
	roomID := uuid.NewString()
	createdAt := time.Now().UTC()

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, metaKey(roomID),
			"created_at", createdAt.Format(time.RFC3339Nano),
			"next_id", 0,
		)
		pipe.PExpire(ctx, metaKey(roomID), ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}

	return roomID, nil
}

// GetMeta returns a consistent snapshot of metadata plus the connected list.
func (s *RedisStore) GetMeta(ctx context.Context, roomID string) (*core.Room, error) {
	var (
		metaCmd      *redis.MapStringStringCmd
		connectedCmd *redis.StringSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		metaCmd = pipe.HGetAll(ctx, metaKey(roomID))
		connectedCmd = pipe.LRange(ctx, connectedKey(roomID), 0, -1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get meta: %w", err)
	}

	meta := metaCmd.Val()
	if len(meta) == 0 {
		return nil, core.ErrRoomNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, meta["created_at"])
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &core.Room{
		ID:        roomID,
		Connected: connectedCmd.Val(),
		CreatedAt: createdAt,
	}, nil
}

// ConditionalJoin atomically takes a participant slot for token.
func (s *RedisStore) ConditionalJoin(ctx context.Context, roomID, token string) error {
	res, err := joinScript.Run(ctx, s.client,
		[]string{metaKey(roomID), connectedKey(roomID)},
		token, core.MaxParticipants,
	).Int64()
	if err != nil {
		return fmt.Errorf("conditional join: %w", err)
	}

	switch res {
	case -1:
		return core.ErrRoomNotFound
	case 0:
		return core.ErrRoomFull
	default:
		return nil
	}
}

// RemainingTTL returns the time until the room's passive expiry.
func (s *RedisStore) RemainingTTL(ctx context.Context, roomID string) (time.Duration, error) {
	d, err := s.client.PTTL(ctx, metaKey(roomID)).Result()
	if err != nil {
		return 0, fmt.Errorf("remaining ttl: %w", err)
	}
	if d < 0 {
		// -2: key gone. -1: key without expiry, which CreateRoom never
		// produces; report it as absent rather than invent a lifetime.
		return 0, core.ErrRoomNotFound
	}
	return d, nil
}

// AppendMessage stores a message with a store-assigned id and timestamp.
func (s *RedisStore) AppendMessage(ctx context.Context, roomID, sender, text string) (*core.Message, error) {
	msg := core.Message{
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}

	id, err := appendScript.Run(ctx, s.client,
		[]string{metaKey(roomID), messagesKey(roomID)},
		string(payload),
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	if id == -1 {
		return nil, core.ErrRoomNotFound
	}

	msg.ID = id
	return &msg, nil
}

// ListMessages returns the room's messages in creation order.
func (s *RedisStore) ListMessages(ctx context.Context, roomID string) ([]core.Message, error) {
	var (
		existsCmd *redis.IntCmd
		listCmd   *redis.StringSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		existsCmd = pipe.Exists(ctx, metaKey(roomID))
		listCmd = pipe.LRange(ctx, messagesKey(roomID), 0, -1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	if existsCmd.Val() == 0 {
		return nil, core.ErrRoomNotFound
	}

	raw := listCmd.Val()
	messages := make([]core.Message, 0, len(raw))
	for _, entry := range raw {
		var msg core.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Destroy removes all of the room's keys in one atomic DEL. Safe to call on
// an already-gone room.
func (s *RedisStore) Destroy(ctx context.Context, roomID string) error {
	err := s.client.Del(ctx, metaKey(roomID), connectedKey(roomID), messagesKey(roomID)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("destroy room: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
