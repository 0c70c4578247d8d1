package http

import (
	"context"
	stdhttp "net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/burnchat/burnchat-server/internal/config"
	"github.com/burnchat/burnchat-server/internal/core"
	"github.com/burnchat/burnchat-server/internal/gateway"
	"github.com/burnchat/burnchat-server/internal/relay"
	"github.com/burnchat/burnchat-server/internal/service/rooms"
	redisstore "github.com/burnchat/burnchat-server/internal/store/redis"
)

// memoryRelay is an in-process fanout with the same semantics as the NATS
// relay: best-effort, no replay, per-room ordering.
type memoryRelay struct {
	mu   sync.Mutex
	subs map[string]map[*memorySubscription]struct{}
}

func newMemoryRelay() *memoryRelay {
	return &memoryRelay{subs: make(map[string]map[*memorySubscription]struct{})}
}

func (r *memoryRelay) Publish(_ context.Context, roomID string, kind core.EventKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for sub := range r.subs[roomID] {
		select {
		case sub.events <- core.Event{Kind: kind, Room: roomID}:
		default:
		}
	}
	return nil
}

func (r *memoryRelay) Subscribe(_ context.Context, roomID string) (relay.Subscription, error) {
	sub := &memorySubscription{
		relay:  r,
		roomID: roomID,
		events: make(chan core.Event, 16),
	}
	r.mu.Lock()
	if r.subs[roomID] == nil {
		r.subs[roomID] = make(map[*memorySubscription]struct{})
	}
	r.subs[roomID][sub] = struct{}{}
	r.mu.Unlock()
	return sub, nil
}

func (r *memoryRelay) Close() error { return nil }

type memorySubscription struct {
	relay  *memoryRelay
	roomID string
	events chan core.Event
	closed bool
}

func (s *memorySubscription) Events() <-chan core.Event { return s.events }

func (s *memorySubscription) Close() error {
	s.relay.mu.Lock()
	defer s.relay.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	delete(s.relay.subs[s.roomID], s)
	close(s.events)
	return nil
}

type testEnv struct {
	server *stdhttp.Server
	relay  *memoryRelay
	store  *redisstore.RedisStore
	mr     *miniredis.Miniredis
	svc    *rooms.Service
}

// createTestServer wires handlers over miniredis and an in-memory relay.
func createTestServer(t *testing.T, ttl time.Duration) *testEnv {
	return createTestServerWithConfig(t, ttl, nil)
}

func createTestServerWithRateLimit(t *testing.T, ttl time.Duration, rateLimit int) *testEnv {
	return createTestServerWithConfig(t, ttl, func(cfg *config.Config) {
		cfg.MessageRateLimit = rateLimit
	})
}

func createTestServerWithConfig(t *testing.T, ttl time.Duration, mutate func(*config.Config)) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	st := redisstore.NewWithClient(client)
	t.Cleanup(func() { _ = st.Close() })

	rl := newMemoryRelay()
	disabledLogger := zerolog.New(nil)

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.RoomTTL = ttl
	cfg.CookieSecret = "test-secret"
	cfg.MessageRateLimit = 0
	if mutate != nil {
		mutate(&cfg)
	}

	gw := gateway.New(st, &disabledLogger)
	svc := rooms.New(st, rl, ttl, &disabledLogger)
	server := NewServer(svc, gw, rl, &cfg, &disabledLogger)

	return &testEnv{
		server: server,
		relay:  rl,
		store:  st,
		mr:     mr,
		svc:    svc,
	}
}
