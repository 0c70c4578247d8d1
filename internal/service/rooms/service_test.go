package rooms

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/burnchat/burnchat-server/internal/core"
	"github.com/burnchat/burnchat-server/internal/relay"
	redisstore "github.com/burnchat/burnchat-server/internal/store/redis"
)

// recordingRelay captures publishes and can be told to fail.
type recordingRelay struct {
	mu        sync.Mutex
	published []core.Event
	fail      bool
}

func (r *recordingRelay) Publish(_ context.Context, roomID string, kind core.EventKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("relay unavailable")
	}
	r.published = append(r.published, core.Event{Kind: kind, Room: roomID})
	return nil
}

func (r *recordingRelay) Subscribe(context.Context, string) (relay.Subscription, error) {
	return nil, errors.New("not implemented")
}

func (r *recordingRelay) Close() error { return nil }

func (r *recordingRelay) events() []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Event, len(r.published))
	copy(out, r.published)
	return out
}

func newTestService(t *testing.T, ttl time.Duration) (*Service, *recordingRelay, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	st := redisstore.NewWithClient(client)
	t.Cleanup(func() { _ = st.Close() })

	rl := &recordingRelay{}
	disabledLogger := zerolog.New(nil)
	return New(st, rl, ttl, &disabledLogger), rl, mr
}

func TestCreateAndTTL(t *testing.T) {
	svc, _, _ := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.TTL != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %v", created.TTL)
	}

	ttl, err := svc.TTL(ctx, created.ID)
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > 5*time.Minute {
		t.Fatalf("expected ttl in (0, 5m], got %v", ttl)
	}
}

func TestTTLUnknownRoom(t *testing.T) {
	svc, _, _ := newTestService(t, 5*time.Minute)

	_, err := svc.TTL(context.Background(), "no-such-room")
	if !errors.Is(err, core.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestPostPublishesMessageAdded(t *testing.T) {
	svc, rl, _ := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	msg, err := svc.Post(ctx, created.ID, "anonymous-Falcon-ab12c", "hi")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if msg.Sender != "anonymous-Falcon-ab12c" || msg.Text != "hi" {
		t.Fatalf("message body changed: %+v", msg)
	}

	events := rl.events()
	if len(events) != 1 || events[0].Kind != core.EventMessageAdded || events[0].Room != created.ID {
		t.Fatalf("expected one message-added event for the room, got %v", events)
	}

	messages, err := svc.Messages(ctx, created.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "hi" {
		t.Fatalf("unexpected message list: %v", messages)
	}
}

// A broken relay must not lose messages: persistence is authoritative,
// notification is advisory.
func TestPostSurvivesRelayFailure(t *testing.T) {
	svc, rl, _ := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rl.fail = true
	if _, err := svc.Post(ctx, created.ID, "a", "hi"); err != nil {
		t.Fatalf("post must swallow relay failure, got %v", err)
	}

	messages, err := svc.Messages(ctx, created.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected the message to persist, got %v", messages)
	}
}

func TestPostUnknownRoomDoesNotPublish(t *testing.T) {
	svc, rl, _ := newTestService(t, 5*time.Minute)

	_, err := svc.Post(context.Background(), "no-such-room", "a", "hi")
	if !errors.Is(err, core.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if len(rl.events()) != 0 {
		t.Fatalf("failed post must not publish, got %v", rl.events())
	}
}

func TestDestroyPublishesAndIsIdempotent(t *testing.T) {
	svc, rl, _ := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Destroy(ctx, created.ID); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if err := svc.Destroy(ctx, created.ID); err != nil {
		t.Fatalf("second destroy should succeed silently, got %v", err)
	}

	if _, err := svc.TTL(ctx, created.ID); !errors.Is(err, core.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound after destroy, got %v", err)
	}

	destroys := 0
	for _, ev := range rl.events() {
		if ev.Kind == core.EventRoomDestroyed && ev.Room == created.ID {
			destroys++
		}
	}
	if destroys != 2 {
		t.Fatalf("expected one destroy event per destroy call, got %d", destroys)
	}
}

func TestDestroySurvivesRelayFailure(t *testing.T) {
	svc, rl, _ := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rl.fail = true
	if err := svc.Destroy(ctx, created.ID); err != nil {
		t.Fatalf("destroy must swallow relay failure, got %v", err)
	}
	if _, err := svc.TTL(ctx, created.ID); !errors.Is(err, core.ErrRoomNotFound) {
		t.Fatalf("destroy must persist regardless of relay, got %v", err)
	}
}

func TestRoomExpiresPassively(t *testing.T) {
	svc, _, mr := newTestService(t, time.Minute)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Post(ctx, created.ID, "a", "hi"); err != nil {
		t.Fatalf("post: %v", err)
	}

	mr.FastForward(61 * time.Second)

	if _, err := svc.TTL(ctx, created.ID); !errors.Is(err, core.ErrRoomNotFound) {
		t.Errorf("ttl after expiry: expected ErrRoomNotFound, got %v", err)
	}
	if _, err := svc.Messages(ctx, created.ID); !errors.Is(err, core.ErrRoomNotFound) {
		t.Errorf("messages after expiry: expected ErrRoomNotFound, got %v", err)
	}
}
