package gateway

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/burnchat/burnchat-server/internal/core"
	"github.com/burnchat/burnchat-server/internal/store"
	"github.com/burnchat/burnchat-server/internal/utils"
)

// agentPattern matches crawlers and link-preview fetchers. Those get read
// access to room metadata without occupying a participant slot, so pasting a
// room link into a messenger doesn't burn a slot on the preview bot.
var agentPattern = regexp.MustCompile(`(?i)bot|crawler|spider|crawling|WhatsApp|Telegram|facebook|twitter|linkedIn|slack`)

// Outcome describes how an admission attempt was resolved.
type Outcome string

const (
	// OutcomeJoined means a fresh token was issued and a slot consumed.
	OutcomeJoined Outcome = "joined"
	// OutcomeExisting means the presented token already holds a slot.
	OutcomeExisting Outcome = "existing"
	// OutcomeAgent means an automated fetcher was waved through without a
	// token or a slot.
	OutcomeAgent Outcome = "agent"
)

// AdmitResult is the gateway's answer to an admission attempt. Token is set
// only for OutcomeJoined; the caller must hand it back to the client as its
// bearer credential for this room.
type AdmitResult struct {
	Outcome Outcome
	Token   string
}

// Gateway is the admission controller in front of room access. It decides
// whether a request enters a room and enforces the two-party cap; the cap
// itself is enforced by the store's atomic conditional append, never by a
// read-then-write here.
type Gateway struct {
	store store.RoomStore
	log   *zerolog.Logger
}

// New builds a gateway over the given store.
func New(st store.RoomStore, logger *zerolog.Logger) *Gateway {
	return &Gateway{store: st, log: logger}
}

// Admit resolves one attempt to enter roomID. presentedToken is the bearer
// credential from the client's environment, empty if none; userAgent is the
// caller-supplied automated-agent signal.
//
// Fails with core.ErrRoomNotFound or core.ErrRoomFull; both are final, the
// caller should not retry.
func (g *Gateway) Admit(ctx context.Context, roomID, presentedToken, userAgent string) (*AdmitResult, error) {
	meta, err := g.store.GetMeta(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if meta.HasToken(presentedToken) {
		return &AdmitResult{Outcome: OutcomeExisting}, nil
	}

	if agentPattern.MatchString(userAgent) {
		g.log.Debug().Str("room_id", roomID).Str("user_agent", userAgent).Msg("agent bypass")
		return &AdmitResult{Outcome: OutcomeAgent}, nil
	}

	token := utils.NewToken()
	if err := g.store.ConditionalJoin(ctx, roomID, token); err != nil {
		if errors.Is(err, core.ErrRoomFull) || errors.Is(err, core.ErrRoomNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("admit: %w", err)
	}

	g.log.Info().Str("room_id", roomID).Msg("participant admitted")
	return &AdmitResult{Outcome: OutcomeJoined, Token: token}, nil
}
