package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/burnchat/burnchat-server/internal/auth"
	"github.com/burnchat/burnchat-server/internal/gateway"
	"github.com/burnchat/burnchat-server/internal/service/rooms"
)

// RoomHandlers provides HTTP handlers for room lifecycle and admission.
type RoomHandlers struct {
	svc     *rooms.Service
	gateway *gateway.Gateway
	session *auth.SessionConfig
	log     *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(svc *rooms.Service, gw *gateway.Gateway, session *auth.SessionConfig, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		svc:     svc,
		gateway: gw,
		session: session,
		log:     logger,
	}
}

// CreateRoomResponse represents a created room in API responses.
type CreateRoomResponse struct {
	RoomID string `json:"roomId"`
	TTL    int64  `json:"ttl"`
}

// TTLResponse carries a room's remaining lifetime in whole seconds.
type TTLResponse struct {
	TTL int64 `json:"ttl"`
}

// EnterResponse reports how an admission attempt was resolved.
type EnterResponse struct {
	Outcome string `json:"outcome"`
}

// CreateRoom handles room creation.
// POST /api/room
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	created, err := h.svc.Create(c.Request.Context())
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, CreateRoomResponse{
		RoomID: created.ID,
		TTL:    int64(created.TTL.Seconds()),
	})
}

// RoomTTL handles the self-destruct countdown read.
// GET /api/room/ttl?roomId=<id>
func (h *RoomHandlers) RoomTTL(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	ttl, err := h.svc.TTL(c.Request.Context(), roomID)
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, TTLResponse{TTL: int64(ttl.Seconds())})
}

// DestroyRoom handles explicit room destruction. Idempotent: destroying an
// already-gone room succeeds silently.
// DELETE /api/room?roomId=<id>
func (h *RoomHandlers) DestroyRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.Destroy(c.Request.Context(), roomID); err != nil {
		writeDomainError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// EnterRoom is the admission gate crossed on room entry. A valid session
// cookie re-enters without mutation; crawlers and preview bots pass through
// without consuming a slot; everyone else races for one of the two slots.
// GET /api/room/enter?roomId=<id>
func (h *RoomHandlers) EnterRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	presented := ""
	if cookie, err := c.Cookie(auth.CookieName); err == nil {
		// An unreadable or foreign-room cookie is the same as no cookie.
		if token, err := auth.ExtractToken(h.session, cookie, roomID); err == nil {
			presented = token
		} else {
			h.log.Debug().Err(err).Str("room_id", roomID).Msg("ignoring invalid session cookie")
		}
	}

	result, err := h.gateway.Admit(c.Request.Context(), roomID, presented, c.GetHeader("User-Agent"))
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}

	if result.Outcome == gateway.OutcomeJoined {
		ttl, err := h.svc.TTL(c.Request.Context(), roomID)
		if err != nil {
			writeDomainError(c, h.log, err)
			return
		}

		signed, err := auth.SignToken(h.session, roomID, result.Token, ttl)
		if err != nil {
			h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to sign session cookie")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}

		c.SetCookie(
			auth.CookieName,
			signed,
			int(ttl.Seconds()),
			"/",
			"",
			h.session.Secure,
			true, // httpOnly
		)
	}

	c.JSON(http.StatusOK, EnterResponse{Outcome: string(result.Outcome)})
}
