package http

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/burnchat/burnchat-server/internal/core"
	"github.com/burnchat/burnchat-server/internal/relay"
	"github.com/burnchat/burnchat-server/internal/service/rooms"
)

// EventFrame is the JSON frame pushed to websocket subscribers. It carries
// only the event name; clients re-fetch through the room API.
type EventFrame struct {
	Event string `json:"event"`
}

// WSHandler upgrades HTTP connections and bridges them to a relay
// subscription for one room. The stream is advisory and write-only; a
// disconnect just ends it and frees nothing in the room.
//
// Mounted as a plain handler: the hijack done by the upgrade does not go
// through gin's response writer.
type WSHandler struct {
	svc   *rooms.Service
	relay relay.Relay
	log   *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(svc *rooms.Service, rl relay.Relay, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{svc: svc, relay: rl, log: logger}
}

// ServeHTTP handles GET /ws?roomId=<id>.
func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		writeJSONError(w, stdhttp.StatusBadRequest, core.ErrCodeBadRequest)
		return
	}

	// Reject before upgrading when the room is already gone.
	if _, err := h.svc.TTL(r.Context(), roomID); err != nil {
		if errors.Is(err, core.ErrRoomNotFound) {
			writeJSONError(w, stdhttp.StatusNotFound, core.ErrCodeRoomNotFound)
			return
		}
		h.log.Error().Err(err).Str("room_id", roomID).Msg("ttl check failed")
		writeJSONError(w, stdhttp.StatusServiceUnavailable, core.ErrCodeStoreUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	// The client never sends frames; CloseRead cancels the context when the
	// connection drops.
	ctx := conn.CloseRead(r.Context())

	sub, err := h.relay.Subscribe(ctx, roomID)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("relay subscribe failed")
		conn.Close(websocket.StatusInternalError, "subscription failed")
		return
	}
	defer sub.Close()

	h.log.Debug().Str("room_id", roomID).Msg("ws subscriber attached")

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "subscription ended")
				return
			}
			if err := wsjson.Write(ctx, conn, EventFrame{Event: ev.Kind.Name()}); err != nil {
				h.log.Debug().Err(err).Str("room_id", roomID).Msg("ws write failed")
				return
			}
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "closing")
			return
		}
	}
}

func writeJSONError(w stdhttp.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: code})
}
