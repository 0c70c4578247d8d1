package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/burnchat/burnchat-server/internal/service/rooms"
)

// MessageHandlers provides HTTP handlers for the message endpoints.
type MessageHandlers struct {
	svc     *rooms.Service
	limiter *rateLimiter
	log     *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance. limit caps
// posts per minute per instance; 0 disables the limiter.
func NewMessageHandlers(svc *rooms.Service, limit int, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		svc:     svc,
		limiter: newRateLimiter(limit),
		log:     logger,
	}
}

// PostMessageRequest represents the post message request body. Sender is a
// display name chosen by the client; it is stored verbatim and untrusted.
type PostMessageRequest struct {
	Sender string `json:"sender" binding:"required,max=64"`
	Text   string `json:"text" binding:"required,max=2000"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID        int64  `json:"id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// MessagesResponse wraps a room's full message list.
type MessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// ListMessages handles the full message-list fetch clients fall back to
// whenever the relay nudges them.
// GET /api/messages?roomId=<id>
func (h *MessageHandlers) ListMessages(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	messages, err := h.svc.Messages(c.Request.Context(), roomID)
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}

	response := MessagesResponse{Messages: make([]MessageResponse, 0, len(messages))}
	for _, msg := range messages {
		response.Messages = append(response.Messages, MessageResponse{
			ID:        msg.ID,
			Sender:    msg.Sender,
			Text:      msg.Text,
			Timestamp: msg.Timestamp.Format(time.RFC3339Nano),
		})
	}

	c.JSON(http.StatusOK, response)
}

// PostMessage handles message creation.
// POST /api/messages?roomId=<id>
func (h *MessageHandlers) PostMessage(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	if !h.limiter.allow() {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
		return
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid post message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.svc.Post(c.Request.Context(), roomID, req.Sender, req.Text)
	if err != nil {
		writeDomainError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{
		ID:        msg.ID,
		Sender:    msg.Sender,
		Text:      msg.Text,
		Timestamp: msg.Timestamp.Format(time.RFC3339Nano),
	})
}
