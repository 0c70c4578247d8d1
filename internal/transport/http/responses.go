package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/burnchat/burnchat-server/internal/core"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeDomainError maps domain errors onto the HTTP taxonomy. RoomNotFound
// and RoomFull are expected outcomes the caller must be able to tell apart;
// anything else is a store failure and must never masquerade as a 404.
func writeDomainError(c *gin.Context, logger *zerolog.Logger, err error) {
	code := core.CodeOf(err)

	var status int
	switch code {
	case core.ErrCodeRoomNotFound:
		status = http.StatusNotFound
	case core.ErrCodeRoomFull:
		status = http.StatusForbidden
	case core.ErrCodeBadRequest:
		status = http.StatusBadRequest
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("store operation failed")
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, ErrorResponse{Error: code})
}

// roomIDParam pulls the required roomId query parameter, answering 400 itself
// when it is missing.
func roomIDParam(c *gin.Context) (string, bool) {
	roomID := c.Query("roomId")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrCodeBadRequest})
		return "", false
	}
	return roomID, true
}
