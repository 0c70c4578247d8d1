package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/burnchat/burnchat-server/internal/auth"
	"github.com/burnchat/burnchat-server/internal/config"
	"github.com/burnchat/burnchat-server/internal/gateway"
	"github.com/burnchat/burnchat-server/internal/relay"
	"github.com/burnchat/burnchat-server/internal/service/rooms"
)

// NewServer builds the HTTP server exposing the room API, the admission
// gate and the realtime event stream. The websocket endpoint hangs off a
// plain ServeMux in front of the gin router: the upgrade hijacks the
// connection, which gin's response writer refuses.
func NewServer(svc *rooms.Service, gw *gateway.Gateway, rl relay.Relay, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	session := &auth.SessionConfig{
		Secret: []byte(cfg.CookieSecret),
		Issuer: "burnchat",
		Secure: cfg.CookieSecure,
	}

	roomHandlers := NewRoomHandlers(svc, gw, session, logger)
	messageHandlers := NewMessageHandlers(svc, cfg.MessageRateLimit, logger)

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	api := router.Group("/api")
	{
		api.POST("/room", roomHandlers.CreateRoom)
		api.GET("/room/ttl", roomHandlers.RoomTTL)
		api.DELETE("/room", roomHandlers.DestroyRoom)
		api.GET("/room/enter", roomHandlers.EnterRoom)
		api.GET("/messages", messageHandlers.ListMessages)
		api.POST("/messages", messageHandlers.PostMessage)
	}

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(svc, rl, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
