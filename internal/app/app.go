package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/burnchat/burnchat-server/internal/config"
	"github.com/burnchat/burnchat-server/internal/gateway"
	"github.com/burnchat/burnchat-server/internal/relay"
	natsrelay "github.com/burnchat/burnchat-server/internal/relay/nats"
	"github.com/burnchat/burnchat-server/internal/service/rooms"
	"github.com/burnchat/burnchat-server/internal/store"
	redisstore "github.com/burnchat/burnchat-server/internal/store/redis"
	transporthttp "github.com/burnchat/burnchat-server/internal/transport/http"
)

// App wires together store, relay, gateway, service and transport.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.RoomStore
	relay           relay.Relay
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	st, err := redisstore.New(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("redis_addr", cfg.RedisAddr).Msg("store initialized")

	rl, err := natsrelay.New(cfg.NatsURL, "burnchat-server", logger)
	if err != nil {
		// The relay is advisory; the store is not. Still refuse to start
		// without it so a misconfigured instance is caught immediately.
		_ = st.Close()
		return nil, fmt.Errorf("init relay: %w", err)
	}

	gw := gateway.New(st, logger)
	svc := rooms.New(st, rl, cfg.RoomTTL, logger)
	server := transporthttp.NewServer(svc, gw, rl, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		relay:           rl,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the relay and store connections.
func (a *App) cleanup() {
	if a.relay != nil {
		if err := a.relay.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close relay")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
