package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/burnchat/burnchat-server/internal/app"
	"github.com/burnchat/burnchat-server/internal/config"
	"github.com/burnchat/burnchat-server/internal/log"
)

func main() {
	var (
		configPath string
		addr       string
		redisAddr  string
		natsURL    string
		roomTTL    time.Duration
	)
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&addr, "addr", "", "HTTP listen address")
	flag.StringVar(&redisAddr, "redis-addr", "", "Redis address")
	flag.StringVar(&natsURL, "nats-url", "", "NATS server URL")
	flag.DurationVar(&roomTTL, "room-ttl", 0, "room time-to-live")
	flag.Parse()

	bootLogger := log.New("info")

	cfg, path, err := config.Load(bootLogger, configPath)
	if err != nil {
		bootLogger.Fatal().Err(err).Str("path", path).Msg("failed to load config")
	}

	// Flags beat config file and env.
	if addr != "" {
		cfg.Addr = addr
	}
	if redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}
	if natsURL != "" {
		cfg.NatsURL = natsURL
	}
	if roomTTL != 0 {
		cfg.RoomTTL = roomTTL
	}

	logger := log.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting burnchat server")
	if err := application.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("server stopped")
}
