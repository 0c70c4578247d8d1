package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`

	NatsURL string `mapstructure:"nats_url" yaml:"nats_url"`

	// RoomTTL is the fixed lifetime of every room; no participant action
	// resets it.
	RoomTTL time.Duration `mapstructure:"room_ttl" yaml:"room_ttl"`

	// CookieSecret signs session cookies. Must match across instances.
	CookieSecret string `mapstructure:"cookie_secret" yaml:"cookie_secret"`

	// CookieSecure marks session cookies HTTPS-only. Enable wherever the
	// service is reached over TLS.
	CookieSecure bool `mapstructure:"cookie_secure" yaml:"cookie_secure"`

	// MessageRateLimit caps message posts per minute per instance; 0 disables.
	MessageRateLimit int `mapstructure:"message_rate_limit" yaml:"message_rate_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		RedisAddr:         "localhost:6379",
		RedisDB:           0,
		NatsURL:           "nats://localhost:4222",
		RoomTTL:           10 * time.Minute,
		CookieSecret:      "dev-secret-change-me",
		CookieSecure:      false,
		MessageRateLimit:  0,
	}
}
