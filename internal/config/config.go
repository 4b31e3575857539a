package config

import (
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	PortEnv          = "PORT"
	AllowedOriginEnv = "ALLOWED_ORIGIN"
	SessionTTLEnv    = "SESSION_TTL"
	SweepIntervalEnv = "SWEEP_INTERVAL"
)

type Config struct {
	Port          int
	AllowedOrigin string
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

func Load() Config {
	return Config{
		Port:          getInt(PortEnv, 3001),
		AllowedOrigin: getString(AllowedOriginEnv, "http://localhost:5173"),
		SessionTTL:    getDuration(SessionTTLEnv, 2*time.Hour),
		SweepInterval: getDuration(SweepIntervalEnv, 10*time.Minute),
	}
}

// OriginPatterns converts the CORS origin into the host pattern the
// websocket accept check expects.
func (c Config) OriginPatterns() []string {
	u, err := url.Parse(c.AllowedOrigin)
	if err != nil || u.Host == "" {
		return []string{c.AllowedOrigin}
	}
	return []string{u.Host}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
