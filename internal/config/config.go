package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config stores runtime configuration for the call panel.
type Config struct {
	Vapi    VapiConfig
	Backend BackendConfig
	Channel ChannelConfig
	Session SessionConfig
	Log     LogConfig
}

type VapiConfig struct {
	PublicKey   string
	AssistantID string
}

type BackendConfig struct {
	BaseURL        string
	SummaryPath    string
	ChannelPath    string
	RequestTimeout time.Duration
}

type ChannelConfig struct {
	ReconnectDelay    time.Duration
	ReconnectPolicy   string
	MaxReconnectDelay time.Duration
}

type SessionConfig struct {
	SummaryDelay time.Duration
}

type LogConfig struct {
	Level string
}

// Load resolves configuration from environment variables and sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Vapi: VapiConfig{
			PublicKey:   strings.TrimSpace(os.Getenv("VAPI_PUBLIC_KEY")),
			AssistantID: strings.TrimSpace(os.Getenv("VAPI_ASSISTANT_ID")),
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(envOrDefault("CALLPANEL_BACKEND_URL", "https://voice-ai-ck2m.onrender.com"), "/"),
			SummaryPath:    envOrDefault("CALLPANEL_SUMMARY_PATH", "/get-call-summary"),
			ChannelPath:    envOrDefault("CALLPANEL_CHANNEL_PATH", "/ws"),
			RequestTimeout: envOrDefaultMillis("CALLPANEL_HTTP_TIMEOUT_MS", 15000),
		},
		Channel: ChannelConfig{
			ReconnectDelay:    envOrDefaultMillis("CALLPANEL_RECONNECT_DELAY_MS", 3000),
			ReconnectPolicy:   strings.ToLower(envOrDefault("CALLPANEL_RECONNECT_POLICY", "fixed")),
			MaxReconnectDelay: envOrDefaultMillis("CALLPANEL_RECONNECT_MAX_DELAY_MS", 30000),
		},
		Session: SessionConfig{
			SummaryDelay: envOrDefaultMillis("CALLPANEL_SUMMARY_DELAY_MS", 10000),
		},
		Log: LogConfig{
			Level: envOrDefault("CALLPANEL_LOG_LEVEL", "info"),
		},
	}

	switch cfg.Channel.ReconnectPolicy {
	case "fixed", "exponential":
	default:
		cfg.Channel.ReconnectPolicy = "fixed"
	}
	if cfg.Channel.MaxReconnectDelay < cfg.Channel.ReconnectDelay {
		cfg.Channel.MaxReconnectDelay = cfg.Channel.ReconnectDelay
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// envOrDefaultMillis reads a positive millisecond count.
func envOrDefaultMillis(key string, fallback int) time.Duration {
	ms := envOrDefaultInt(key, fallback)
	if ms <= 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}
