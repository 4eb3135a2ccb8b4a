package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"

	"callpanel/internal/domain"
	"callpanel/internal/logging"
	"callpanel/internal/ports"
)

const (
	ReconnectFixed       = "fixed"
	ReconnectExponential = "exponential"

	startCallToken = "start-call"
)

// ErrChannelClosed is reported when the backend closes the socket cleanly.
var ErrChannelClosed = errors.New("notification channel closed")

// ChannelConfig controls reconnect behavior.
type ChannelConfig struct {
	ReconnectDelay    time.Duration
	Policy            string
	MaxReconnectDelay time.Duration
}

// Channel keeps one notification websocket open to the backend and
// re-establishes it whenever it drops, without a retry limit.
type Channel struct {
	url     string
	cfg     ChannelConfig
	dialer  *websocket.Dialer
	handler ports.ChannelHandler
	logger  *slog.Logger

	mu         sync.Mutex
	state      domain.ConnectionState
	reconnects int
}

func NewChannel(backendCfg Config, cfg ChannelConfig, handler ports.ChannelHandler, logger *slog.Logger) (*Channel, error) {
	backendCfg = backendCfg.withDefaults()
	wsURL, err := channelURL(backendCfg.BaseURL, backendCfg.ChannelPath)
	if err != nil {
		return nil, err
	}

	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 3 * time.Second
	}
	if cfg.Policy != ReconnectExponential {
		cfg.Policy = ReconnectFixed
	}
	if cfg.MaxReconnectDelay < cfg.ReconnectDelay {
		cfg.MaxReconnectDelay = cfg.ReconnectDelay
	}

	return &Channel{
		url:     wsURL,
		cfg:     cfg,
		dialer:  &websocket.Dialer{Proxy: http.ProxyFromEnvironment, HandshakeTimeout: 10 * time.Second},
		handler: handler,
		logger:  logging.OrDiscard(logger).With("component", "channel"),
		state:   domain.ConnectionDisconnected,
	}, nil
}

// URL returns the websocket endpoint the channel dials.
func (c *Channel) URL() string {
	return c.url
}

// State returns the current connectivity.
func (c *Channel) State() domain.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reconnects returns how many times the channel re-dialed after a drop.
func (c *Channel) Reconnects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnects
}

// Run dials, reads and reconnects until ctx is done.
func (c *Channel) Run(ctx context.Context) error {
	backoff := c.newBackoff()
	for {
		connected, err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = c.newBackoff()
		}

		delay, stop := backoff.Next()
		if stop {
			delay = c.cfg.ReconnectDelay
		}
		c.logger.Warn("notification channel down; reconnecting", "error", err, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		c.mu.Lock()
		c.reconnects++
		c.mu.Unlock()
	}
}

func (c *Channel) newBackoff() retry.Backoff {
	if c.cfg.Policy == ReconnectExponential {
		b := retry.NewExponential(c.cfg.ReconnectDelay)
		b = retry.WithJitterPercent(20, b)
		return retry.WithCappedDuration(c.cfg.MaxReconnectDelay, b)
	}
	return retry.NewConstant(c.cfg.ReconnectDelay)
}

// session runs one connection and reports whether the dial succeeded.
func (c *Channel) session(ctx context.Context) (bool, error) {
	c.setState(domain.ConnectionConnecting)

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.setState(domain.ConnectionDisconnected)
		return false, fmt.Errorf("failed to connect notification channel: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c.setState(domain.ConnectionConnected)
	c.logger.Info("notification channel connected", "url", c.url)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.setState(domain.ConnectionDisconnected)
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return true, ErrChannelClosed
			}
			return true, fmt.Errorf("failed to read channel message: %w", err)
		}
		c.dispatch(payload)
	}
}

func (c *Channel) dispatch(payload []byte) {
	kind, summary := classifyMessage(payload)
	switch kind {
	case messageSummary:
		c.logger.Info("received structured summary")
		c.handler.SummaryPushed(summary)
	case messageStartCall:
		c.logger.Info("received start-call command")
		c.handler.StartCallRequested()
	default:
		c.logger.Warn("unrecognized channel message", "payload", truncate(string(payload), 256))
	}
}

func (c *Channel) setState(state domain.ConnectionState) {
	c.mu.Lock()
	changed := c.state != state
	c.state = state
	c.mu.Unlock()

	if changed {
		c.handler.ConnectionStateChanged(state)
	}
}

type messageKind int

const (
	messageUnknown messageKind = iota
	messageSummary
	messageStartCall
)

// classifyMessage prefers the structured summary reading and only then
// checks for the control token.
func classifyMessage(payload []byte) (messageKind, domain.CallSummary) {
	if summary, err := domain.DecodeSummary(payload); err == nil {
		return messageSummary, summary
	}

	text := strings.TrimSpace(string(payload))
	if text == startCallToken || text == `"`+startCallToken+`"` {
		return messageStartCall, domain.CallSummary{}
	}
	return messageUnknown, domain.CallSummary{}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
