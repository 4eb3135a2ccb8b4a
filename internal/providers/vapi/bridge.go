// Package vapi forwards call commands to the hosted voice SDK, which runs
// inside the web view and reports its events back through bound methods.
package vapi

import (
	"context"
	"errors"
	"strings"
)

// CommandEvent is the event name the web view listens on for SDK commands.
const CommandEvent = "callpanel:sdk"

var ErrNotConfigured = errors.New("VAPI_PUBLIC_KEY and VAPI_ASSISTANT_ID must be configured")

// Emitter delivers a named event to the web view.
type Emitter func(ctx context.Context, name string, data any)

// Config holds the credentials handed to the web SDK.
type Config struct {
	PublicKey   string
	AssistantID string
}

// Command is the payload emitted for each SDK instruction.
type Command struct {
	Action      string `json:"action"`
	AssistantID string `json:"assistantId,omitempty"`
}

// Bridge implements ports.VoiceSDK.
type Bridge struct {
	cfg  Config
	emit Emitter
}

func NewBridge(cfg Config, emit Emitter) *Bridge {
	return &Bridge{cfg: cfg, emit: emit}
}

func (b *Bridge) Start(ctx context.Context, assistantID string) error {
	if strings.TrimSpace(assistantID) == "" {
		assistantID = b.cfg.AssistantID
	}
	if strings.TrimSpace(b.cfg.PublicKey) == "" || strings.TrimSpace(assistantID) == "" {
		return ErrNotConfigured
	}
	if b.emit == nil {
		return errors.New("voice SDK bridge is not attached to a window")
	}
	b.emit(ctx, CommandEvent, Command{Action: "start", AssistantID: assistantID})
	return nil
}

func (b *Bridge) Stop(ctx context.Context) error {
	if b.emit == nil {
		return errors.New("voice SDK bridge is not attached to a window")
	}
	b.emit(ctx, CommandEvent, Command{Action: "stop"})
	return nil
}
