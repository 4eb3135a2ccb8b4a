package ports

import (
	"context"

	"callpanel/internal/domain"
)

// VoiceSDK drives the hosted voice assistant SDK.
type VoiceSDK interface {
	Start(ctx context.Context, assistantID string) error
	Stop(ctx context.Context) error
}

// SummarySource fetches the raw post-call summary from the backend.
// The returned string is the inner, still JSON-encoded summary payload.
type SummarySource interface {
	FetchSummary(ctx context.Context) (string, error)
}

// ChannelHandler receives events forwarded by the notification channel.
type ChannelHandler interface {
	ConnectionStateChanged(state domain.ConnectionState)
	SummaryPushed(summary domain.CallSummary)
	StartCallRequested()
}

// EventSink emits coordinator state/events to the UI.
type EventSink interface {
	CallStateChanged(state domain.CallState, reason domain.StatusReason)
	ConnectionStateChanged(state domain.ConnectionState)
	TranscriptCleared()
	TranscriptAppended(entry domain.TranscriptEntry)
	SummaryLoading(loading bool)
	SummaryReady(result domain.SummaryResult, transcript []domain.TranscriptEntry)
}
