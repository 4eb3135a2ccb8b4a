package domain

import "time"

// CallState models the voice call lifecycle.
type CallState string

const (
	CallStateIdle   CallState = "idle"
	CallStateActive CallState = "active"
	CallStateEnding CallState = "ending"
)

// ConnectionState models the notification channel connectivity.
type ConnectionState string

const (
	ConnectionConnecting   ConnectionState = "connecting"
	ConnectionConnected    ConnectionState = "connected"
	ConnectionDisconnected ConnectionState = "disconnected"
)

// StatusReason provides a structured reason for call state transitions.
type StatusReason string

const (
	StatusReasonReady               StatusReason = "ready"
	StatusReasonCallRequested       StatusReason = "call_requested"
	StatusReasonCallInProgress      StatusReason = "call_in_progress"
	StatusReasonHangupRequested     StatusReason = "hangup_requested"
	StatusReasonCallEndedProcessing StatusReason = "call_ended_processing"
	StatusReasonSummaryDelivered    StatusReason = "summary_delivered"
	StatusReasonCallFailed          StatusReason = "call_failed"
)

// Role identifies the speaker of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// TranscriptEntry is one spoken turn or system annotation.
type TranscriptEntry struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// CallSummary is the structured post-call result produced by the backend.
type CallSummary struct {
	Status           string   `json:"status"`
	ActionTaken      string   `json:"action_taken"`
	FollowUpRequired FlexBool `json:"follow_up_required"`
	Notes            string   `json:"notes"`
	Summary          string   `json:"summary"`
}

// SummaryResult holds either a summary or the reason it could not be obtained.
type SummaryResult struct {
	Summary *CallSummary `json:"summary,omitempty"`
	Err     string       `json:"error,omitempty"`
}

// IsError reports whether the result carries an error instead of a summary.
func (r SummaryResult) IsError() bool {
	return r.Summary == nil
}

// SummaryOf wraps a summary as a successful result.
func SummaryOf(summary CallSummary) SummaryResult {
	return SummaryResult{Summary: &summary}
}

// SummaryError wraps a failure reason as an error result.
func SummaryError(reason string) SummaryResult {
	if reason == "" {
		reason = "Unknown error"
	}
	return SummaryResult{Err: reason}
}

// Status summarizes the current coordinator state.
type Status struct {
	State          CallState       `json:"state"`
	Reason         StatusReason    `json:"reason"`
	Connection     ConnectionState `json:"connection"`
	CallID         string          `json:"callId,omitempty"`
	TranscriptSize int             `json:"transcriptSize"`
	SummaryPending bool            `json:"summaryPending"`
}
