package usecase

import "callpanel/internal/domain"

// Event is an input to the coordinator's transition function.
type Event interface {
	eventName() string
}

// UserToggled is a click on the call button: start when no call is active,
// hang up otherwise.
type UserToggled struct{}

// RemoteStartRequested is the channel's start-call command.
type RemoteStartRequested struct{}

// CallStarted is the SDK's call-start event.
type CallStarted struct{}

// CallEnded is the SDK's call-end event.
type CallEnded struct{}

// MessageReceived is the SDK's message event.
type MessageReceived struct {
	Type       string
	Role       string
	Transcript string
}

// CallFailed is the SDK's error event.
type CallFailed struct {
	Message string
}

// ConnectionChanged reports channel connectivity.
type ConnectionChanged struct {
	State domain.ConnectionState
}

// SummaryPushed is a structured summary delivered over the channel.
type SummaryPushed struct {
	Summary domain.CallSummary
}

type summaryDue struct {
	callID string
}

type summaryFetched struct {
	callID string
	result domain.SummaryResult
}

func (UserToggled) eventName() string          { return "user_toggled" }
func (RemoteStartRequested) eventName() string { return "remote_start_requested" }
func (CallStarted) eventName() string          { return "call_started" }
func (CallEnded) eventName() string            { return "call_ended" }
func (MessageReceived) eventName() string      { return "message_received" }
func (CallFailed) eventName() string           { return "call_failed" }
func (ConnectionChanged) eventName() string    { return "connection_changed" }
func (SummaryPushed) eventName() string        { return "summary_pushed" }
func (summaryDue) eventName() string           { return "summary_due" }
func (summaryFetched) eventName() string       { return "summary_fetched" }
