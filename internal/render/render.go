// Package render turns coordinator state into view models for the web view.
// Everything here is a pure function of its inputs.
package render

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"callpanel/internal/domain"
)

// StatusView drives the status line and the call button.
type StatusView struct {
	State      domain.CallState    `json:"state"`
	Reason     domain.StatusReason `json:"reason"`
	Text       string              `json:"text"`
	Calling    bool                `json:"calling"`
	ButtonText string              `json:"buttonText"`
	ButtonIcon string              `json:"buttonIcon"`
}

// ConnectionView drives the connectivity indicator.
type ConnectionView struct {
	State domain.ConnectionState `json:"state"`
	Label string                 `json:"label"`
	Class string                 `json:"class"`
}

// LineView is one rendered transcript line.
type LineView struct {
	Role      domain.Role `json:"role"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
}

// Row is one label/value pair of a summary panel.
type Row struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	Highlight bool   `json:"highlight,omitempty"`
	Danger    bool   `json:"danger,omitempty"`
}

// Panel is a rendered summary or summary error.
type Panel struct {
	Title string `json:"title"`
	Error bool   `json:"error"`
	Rows  []Row  `json:"rows"`
}

// Status renders the status line for a state transition.
func Status(state domain.CallState, reason domain.StatusReason) StatusView {
	calling := state == domain.CallStateActive
	return StatusView{
		State:      state,
		Reason:     reason,
		Text:       StatusText(reason),
		Calling:    calling,
		ButtonText: lo.Ternary(calling, "End Call", "Proceed"),
		ButtonIcon: lo.Ternary(calling, "📞", "🎤"),
	}
}

// StatusText maps a transition reason onto the status line text.
func StatusText(reason domain.StatusReason) string {
	switch reason {
	case domain.StatusReasonReady, domain.StatusReasonSummaryDelivered:
		return "Ready to start"
	case domain.StatusReasonCallRequested:
		return "Starting call..."
	case domain.StatusReasonCallInProgress:
		return "Call in progress..."
	case domain.StatusReasonHangupRequested:
		return "Ending call..."
	case domain.StatusReasonCallEndedProcessing:
		return "Call ended - Processing..."
	case domain.StatusReasonCallFailed:
		return "Error occurred - Ready to retry"
	default:
		return ""
	}
}

func Connection(state domain.ConnectionState) ConnectionView {
	view := ConnectionView{State: state, Class: "connection-status " + string(state)}
	switch state {
	case domain.ConnectionConnecting:
		view.Label = "Connecting..."
	case domain.ConnectionConnected:
		view.Label = "Connected"
	default:
		view.State = domain.ConnectionDisconnected
		view.Label = "Disconnected"
		view.Class = "connection-status disconnected"
	}
	return view
}

func Line(entry domain.TranscriptEntry) LineView {
	return LineView{
		Role:      entry.Role,
		Text:      speakerLabel(entry.Role) + ": " + entry.Text,
		Timestamp: entry.Timestamp,
	}
}

func Lines(entries []domain.TranscriptEntry) []LineView {
	return lo.Map(entries, func(entry domain.TranscriptEntry, _ int) LineView {
		return Line(entry)
	})
}

func speakerLabel(role domain.Role) string {
	switch role {
	case domain.RoleUser:
		return "You"
	case domain.RoleSystem:
		return "System"
	default:
		return "Assistant"
	}
}

// SummaryPanel renders a summary result against the transcript it covers.
func SummaryPanel(result domain.SummaryResult, transcript []domain.TranscriptEntry) Panel {
	if result.IsError() {
		return errorPanel(result.Err, transcript)
	}

	summary := result.Summary
	followUp := bool(summary.FollowUpRequired)
	return Panel{
		Title: "Call Summary",
		Rows: []Row{
			{Label: "Status", Value: orDefault(summary.Status, "Unknown"), Highlight: true},
			{Label: "Action Taken", Value: orDefault(summary.ActionTaken, "No action specified")},
			{Label: "Follow Up Required", Value: yesNo(followUp), Highlight: followUp},
			{Label: "Notes", Value: orDefault(summary.Notes, "No additional notes")},
			{Label: "Summary", Value: orDefault(summary.Summary, "No summary available")},
			{Label: "Call Duration", Value: FormatDuration(transcript)},
		},
	}
}

func errorPanel(reason string, transcript []domain.TranscriptEntry) Panel {
	rows := []Row{
		{Label: "Error", Value: orDefault(reason, "Unknown error"), Danger: true},
		{Label: "Transcript Available", Value: yesNo(len(transcript) > 0)},
	}
	if len(transcript) > 0 {
		rows = append(rows, Row{Label: "Message Count", Value: fmt.Sprintf("%d messages", len(transcript))})
	}
	return Panel{Title: "Summary Error", Error: true, Rows: rows}
}

// FormatDuration spans the first to the last transcript entry.
func FormatDuration(transcript []domain.TranscriptEntry) string {
	if len(transcript) == 0 {
		return "Unknown"
	}
	d := transcript[len(transcript)-1].Timestamp.Sub(transcript[0].Timestamp)
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

func yesNo(v bool) string {
	return lo.Ternary(v, "Yes", "No")
}

func orDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
