package usecase

import (
	"strings"
	"time"

	"callpanel/internal/domain"
)

// transcriptLog is owned by the coordinator loop and is never shared.
type transcriptLog struct {
	entries []domain.TranscriptEntry
}

func newTranscriptLog() *transcriptLog {
	return &transcriptLog{}
}

func (l *transcriptLog) Add(role domain.Role, text string, at time.Time) (domain.TranscriptEntry, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.TranscriptEntry{}, false
	}
	entry := domain.TranscriptEntry{Role: normalizeRole(role), Text: text, Timestamp: at}
	l.entries = append(l.entries, entry)
	return entry, true
}

func (l *transcriptLog) Clear() {
	l.entries = nil
}

func (l *transcriptLog) Len() int {
	return len(l.entries)
}

func (l *transcriptLog) Snapshot() []domain.TranscriptEntry {
	out := make([]domain.TranscriptEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func normalizeRole(role domain.Role) domain.Role {
	switch domain.Role(strings.ToLower(strings.TrimSpace(string(role)))) {
	case domain.RoleUser:
		return domain.RoleUser
	case domain.RoleSystem:
		return domain.RoleSystem
	default:
		return domain.RoleAssistant
	}
}
