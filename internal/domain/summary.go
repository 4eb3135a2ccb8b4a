package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNotSummaryObject is returned when a payload is valid text but not a JSON object.
var ErrNotSummaryObject = errors.New("summary payload is not a JSON object")

// DecodeSummary strictly decodes a structured summary object.
func DecodeSummary(payload []byte) (CallSummary, error) {
	trimmed := strings.TrimSpace(string(payload))
	if !strings.HasPrefix(trimmed, "{") {
		return CallSummary{}, ErrNotSummaryObject
	}

	var summary CallSummary
	if err := json.Unmarshal([]byte(trimmed), &summary); err != nil {
		return CallSummary{}, err
	}
	return summary, nil
}
