package usecase

import (
	"context"
	"log/slog"

	"callpanel/internal/domain"
	"callpanel/internal/logging"
	"callpanel/internal/ports"
)

const (
	fallbackSummaryStatus = "completed"
	fallbackActionTaken   = "Call completed"
	fallbackSummaryNotes  = "Summary received but could not be parsed as structured data"
)

type summaryFetcher struct {
	source ports.SummarySource
	logger *slog.Logger
}

func newSummaryFetcher(source ports.SummarySource, logger *slog.Logger) summaryFetcher {
	return summaryFetcher{source: source, logger: logging.OrDiscard(logger)}
}

// Fetch never fails: transport errors become an error result and
// unparseable payloads become the fallback summary.
func (f summaryFetcher) Fetch(ctx context.Context) domain.SummaryResult {
	raw, err := f.source.FetchSummary(ctx)
	if err != nil {
		f.logger.Error("summary fetch failed", "error", err)
		return domain.SummaryError(err.Error())
	}

	summary, err := ParseSummary(raw)
	if err != nil {
		f.logger.Warn("summary payload is not structured", "error", err, "raw", raw)
	}
	return domain.SummaryOf(summary)
}

// ParseSummary decodes the inner summary payload. On failure it returns the
// fallback summary carrying raw as its text, together with the parse error.
func ParseSummary(raw string) (domain.CallSummary, error) {
	summary, err := domain.DecodeSummary([]byte(raw))
	if err == nil {
		return summary, nil
	}
	return domain.CallSummary{
		Status:           fallbackSummaryStatus,
		ActionTaken:      fallbackActionTaken,
		FollowUpRequired: false,
		Notes:            fallbackSummaryNotes,
		Summary:          raw,
	}, err
}
