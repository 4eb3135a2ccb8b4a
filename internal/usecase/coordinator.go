package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"callpanel/internal/domain"
	"callpanel/internal/logging"
	"callpanel/internal/ports"
)

const defaultSummaryDelay = 10 * time.Second

// Config controls call lifecycle behavior.
type Config struct {
	AssistantID  string
	SummaryDelay time.Duration
	QueueSize    int
	Clock        Clock
}

// Coordinator owns the call lifecycle. All state below inbox is touched only
// by Handle, which runs on the single Run goroutine.
type Coordinator struct {
	sdk     ports.VoiceSDK
	fetcher summaryFetcher
	events  ports.EventSink
	logger  *slog.Logger
	clock   Clock
	cfg     Config

	inbox   chan Event
	stopped chan struct{}
	runOnce sync.Once

	state      domain.CallState
	reason     domain.StatusReason
	connection domain.ConnectionState
	callID     string
	endSeen    bool
	awaitEnd   bool
	transcript *transcriptLog
	pending    *pendingFetches

	statusMu sync.RWMutex
	status   domain.Status
	lines    []domain.TranscriptEntry
}

func NewCoordinator(
	sdk ports.VoiceSDK,
	source ports.SummarySource,
	events ports.EventSink,
	logger *slog.Logger,
	cfg Config,
) *Coordinator {
	if cfg.SummaryDelay <= 0 {
		cfg.SummaryDelay = defaultSummaryDelay
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	logger = logging.OrDiscard(logger).With("component", "coordinator")

	c := &Coordinator{
		sdk:        sdk,
		fetcher:    newSummaryFetcher(source, logger),
		events:     events,
		logger:     logger,
		clock:      cfg.Clock,
		cfg:        cfg,
		inbox:      make(chan Event, cfg.QueueSize),
		stopped:    make(chan struct{}),
		state:      domain.CallStateIdle,
		reason:     domain.StatusReasonReady,
		connection: domain.ConnectionConnecting,
		transcript: newTranscriptLog(),
		pending:    newPendingFetches(),
	}
	c.publishStatus()
	return c
}

// Run processes events in arrival order until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	defer c.runOnce.Do(func() { close(c.stopped) })

	for {
		select {
		case <-ctx.Done():
			c.pending.CancelAll()
			return ctx.Err()
		case ev := <-c.inbox:
			c.Handle(ctx, ev)
		}
	}
}

// Dispatch enqueues an event from any goroutine.
func (c *Coordinator) Dispatch(ev Event) error {
	select {
	case <-c.stopped:
		return ErrNotRunning
	default:
	}

	select {
	case c.inbox <- ev:
		return nil
	case <-c.stopped:
		return ErrNotRunning
	}
}

// Status returns the latest published state.
func (c *Coordinator) Status() domain.Status {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.status
}

// Transcript returns the transcript as of the latest published state.
func (c *Coordinator) Transcript() []domain.TranscriptEntry {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	out := make([]domain.TranscriptEntry, len(c.lines))
	copy(out, c.lines)
	return out
}

// ChannelHandler adapts the notification channel onto coordinator events.
func (c *Coordinator) ChannelHandler() ports.ChannelHandler {
	return channelEvents{c: c}
}

// Handle applies one event. It must only be called from the Run goroutine,
// or directly by tests that do not start Run.
func (c *Coordinator) Handle(ctx context.Context, ev Event) {
	c.logger.Debug("event", "event", ev.eventName(), "state", c.state)

	switch e := ev.(type) {
	case UserToggled:
		if c.state == domain.CallStateActive {
			c.hangUp(ctx)
		} else {
			c.startCall(ctx)
		}
	case RemoteStartRequested:
		if c.state != domain.CallStateIdle {
			c.logger.Warn("ignoring remote start-call while a call is in progress", "state", c.state)
			break
		}
		c.startCall(ctx)
	case CallStarted:
		c.callStarted()
	case CallEnded:
		c.callEnded()
	case MessageReceived:
		c.messageReceived(e)
	case CallFailed:
		c.callFailed(e.Message)
	case ConnectionChanged:
		c.connection = e.State
		c.events.ConnectionStateChanged(e.State)
	case SummaryPushed:
		c.events.SummaryReady(domain.SummaryOf(e.Summary), c.transcript.Snapshot())
	case summaryDue:
		c.summaryDue(ctx, e.callID)
	case summaryFetched:
		c.summaryFetched(e)
	default:
		c.logger.Warn("unknown event", "event", ev.eventName())
	}

	c.publishStatus()
}

func (c *Coordinator) startCall(ctx context.Context) {
	// The SDK runs one call at a time; the hung-up call must report its end
	// before another one starts.
	if c.awaitEnd {
		c.logger.Warn("ignoring start while the previous call is still ending", "call_id", c.callID)
		return
	}
	if c.pending.CancelAll() {
		c.events.SummaryLoading(false)
	}

	c.transcript.Clear()
	c.events.TranscriptCleared()

	c.callID = uuid.NewString()
	c.endSeen = false
	c.setState(domain.CallStateActive, domain.StatusReasonCallRequested)
	c.logger.Info("starting call", "call_id", c.callID)

	if err := c.sdk.Start(ctx, c.cfg.AssistantID); err != nil {
		c.callFailed(err.Error())
	}
}

func (c *Coordinator) hangUp(ctx context.Context) {
	c.setState(domain.CallStateIdle, domain.StatusReasonHangupRequested)
	c.logger.Info("ending call", "call_id", c.callID)

	if err := c.sdk.Stop(ctx); err != nil {
		c.callFailed(err.Error())
		return
	}
	c.awaitEnd = true
}

func (c *Coordinator) callStarted() {
	if c.state != domain.CallStateActive {
		c.logger.Warn("ignoring call-start outside an active call", "state", c.state)
		return
	}
	c.appendSystem("Call started")
	c.setState(domain.CallStateActive, domain.StatusReasonCallInProgress)
}

// callEnded moves to Ending and arms the grace timer once per call.
func (c *Coordinator) callEnded() {
	c.awaitEnd = false
	if c.callID == "" || c.endSeen || c.state == domain.CallStateEnding {
		c.logger.Debug("ignoring duplicate call-end", "call_id", c.callID)
		return
	}
	c.endSeen = true
	c.appendSystem("Call ended")
	c.setState(domain.CallStateEnding, domain.StatusReasonCallEndedProcessing)

	callID := c.callID
	c.pending.Schedule(callID, func() Timer {
		return c.clock.AfterFunc(c.cfg.SummaryDelay, func() {
			_ = c.Dispatch(summaryDue{callID: callID})
		})
	})
}

func (c *Coordinator) messageReceived(msg MessageReceived) {
	if msg.Type != "transcript" {
		return
	}
	if entry, ok := c.transcript.Add(domain.Role(msg.Role), msg.Transcript, c.clock.Now()); ok {
		c.events.TranscriptAppended(entry)
	}
}

func (c *Coordinator) callFailed(message string) {
	if message == "" {
		message = "Unknown error"
	}
	c.logger.Error("call failed", "call_id", c.callID, "error", message)
	c.awaitEnd = false
	c.setState(domain.CallStateIdle, domain.StatusReasonCallFailed)
	c.appendSystem("Error: " + message)
}

func (c *Coordinator) summaryDue(ctx context.Context, callID string) {
	fetchCtx, cancel := context.WithCancel(ctx)
	if !c.pending.Begin(callID, cancel) {
		cancel()
		c.logger.Debug("dropping superseded summary timer", "call_id", callID)
		return
	}

	if c.state == domain.CallStateEnding {
		c.setState(domain.CallStateIdle, domain.StatusReasonCallEndedProcessing)
	}
	c.events.SummaryLoading(true)

	go func() {
		result := c.fetcher.Fetch(fetchCtx)
		_ = c.Dispatch(summaryFetched{callID: callID, result: result})
	}()
}

func (c *Coordinator) summaryFetched(ev summaryFetched) {
	if !c.pending.Finish(ev.callID) {
		c.logger.Debug("dropping stale summary", "call_id", ev.callID)
		return
	}

	c.events.SummaryLoading(false)
	c.events.SummaryReady(ev.result, c.transcript.Snapshot())
	if c.state == domain.CallStateIdle {
		c.setState(domain.CallStateIdle, domain.StatusReasonSummaryDelivered)
	}
}

func (c *Coordinator) appendSystem(text string) {
	if entry, ok := c.transcript.Add(domain.RoleSystem, text, c.clock.Now()); ok {
		c.events.TranscriptAppended(entry)
	}
}

func (c *Coordinator) setState(state domain.CallState, reason domain.StatusReason) {
	c.state = state
	c.reason = reason
	c.events.CallStateChanged(state, reason)
}

func (c *Coordinator) publishStatus() {
	status := domain.Status{
		State:          c.state,
		Reason:         c.reason,
		Connection:     c.connection,
		CallID:         c.callID,
		TranscriptSize: c.transcript.Len(),
		SummaryPending: c.pending.Len() > 0,
	}
	lines := c.transcript.Snapshot()

	c.statusMu.Lock()
	c.status = status
	c.lines = lines
	c.statusMu.Unlock()
}

type channelEvents struct {
	c *Coordinator
}

func (h channelEvents) ConnectionStateChanged(state domain.ConnectionState) {
	_ = h.c.Dispatch(ConnectionChanged{State: state})
}

func (h channelEvents) SummaryPushed(summary domain.CallSummary) {
	_ = h.c.Dispatch(SummaryPushed{Summary: summary})
}

func (h channelEvents) StartCallRequested() {
	_ = h.c.Dispatch(RemoteStartRequested{})
}
