package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"callpanel/internal/domain"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{delay: d, fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *fakeClock) snapshotTimers() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*fakeTimer, len(c.timers))
	copy(out, c.timers)
	return out
}

func (c *fakeClock) activeTimers() int {
	active := 0
	for _, timer := range c.snapshotTimers() {
		if !timer.stopped && !timer.fired {
			active++
		}
	}
	return active
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

// Fire runs the callback even when stopped, mimicking a timer that already
// fired before Stop was called.
func (t *fakeTimer) Fire() {
	t.fired = true
	t.fn()
}

type fakeSDK struct {
	mu       sync.Mutex
	starts   []string
	stops    int
	startErr error
	stopErr  error
}

func (f *fakeSDK) Start(_ context.Context, assistantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, assistantID)
	return f.startErr
}

func (f *fakeSDK) Stop(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return f.stopErr
}

type fakeSummarySource struct {
	mu      sync.Mutex
	raw     string
	err     error
	calls   int
	release chan struct{}
}

func (f *fakeSummarySource) FetchSummary(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.raw, f.err
}

func (f *fakeSummarySource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type stateEvent struct {
	state  domain.CallState
	reason domain.StatusReason
}

type summaryEvent struct {
	result     domain.SummaryResult
	transcript []domain.TranscriptEntry
}

type fakeEventSink struct {
	mu sync.Mutex

	states      []stateEvent
	connections []domain.ConnectionState
	entries     []domain.TranscriptEntry
	clears      int
	loading     []bool
	summaries   []summaryEvent
}

func (f *fakeEventSink) CallStateChanged(state domain.CallState, reason domain.StatusReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, stateEvent{state: state, reason: reason})
}

func (f *fakeEventSink) ConnectionStateChanged(state domain.ConnectionState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connections = append(f.connections, state)
}

func (f *fakeEventSink) TranscriptCleared() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.entries = nil
}

func (f *fakeEventSink) TranscriptAppended(entry domain.TranscriptEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

func (f *fakeEventSink) SummaryLoading(loading bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = append(f.loading, loading)
}

func (f *fakeEventSink) SummaryReady(result domain.SummaryResult, transcript []domain.TranscriptEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, summaryEvent{result: result, transcript: transcript})
}

func (f *fakeEventSink) snapshotStates() []stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]stateEvent, len(f.states))
	copy(out, f.states)
	return out
}

func (f *fakeEventSink) snapshotSummaries() []summaryEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]summaryEvent, len(f.summaries))
	copy(out, f.summaries)
	return out
}

func (f *fakeEventSink) snapshotEntries() []domain.TranscriptEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.TranscriptEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

// distinctStates collapses consecutive repeats so tests can assert on the
// path through the state machine.
func (f *fakeEventSink) distinctStates() []domain.CallState {
	var out []domain.CallState
	for _, ev := range f.snapshotStates() {
		if len(out) == 0 || out[len(out)-1] != ev.state {
			out = append(out, ev.state)
		}
	}
	return out
}

func (f *fakeEventSink) lastReason() domain.StatusReason {
	states := f.snapshotStates()
	if len(states) == 0 {
		return ""
	}
	return states[len(states)-1].reason
}

// drainQueued handles every event already sitting in the inbox.
func drainQueued(c *Coordinator) {
	for {
		select {
		case ev := <-c.inbox:
			c.Handle(context.Background(), ev)
		default:
			return
		}
	}
}

// handleNext waits for the next queued event, such as a fetch completion
// posted by a background goroutine, and handles it.
func handleNext(t *testing.T, c *Coordinator) Event {
	t.Helper()

	select {
	case ev := <-c.inbox:
		c.Handle(context.Background(), ev)
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for coordinator event")
		return nil
	}
}
