package usecase

import "context"

type pendingFetch struct {
	timer  Timer
	cancel context.CancelFunc
}

// pendingFetches tracks deferred summary fetches keyed by call ID. A call
// owns at most one entry; starting a new call supersedes every entry.
type pendingFetches struct {
	tasks map[string]*pendingFetch
}

func newPendingFetches() *pendingFetches {
	return &pendingFetches{tasks: make(map[string]*pendingFetch)}
}

// Schedule registers the grace timer for callID. It returns false and leaves
// the existing entry untouched when one is already registered.
func (p *pendingFetches) Schedule(callID string, arm func() Timer) bool {
	if _, exists := p.tasks[callID]; exists {
		return false
	}
	p.tasks[callID] = &pendingFetch{timer: arm()}
	return true
}

// Begin marks the fetch for callID as in flight. It returns false when the
// entry was superseded before its timer fired.
func (p *pendingFetches) Begin(callID string, cancel context.CancelFunc) bool {
	task, ok := p.tasks[callID]
	if !ok || task.cancel != nil {
		return false
	}
	task.timer = nil
	task.cancel = cancel
	return true
}

// Finish removes the entry for callID and reports whether it was in flight.
func (p *pendingFetches) Finish(callID string) bool {
	task, ok := p.tasks[callID]
	if !ok {
		return false
	}
	delete(p.tasks, callID)
	if task.cancel != nil {
		task.cancel()
		return true
	}
	return false
}

// CancelAll stops every timer and aborts every in-flight fetch. It reports
// whether any fetch was in flight.
func (p *pendingFetches) CancelAll() bool {
	inFlight := false
	for callID, task := range p.tasks {
		if task.timer != nil {
			task.timer.Stop()
		}
		if task.cancel != nil {
			task.cancel()
			inFlight = true
		}
		delete(p.tasks, callID)
	}
	return inFlight
}

func (p *pendingFetches) Len() int {
	return len(p.tasks)
}
