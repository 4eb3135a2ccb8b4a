package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"callpanel/internal/bootstrap"
	"callpanel/internal/domain"
	"callpanel/internal/render"
	"callpanel/internal/usecase"
)

const (
	eventStatus          = "callpanel:status"
	eventConnection      = "callpanel:connection"
	eventTranscript      = "callpanel:transcript"
	eventTranscriptClear = "callpanel:transcript-clear"
	eventLoading         = "callpanel:loading"
	eventSummary         = "callpanel:summary"
	eventError           = "callpanel:error"
)

// App is the Wails application root.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	emit   func(ctx context.Context, name string, data any)

	services bootstrap.Services
	bootErr  error
}

func NewApp() *App {
	return &App{emit: wailsEmit}
}

func wailsEmit(ctx context.Context, name string, data any) {
	runtime.EventsEmit(ctx, name, data)
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, a.emit)
	if err != nil {
		a.bootErr = err
		a.emitEvent(eventError, map[string]string{
			"message": "Startup failed",
			"detail":  err.Error(),
		})
		return
	}
	a.services = services

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		_ = services.Coordinator.Run(runCtx)
	}()
	go func() {
		defer a.wg.Done()
		_ = services.Channel.Run(runCtx)
	}()

	a.CallStateChanged(domain.CallStateIdle, domain.StatusReasonReady)
}

func (a *App) shutdown(_ context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	_ = a.services.Close()
}

// ToggleCall starts a call when idle and hangs up when a call is active.
// The outcome arrives as a status event once the coordinator handles it.
func (a *App) ToggleCall() error {
	return a.dispatch(usecase.UserToggled{})
}

// NotifyCallStart is called by the web view when the SDK reports call-start.
func (a *App) NotifyCallStart() error {
	return a.dispatch(usecase.CallStarted{})
}

// NotifyCallEnd is called by the web view when the SDK reports call-end.
func (a *App) NotifyCallEnd() error {
	return a.dispatch(usecase.CallEnded{})
}

// NotifyMessage forwards an SDK message. Only transcript messages are kept.
func (a *App) NotifyMessage(messageType string, role string, transcript string) error {
	return a.dispatch(usecase.MessageReceived{Type: messageType, Role: role, Transcript: transcript})
}

// NotifyError forwards an SDK error.
func (a *App) NotifyError(message string) error {
	return a.dispatch(usecase.CallFailed{Message: message})
}

// GetStatus returns the current call status.
func (a *App) GetStatus() domain.Status {
	if a.services.Coordinator == nil {
		return domain.Status{
			State:      domain.CallStateIdle,
			Reason:     domain.StatusReasonReady,
			Connection: domain.ConnectionDisconnected,
		}
	}
	return a.services.Coordinator.Status()
}

// GetTranscript returns the rendered transcript, for a web view that reloads
// mid-call.
func (a *App) GetTranscript() []render.LineView {
	if a.services.Coordinator == nil {
		return []render.LineView{}
	}
	return render.Lines(a.services.Coordinator.Transcript())
}

// GetRuntimeInfo returns the configuration the web view needs to drive the SDK.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}
	if a.services.Coordinator == nil {
		return map[string]string{}
	}

	cfg := a.services.Config
	return map[string]string{
		"provider":        "Vapi",
		"publicKey":       cfg.Vapi.PublicKey,
		"assistantId":     cfg.Vapi.AssistantID,
		"backendUrl":      cfg.Backend.BaseURL,
		"channelUrl":      a.services.Channel.URL(),
		"reconnectPolicy": cfg.Channel.ReconnectPolicy,
		"logFile":         a.services.Log.Path,
	}
}

func (a *App) dispatch(ev usecase.Event) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.services.Coordinator.Dispatch(ev); err != nil {
		if errors.Is(err, usecase.ErrNotRunning) {
			return fmt.Errorf("call coordinator stopped: %w", err)
		}
		return err
	}
	return nil
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.services.Coordinator == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// CallStateChanged emits call lifecycle updates to the frontend.
func (a *App) CallStateChanged(state domain.CallState, reason domain.StatusReason) {
	a.emitEvent(eventStatus, render.Status(state, reason))
}

// ConnectionStateChanged emits channel connectivity updates.
func (a *App) ConnectionStateChanged(state domain.ConnectionState) {
	a.emitEvent(eventConnection, render.Connection(state))
}

func (a *App) TranscriptCleared() {
	a.emitEvent(eventTranscriptClear, nil)
}

func (a *App) TranscriptAppended(entry domain.TranscriptEntry) {
	a.emitEvent(eventTranscript, render.Line(entry))
}

func (a *App) SummaryLoading(loading bool) {
	a.emitEvent(eventLoading, map[string]bool{"loading": loading})
}

// SummaryReady emits the rendered summary or summary error panel.
func (a *App) SummaryReady(result domain.SummaryResult, transcript []domain.TranscriptEntry) {
	a.emitEvent(eventSummary, render.SummaryPanel(result, transcript))
}

func (a *App) emitEvent(name string, data any) {
	if a.ctx == nil || a.emit == nil {
		return
	}
	a.emit(a.ctx, name, data)
}
