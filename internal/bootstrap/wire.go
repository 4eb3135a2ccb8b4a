package bootstrap

import (
	"fmt"

	"callpanel/internal/config"
	"callpanel/internal/logging"
	"callpanel/internal/ports"
	"callpanel/internal/providers/backend"
	"callpanel/internal/providers/vapi"
	"callpanel/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Coordinator *usecase.Coordinator
	Channel     *backend.Channel
	Config      config.Config
	Log         logging.Runtime
}

// Close releases the log file.
func (s Services) Close() error {
	return s.Log.Close()
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink, emit vapi.Emitter) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	logRuntime, err := logging.New(cfg.Log.Level)
	if err != nil {
		return Services{}, fmt.Errorf("setup logging: %w", err)
	}
	logger := logRuntime.Logger

	backendCfg := backend.Config{
		BaseURL:        cfg.Backend.BaseURL,
		SummaryPath:    cfg.Backend.SummaryPath,
		ChannelPath:    cfg.Backend.ChannelPath,
		RequestTimeout: cfg.Backend.RequestTimeout,
	}

	coordinator := usecase.NewCoordinator(
		vapi.NewBridge(vapi.Config{
			PublicKey:   cfg.Vapi.PublicKey,
			AssistantID: cfg.Vapi.AssistantID,
		}, emit),
		backend.NewClient(backendCfg, nil),
		eventSink,
		logger,
		usecase.Config{
			AssistantID:  cfg.Vapi.AssistantID,
			SummaryDelay: cfg.Session.SummaryDelay,
		},
	)

	channel, err := backend.NewChannel(backendCfg, backend.ChannelConfig{
		ReconnectDelay:    cfg.Channel.ReconnectDelay,
		Policy:            cfg.Channel.ReconnectPolicy,
		MaxReconnectDelay: cfg.Channel.MaxReconnectDelay,
	}, coordinator.ChannelHandler(), logger)
	if err != nil {
		_ = logRuntime.Close()
		return Services{}, err
	}

	logger.Info("services ready",
		"backend", cfg.Backend.BaseURL,
		"channel", channel.URL(),
		"reconnect_policy", cfg.Channel.ReconnectPolicy,
		"log", logRuntime.Path,
	)
	return Services{Coordinator: coordinator, Channel: channel, Config: cfg, Log: logRuntime}, nil
}
