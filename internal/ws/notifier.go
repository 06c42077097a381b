package ws

import (
	"encoding/json"
	"log/slog"

	"github.com/scalara/backend/internal/pipeline"
)

// RunNotifier forwards pipeline stage events to websocket subscribers.
type RunNotifier struct {
	hub    *Hub
	logger *slog.Logger
}

func NewRunNotifier(hub *Hub, logger *slog.Logger) *RunNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunNotifier{hub: hub, logger: logger}
}

func (n *RunNotifier) Publish(ev pipeline.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		n.logger.Warn("encode run event failed", "err", err)
		return
	}
	n.hub.Publish(RunsChannel, payload)
	if ev.Stage != "" {
		n.hub.Publish(RunsChannel+":"+ev.Stage, payload)
	}
}
