package core

import (
	"context"
	"sync"

	"songbird/internal/agent"
	"songbird/internal/model"

	"go.uber.org/zap"
)

const DefaultAgent = "RecommendAgent"

type Dispatcher struct {
	mu     sync.RWMutex
	Agents map[string]agent.Agent
	Logger *zap.Logger
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		Agents: make(map[string]agent.Agent),
		Logger: logger,
	}
}

func (d *Dispatcher) RegisterAgent(a agent.Agent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Agents[a.Name()] = a
}

// Dispatch routes every chat message to the recommend agent; it is the only one today.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *model.InternalMessage) (string, error) {
	d.Logger.Info("Dispatching message",
		zap.String("platform", msg.Platform),
		zap.String("chat_id", msg.ChatID),
		zap.String("text", msg.Text),
	)

	d.mu.RLock()
	targetAgent := d.Agents[DefaultAgent]
	d.mu.RUnlock()

	if targetAgent == nil {
		d.Logger.Error("No agent registered", zap.String("agent", DefaultAgent))
		return "Configuration error: recommendation agent is not available.", nil
	}

	return targetAgent.Process(ctx, msg)
}
