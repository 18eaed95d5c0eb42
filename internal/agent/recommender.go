package agent

import (
	"context"
	"fmt"
	"time"

	"songbird/internal/llm"
	"songbird/internal/tools"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const SystemRole = "You are a music recommendation assistant. You also have access to a web search tool which you can use by sending a query."

type State int

const (
	StateAwaitingDecision State = iota
	StateAwaitingToolResults
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingDecision:
		return "awaiting_decision"
	case StateAwaitingToolResults:
		return "awaiting_tool_results"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Config struct {
	MaxIterations int           // Maximum number of decision steps per request
	ModelTimeout  time.Duration // Timeout for a single model call
	ToolTimeout   time.Duration // Timeout for a single tool execution
}

func DefaultConfig() Config {
	return Config{
		MaxIterations: 10,
		ModelTimeout:  60 * time.Second,
		ToolTimeout:   20 * time.Second,
	}
}

// Result is the outcome of one loop run. Conversation holds every message
// appended during the run, also when Err is set.
type Result struct {
	Conversation llm.Conversation
	Answer       string
	Decisions    int
	Err          error
}

// Recommender runs the decide / execute-tools loop against a model and a
// fixed tool registry. It holds no per-request state.
type Recommender struct {
	LLM    llm.Provider
	Tools  *tools.Registry
	Logger *zap.Logger
	cfg    Config
}

func NewRecommender(p llm.Provider, reg *tools.Registry, logger *zap.Logger, cfg Config) *Recommender {
	def := DefaultConfig()
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = def.ModelTimeout
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = def.ToolTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{
		LLM:    p,
		Tools:  reg,
		Logger: logger,
		cfg:    cfg,
	}
}

// Decide asks the model for the next step given the whole conversation.
func (r *Recommender) Decide(ctx context.Context, conv llm.Conversation) (*llm.Message, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.cfg.ModelTimeout)
	defer cancel()

	msg, err := r.LLM.ChatWithTools(callCtx, SystemRole, conv.Messages(), r.Tools.Definitions())
	if err != nil {
		return nil, withCause(ErrModelBackend, err)
	}
	if msg == nil {
		return nil, errors.Wrap(ErrModelBackend, "nil response")
	}
	out := *msg
	out.Role = llm.RoleAssistant
	if len(out.ToolCalls) == 0 {
		out.ToolCalls = nil
	}
	return &out, nil
}

// ExecuteTools runs the calls one at a time in order and returns exactly one
// tool message per call. Failures become error-content messages.
func (r *Recommender) ExecuteTools(ctx context.Context, calls []llm.ToolCall) []llm.Message {
	results := make([]llm.Message, 0, len(calls))
	for _, call := range calls {
		results = append(results, llm.ToolMessage(call.ID, call.Name, r.executeTool(ctx, call)))
	}
	return results
}

func (r *Recommender) executeTool(ctx context.Context, call llm.ToolCall) string {
	tool, err := r.Tools.Lookup(call.Name)
	if err != nil {
		err = withCause(ErrMalformedToolCall, err)
		r.Logger.Warn("Model requested unknown tool", zap.String("tool", call.Name), zap.String("call_id", call.ID))
		return "Error: " + err.Error()
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.ToolTimeout)
	defer cancel()

	start := time.Now()
	content, err := tool.Execute(callCtx, call.Arguments)
	if err != nil {
		msg := "Tool execution failed"
		if errors.Is(err, ErrToolBackend) {
			msg = "Search backend failed"
		}
		r.Logger.Warn(msg, zap.String("tool", call.Name), zap.String("call_id", call.ID), zap.Error(err))
		return "Error: " + err.Error()
	}
	r.Logger.Debug("Tool executed", zap.String("tool", call.Name), zap.String("call_id", call.ID), zap.Duration("took", time.Since(start)))
	return content
}

// Run seeds the conversation with prompt and drives the state machine until
// the model answers without tool calls, a fatal error occurs, or the
// iteration cap is hit.
func (r *Recommender) Run(ctx context.Context, prompt string) (*Result, error) {
	res := &Result{Conversation: llm.NewConversation(llm.UserMessage(prompt))}
	state := StateAwaitingDecision
	var pending []llm.ToolCall

	for state != StateDone {
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}

		switch state {
		case StateAwaitingDecision:
			if res.Decisions >= r.cfg.MaxIterations {
				res.Err = errors.Wrapf(ErrMaxIterations, "limit %d", r.cfg.MaxIterations)
				r.Logger.Warn("Maximum iterations reached", zap.Int("max_iterations", r.cfg.MaxIterations))
				state = StateDone
				continue
			}

			msg, err := r.Decide(ctx, res.Conversation)
			res.Decisions++
			if err != nil {
				res.Err = err
				state = StateDone
				continue
			}
			if err := checkToolCallIDs(msg.ToolCalls); err != nil {
				res.Conversation = res.Conversation.Append(*msg)
				res.Err = err
				state = StateDone
				continue
			}

			res.Conversation = res.Conversation.Append(*msg)
			if msg.HasToolCalls() {
				pending = msg.ToolCalls
				state = StateAwaitingToolResults
			} else {
				res.Answer = msg.Content
				state = StateDone
			}
			r.Logger.Debug("Decision step", zap.Int("iteration", res.Decisions), zap.Int("tool_calls", len(msg.ToolCalls)), zap.Stringer("next", state))

		case StateAwaitingToolResults:
			res.Conversation = res.Conversation.Append(r.ExecuteTools(ctx, pending)...)
			pending = nil
			state = StateAwaitingDecision
		}
	}

	if res.Err != nil {
		r.Logger.Error("Recommendation loop failed", zap.Int("decisions", res.Decisions), zap.Error(res.Err))
	}
	return res, res.Err
}

// checkToolCallIDs rejects empty or repeated ids; results are matched to calls by id only.
func checkToolCallIDs(calls []llm.ToolCall) error {
	seen := make(map[string]bool, len(calls))
	for i, call := range calls {
		if call.ID == "" {
			return errors.Wrapf(ErrMalformedToolCall, "tool call %d has no id", i)
		}
		if seen[call.ID] {
			return errors.Wrapf(ErrMalformedToolCall, "duplicate tool call id %q", call.ID)
		}
		seen[call.ID] = true
	}
	return nil
}
