package llm

import (
	"github.com/pkg/errors"
)

// ErrBrokenToolChain is returned by Validate when a tool result does not answer
// an open call of the assistant message that precedes it.
var ErrBrokenToolChain = errors.New("tool result does not match a pending tool call")

// Conversation is an append-only message log. Append never touches the
// receiver's backing array, so earlier values stay valid snapshots.
type Conversation struct {
	messages []Message
}

func NewConversation(msgs ...Message) Conversation {
	return Conversation{}.Append(msgs...)
}

func (c Conversation) Append(msgs ...Message) Conversation {
	out := make([]Message, 0, len(c.messages)+len(msgs))
	out = append(out, c.messages...)
	for _, m := range msgs {
		out = append(out, cloneMessage(m))
	}
	return Conversation{messages: out}
}

func (c Conversation) Len() int {
	return len(c.messages)
}

// Messages returns a copy of the log in insertion order.
func (c Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	for i, m := range c.messages {
		out[i] = cloneMessage(m)
	}
	return out
}

func (c Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return cloneMessage(c.messages[len(c.messages)-1]), true
}

// Validate checks that every tool message answers exactly one not-yet-answered
// call of the nearest preceding assistant message, with only tool messages in between.
func (c Conversation) Validate() error {
	var pending map[string]bool
	for i, m := range c.messages {
		switch m.Role {
		case RoleAssistant:
			pending = make(map[string]bool, len(m.ToolCalls))
			for _, call := range m.ToolCalls {
				pending[call.ID] = true
			}
		case RoleTool:
			if !pending[m.ToolCallID] {
				return errors.Wrapf(ErrBrokenToolChain, "message %d: tool_call_id %q", i, m.ToolCallID)
			}
			delete(pending, m.ToolCallID)
		default:
			pending = nil
		}
	}
	return nil
}

func cloneMessage(m Message) Message {
	out := m
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		for i, call := range m.ToolCalls {
			out.ToolCalls[i] = cloneToolCall(call)
		}
	}
	return out
}

func cloneToolCall(c ToolCall) ToolCall {
	out := c
	if c.Arguments != nil {
		out.Arguments = make(map[string]any, len(c.Arguments))
		for k, v := range c.Arguments {
			out.Arguments[k] = v
		}
	}
	return out
}
