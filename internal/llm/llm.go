// Package llm defines the chat-completion protocol shared by the title
// selector and the orchestrator. Tool invocation is explicit: a request
// declares its tools and whether the model may, must, or must not call them.
package llm

import (
	"context"
	"encoding/json"
)

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single turn in a conversation.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Tool declares a function the model may invoke.
// Parameters is a JSON Schema object.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolChoiceMode selects how the model treats the declared tools.
type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceFunction ToolChoiceMode = "function"
)

// ToolChoice is auto, none, or a forced call to Function.
type ToolChoice struct {
	Mode     ToolChoiceMode
	Function string
}

// Force returns a tool choice that compels a call to the named function.
func Force(name string) *ToolChoice {
	return &ToolChoice{Mode: ToolChoiceFunction, Function: name}
}

// Request is one chat completion call.
// A nil Temperature leaves the provider default in place.
type Request struct {
	Model       string
	Messages    []Message
	Tools       []Tool
	ToolChoice  *ToolChoice
	Temperature *float64
	MaxTokens   int
}

// ToolCall is a structured invocation returned by the model.
// Arguments holds the raw JSON argument object.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// DecodeArguments unmarshals the call arguments into v.
func (c ToolCall) DecodeArguments(v any) error {
	return json.Unmarshal([]byte(c.Arguments), v)
}

// Response wraps a completion result: free text, tool calls, or both.
type Response struct {
	Content      string
	ToolCalls    []ToolCall
	Model        string
	FinishReason string
}

// FirstCall returns the first tool call with the given name.
func (r *Response) FirstCall(name string) (ToolCall, bool) {
	if r == nil {
		return ToolCall{}, false
	}
	for _, c := range r.ToolCalls {
		if c.Name == name {
			return c, true
		}
	}
	return ToolCall{}, false
}

// Provider is the interface chat backends implement.
type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
	Name() string
}

// Float64 returns a pointer to v, for optional request fields.
func Float64(v float64) *float64 { return &v }
