// Package openai implements llm.Provider over the OpenAI chat completions API
// and exposes the images endpoint used for illustrations.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"librarian/internal/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to an OpenAI-compatible API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

type Config struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

// New creates a client. The key is read once from the configured env var.
func New(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{apiKey: key, baseURL: cfg.BaseURL, http: &http.Client{Timeout: cfg.Timeout}}, nil
}

func (c *Client) Name() string { return "openai" }

type wireFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function wireFunctionCall `json:"function"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    *string        `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireTool struct {
	Type     string   `json:"type"`
	Function llm.Tool `json:"function"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Tools       []wireTool    `json:"tools,omitempty"`
	ToolChoice  any           `json:"tool_choice,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content   *string        `json:"content"`
			ToolCalls []wireToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// encodeToolChoice maps the typed choice to the wire form:
// "auto", "none", or {"type":"function","function":{"name":...}}.
func encodeToolChoice(tc *llm.ToolChoice) any {
	if tc == nil {
		return nil
	}
	switch tc.Mode {
	case llm.ToolChoiceFunction:
		return map[string]any{"type": "function", "function": map[string]string{"name": tc.Function}}
	case llm.ToolChoiceNone:
		return "none"
	default:
		return "auto"
	}
}

func encodeMessages(msgs []llm.Message) []wireMessage {
	out := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		wm := wireMessage{Role: string(m.Role), ToolCallID: m.ToolCallID}
		if m.Content != "" || len(m.ToolCalls) == 0 {
			content := m.Content
			wm.Content = &content
		}
		for _, tc := range m.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:       tc.ID,
				Type:     "function",
				Function: wireFunctionCall{Name: tc.Name, Arguments: tc.Arguments},
			})
		}
		out = append(out, wm)
	}
	return out
}

func (c *Client) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if req == nil || req.Model == "" {
		return nil, errors.New("openai: request without model")
	}
	body := chatRequest{
		Model:       req.Model,
		Messages:    encodeMessages(req.Messages),
		ToolChoice:  encodeToolChoice(req.ToolChoice),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, t := range req.Tools {
		body.Tools = append(body.Tools, wireTool{Type: "function", Function: t})
	}
	if len(body.Tools) == 0 {
		body.ToolChoice = nil
	}

	var result chatResponse
	if err := c.post(ctx, "/chat/completions", body, &result); err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}
	choice := result.Choices[0]
	resp := &llm.Response{Model: result.Model, FinishReason: choice.FinishReason}
	if choice.Message.Content != nil {
		resp.Content = *choice.Message.Content
	}
	for _, tc := range choice.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, llm.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
	}
	return resp, nil
}

// ImageRequest describes one image generation call.
type ImageRequest struct {
	Model  string
	Prompt string
	Size   string
}

// GenerateImage returns the decoded PNG bytes of a single generated image.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	if req.Model == "" {
		req.Model = "dall-e-3"
	}
	if req.Size == "" {
		req.Size = "1024x1024"
	}
	body := map[string]any{
		"model":           req.Model,
		"prompt":          req.Prompt,
		"size":            req.Size,
		"n":               1,
		"response_format": "b64_json",
	}
	var result struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/images/generations", body, &result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return nil, errors.New("openai: no image returned")
	}
	img, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("openai: decode image: %w", err)
	}
	return img, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openai %s: %s: %s", path, resp.Status, bytes.TrimSpace(respBody))
	}
	return json.Unmarshal(respBody, out)
}

var _ llm.Provider = (*Client)(nil)
