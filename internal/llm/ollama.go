package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ollamaClient implements the Client interface for the Ollama chat API.
type ollamaClient struct {
	httpClient    *http.Client
	logger        *slog.Logger
	baseURL       string
	model         string
	temperature   float64
	numCtx        int
	maxToolRounds int
}

// newOllamaClient creates a new Ollama API client.
func newOllamaClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*ollamaClient, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("ollama host is required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultConfig().Model
	}

	rounds := cfg.MaxToolRounds
	if rounds <= 0 {
		rounds = DefaultConfig().MaxToolRounds
	}

	return &ollamaClient{
		httpClient:    httpClient,
		logger:        logger,
		baseURL:       strings.TrimRight(cfg.Host, "/"),
		model:         model,
		temperature:   cfg.Temperature,
		numCtx:        cfg.ContextWindow,
		maxToolRounds: rounds,
	}, nil
}

// Chat sends the conversation to /api/chat, executing requested tools until
// the model replies without tool calls.
func (c *ollamaClient) Chat(ctx context.Context, req Request) (Response, error) {
	messages := make([]ollamaMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: req.User})

	tools := make([]ollamaTool, 0, len(req.Tools))
	for _, tool := range req.Tools {
		tools = append(tools, ollamaTool{
			Type: "function",
			Function: ollamaFunction{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
	}

	calls := 0
	for round := 0; ; round++ {
		reply, err := c.send(ctx, ollamaChatRequest{
			Model:    c.model,
			Messages: messages,
			Tools:    tools,
			Format:   req.Format,
			Stream:   false,
			Options: ollamaOptions{
				Temperature: c.temperature,
				NumCtx:      c.numCtx,
			},
		})
		if err != nil {
			return Response{}, err
		}

		if len(reply.ToolCalls) == 0 || len(req.Tools) == 0 {
			return Response{Content: StripThinking(reply.Content), ToolCalls: calls}, nil
		}
		if round >= c.maxToolRounds {
			return Response{}, fmt.Errorf("model still requesting tools after %d rounds", c.maxToolRounds)
		}

		for i := range reply.ToolCalls {
			if len(reply.ToolCalls[i].Function.Arguments) == 0 {
				reply.ToolCalls[i].Function.Arguments = json.RawMessage(`{}`)
			}
		}
		messages = append(messages, reply)

		for _, call := range reply.ToolCalls {
			calls++
			out := invokeTool(ctx, req.Tools, call.Function.Name, call.Function.Arguments, c.logger)
			messages = append(messages, ollamaMessage{
				Role:     "tool",
				Content:  out,
				ToolName: call.Function.Name,
			})
		}
	}
}

func (c *ollamaClient) send(ctx context.Context, body ollamaChatRequest) (ollamaMessage, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return ollamaMessage{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return ollamaMessage{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Ollama request", "body", string(jsonBody))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ollamaMessage{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ollamaMessage{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return ollamaMessage{}, fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var response ollamaChatResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return ollamaMessage{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if response.Error != "" {
		return ollamaMessage{}, fmt.Errorf("ollama API error: %s", response.Error)
	}

	return response.Message, nil
}

type ollamaChatRequest struct {
	Format   *Schema         `json:"format,omitempty"`
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Tools    []ollamaTool    `json:"tools,omitempty"`
	Options  ollamaOptions   `json:"options"`
	Stream   bool            `json:"stream"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumCtx      int     `json:"num_ctx,omitempty"`
}

type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolName  string           `json:"tool_name,omitempty"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
}

type ollamaToolCall struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type ollamaTool struct {
	Type     string         `json:"type"`
	Function ollamaFunction `json:"function"`
}

type ollamaFunction struct {
	Parameters  *Schema `json:"parameters"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
}

// ollamaChatResponse represents the non-streaming /api/chat response.
type ollamaChatResponse struct {
	Model      string        `json:"model"`
	Error      string        `json:"error,omitempty"`
	DoneReason string        `json:"done_reason"`
	Message    ollamaMessage `json:"message"`
	Done       bool          `json:"done"`
}
