package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"
)

// geminiClient implements the Client interface with the Gemini API.
type geminiClient struct {
	client        *genai.Client
	logger        *slog.Logger
	model         string
	temperature   float32
	maxToolRounds int
}

func newGeminiClient(ctx context.Context, cfg Config, httpClient *http.Client, logger *slog.Logger) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	// Host overrides the public endpoint, mainly for tests and proxies.
	if cfg.Host != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Host}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	rounds := cfg.MaxToolRounds
	if rounds <= 0 {
		rounds = DefaultConfig().MaxToolRounds
	}

	return &geminiClient{
		client:        client,
		logger:        logger,
		model:         cfg.Model,
		temperature:   float32(cfg.Temperature),
		maxToolRounds: rounds,
	}, nil
}

// Chat calls GenerateContent, answering function calls until the model
// returns text.
func (c *geminiClient) Chat(ctx context.Context, req Request) (Response, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Format != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = toGenaiSchema(req.Format)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, tool := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  declarationParameters(tool.Parameters()),
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}

	calls := 0
	for round := 0; ; round++ {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			return Response{}, fmt.Errorf("generate content: %w", err)
		}

		functionCalls := resp.FunctionCalls()
		if len(functionCalls) == 0 || len(req.Tools) == 0 {
			return Response{Content: StripThinking(resp.Text()), ToolCalls: calls}, nil
		}
		if round >= c.maxToolRounds {
			return Response{}, fmt.Errorf("model still requesting tools after %d rounds", c.maxToolRounds)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return Response{}, fmt.Errorf("function calls without candidate content")
		}

		contents = append(contents, resp.Candidates[0].Content)

		parts := make([]*genai.Part, 0, len(functionCalls))
		for _, call := range functionCalls {
			calls++
			args, err := json.Marshal(call.Args)
			if err != nil {
				return Response{}, fmt.Errorf("marshal %s arguments: %w", call.Name, err)
			}
			out := invokeTool(ctx, req.Tools, call.Name, args, c.logger)
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, map[string]any{"output": out}))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}
}

// declarationParameters leaves zero-argument tools without parameters; the
// API rejects an object schema with no properties.
func declarationParameters(s *Schema) *genai.Schema {
	if s == nil || (s.Type == TypeObject && len(s.Properties) == 0) {
		return nil
	}
	return toGenaiSchema(s)
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}

	switch s.Type {
	case TypeObject:
		out.Type = genai.TypeObject
	case TypeArray:
		out.Type = genai.TypeArray
	case TypeNumber:
		out.Type = genai.TypeNumber
	case TypeInteger:
		out.Type = genai.TypeInteger
	case TypeBoolean:
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}

	return out
}
