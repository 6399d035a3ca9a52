package llm

import (
	"context"
)

// Client defines the interface for chat model providers.
type Client interface {
	// Chat sends one system prompt and one user message. When tools are
	// present the provider runs the tool loop until the model answers in
	// plain text.
	Chat(ctx context.Context, req Request) (Response, error)
}

// Request is a single chat exchange.
type Request struct {
	// Format, when set, constrains the reply to JSON matching the schema.
	Format *Schema
	System string
	User   string
	Tools  []Tool
}

// Response contains the model's final answer with reasoning markup removed.
type Response struct {
	Content   string
	ToolCalls int
}
