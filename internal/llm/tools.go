package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Tool is a host operation the model may invoke while composing a reply.
type Tool interface {
	Name() string
	Description() string
	// Parameters describes the JSON object the model must pass to Call.
	Parameters() *Schema
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// Schema is the subset of JSON Schema understood by every provider.
type Schema struct {
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// JSON schema type names.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// ObjectSchema builds an object schema.
func ObjectSchema(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: properties, Required: required}
}

// ArraySchema builds an array schema.
func ArraySchema(description string, items *Schema) *Schema {
	return &Schema{Type: TypeArray, Description: description, Items: items}
}

// ScalarSchema builds a string, number, integer or boolean schema.
func ScalarSchema(typ, description string) *Schema {
	return &Schema{Type: typ, Description: description}
}

// invokeTool runs the named tool and renders its outcome as the text handed
// back to the model. Failures are reported to the model, not to the caller.
func invokeTool(ctx context.Context, tools []Tool, name string, args json.RawMessage, logger *slog.Logger) string {
	for _, tool := range tools {
		if tool.Name() != name {
			continue
		}
		if len(args) == 0 || string(args) == "null" {
			args = json.RawMessage(`{}`)
		}
		logger.Debug("Invoking tool", "tool", name, "args", string(args))
		out, err := tool.Call(ctx, args)
		if err != nil {
			logger.Warn("Tool call failed", "tool", name, "error", err)
			return fmt.Sprintf("Error: %v", err)
		}
		return out
	}
	logger.Warn("Model requested unknown tool", "tool", name)
	return fmt.Sprintf("Error: unknown tool %q", name)
}
