package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON unmarshals a model reply into v. Markdown code fences and any
// prose around the outermost JSON value are ignored.
func DecodeJSON(content string, v any) error {
	cleaned := cleanMarkdownWrapper(StripThinking(content))
	if cleaned == "" {
		return fmt.Errorf("empty model response")
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// cleanMarkdownWrapper removes ```json fences and trims to the span between
// the first opening and the last closing bracket or brace.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.IndexAny(content, "[{")
	if start < 0 {
		return content
	}
	closer := "]"
	if content[start] == '{' {
		closer = "}"
	}
	end := strings.LastIndex(content, closer)
	if end < start {
		return content[start:]
	}
	return content[start : end+1]
}
