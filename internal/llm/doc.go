// Package llm provides chat model clients for expense conversations.
// It supports Ollama and Gemini, host-provided tools the model may call
// during a reply, JSON schema constrained replies, and removal of the
// reasoning markup some models emit.
package llm
