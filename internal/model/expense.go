package model

import (
	"strings"
)

// Expense is a single spending record as it appears in a year sheet.
type Expense struct {
	Date   string  `json:"date"`
	Topic  string  `json:"topic"`
	Amount float64 `json:"amount"`
}

// MatchKey identifies an expense for deletion: the exact date plus the
// lowercased topic.
func (e Expense) MatchKey() string {
	return MatchKey(e.Date, e.Topic)
}

// MatchKey builds the deletion key for a date and topic pair.
func MatchKey(date, topic string) string {
	return date + "|" + strings.ToLower(topic)
}

// ChatInput is the request body of the chat and parse endpoints.
type ChatInput struct {
	// ReportID is accepted for forward compatibility and currently ignored.
	ReportID string `json:"reportId,omitempty"`
	Message  string `json:"message"`
}

// ChatOutput is the response body of the chat endpoint.
type ChatOutput struct {
	Message string `json:"message"`
}
