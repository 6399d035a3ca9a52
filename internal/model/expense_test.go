package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseMatchKey(t *testing.T) {
	tests := []struct {
		name    string
		expense Expense
		want    string
	}{
		{
			name:    "lowercases topic",
			expense: Expense{Date: "2025-01-10", Topic: "Coffee", Amount: 3.5},
			want:    "2025-01-10|coffee",
		},
		{
			name:    "keeps date verbatim",
			expense: Expense{Date: "2025-1-10", Topic: "GROCERIES"},
			want:    "2025-1-10|groceries",
		},
		{
			name:    "empty topic",
			expense: Expense{Date: "2025-02-01"},
			want:    "2025-02-01|",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expense.MatchKey())
		})
	}
}

func TestMatchKeyIgnoresAmount(t *testing.T) {
	a := Expense{Date: "2025-03-03", Topic: "Lunch", Amount: 12}
	b := Expense{Date: "2025-03-03", Topic: "lunch", Amount: 99}
	assert.Equal(t, a.MatchKey(), b.MatchKey())
}

func TestChatInputJSON(t *testing.T) {
	var in ChatInput
	require.NoError(t, json.Unmarshal([]byte(`{"reportId":"r-1","message":"spent 5 on tea"}`), &in))
	assert.Equal(t, "r-1", in.ReportID)
	assert.Equal(t, "spent 5 on tea", in.Message)

	var bare ChatInput
	require.NoError(t, json.Unmarshal([]byte(`{"message":"hi"}`), &bare))
	assert.Empty(t, bare.ReportID)
}

func TestExpenseJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Expense{Date: "2025-01-10", Amount: 12.5, Topic: "Coffee"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-01-10","amount":12.5,"topic":"Coffee"}`, string(data))
}
