package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Veraticus/expense-ai/internal/common"
	"github.com/Veraticus/expense-ai/internal/model"
)

// ChatService is the chat orchestration the endpoints delegate to.
type ChatService interface {
	ProcessChatMessage(ctx context.Context, message string) string
	ParseChatMessage(ctx context.Context, message string) ([]model.Expense, error)
}

// ExpenseLister reads one year of expenses.
type ExpenseLister interface {
	GetByYear(ctx context.Context, year int) []model.Expense
}

// Handler serves the expense endpoints. Failures answer with a status code
// and no body.
type Handler struct {
	chat     ChatService
	expenses ExpenseLister
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates the endpoint handlers.
func NewHandler(chat ChatService, expenses ExpenseLister, logger *slog.Logger) *Handler {
	return &Handler{
		chat:     chat,
		expenses: expenses,
		logger:   logger,
		now:      time.Now,
	}
}

// Chat handles POST /v1/expense/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var in model.ChatInput
	if !h.decode(w, r, &in) {
		return
	}

	reply := h.chat.ProcessChatMessage(r.Context(), in.Message)
	writeJSON(w, http.StatusOK, model.ChatOutput{Message: reply})
}

// Parse handles POST /v1/expense/parse.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	var in model.ChatInput
	if !h.decode(w, r, &in) {
		return
	}

	expenses, err := h.chat.ParseChatMessage(r.Context(), in.Message)
	if err != nil {
		common.LogError(r.Context(), h.logger, err, "Failed to parse expenses", common.Fields{
			"request_id": RequestIDFromContext(r.Context()),
		})
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, expenses)
}

// ListExpenses handles GET /v1/expenses?year=. The year defaults to the
// current one.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	year := h.now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.WarnContext(r.Context(), "Invalid year parameter", "year", raw)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		year = parsed
	}

	expenses := h.expenses.GetByYear(r.Context(), year)
	if expenses == nil {
		expenses = []model.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   h.now().Format(time.RFC3339),
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid request body", "error", err, "path", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	return true
}
