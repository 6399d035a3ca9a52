package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/expense-ai/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

const amountColumn = 1

// RenderExpenses renders expenses as a table followed by a total line.
func RenderExpenses(title string, expenses []model.Expense) string {
	if len(expenses) == 0 {
		return FormatTitle(title) + "\n" + SubtleStyle.Render("No expenses recorded.")
	}

	total := decimal.Zero
	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount)
		total = total.Add(amount)
		rows = append(rows, []string{e.Date, amount.StringFixed(2), e.Topic})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case col == amountColumn:
				return AmountCellStyle
			default:
				return TableCellStyle
			}
		}).
		Headers("Date", "Amount", "Description").
		Rows(rows...)

	summary := fmt.Sprintf("%s expense(s), total %s", strconv.Itoa(len(expenses)), total.StringFixed(2))

	return strings.Join([]string{
		FormatTitle(title),
		t.String(),
		SuccessStyle.Render(summary),
	}, "\n")
}

// RenderSummary styles a multi-line reconciliation summary, marking lines
// that report a failure.
func RenderSummary(summary string) string {
	lines := strings.Split(summary, "\n")
	for i, line := range lines {
		if strings.Contains(line, "Error:") {
			lines[i] = FormatError(line)
			continue
		}
		lines[i] = FormatSuccess(line)
	}
	return strings.Join(lines, "\n")
}
