package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/expense-ai/internal/cli"
	"github.com/Veraticus/expense-ai/internal/ledger"
	"github.com/Veraticus/expense-ai/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Read and edit the expense sheet directly",
	}

	cmd.PersistentFlags().Bool("json", false, "print JSON instead of a table")

	cmd.AddCommand(expensesListCmd())
	cmd.AddCommand(expensesSearchCmd())
	cmd.AddCommand(expensesAddCmd())
	cmd.AddCommand(expensesDeleteCmd())

	return cmd
}

func expensesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one year of expenses sorted by date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, _ := cmd.Flags().GetInt("year")
			asJSON, _ := cmd.Flags().GetBool("json")

			a, err := newApp(cmd.Context(), viper.GetViper(), false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			return listExpenses(cmd.Context(), cmd.OutOrStdout(), a.repository, year, asJSON)
		},
	}

	cmd.Flags().Int("year", time.Now().Year(), "year to list")

	return cmd
}

type yearLister interface {
	GetByYear(ctx context.Context, year int) []model.Expense
}

func listExpenses(ctx context.Context, w io.Writer, repo yearLister, year int, asJSON bool) error {
	expenses := repo.GetByYear(ctx, year)
	if asJSON {
		return writeJSON(w, expenses)
	}
	_, err := fmt.Fprintln(w, cli.RenderExpenses(fmt.Sprintf("Expenses %d", year), expenses))
	return err
}

func expensesSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find expenses by date, topic or amount",
		Long: `Search one year of expenses. --year is required, --month needs --year
and --day needs both. --topic matches case-insensitively on part of the
description and --amount matches within 0.001.`,
		RunE: runExpensesSearch,
	}

	cmd.Flags().Int("year", 0, "year to search")
	cmd.Flags().Int("month", 0, "month to search (1-12)")
	cmd.Flags().Int("day", 0, "day of month to search (1-31)")
	cmd.Flags().String("topic", "", "topic substring")
	cmd.Flags().Float64("amount", 0, "exact amount")

	return cmd
}

func runExpensesSearch(cmd *cobra.Command, _ []string) error {
	q := queryFromFlags(cmd)
	asJSON, _ := cmd.Flags().GetBool("json")

	a, err := newApp(cmd.Context(), viper.GetViper(), false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	expenses, err := a.reconciler.GetExpenses(cmd.Context(), q)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), expenses)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderExpenses("Matching expenses", expenses))
	return err
}

// queryFromFlags sets only the filters the user passed.
func queryFromFlags(cmd *cobra.Command) ledger.Query {
	var q ledger.Query
	flags := cmd.Flags()

	if flags.Changed("year") {
		v, _ := flags.GetInt("year")
		q.Year = &v
	}
	if flags.Changed("month") {
		v, _ := flags.GetInt("month")
		q.Month = &v
	}
	if flags.Changed("day") {
		v, _ := flags.GetInt("day")
		q.Day = &v
	}
	if flags.Changed("topic") {
		v, _ := flags.GetString("topic")
		q.Topic = &v
	}
	if flags.Changed("amount") {
		v, _ := flags.GetFloat64("amount")
		q.Amount = &v
	}
	return q
}

func expensesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append an expense to its year sheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := expenseFromFlags(cmd)
			if err != nil {
				return err
			}
			return reconcile(cmd, []model.Expense{e}, nil)
		},
	}

	cmd.Flags().String("date", time.Now().Format(time.DateOnly), "expense date (yyyy-MM-dd)")
	cmd.Flags().Float64("amount", 0, "amount spent")
	cmd.Flags().String("topic", "", "what the money was spent on")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func expensesDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove expenses matching a date and topic",
		Long:  "Remove every row of the date's year sheet with the same date and, ignoring case, the same topic.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := expenseFromFlags(cmd)
			if err != nil {
				return err
			}
			return reconcile(cmd, nil, []model.Expense{e})
		},
	}

	cmd.Flags().String("date", "", "expense date (yyyy-MM-dd)")
	cmd.Flags().String("topic", "", "expense topic")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func expenseFromFlags(cmd *cobra.Command) (model.Expense, error) {
	var e model.Expense
	var err error

	if e.Date, err = cmd.Flags().GetString("date"); err != nil {
		return e, err
	}
	if e.Topic, err = cmd.Flags().GetString("topic"); err != nil {
		return e, err
	}
	if cmd.Flags().Lookup("amount") != nil {
		if e.Amount, err = cmd.Flags().GetFloat64("amount"); err != nil {
			return e, err
		}
	}
	return e, nil
}

func reconcile(cmd *cobra.Command, toAddOrUpdate, toDelete []model.Expense) error {
	a, err := newApp(cmd.Context(), viper.GetViper(), false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	summary, err := a.reconciler.UpdateExpensesByYear(cmd.Context(), toAddOrUpdate, toDelete)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSummary(summary))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
