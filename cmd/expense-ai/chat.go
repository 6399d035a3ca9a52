package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/expense-ai/internal/cli"
	"github.com/Veraticus/expense-ai/internal/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Talk to the expense assistant",
		Long: `Send a message to the assistant. It can record, remove and look up
expenses in the sheet on its own, e.g.

  expense-ai chat "I paid 4.50 for coffee this morning"
  expense-ai chat "how much did I spend on groceries in March?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), viper.GetViper(), true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			reply := a.assistant.ProcessChatMessage(cmd.Context(), strings.Join(args, " "))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatReply(reply))
			return err
		},
	}
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <message>",
		Short: "Extract expenses from a message without saving them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			a, err := newApp(cmd.Context(), viper.GetViper(), true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			expenses, err := a.assistant.ParseChatMessage(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatError(common.UserMessage(err, err.Error())))
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), expenses)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderExpenses("Parsed expenses", expenses))
			return err
		},
	}

	cmd.Flags().Bool("json", false, "print JSON instead of a table")

	return cmd
}
