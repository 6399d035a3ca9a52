package main

import (
	"github.com/Veraticus/expense-ai/internal/api"
	"github.com/Veraticus/expense-ai/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the expense endpoints:

  POST /v1/expense/chat    free-form assistant with sheet tools
  POST /v1/expense/parse   extract expenses from a message
  GET  /v1/expenses?year=  list a year of expenses

The server stops gracefully on SIGINT or SIGTERM.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	v := viper.GetViper()

	serverConfig, err := config.LoadServerConfig(v)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, v, true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	handler := api.NewHandler(a.assistant, a.repository, a.logger)
	return api.NewServer(serverConfig, handler, a.logger).Run(ctx)
}
