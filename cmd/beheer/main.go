// cmd/beheer is the back-office CLI: account management, data migrations
// and agenda maintenance against a running API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stichting-asha/cmd/beheer/commands"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	app := &commands.AppContext{}

	rootCmd := &cobra.Command{
		Use:           "beheer",
		Short:         "Stichting Asha beheer - accounts, migraties en agenda",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.Init(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "API base URL (default $ASHA_API_URL or http://localhost:8080)")

	rootCmd.AddCommand(commands.CreateUserCmd(app))
	rootCmd.AddCommand(commands.MigrateRolesCmd(app))
	rootCmd.AddCommand(commands.MigrateSeriesCmd(app))
	rootCmd.AddCommand(commands.AgendaCmd(app))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("command failed")
		stop()
		os.Exit(1)
	}
}
