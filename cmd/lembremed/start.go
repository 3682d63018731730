package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/lembremed/lembremed/pkg/log"
	"github.com/lembremed/lembremed/pkg/srv"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the LembreMed services",
	Long:  `Initializes and starts all configured transports (Telegram, CLI) on top of the shared assistant pipeline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting lembremed")

		services := NewServices(ctx)

		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("lembremed has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
