package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/lembremed/lembremed/internal/config"
	"github.com/lembremed/lembremed/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "lembremed",
	Short: "LembreMed — medication reminder assistant",
	Long:  `LembreMed is a conversational assistant that manages medication reminders in Brazilian Portuguese.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
