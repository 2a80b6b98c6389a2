package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sensorpipe",
		Short: "Sensor uplink ingestion, health and alerting pipeline",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional outside development
			if err := godotenv.Load(); err != nil && common.IsDevelopment() {
				fmt.Fprintln(os.Stderr, "no .env file found, copy .env.example to .env first if in development")
			}
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(rebuildLatestCmd())

	err := rootCmd.Execute()
	common.SyncLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
