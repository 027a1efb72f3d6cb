package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"driftwatch/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "driftwatch",
	Short: "Root-cause diagnosis for enterprise search metric movements",
	Long: "Driftwatch decomposes metric movements across traffic dimensions,\n" +
		"separates composition change from real behavior change, and commits\n" +
		"a validated diagnosis with confidence scoring and action items.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logging.Init(logging.ParseLevel(rootFlags.logLevel), rootFlags.logFormat)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(decomposeCmd)
	rootCmd.AddCommand(anomalyCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(investigateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
