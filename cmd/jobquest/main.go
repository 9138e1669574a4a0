package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:           "jobquest",
	Short:         "Questionnaire-driven job recommendations for neurodiverse candidates",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(resultCmd)

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
