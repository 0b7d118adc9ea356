package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "assesscli",
	Short:         "Psychometric assessment engine tooling",
	Long:          "assesscli runs assessments from the terminal and inspects stored results and question pools.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().String("user", "cli-user", "User id the command acts for")
	rootCmd.PersistentFlags().Bool("offline", false, "Use in-memory storage instead of Postgres")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log to stderr with the development logger")

	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(resyncCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
