package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "bureaubot",
	Short:         "Conversational assistant that picks and fills government forms",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	Long: `BureauBot walks a user through choosing an official immigration or customs
form, asks for each field in plain language, checks the answers and writes
a filled PDF.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
