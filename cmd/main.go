package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbosity  int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "libgenui",
	Short: "Generate UI components from prompts and screenshots",
	Long: `libgenui turns a text prompt or a screenshot into a set of Angular
component files using a generative model, repairs them once, renders a static
preview and stores the result.

Available commands:
  serve      - Run the HTTP API
  generate   - Run one generation from the command line
  artifacts  - List stored artifacts`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", 0, "log verbosity, overrides LOG_VERBOSITY when higher")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(artifactsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
