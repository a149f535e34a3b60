package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/screenlens/screenlens/internal/output"
	"github.com/screenlens/screenlens/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "screenlens",
	Short: "Observe and act on the screen through a vision model",
	Long: `A CLI and MCP server that lets AI agents drive a GUI from pixels alone:
capture the screen, detect UI elements with a vision model, and dispatch
mouse and keyboard actions against the detected elements.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Use the root persistent flag directly to avoid conflicts with
		// subcommand local flags (e.g. screenshot --format png/jpg).
		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		if pretty, err := rootCmd.PersistentFlags().GetBool("pretty"); err == nil {
			output.PrettyOutput = pretty
		}
		return nil
	}
}
