package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/channelops/taskhealth/internal/config"
	"github.com/channelops/taskhealth/internal/logger"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	outputFmt string
)

// NewRootCommand creates the root command.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskhealth",
		Short: "Task failure monitor for marketplace integrations",
		Long: `Taskhealth analyzes snapshots of failing integration tasks, groups
repeated errors by their underlying pattern, and classifies each task
category into CRITICAL, HIGH, MEDIUM, or OK severity.

Snapshots are JSON exports from the task backend and can be read from a
file or stdin. Reports print to the terminal or render as JSON,
Markdown, or HTML.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(verbose)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (text, json, markdown, html)")

	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newCategoriesCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

// loadConfig builds the effective configuration, honoring the --config
// flag when set.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	if cfgFile != "" {
		return loader.LoadFile(cfgFile)
	}
	return loader.Load()
}

// outputFormat resolves the effective format: flag first, then config.
func outputFormat(cfg *config.Config) string {
	if outputFmt != "" {
		return outputFmt
	}
	return cfg.Output.DefaultFormat
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version == "dev" || version == "" {
				version = "development"
			}
			if commit == "none" || commit == "" {
				commit = "local-build"
			}
			if date == "unknown" || date == "" {
				date = "local-build"
			}

			fmt.Printf("taskhealth %s (%s) built on %s\n", version, commit, date)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func isVerbose() bool {
	return verbose
}
