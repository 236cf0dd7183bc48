package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/channelops/taskhealth/internal/config"
	"github.com/channelops/taskhealth/internal/formatter"
	"github.com/channelops/taskhealth/internal/history"
)

var (
	historyLimit int
	historyShow  int64
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived analysis runs",
		Long: `Show past runs from the local archive, newest first.

Examples:
  taskhealth history
  taskhealth history --limit 50
  taskhealth history --show 12 -o markdown`,
		RunE: runHistory,
	}

	cmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to list")
	cmd.Flags().Int64Var(&historyShow, "show", 0, "print the full report archived for this run id")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.Open(expandHistoryPath(cfg.History.Path))
	if err != nil {
		return err
	}
	defer store.Close()

	if historyShow > 0 {
		return showArchivedReport(cfg, store, historyShow, cmd)
	}

	runs, err := store.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No archived runs.")
		return nil
	}

	fmt.Printf("%-5s %-20s %-8s %-9s %-5s %-7s %s\n",
		"ID", "CHECKED AT", "RECORDS", "CRITICAL", "HIGH", "MEDIUM", "RUN")
	for _, run := range runs {
		fmt.Printf("%-5d %-20s %-8d %-9d %-5d %-7d %s\n",
			run.ID,
			run.CheckedAt.Local().Format("2006-01-02 15:04:05"),
			run.TotalRecords,
			run.Critical,
			run.High,
			run.Medium,
			run.RunID)
	}
	return nil
}

func showArchivedReport(cfg *config.Config, store *history.Store, id int64, cmd *cobra.Command) error {
	report, err := store.LoadReport(cmd.Context(), id)
	if err != nil {
		return err
	}

	f, err := formatter.New(outputFormat(cfg), formatter.Options{
		Color:     !noColor && cfg.Output.ColorMode != "never",
		MaxGroups: cfg.Output.MaxGroupsShown,
	})
	if err != nil {
		return err
	}

	out, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

// expandHistoryPath resolves a leading ~ in the configured archive
// location.
func expandHistoryPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
