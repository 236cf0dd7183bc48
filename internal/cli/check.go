package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/channelops/taskhealth/internal/ai"
	"github.com/channelops/taskhealth/internal/analyzer"
	"github.com/channelops/taskhealth/internal/config"
	"github.com/channelops/taskhealth/internal/formatter"
	"github.com/channelops/taskhealth/internal/history"
	"github.com/channelops/taskhealth/internal/logger"
	"github.com/channelops/taskhealth/internal/monitor"
	"github.com/channelops/taskhealth/internal/source"
)

var (
	checkNoAI      bool
	checkNoHistory bool
	checkIncludeOK bool
	checkTimeout   time.Duration
	checkOutFile   string
	checkSaveDir   string
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [snapshot.json]",
		Short: "Analyze a failure snapshot and report issue severities",
		Long: `Read a failure snapshot from a file (or stdin when no file is given),
group repeated errors, classify each category's severity, and print the
report.

Examples:
  taskhealth check snapshot.json
  curl -s $BACKEND/failures | taskhealth check
  taskhealth check --no-ai -o markdown snapshot.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().BoolVar(&checkNoAI, "no-ai", false, "skip the AI summary even if configured")
	cmd.Flags().BoolVar(&checkNoHistory, "no-history", false, "do not archive this run")
	cmd.Flags().BoolVar(&checkIncludeOK, "include-ok", false, "list healthy categories in the report")
	cmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall analysis timeout")
	cmd.Flags().StringVar(&checkOutFile, "output-file", "", "write the report here instead of stdout")
	cmd.Flags().StringVar(&checkSaveDir, "save-dir", "", "also save report and snapshot JSON into this directory")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	report, meta, err := runAnalysis(ctx, cfg, path)
	if err != nil {
		return err
	}

	if !checkNoAI {
		attachAISummary(ctx, cfg, report)
	}
	if !checkNoHistory {
		archiveRun(ctx, cfg, meta, report)
	}
	if checkSaveDir != "" {
		saveArtifacts(report, path)
	}

	return writeReport(cfg, report)
}

// runAnalysis loads the snapshot and runs the engine over it.
func runAnalysis(ctx context.Context, cfg *config.Config, path string) (*monitor.Report, source.RunMeta, error) {
	meta := source.NewRunMeta(path)
	log := logger.New("check")

	snapshot, err := source.LoadSnapshot(path)
	if err != nil {
		return nil, meta, err
	}
	log.Debugf("loaded %d categories, %d records from %s",
		len(snapshot), snapshot.TotalRecords(), meta.Source)

	// Snapshots often omit descriptions; fill them from the registry.
	if categories, err := loadCategories(cfg.Categories.File); err == nil {
		for name, result := range snapshot {
			if result.Description != "" {
				continue
			}
			if desc := monitor.Describe(categories, name); desc != name {
				result.Description = desc
			}
		}
	}

	engine, err := analyzer.NewEngine(cfg.AnalyzerPolicy())
	if err != nil {
		return nil, meta, err
	}
	engine = engine.WithEscalation(cfg.EscalationWindow())
	if checkIncludeOK || cfg.Output.IncludeOK {
		engine = engine.WithZeroStates()
	}

	report, err := engine.Analyze(ctx, snapshot)
	if err != nil {
		return nil, meta, err
	}
	report.RunID = meta.RunID
	return report, meta, nil
}

// attachAISummary adds the AI summary when configured. Failures degrade
// to a warning; the report is already complete without it.
func attachAISummary(ctx context.Context, cfg *config.Config, report *monitor.Report) {
	if !cfg.AI.Enabled {
		return
	}
	log := logger.New("check")

	provider, err := ai.NewOpenAIProvider(cfg.AI.Endpoint, cfg.AI.APIKey, cfg.AI.Timeout)
	if err != nil {
		log.Warnf("ai disabled: %v", err)
		return
	}

	summarizer := ai.NewSummarizer(provider, cfg.AI.Model, cfg.AI.MaxTokens, cfg.AI.Temperature)
	if err := summarizer.Summarize(ctx, report); err != nil {
		log.Warnf("ai summary failed: %v", err)
	}
}

// archiveRun stores the run in the history database when enabled.
func archiveRun(ctx context.Context, cfg *config.Config, meta source.RunMeta, report *monitor.Report) {
	if !cfg.History.Enabled {
		return
	}
	log := logger.New("check")

	store, err := history.Open(expandHistoryPath(cfg.History.Path))
	if err != nil {
		log.Warnf("history unavailable: %v", err)
		return
	}
	defer store.Close()

	if _, err := store.SaveRun(ctx, meta.RunID, report); err != nil {
		log.Warnf("archiving run failed: %v", err)
		return
	}
	log.Debugf("archived run %s", meta.RunID)
}

// saveArtifacts writes the report (and the snapshot, when re-readable)
// into the save directory.
func saveArtifacts(report *monitor.Report, path string) {
	log := logger.New("check")

	saved, err := source.SaveReport(checkSaveDir, report)
	if err != nil {
		log.Warnf("saving report failed: %v", err)
		return
	}
	log.Debugf("report saved to %s", saved)

	// Stdin cannot be replayed; only archive file-based snapshots.
	if path != "" && path != "-" {
		snapshot, err := source.LoadSnapshot(path)
		if err == nil {
			if _, err := source.SaveSnapshot(checkSaveDir, snapshot, report.GeneratedAt); err != nil {
				log.Warnf("saving snapshot failed: %v", err)
			}
		}
	}
}

func writeReport(cfg *config.Config, report *monitor.Report) error {
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

	if checkOutFile != "" {
		if err := os.WriteFile(checkOutFile, out, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		return nil
	}
	_, err = os.Stdout.Write(out)
	return err
}
