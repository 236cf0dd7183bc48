package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/channelops/taskhealth/internal/config"
	"github.com/channelops/taskhealth/internal/logger"
)

var watchDebounce time.Duration

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <snapshot.json>",
		Short: "Re-analyze a snapshot file whenever it changes",
		Long: `Monitor a snapshot file that the task backend keeps overwriting and
print a fresh report after every change. Press Ctrl+C to stop.

Examples:
  taskhealth watch /var/run/taskhealth/snapshot.json
  taskhealth watch --debounce 5s snapshot.json`,
		Args: cobra.ExactArgs(1),
		RunE: runWatchCmd,
	}

	cmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "wait this long after a change before re-analyzing")

	return cmd
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := validateWatchPath(path); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer closeWatcher(watcher)

	// Watch the directory, not the file: editors and atomic writers
	// replace the file and would otherwise drop the watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	log := logger.New("watch")
	log.Debugf("watching %s, debounce %s", path, watchDebounce)

	// First report immediately so the operator is not staring at an
	// empty terminal until the next change.
	if err := analyzeOnce(cmd.Context(), cfg, path); err != nil {
		log.Warnf("initial analysis failed: %v", err)
	}

	return watchLoop(cmd.Context(), cfg, watcher, path)
}

func watchLoop(ctx context.Context, cfg *config.Config, watcher *fsnotify.Watcher, path string) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	log := logger.New("watch")

	var debounce *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-signals:
			log.Debugf("interrupt received, stopping")
			return nil

		case <-pending:
			pending = nil
			if err := analyzeOnce(ctx, cfg, path); err != nil {
				log.Warnf("analysis failed: %v", err)
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !eventTouches(event, path) {
				continue
			}
			// Coalesce bursts of writes into one re-analysis.
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Reset(watchDebounce)
			}
			pending = debounce.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.Warnf("watcher error: %v", err)
		}
	}
}

func analyzeOnce(ctx context.Context, cfg *config.Config, path string) error {
	report, meta, err := runAnalysis(ctx, cfg, path)
	if err != nil {
		return err
	}
	archiveRun(ctx, cfg, meta, report)

	fmt.Printf("\n--- %s ---\n", time.Now().Format("15:04:05"))
	return writeReport(cfg, report)
}

func eventTouches(event fsnotify.Event, path string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == filepath.Clean(path)
}

func closeWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

func validateWatchPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}
	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}
	return nil
}
