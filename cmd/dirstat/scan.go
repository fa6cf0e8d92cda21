package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/dirstat/internal/config"
	"github.com/michaelscutari/dirstat/internal/history"
	"github.com/michaelscutari/dirstat/internal/logging"
	"github.com/michaelscutari/dirstat/internal/pathutil"
	"github.com/michaelscutari/dirstat/internal/scan"
	"github.com/michaelscutari/dirstat/internal/tree"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a directory tree",
	Long:  `Scan a directory tree, print its aggregate summary, and record the session in history.`,
	RunE:  runScan,
}

var (
	scanRoot      string
	scanConfig    string
	scanWorkers   int
	scanXdev      bool
	scanExclude   []string
	scanMaxErrors int
	scanHistory   string
	scanRetention int
	scanNoHistory bool
	scanVerbose   bool
	scanProgress  time.Duration
)

func init() {
	scanCmd.Flags().StringVarP(&scanRoot, "root", "r", ".", "Root directory to scan")
	scanCmd.Flags().StringVarP(&scanConfig, "config", "c", "", "Config file (default ~/.config/dirstat/config.yaml)")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", config.DefaultWorkers, "Number of worker goroutines")
	scanCmd.Flags().BoolVar(&scanXdev, "xdev", config.DefaultXdev, "Don't cross filesystem boundaries")
	scanCmd.Flags().StringSliceVarP(&scanExclude, "exclude", "e", nil, "Regex patterns to exclude (can be repeated)")
	scanCmd.Flags().IntVar(&scanMaxErrors, "max-errors", config.DefaultMaxErrors, "Stop after N errors (0 = unlimited)")
	scanCmd.Flags().StringVar(&scanHistory, "history-dir", "", "Directory for the history database")
	scanCmd.Flags().IntVar(&scanRetention, "retention", config.DefaultRetention, "Scan sessions to retain in history (0 = unlimited)")
	scanCmd.Flags().BoolVar(&scanNoHistory, "no-history", false, "Don't record this scan in history")
	scanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "Enable verbose scan logging")
	scanCmd.Flags().DurationVar(&scanProgress, "progress-interval", 30*time.Second, "Emit progress lines to stderr at this interval when not a TTY (0 to disable)")
}

// loadScanConfig merges the config file under the flags: a flag the
// user didn't set on the command line takes its value from the file.
func loadScanConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(scanConfig)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = scanWorkers
	}
	if cmd.Flags().Changed("xdev") {
		cfg.Xdev = scanXdev
	}
	if cmd.Flags().Changed("max-errors") {
		cfg.MaxErrors = scanMaxErrors
	}
	if cmd.Flags().Changed("retention") {
		cfg.Retention = scanRetention
	}
	if scanHistory != "" {
		cfg.HistoryDir = pathutil.ExpandHome(scanHistory)
	}
	cfg.Exclude = append(cfg.Exclude, scanExclude...)
	if scanVerbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadScanConfig(cmd)
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel)

	root, err := filepath.Abs(scanRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}
	root = pathutil.Normalize(root)

	opts := scan.DefaultOptions().
		WithWorkers(cfg.Workers).
		WithXdev(cfg.Xdev).
		WithMaxErrors(cfg.MaxErrors)
	for _, pattern := range cfg.Exclude {
		if err := opts.AddExcludePattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}

	fmt.Printf("Scanning %s...\n", root)

	t := tree.New()
	t.SetReporter(func(v tree.Violation) {
		log.Warn().Str("violation", v.String()).Msg("tree consistency violation")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nCanceling... (press Ctrl+C again to force)")
		cancel()
		<-sigCh
		os.Exit(130)
	}()

	startTime := time.Now()
	scanner := scan.NewScanner(opts)

	// Progress display goroutine
	isTTY := isTerminal()
	progressDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		var spinnerIdx int
		lastNonTTY := time.Now()
		for {
			select {
			case <-progressDone:
				return
			case <-ticker.C:
				p := scanner.Progress()
				elapsed := time.Since(startTime).Round(time.Millisecond)
				rate := float64(0)
				if elapsed.Seconds() > 0 {
					rate = float64(p.Files+p.Dirs) / elapsed.Seconds()
				}
				if isTTY {
					spinner := spinnerFrames[spinnerIdx%len(spinnerFrames)]
					spinnerIdx++
					errStr := ""
					if p.Errors > 0 {
						errStr = fmt.Sprintf(" | %d errors", p.Errors)
					}
					fmt.Fprintf(os.Stderr, "\r\033[K%s Scanning... %d files | %d dirs | %s | %.0f/sec | %s%s",
						spinner, p.Files, p.Dirs, humanize.Bytes(uint64(p.TotalBytes)), rate, elapsed, errStr)
				} else if scanProgress > 0 && time.Since(lastNonTTY) >= scanProgress {
					fmt.Fprintf(os.Stderr, "PROGRESS files=%d dirs=%d bytes=%s rate=%.0f/sec elapsed=%s errors=%d\n",
						p.Files, p.Dirs, humanize.Bytes(uint64(p.TotalBytes)), rate, elapsed, p.Errors)
					lastNonTTY = time.Now()
				}
			}
		}
	}()

	rootDir, scanErr := scanner.Run(ctx, root, t)
	close(progressDone)
	finishTime := time.Now()

	if isTTY {
		fmt.Fprintf(os.Stderr, "\r\033[K")
	}

	aborted := false
	if scanErr != nil {
		if !errors.Is(scanErr, context.Canceled) {
			return fmt.Errorf("scan failed: %w", scanErr)
		}
		aborted = true
		fmt.Fprintln(os.Stderr, "Scan canceled; partial results below.")
	}

	printSummary(rootDir, scanner.ErrorCount(), finishTime.Sub(startTime))

	if !scanNoHistory {
		if err := recordSession(cfg, root, rootDir, scanner, startTime, finishTime, aborted); err != nil {
			// History is best-effort; the scan itself succeeded.
			log.Warn().Err(err).Msg("failed to record scan history")
		}
	}

	return nil
}

func printSummary(root *tree.DirInfo, errorCount int64, elapsed time.Duration) {
	fmt.Printf("Scan completed in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Items:         %s\n", humanize.Comma(root.TotalItems()))
	fmt.Printf("  Files:         %s\n", humanize.Comma(root.TotalFiles()))
	fmt.Printf("  Directories:   %s\n", humanize.Comma(root.TotalSubDirs()))
	fmt.Printf("  Apparent size: %s\n", humanize.Bytes(uint64(root.TotalSize())))
	fmt.Printf("  Disk usage:    %s\n", humanize.Bytes(uint64(root.TotalBlocks())))
	if mtime := root.LatestMTime(); !mtime.IsZero() {
		fmt.Printf("  Latest mtime:  %s\n", mtime.Format(time.RFC3339))
	}
	if errorCount > 0 {
		fmt.Printf("  Errors:        %s\n", humanize.Comma(errorCount))
	}
	if !root.IsFinished() {
		fmt.Printf("  State:         incomplete (%s)\n", root.ReadState())
	}
}

func recordSession(cfg *config.Config, root string, rootDir *tree.DirInfo, scanner *scan.Scanner, start, finish time.Time, aborted bool) error {
	store, err := history.Open(cfg.HistoryDir, cfg.Retention)
	if err != nil {
		return err
	}
	defer store.Close()

	sess := history.Session{
		ID:          uuid.NewString(),
		Root:        root,
		StartedAt:   start,
		FinishedAt:  finish,
		TotalSize:   rootDir.TotalSize(),
		TotalBlocks: rootDir.TotalBlocks(),
		FileCount:   rootDir.TotalFiles(),
		DirCount:    rootDir.TotalSubDirs(),
		ItemCount:   rootDir.TotalItems(),
		ErrorCount:  scanner.ErrorCount(),
		Aborted:     aborted,
	}
	if err := store.Record(sess); err != nil {
		return err
	}
	return store.RecordErrors(sess.ID, scanner.SampledErrors())
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
