package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/dirstat/internal/config"
	"github.com/michaelscutari/dirstat/internal/history"
	"github.com/michaelscutari/dirstat/internal/pathutil"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded scan sessions",
	Long:  `List past scan sessions from the history database, newest first.`,
	RunE:  runHistory,
}

var (
	historyDir   string
	historyLimit int
)

func init() {
	historyCmd.Flags().StringVar(&historyDir, "history-dir", "", "Directory for the history database")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of sessions to list")
}

func openHistory(dir string) (*history.Store, error) {
	if dir == "" {
		cfg, err := config.Load("")
		if err != nil {
			return nil, err
		}
		dir = cfg.HistoryDir
	} else {
		dir = pathutil.ExpandHome(dir)
	}
	return history.Open(dir, 0)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory(historyDir)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	sessions, err := store.Sessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No scan sessions recorded.")
		return nil
	}
	if historyLimit > 0 && len(sessions) > historyLimit {
		sessions = sessions[:historyLimit]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tSTART\tAPPARENT\tDISK\tFILES\tDIRS\tERRORS\tROOT\n")
	for _, s := range sessions {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		if s.Aborted {
			id += "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			id,
			s.StartedAt.Format(time.RFC3339),
			humanize.Bytes(uint64(s.TotalSize)),
			humanize.Bytes(uint64(s.TotalBlocks)),
			humanize.Comma(s.FileCount),
			humanize.Comma(s.DirCount),
			humanize.Comma(s.ErrorCount),
			s.Root,
		)
	}
	w.Flush()
	fmt.Println("\n* = aborted")

	return nil
}
