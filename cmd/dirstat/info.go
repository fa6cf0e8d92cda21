package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/dirstat/internal/history"
)

var infoCmd = &cobra.Command{
	Use:   "info [session-id]",
	Short: "Display details of a scan session",
	Long:  `Print full details of a recorded scan session. Without an argument, shows the most recent session.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfo,
}

var (
	infoDir    string
	infoErrors int
)

func init() {
	infoCmd.Flags().StringVar(&infoDir, "history-dir", "", "Directory for the history database")
	infoCmd.Flags().IntVar(&infoErrors, "errors", 10, "Maximum number of scan errors to show (0 to hide)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	store, err := openHistory(infoDir)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	var sess *history.Session
	if len(args) == 1 {
		sess, err = findSession(store, args[0])
	} else {
		sess, err = store.Latest()
	}
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Println("No scan sessions recorded.")
		return nil
	}

	duration := sess.FinishedAt.Sub(sess.StartedAt)

	fmt.Printf("Scan Session\n")
	fmt.Printf("============\n\n")
	fmt.Printf("ID:            %s\n", sess.ID)
	fmt.Printf("Root Path:     %s\n", sess.Root)
	fmt.Printf("Start Time:    %s\n", sess.StartedAt.Format(time.RFC3339))
	fmt.Printf("End Time:      %s\n", sess.FinishedAt.Format(time.RFC3339))
	fmt.Printf("Duration:      %s\n", duration.Round(time.Millisecond))
	if sess.Aborted {
		fmt.Printf("Status:        aborted\n")
	}
	fmt.Printf("\nStatistics\n")
	fmt.Printf("----------\n")
	fmt.Printf("Items:         %s\n", humanize.Comma(sess.ItemCount))
	fmt.Printf("Files:         %s\n", humanize.Comma(sess.FileCount))
	fmt.Printf("Directories:   %s\n", humanize.Comma(sess.DirCount))
	fmt.Printf("Apparent Size: %s\n", humanize.Bytes(uint64(sess.TotalSize)))
	fmt.Printf("Disk Usage:    %s\n", humanize.Bytes(uint64(sess.TotalBlocks)))
	if sess.ErrorCount > 0 {
		fmt.Printf("Errors:        %s\n", humanize.Comma(sess.ErrorCount))

		if infoErrors > 0 {
			errs, err := store.Errors(sess.ID, infoErrors)
			if err != nil {
				return fmt.Errorf("failed to load errors: %w", err)
			}
			if len(errs) > 0 {
				fmt.Printf("\nSampled Errors\n")
				fmt.Printf("--------------\n")
				for _, e := range errs {
					fmt.Printf("%s: %s\n", e.Path, e.Message)
				}
			}
		}
	}

	return nil
}

// findSession resolves a full or prefix session ID.
func findSession(store *history.Store, id string) (*history.Session, error) {
	sessions, err := store.Sessions()
	if err != nil {
		return nil, err
	}
	var match *history.Session
	for i := range sessions {
		if strings.HasPrefix(sessions[i].ID, id) {
			if match != nil {
				return nil, fmt.Errorf("session ID %q is ambiguous", id)
			}
			match = &sessions[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no session matching %q", id)
	}
	return match, nil
}
