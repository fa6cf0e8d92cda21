package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dirstat",
	Short: "A directory tree profiler with lazy aggregate summaries",
	Long: `dirstat scans a directory tree into an in-memory model with
incrementally maintained size, count, and mtime aggregates, and keeps
a history of scan sessions in SQLite.`,
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(infoCmd)
}
