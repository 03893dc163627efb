package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Meridian - question-evaluation engine for loan origination",
	Long: `Meridian serves the conversational mortgage-origination agent: it
evaluates compiled applicability rules against an application's working set
and returns the ordered question queue within a strict latency budget.

Answers mutate the cached loan state, are enqueued for durable write-back
to the system of record, and immediately produce a recomputed queue.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
