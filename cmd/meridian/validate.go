package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"originate-hq/meridian/pkg/catalog"
	"originate-hq/meridian/pkg/rules"
)

var validateFlags struct {
	catalogRoot string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and compile the question catalog without serving",
	Long: `Load the section and question descriptors, compile every criteria
string, and report counts. Exits non-zero with the offending file path on
the first error, exactly as startup would.

Examples:
  # Validate the default catalog location
  meridian validate

  # Validate an explicit tree
  meridian validate --catalog ./catalog`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.catalogRoot, "catalog", "./catalog", "catalog root directory")
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	engine := rules.NewEngine(rules.Options{Logger: logger})
	registry, err := catalog.Load(validateFlags.catalogRoot, engine, logger)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Catalog valid\n")
	fmt.Printf("  Sections:  %d\n", len(registry.Sections()))
	fmt.Printf("  Questions: %d\n", registry.QuestionCount())
	fmt.Printf("  Rules:     %d\n", engine.RuleCount())
	return nil
}
