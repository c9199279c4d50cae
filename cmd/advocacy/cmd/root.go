// Package cmd - root command
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"advocacy-workers/internal/common/logger"
)

type rootOptions struct {
	logLevel string
	log      logger.Logger
}

// NewRootCmd builds the command tree. A fresh tree is built per call so
// flag state never leaks between invocations.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "advocacy",
		Short: "Offline case pricing and benefits matching",
		Long: `Run the case pricing engine and the benefits eligibility matcher
locally, without a workflow engine or database.

Examples:
  advocacy price --file case.yaml
  advocacy price --category eviction --strategy multi_step --urgency few_days --violations 3
  advocacy match --profile profile.yaml
  advocacy match --profile profile.yaml --catalog configs/programs.yaml --report
  advocacy catalog
  advocacy workers`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.log = logger.NewStructured(opts.logLevel, "console")
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newPriceCmd(opts))
	root.AddCommand(newMatchCmd(opts))
	root.AddCommand(newCatalogCmd(opts))
	root.AddCommand(newWorkersCmd(opts))
	return root
}

// Execute runs the CLI against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// readDocument decodes a YAML or JSON file into v. JSON is read through the
// YAML decoder, which accepts it as a subset.
func readDocument(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
