// Package cmd - price command
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"advocacy-workers/internal/common/validation"
	"advocacy-workers/internal/pricing"
)

type priceOptions struct {
	file       string
	category   string
	strategy   string
	urgency    string
	violations int
	documents  int
	amount     float64
	docTypes   []string
	strict     bool
}

func newPriceCmd(root *rootOptions) *cobra.Command {
	opts := &priceOptions{}

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Quote a case price",
		Long: `Compute the suggested price, tier and breakdown for a case.

Signals come from --file (YAML or JSON) and/or flags. Flags override
values read from the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrice(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "pricing input file (yaml or json)")
	f.StringVar(&opts.category, "category", "", "case category (eviction, debt, consumer, irs, ...)")
	f.StringVar(&opts.strategy, "strategy", "", "strategy level (basic, multi_step, case_building, ...)")
	f.StringVar(&opts.urgency, "urgency", "", "urgency (standard, week_left, few_days, immediate)")
	f.IntVar(&opts.violations, "violations", 0, "number of violations")
	f.IntVar(&opts.documents, "documents", 0, "number of documents")
	f.Float64Var(&opts.amount, "amount", 0, "amount at stake in dollars")
	f.StringSliceVar(&opts.docTypes, "doc-type", nil, "document tag (court, gov_notice, medical, contract); repeatable")
	f.BoolVar(&opts.strict, "strict", false, "reject input that fails schema validation")
	return cmd
}

func runPrice(cmd *cobra.Command, root *rootOptions, opts *priceOptions) error {
	var input pricing.Input
	if opts.file != "" {
		if err := readDocument(opts.file, &input); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("category") {
		input.Category = pricing.Category(opts.category)
	}
	if flags.Changed("strategy") {
		input.StrategyLevel = pricing.Strategy(opts.strategy)
	}
	if flags.Changed("urgency") {
		input.Urgency = pricing.Urgency(opts.urgency)
	}
	if flags.Changed("violations") {
		input.ViolationsCount = opts.violations
	}
	if flags.Changed("documents") {
		input.DocumentsCount = opts.documents
	}
	if flags.Changed("amount") {
		input.AmountAtStake = opts.amount
	}
	if flags.Changed("doc-type") {
		input.DocumentTypes = opts.docTypes
	}

	input = input.Normalize()
	result, err := validation.MustLoad(validation.SchemaPricingInput).Validate(input)
	if err != nil {
		return fmt.Errorf("validate input: %w", err)
	}
	if !result.Valid {
		messages := result.GetErrorMessages()
		if opts.strict {
			return fmt.Errorf("invalid pricing input: %s", strings.Join(messages, "; "))
		}
		root.log.Warn("pricing input outside schema, unknown values price at their defaults", map[string]interface{}{
			"violations": messages,
		})
	}

	return writeJSON(cmd.OutOrStdout(), pricing.Calculate(input))
}
