// Package cmd - match command
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"advocacy-workers/internal/catalog"
	"advocacy-workers/internal/eligibility"
	"advocacy-workers/internal/report"
)

type matchOptions struct {
	profile  string
	catalog  string
	minScore int
	limit    int
	report   bool
}

type matchOutput struct {
	MatchCount    int                 `json:"matchCount"`
	MatchingScore int                 `json:"matchingScore"`
	Matches       []eligibility.Match `json:"matches"`
}

func newMatchCmd(root *rootOptions) *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a profile against the benefit program catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.profile, "profile", "p", "", "eligibility profile file (yaml or json) [REQUIRED]")
	f.StringVarP(&opts.catalog, "catalog", "c", "", "program catalog file; defaults to the reference catalog")
	f.IntVar(&opts.minScore, "min-score", eligibility.DefaultMinScore, "lowest score to report")
	f.IntVar(&opts.limit, "limit", 0, "return at most this many programs (0 = all)")
	f.BoolVar(&opts.report, "report", false, "print the markdown benefits report instead of JSON")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func runMatch(cmd *cobra.Command, root *rootOptions, opts *matchOptions) error {
	var profile eligibility.Profile
	if err := readDocument(opts.profile, &profile); err != nil {
		return err
	}

	programs, err := loadCatalog(cmd.Context(), opts.catalog)
	if err != nil {
		return err
	}

	matches := eligibility.NewMatcher(programs,
		eligibility.WithMinScore(opts.minScore),
		eligibility.WithLimit(opts.limit),
	).Match(profile)
	score := eligibility.AverageTopScore(matches, 3)

	root.log.Info("profile matched", map[string]interface{}{
		"catalogSize": len(programs),
		"matchCount":  len(matches),
	})

	if opts.report {
		body, err := report.BenefitsReport(report.ProfileSummary{MatchingScore: score, Profile: profile}, matches, time.Now())
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), body)
		return err
	}

	if matches == nil {
		matches = []eligibility.Match{}
	}
	return writeJSON(cmd.OutOrStdout(), matchOutput{
		MatchCount:    len(matches),
		MatchingScore: score,
		Matches:       matches,
	})
}

func loadCatalog(ctx context.Context, path string) ([]eligibility.Program, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var src catalog.Source = catalog.Reference()
	if path != "" {
		src = catalog.NewYAMLFile(path)
	}
	return src.Programs(ctx)
}
