package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stepsurvey/steps-survey/internal/app"
	"github.com/stepsurvey/steps-survey/internal/config"
	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/logging"
	"github.com/stepsurvey/steps-survey/internal/repository"
	"github.com/stepsurvey/steps-survey/internal/service"
)

type rootOptions struct {
	configDir string
	timeout   time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "surveyctl",
		Short:         "Manage steps and energy survey entries",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configDir, "config", ".", "directory containing config.yaml and .env")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "deadline for storage operations")

	cmd.AddCommand(newAddCmd(opts), newEntriesCmd(opts), newSummaryCmd(opts))
	return cmd
}

// withApp opens the configured backends for the duration of fn.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.LoadConfig(opts.configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Log, cmd.ErrOrStderr())

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var in service.SubmissionInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Validate and store one entry",
		Example: `  surveyctl add --steps 7200 --energy 8 --notes "walked to work"
  surveyctl add --date 2024-01-01 --steps 3000 --energy 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				entry, err := a.SurveyService().Submit(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s steps=%d energy=%d\n", entry.DateString(), entry.Steps, entry.Energy)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Date, "date", time.Now().Format(domain.DateLayout), "entry date (YYYY-MM-DD)")
	f.StringVar(&in.Steps, "steps", "", "steps walked, digits only")
	f.StringVar(&in.Energy, "energy", "", "energy level 1-10")
	f.StringVar(&in.Notes, "notes", "", "free-text notes")
	_ = cmd.MarkFlagRequired("steps")
	_ = cmd.MarkFlagRequired("energy")
	return cmd
}

func newEntriesCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List stored entries in append order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				var (
					table domain.EntryTable
					err   error
				)
				if limit > 0 {
					table, err = a.SurveyService().Latest(ctx, limit)
				} else {
					table, err = a.SurveyService().Entries(ctx)
				}
				if errors.Is(err, repository.ErrEmptyStore) || (err == nil && len(table) == 0) {
					fmt.Fprintln(cmd.OutOrStdout(), "no entries stored yet")
					return nil
				}
				if err != nil {
					return err
				}
				return writeEntries(cmd.OutOrStdout(), table)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "only show the last n entries")
	return cmd
}

type summaryOptions struct {
	from, to           string
	minSteps, maxSteps int
	keyword            string
	threshold          int
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	so := &summaryOptions{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print energy frequencies for low and high exercise days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := so.query(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				res, err := a.ResultsService().Build(ctx, q)
				if err != nil {
					return err
				}
				return writeSummary(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&so.from, "from", "", "earliest date (YYYY-MM-DD)")
	f.StringVar(&so.to, "to", "", "latest date (YYYY-MM-DD)")
	f.IntVar(&so.minSteps, "min-steps", 0, "minimum steps")
	f.IntVar(&so.maxSteps, "max-steps", 0, "maximum steps")
	f.StringVar(&so.keyword, "keyword", "", "case-insensitive substring of notes")
	f.IntVar(&so.threshold, "threshold", 0, "low/high exercise split in steps (default from config)")
	return cmd
}

// query applies the filter only when at least one filter flag was given.
func (so *summaryOptions) query(cmd *cobra.Command) (service.ResultsQuery, error) {
	var q service.ResultsQuery
	f := cmd.Flags()
	if f.Changed("threshold") {
		if so.threshold < 0 {
			return q, errors.New("--threshold must not be negative")
		}
		q.Threshold = &so.threshold
	}

	in := &service.FilterInput{Keyword: so.keyword}
	applied := f.Changed("keyword")
	for _, d := range []struct {
		flag, raw string
		dst       **time.Time
	}{
		{"from", so.from, &in.DateStart},
		{"to", so.to, &in.DateEnd},
	} {
		if !f.Changed(d.flag) {
			continue
		}
		t, err := domain.ParseDate(d.raw)
		if err != nil {
			return q, fmt.Errorf("--%s: want YYYY-MM-DD, got %q", d.flag, d.raw)
		}
		*d.dst = &t
		applied = true
	}
	if f.Changed("min-steps") {
		in.MinSteps = &so.minSteps
		applied = true
	}
	if f.Changed("max-steps") {
		in.MaxSteps = &so.maxSteps
		applied = true
	}
	if applied {
		q.Filter = in
	}
	return q, nil
}

func writeEntries(w io.Writer, table domain.EntryTable) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSTEPS\tENERGY\tNOTES")
	for _, e := range table {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", e.DateString(), e.Steps, e.Energy, e.Notes)
	}
	return tw.Flush()
}

func writeSummary(w, errw io.Writer, res *service.Results) error {
	switch res.Status {
	case service.StatusNoData:
		_, err := fmt.Fprintln(w, "no survey data found yet")
		return err
	case service.StatusNoValidData:
		_, err := fmt.Fprintln(w, "no valid data available yet")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "rows\t%d\n", len(res.Rows))
	fmt.Fprintf(tw, "date range\t%s .. %s\n", res.Criteria.DateStart.Format(domain.DateLayout), res.Criteria.DateEnd.Format(domain.DateLayout))
	fmt.Fprintf(tw, "steps range\t%d .. %d\n", res.Criteria.MinSteps, res.Criteria.MaxSteps)
	if res.Criteria.Keyword != "" {
		fmt.Fprintf(tw, "keyword\t%q\n", res.Criteria.Keyword)
	}
	if !res.Report.Clean() {
		fmt.Fprintf(tw, "repaired rows\t%d coerced, %d dropped\n", res.Report.Coerced, res.Report.DroppedDate)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "CATEGORY\t< %d STEPS\t>= %d STEPS\n", res.Threshold, res.Threshold)
	low, high := countsByCategory(res)
	for _, c := range domain.EnergyCategories {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", c, low[c], high[c])
	}
	if res.ReferenceError != "" {
		fmt.Fprintf(errw, "warning: reference dataset unreadable: %s\n", res.ReferenceError)
	}
	return tw.Flush()
}

func countsByCategory(res *service.Results) (low, high map[domain.EnergyCategory]int) {
	low = make(map[domain.EnergyCategory]int)
	high = make(map[domain.EnergyCategory]int)
	for _, c := range res.LowFrequency {
		low[c.Category] = c.Count
	}
	for _, c := range res.HighFrequency {
		high[c.Category] = c.Count
	}
	return low, high
}
