package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/gh-labeler/internal/config"
	"github.com/Kavirubc/gh-labeler/internal/corpus"
	"github.com/Kavirubc/gh-labeler/internal/download"
	"github.com/Kavirubc/gh-labeler/internal/github"
	"github.com/Kavirubc/gh-labeler/internal/retry"
)

type downloadFlags struct {
	repos       string
	labelPrefix string
	issueData   string
	pullData    string
	issueLimit  int
	pullLimit   int
	pageSize    int
	pageLimit   int
	retries     string
}

func newDownloadCmd() *cobra.Command {
	f := &downloadFlags{}

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download labeled issues and pull requests into TSV files",
		Long: `Download issues and pull requests that carry exactly one area label.
Items with no area label, several area labels or a truncated label list
are skipped (see --verbose). Issues and pull requests of a repository are
downloaded concurrently.`,
		Example: `  gh-labeler download --repo dotnet/runtime --label-prefix area- \
    --issue-data data/issues.tsv --pull-data data/pulls.tsv --issue-limit 10000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}

			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			targets, err := f.targets(cfg)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			return runDownload(cmd, cfg, targets)
		},
	}

	f.register(cmd)

	return cmd
}

func (f *downloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.repos, "repo", "", "repositories to download (org/repo[,org/repo...]); defaults to enabled config repositories")
	cmd.Flags().StringVar(&f.labelPrefix, "label-prefix", "", "area label prefix, e.g. area-")
	cmd.Flags().StringVar(&f.issueData, "issue-data", "", "output TSV path for issues")
	cmd.Flags().StringVar(&f.pullData, "pull-data", "", "output TSV path for pull requests")
	cmd.Flags().IntVar(&f.issueLimit, "issue-limit", 0, "maximum issues to write per repository (0 = no limit)")
	cmd.Flags().IntVar(&f.pullLimit, "pull-limit", 0, "maximum pull requests to write per repository (0 = no limit)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", download.DefaultPageSize, "items per page (max 100)")
	cmd.Flags().IntVar(&f.pageLimit, "page-limit", download.DefaultPageLimit, "maximum pages per repository and kind")
	cmd.Flags().StringVar(&f.retries, "retries", download.DefaultRetries.String(), "retry delays in seconds for failed pages")
}

// apply folds explicitly set flags over the config
func (f *downloadFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	d := &cfg.Download

	if flags.Changed("label-prefix") {
		d.LabelPrefix = f.labelPrefix
	}
	if flags.Changed("issue-data") {
		d.IssueData = f.issueData
	}
	if flags.Changed("pull-data") {
		d.PullData = f.pullData
	}
	if flags.Changed("issue-limit") {
		d.IssueLimit = f.issueLimit
	}
	if flags.Changed("pull-limit") {
		d.PullLimit = f.pullLimit
	}
	if flags.Changed("page-size") {
		d.PageSize = f.pageSize
	}
	if flags.Changed("page-limit") {
		d.PageLimit = f.pageLimit
	}
	if flags.Changed("retries") {
		p, err := retry.ParseSeconds(f.retries)
		if err != nil {
			return fmt.Errorf("--retries: %w", err)
		}
		cfg.GitHub.Retries = make([]int, p.Len())
		for i, delay := range p.Delays {
			cfg.GitHub.Retries[i] = int(delay.Seconds())
		}
	}

	switch {
	case d.IssueData == "" && d.PullData == "":
		return errors.New("at least one of --issue-data or --pull-data is required")
	case d.PageSize < 1 || d.PageSize > github.MaxPageSize:
		return fmt.Errorf("--page-size must be between 1 and %d", github.MaxPageSize)
	case d.PageLimit < 0 || d.IssueLimit < 0 || d.PullLimit < 0:
		return errors.New("limits must not be negative")
	}
	return nil
}

func (f *downloadFlags) targets(cfg *config.Config) ([]download.Target, error) {
	var names []string
	if f.repos != "" {
		names = splitList(f.repos)
	} else {
		for _, r := range cfg.EnabledRepositories() {
			names = append(names, r.FullName())
		}
	}
	if len(names) == 0 {
		return nil, errors.New("--repo is required")
	}

	targets := make([]download.Target, 0, len(names))
	for _, name := range names {
		org, repo, err := github.ParseRepo(name)
		if err != nil {
			return nil, err
		}
		filter, err := filterFor(cfg, f.labelPrefix, org, repo)
		if err != nil {
			return nil, err
		}
		targets = append(targets, download.Target{Org: org, Repo: repo, Filter: filter})
	}
	return targets, nil
}

func runDownload(cmd *cobra.Command, cfg *config.Config, targets []download.Target) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	runner := &download.Runner{
		Source:     download.GitHubSource{Options: githubOptions(cfg)},
		IssueLimit: cfg.Download.IssueLimit,
		PullLimit:  cfg.Download.PullLimit,
		Options: download.Options{
			PageSize:  cfg.Download.PageSize,
			PageLimit: cfg.Download.PageLimit,
			Retries:   cfg.RetryPolicy(),
		},
	}

	var writers []*corpus.Writer
	defer func() {
		for _, w := range writers {
			w.Close()
		}
	}()

	if path := cfg.Download.IssueData; path != "" {
		w, err := corpus.Create(path, corpus.Issues)
		if err != nil {
			return err
		}
		writers = append(writers, w)
		runner.IssueWriter = w
	}
	if path := cfg.Download.PullData; path != "" {
		w, err := corpus.Create(path, corpus.PullRequests)
		if err != nil {
			return err
		}
		writers = append(writers, w)
		runner.PullWriter = w
	}

	stats, runErr := runner.Run(ctx, targets)

	for _, w := range writers {
		if err := w.Close(); err != nil && runErr == nil {
			runErr = fmt.Errorf("failed to close output: %w", err)
		}
	}
	writers = nil

	fmt.Println()
	for _, s := range stats {
		fmt.Printf("%s %-5s  included %d of %d loaded (%d total) in %d pages: %s\n",
			s.Repo, s.Kind, s.Included, s.Loaded, s.Total, s.Pages, s.Outcome)
	}
	if runner.IssueWriter != nil {
		fmt.Printf("Wrote %d issues to %s\n", runner.IssueWriter.Count(), cfg.Download.IssueData)
	}
	if runner.PullWriter != nil {
		fmt.Printf("Wrote %d pull requests to %s\n", runner.PullWriter.Count(), cfg.Download.PullData)
	}

	return runErr
}
