package download

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Kavirubc/gh-labeler/internal/corpus"
	"github.com/Kavirubc/gh-labeler/internal/github"
	"github.com/Kavirubc/gh-labeler/internal/labels"
	"github.com/Kavirubc/gh-labeler/pkg/models"
)

// Source provides page fetchers. Each call returns a fetcher with its
// own client so concurrent streams share nothing.
type Source interface {
	Issues() (Fetcher[*models.Issue], error)
	PullRequests() (Fetcher[*models.PullRequest], error)
}

// GitHubSource creates a new GitHub client for every stream
type GitHubSource struct {
	Options github.Options
}

// Issues returns an issue fetcher backed by a fresh client
func (s GitHubSource) Issues() (Fetcher[*models.Issue], error) {
	c, err := github.NewClient(s.Options)
	if err != nil {
		return nil, err
	}
	return c.IssuePages(), nil
}

// PullRequests returns a pull request fetcher backed by a fresh client
func (s GitHubSource) PullRequests() (Fetcher[*models.PullRequest], error) {
	c, err := github.NewClient(s.Options)
	if err != nil {
		return nil, err
	}
	return c.PullRequestPages(), nil
}

// Target is one repository to download
type Target struct {
	Org    string
	Repo   string
	Filter *labels.Filter
}

// FullName returns org/repo
func (t Target) FullName() string {
	return t.Org + "/" + t.Repo
}

// Runner downloads repositories into corpus writers. Issues and pull
// requests of a repository are downloaded concurrently; repositories
// are processed in order.
type Runner struct {
	Source Source
	// IssueWriter and PullWriter may be nil to skip that kind.
	IssueWriter *corpus.Writer
	PullWriter  *corpus.Writer
	IssueLimit  int
	PullLimit   int
	// Options is the template for each stream. Filter, ItemLimit and
	// Done are set per stream.
	Options Options
	Logger  *slog.Logger
}

// Run downloads every target. A repository whose download aborts leaves
// partial output and the next repository continues. Only writer and
// client construction failures are returned as errors.
func (r *Runner) Run(ctx context.Context, targets []Target) ([]models.DownloadStats, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var stats []models.DownloadStats
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		logger.Info("downloading repository", "repo", t.FullName())
		repoStats, err := r.runTarget(ctx, t, logger)
		stats = append(stats, repoStats...)
		if err != nil {
			return stats, fmt.Errorf("%s: %w", t.FullName(), err)
		}
	}
	return stats, nil
}

func (r *Runner) runTarget(ctx context.Context, t Target, logger *slog.Logger) ([]models.DownloadStats, error) {
	var issueStats, pullStats *models.DownloadStats

	g, gctx := errgroup.WithContext(ctx)
	if r.IssueWriter != nil {
		g.Go(func() error {
			fetcher, err := r.Source.Issues()
			if err != nil {
				return fmt.Errorf("failed to create issue client: %w", err)
			}
			s, err := drain(gctx, fetcher, t, r.streamOptions(t, r.IssueLimit, logger), "issue", r.IssueWriter)
			issueStats = &s
			return err
		})
	}
	if r.PullWriter != nil {
		g.Go(func() error {
			fetcher, err := r.Source.PullRequests()
			if err != nil {
				return fmt.Errorf("failed to create pull request client: %w", err)
			}
			s, err := drain(gctx, fetcher, t, r.streamOptions(t, r.PullLimit, logger), "pull", r.PullWriter)
			pullStats = &s
			return err
		})
	}
	err := g.Wait()

	var stats []models.DownloadStats
	for _, s := range []*models.DownloadStats{issueStats, pullStats} {
		if s != nil {
			stats = append(stats, *s)
		}
	}
	return stats, err
}

func (r *Runner) streamOptions(t Target, limit int, logger *slog.Logger) Options {
	opts := r.Options
	opts.Filter = t.Filter
	opts.ItemLimit = limit
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return opts
}

// drain writes every yielded item to w and reports the stream's stats
func drain[T models.Item](
	ctx context.Context, fetcher Fetcher[T], t Target, opts Options, kind string, w *corpus.Writer,
) (models.DownloadStats, error) {
	var summary Summary
	opts.Done = func(s Summary) { summary = s }
	opts.Logger = opts.Logger.With("kind", kind)

	var writeErr error
	for item, label := range Download(ctx, fetcher, t.Org, t.Repo, opts) {
		if writeErr = w.Write(label, item); writeErr != nil {
			break
		}
	}
	if writeErr == nil {
		writeErr = w.Flush()
	}

	stats := models.DownloadStats{
		Repo:     t.FullName(),
		Kind:     kind,
		Pages:    summary.Pages,
		Loaded:   summary.Loaded,
		Included: summary.Included,
		Total:    summary.Total,
		Outcome:  string(summary.Outcome),
	}
	return stats, writeErr
}
