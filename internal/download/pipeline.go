// Package download pages through a repository's issues or pull requests
// and yields the items that carry exactly one area label.
package download

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/Kavirubc/gh-labeler/internal/github"
	"github.com/Kavirubc/gh-labeler/internal/labels"
	"github.com/Kavirubc/gh-labeler/internal/retry"
	"github.com/Kavirubc/gh-labeler/pkg/models"
)

const (
	// DefaultPageSize is the number of items requested per page.
	DefaultPageSize = github.MaxPageSize

	// DefaultPageLimit caps the pages fetched per repository and kind.
	DefaultPageLimit = 1000
)

// DefaultRetries is the backoff schedule for failed page fetches
var DefaultRetries = retry.Seconds(30, 30, 300, 300, 3000, 3000)

// ErrNoFilter is reported when a download is started without a label filter
var ErrNoFilter = errors.New("download requires a label filter")

// Fetcher loads one page of items after a cursor ("" for the first page)
type Fetcher[T models.Item] interface {
	FetchPage(ctx context.Context, org, repo string, pageSize int, after string) (*models.Page[T], error)
}

// Outcome describes why a download stopped
type Outcome string

const (
	OutcomeCompleted        Outcome = "completed"
	OutcomePageLimit        Outcome = "page limit"
	OutcomeItemLimit        Outcome = "item limit"
	OutcomeRetriesExhausted Outcome = "retries exhausted"
	OutcomeFatal            Outcome = "fatal"
	OutcomeStalledCursor    Outcome = "stalled cursor"
	OutcomeCanceled         Outcome = "canceled"
	OutcomeStopped          Outcome = "stopped"
)

// Aborted reports whether the download ended on a failure
func (o Outcome) Aborted() bool {
	switch o {
	case OutcomeRetriesExhausted, OutcomeFatal, OutcomeStalledCursor, OutcomeCanceled:
		return true
	}
	return false
}

// Summary is reported once when a download finishes
type Summary struct {
	Org      string
	Repo     string
	Pages    int
	Loaded   int
	Included int
	Total    int
	Outcome  Outcome
	// Err is the failure behind an aborted outcome.
	Err error
}

// Options controls a single download
type Options struct {
	Filter *labels.Filter
	// ItemLimit stops the download after this many yielded items. 0 means no limit.
	ItemLimit int
	PageSize  int
	// PageLimit stops the download after this many pages. 0 means no limit.
	PageLimit int
	// Retries is applied to consecutive failed fetches. An empty policy
	// gives up on the first failure.
	Retries retry.Policy
	Logger  *slog.Logger
	Sleep   retry.SleepFunc
	// Done receives the summary when the sequence stops producing values.
	Done func(Summary)
}

// Issues downloads the labeled issues of org/repo using c
func Issues(ctx context.Context, c *github.Client, org, repo string, opts Options) iter.Seq2[*models.Issue, string] {
	return Download(ctx, Fetcher[*models.Issue](c.IssuePages()), org, repo, opts)
}

// PullRequests downloads the labeled pull requests of org/repo using c
func PullRequests(ctx context.Context, c *github.Client, org, repo string, opts Options) iter.Seq2[*models.PullRequest, string] {
	return Download(ctx, Fetcher[*models.PullRequest](c.PullRequestPages()), org, repo, opts)
}

// Download returns a lazy sequence of (item, area label) pairs. Pages are
// fetched only as the consumer ranges over the sequence; breaking out of
// the loop stops further requests. Each call of the returned function
// starts a fresh download.
func Download[T models.Item](ctx context.Context, fetcher Fetcher[T], org, repo string, opts Options) iter.Seq2[T, string] {
	if opts.PageSize <= 0 || opts.PageSize > github.MaxPageSize {
		opts.PageSize = github.MaxPageSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Sleep == nil {
		opts.Sleep = retry.Sleep
	}

	return func(yield func(T, string) bool) {
		p := &pipeline[T]{
			fetcher: fetcher,
			opts:    opts,
			log:     opts.Logger.With("repo", org+"/"+repo),
			summary: Summary{Org: org, Repo: repo},
		}
		p.run(ctx, yield)
	}
}

// pipeline is the state of one download invocation
type pipeline[T models.Item] struct {
	fetcher Fetcher[T]
	opts    Options
	log     *slog.Logger

	after   string
	retry   int
	summary Summary
}

func (p *pipeline[T]) run(ctx context.Context, yield func(T, string) bool) {
	if p.opts.Filter == nil {
		p.finish(OutcomeFatal, ErrNoFilter)
		return
	}

	for {
		page, err := p.fetcher.FetchPage(ctx, p.summary.Org, p.summary.Repo, p.opts.PageSize, p.after)
		if err != nil {
			if !p.handleFailure(ctx, err) {
				return
			}
			continue
		}

		if page.EndCursor == p.after {
			if len(page.Nodes) == 0 && !page.HasNextPage {
				p.finish(OutcomeCompleted, nil)
			} else {
				p.finish(OutcomeStalledCursor, errors.New("pagination cursor did not advance"))
			}
			return
		}
		// A missing cursor would restart pagination from the first page.
		if page.HasNextPage && page.EndCursor == "" {
			p.finish(OutcomeStalledCursor, errors.New("next page reported without a cursor"))
			return
		}

		p.summary.Pages++
		p.summary.Loaded += len(page.Nodes)
		p.summary.Total = page.TotalCount
		p.after = page.EndCursor
		p.retry = 0

		limitReached := false
		for _, item := range page.Nodes {
			label, ok := p.eligible(item)
			if !ok {
				continue
			}

			p.summary.Included++
			if !yield(item, label) {
				p.finish(OutcomeStopped, nil)
				return
			}
			if p.opts.ItemLimit > 0 && p.summary.Included >= p.opts.ItemLimit {
				limitReached = true
				break
			}
		}

		p.log.Info("page downloaded",
			"page", p.summary.Pages,
			"included", p.summary.Included,
			"loaded", p.summary.Loaded,
			"total", p.summary.Total)

		switch {
		case limitReached:
			p.finish(OutcomeItemLimit, nil)
			return
		case !page.HasNextPage:
			p.finish(OutcomeCompleted, nil)
			return
		case p.opts.PageLimit > 0 && p.summary.Pages >= p.opts.PageLimit:
			p.finish(OutcomePageLimit, nil)
			return
		}
	}
}

// handleFailure handles a failed fetch. It returns true when the same page
// should be requested again.
func (p *pipeline[T]) handleFailure(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		p.finish(OutcomeCanceled, ctx.Err())
		return false
	}
	if retry.IsPermanent(err) {
		p.finish(OutcomeFatal, err)
		return false
	}

	delay, ok := p.opts.Retries.Delay(p.retry)
	if !ok {
		p.finish(OutcomeRetriesExhausted, err)
		return false
	}

	p.log.Warn("page fetch failed, retrying",
		"page", p.summary.Pages+1,
		"attempt", p.retry+1,
		"delay", delay,
		"error", err)

	if serr := p.opts.Sleep(ctx, delay); serr != nil {
		p.finish(OutcomeCanceled, serr)
		return false
	}
	p.retry++
	return true
}

// eligible returns the single area label of item
func (p *pipeline[T]) eligible(item T) (string, bool) {
	issue := item.Base()
	if issue.HasMoreLabels {
		p.log.Debug("skipping item", "number", issue.Number, "reason", "label list truncated")
		return "", false
	}

	matched := p.opts.Filter.Select(issue.Labels)
	switch len(matched) {
	case 1:
		return matched[0], true
	case 0:
		p.log.Debug("skipping item", "number", issue.Number, "reason", "no area label")
	default:
		p.log.Debug("skipping item", "number", issue.Number, "reason", "multiple area labels", "labels", matched)
	}
	return "", false
}

func (p *pipeline[T]) finish(outcome Outcome, err error) {
	p.summary.Outcome = outcome
	p.summary.Err = err

	if outcome.Aborted() {
		p.log.Error("download aborted",
			"outcome", string(outcome),
			"pages", p.summary.Pages,
			"included", p.summary.Included,
			"error", err)
	} else {
		p.log.Debug("download finished", "outcome", string(outcome), "pages", p.summary.Pages)
	}

	if p.opts.Done != nil {
		p.opts.Done(p.summary)
	}
}
