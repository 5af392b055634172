package predict

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Kavirubc/gh-labeler/internal/labels"
	"github.com/Kavirubc/gh-labeler/pkg/models"
)

// Skip reasons reported in LabelResult.SkipReason
const (
	SkipExcludedAuthor = "excluded author"
	SkipAlreadyLabeled = "already labeled"
	SkipNoConfidence   = "no confident prediction"
)

// Mutator applies label changes to GitHub
type Mutator interface {
	AddLabel(ctx context.Context, org, repo string, number int, label string) error
	RemoveLabel(ctx context.Context, org, repo string, number int, label string) error
}

// LabelerOptions configures a Labeler
type LabelerOptions struct {
	Filter          *labels.Filter
	Threshold       float64
	ExcludedAuthors []string
	// DefaultLabel marks items awaiting an area label. Empty disables it.
	DefaultLabel string
	DryRun       bool
	Logger       *slog.Logger
}

// Labeler predicts and applies one area label per item
type Labeler struct {
	predictor Predictor
	mutator   Mutator
	opts      LabelerOptions
	excluded  map[string]struct{}
}

// NewLabeler creates a labeler. A filter is required.
func NewLabeler(predictor Predictor, mutator Mutator, opts LabelerOptions) (*Labeler, error) {
	if opts.Filter == nil {
		return nil, labels.ErrEmptyPrefix
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	excluded := make(map[string]struct{}, len(opts.ExcludedAuthors))
	for _, a := range opts.ExcludedAuthors {
		if a = strings.TrimSpace(a); a != "" {
			excluded[strings.ToLower(a)] = struct{}{}
		}
	}

	return &Labeler{predictor: predictor, mutator: mutator, opts: opts, excluded: excluded}, nil
}

// Label predicts an area label for item and applies it. Failures are
// reported in the result so callers can move on to the next item.
func (l *Labeler) Label(ctx context.Context, item models.Item) models.LabelResult {
	issue := item.Base()
	result := models.LabelResult{Number: issue.Number}
	log := l.opts.Logger.With("repo", issue.FullRepo(), "number", issue.Number)

	if _, ok := l.excluded[strings.ToLower(issue.Author)]; ok {
		return skip(result, SkipExcludedAuthor)
	}
	if existing := l.opts.Filter.Select(issue.Labels); len(existing) > 0 {
		log.Debug("item already has an area label", "labels", existing)
		return skip(result, SkipAlreadyLabeled)
	}

	preds, err := l.predictor.Predict(ctx, item)
	switch {
	case isNoPrediction(err):
		log.Debug("engine returned no prediction", "error", err)
	case err != nil:
		result.Error = err.Error()
		return result
	}
	result.Predictions = preds

	best, ok := l.best(preds)
	if ok && best.Score >= l.opts.Threshold {
		log.Info("applying label", "label", best.Label, "score", best.Score, "dry_run", l.opts.DryRun)
		if err := l.add(ctx, issue, best.Label); err != nil {
			result.Error = err.Error()
			return result
		}
		result.Applied = best.Label

		if l.opts.DefaultLabel != "" && issue.HasLabel(l.opts.DefaultLabel) {
			if err := l.remove(ctx, issue, l.opts.DefaultLabel); err != nil {
				result.Error = err.Error()
				return result
			}
			result.Removed = l.opts.DefaultLabel
		}
		return result
	}

	log.Info("no confident prediction", "best", best.Label, "score", best.Score, "threshold", l.opts.Threshold)
	if l.opts.DefaultLabel == "" || issue.HasLabel(l.opts.DefaultLabel) {
		return skip(result, SkipNoConfidence)
	}
	if err := l.add(ctx, issue, l.opts.DefaultLabel); err != nil {
		result.Error = err.Error()
		return result
	}
	result.Applied = l.opts.DefaultLabel
	return result
}

// LabelAll labels every item, continuing past failures
func (l *Labeler) LabelAll(ctx context.Context, items []models.Item) []models.LabelResult {
	results := make([]models.LabelResult, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			results = append(results, models.LabelResult{Number: item.Base().Number, Error: err.Error()})
			continue
		}
		results = append(results, l.Label(ctx, item))
	}
	return results
}

// best returns the highest prediction inside the filter's namespace
func (l *Labeler) best(preds []models.Prediction) (models.Prediction, bool) {
	for _, p := range preds {
		if l.opts.Filter.Matches(p.Label) {
			return p, true
		}
	}
	return models.Prediction{}, false
}

func (l *Labeler) add(ctx context.Context, issue *models.Issue, label string) error {
	if l.opts.DryRun {
		return nil
	}
	return l.mutator.AddLabel(ctx, issue.Org, issue.Repo, issue.Number, label)
}

func (l *Labeler) remove(ctx context.Context, issue *models.Issue, label string) error {
	if l.opts.DryRun {
		return nil
	}
	return l.mutator.RemoveLabel(ctx, issue.Org, issue.Repo, issue.Number, label)
}

func skip(result models.LabelResult, reason string) models.LabelResult {
	result.Skipped = true
	result.SkipReason = reason
	return result
}

// isNoPrediction reports whether err means the engine had nothing to offer
func isNoPrediction(err error) bool {
	return errors.Is(err, ErrNoNeighbors) || errors.Is(err, ErrNoCandidates)
}
