package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/gh-labeler/internal/config"
	"github.com/Kavirubc/gh-labeler/internal/github"
	"github.com/Kavirubc/gh-labeler/internal/labels"
	"github.com/Kavirubc/gh-labeler/internal/llm"
	"github.com/Kavirubc/gh-labeler/internal/predict"
	"github.com/Kavirubc/gh-labeler/internal/processor"
	"github.com/Kavirubc/gh-labeler/pkg/models"
)

type predictFlags struct {
	repo            string
	numbers         []int
	event           string
	threshold       float64
	excludedAuthors string
	engine          string
	labelPrefix     string
	defaultLabel    string
}

func newPredictCmd() *cobra.Command {
	f := &predictFlags{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict and apply area labels",
		Long: `Predict an area label for issues and pull requests and apply it.

Items come from a GitHub Action event payload (--event, defaulting to
GITHUB_EVENT_PATH) or are fetched by --repo and --number.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.repo, "repo", "", "repository (owner/repo)")
	cmd.Flags().IntSliceVar(&f.numbers, "number", nil, "issue or pull request numbers")
	cmd.Flags().StringVar(&f.event, "event", os.Getenv("GITHUB_EVENT_PATH"), "path to a GitHub event payload")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0, "minimum prediction score (overrides config)")
	cmd.Flags().StringVar(&f.excludedAuthors, "excluded-authors", "", "comma separated authors to skip (overrides config)")
	cmd.Flags().StringVar(&f.engine, "engine", "", "prediction engine: llm or vector (overrides config)")
	cmd.Flags().StringVar(&f.labelPrefix, "label-prefix", "", "area label prefix (overrides config)")
	cmd.Flags().StringVar(&f.defaultLabel, "default-label", "", "label added when no prediction is confident (overrides config)")

	return cmd
}

func runPredict(cmd *cobra.Command, f *predictFlags) error {
	if len(f.numbers) > 0 && f.repo == "" {
		return errors.New("--number requires --repo")
	}
	if len(f.numbers) == 0 && f.event == "" {
		return errors.New("either --event or --repo with --number is required")
	}

	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	if err := f.apply(cmd, cfg); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	if err := reportConfigErrors(config.Validate(cfg)); err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	gh, err := github.NewClient(githubOptions(cfg))
	if err != nil {
		return err
	}
	defer gh.Close()

	org, repo, items, results, err := f.loadItems(ctx, gh)
	if err != nil {
		return err
	}
	total := len(items) + len(results)
	if total == 0 {
		fmt.Println("Nothing to label")
		return nil
	}
	if len(items) == 0 {
		return reportResults(results, total)
	}

	filter, err := filterFor(cfg, f.labelPrefix, org, repo)
	if err != nil {
		return err
	}

	predictor, closeFn, err := newPredictor(cfg, gh, filter)
	if err != nil {
		return err
	}
	defer closeFn()

	labeler, err := predict.NewLabeler(predictor, gh, predict.LabelerOptions{
		Filter:          filter,
		Threshold:       cfg.GetThreshold(org, repo),
		ExcludedAuthors: cfg.Predictor.ExcludedAuthors,
		DefaultLabel:    cfg.Predictor.DefaultLabel,
		DryRun:          dryRun,
	})
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Println("[DRY RUN] No labels will be changed")
	}

	results = append(results, labeler.LabelAll(ctx, items)...)
	return reportResults(results, total)
}

// reportResults prints every result and fails when any item failed
func reportResults(results []models.LabelResult, total int) error {
	failed := 0
	for _, result := range results {
		printResult(result)
		if result.Error != "" {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d items failed", failed, total)
	}
	return nil
}

func (f *predictFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("threshold") {
		if f.threshold < 0 || f.threshold > 1 {
			return errors.New("--threshold must be between 0 and 1")
		}
		cfg.Predictor.Threshold = f.threshold
		for i := range cfg.Repositories {
			cfg.Repositories[i].Threshold = 0
		}
	}
	if flags.Changed("excluded-authors") {
		cfg.Predictor.ExcludedAuthors = splitList(f.excludedAuthors)
	}
	if flags.Changed("engine") {
		if f.engine != config.EngineLLM && f.engine != config.EngineVector {
			return fmt.Errorf("--engine must be %q or %q", config.EngineLLM, config.EngineVector)
		}
		cfg.Predictor.Engine = f.engine
	}
	if flags.Changed("default-label") {
		cfg.Predictor.DefaultLabel = f.defaultLabel
	}
	return nil
}

type itemGetter interface {
	GetItem(ctx context.Context, org, repo string, number int) (models.Item, error)
}

// loadItems resolves the items to label. All items belong to one
// repository. Numbers that cannot be fetched come back as failed results.
func (f *predictFlags) loadItems(ctx context.Context, gh itemGetter) (string, string, []models.Item, []models.LabelResult, error) {
	if len(f.numbers) > 0 {
		org, repo, err := github.ParseRepo(f.repo)
		if err != nil {
			return "", "", nil, nil, err
		}
		items, failed := fetchItems(ctx, gh, org, repo, f.numbers)
		return org, repo, items, failed, nil
	}

	event, err := github.ParseEventFile(f.event)
	if err != nil {
		return "", "", nil, nil, err
	}

	item := event.ToItem()
	if item == nil {
		return "", "", nil, nil, errors.New("event carries no issue or pull request")
	}
	issue := item.Base()
	if !event.ShouldPredict() {
		fmt.Printf("Ignoring %q event for #%d\n", event.Action, issue.Number)
		return issue.Org, issue.Repo, nil, nil, nil
	}

	if _, ok := item.(models.HasFiles); ok {
		// The payload has no file list.
		item, err = gh.GetItem(ctx, issue.Org, issue.Repo, issue.Number)
		if err != nil {
			return "", "", nil, nil, fmt.Errorf("failed to get #%d: %w", issue.Number, err)
		}
	}
	return issue.Org, issue.Repo, []models.Item{item}, nil, nil
}

func fetchItems(ctx context.Context, gh itemGetter, org, repo string, numbers []int) ([]models.Item, []models.LabelResult) {
	var (
		items  []models.Item
		failed []models.LabelResult
	)
	for _, n := range numbers {
		item, err := gh.GetItem(ctx, org, repo, n)
		if err != nil {
			failed = append(failed, models.LabelResult{Number: n, Error: fmt.Sprintf("failed to get item: %v", err)})
			continue
		}
		items = append(items, item)
	}
	return items, failed
}

// newPredictor builds the configured engine and a func releasing its clients
func newPredictor(cfg *config.Config, gh *github.Client, filter *labels.Filter) (predict.Predictor, func(), error) {
	switch cfg.Predictor.Engine {
	case config.EngineLLM:
		provider, err := llm.NewProvider(&cfg.LLM)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create LLM provider: %w", err)
		}
		p := predict.NewLLMPredictor(provider, gh, filter, cfg.Predictor.Labels)
		return p, func() { _ = provider.Close() }, nil
	default:
		searcher, err := processor.NewSearcher(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create searcher: %w", err)
		}
		p := predict.NewVectorPredictor(searcher, cfg.Predictor.Neighbors)
		return p, func() { _ = searcher.Close() }, nil
	}
}

func printResult(r models.LabelResult) {
	switch {
	case r.Error != "":
		fmt.Printf("#%d: error: %s\n", r.Number, r.Error)
	case r.Skipped:
		fmt.Printf("#%d: skipped (%s)\n", r.Number, r.SkipReason)
	default:
		line := fmt.Sprintf("#%d: applied %s", r.Number, r.Applied)
		if r.Removed != "" {
			line += fmt.Sprintf(", removed %s", r.Removed)
		}
		fmt.Println(line)
	}
	for _, p := range r.Predictions {
		fmt.Printf("    %-30s %.2f\n", p.Label, p.Score)
	}
}
