package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Kavirubc/gh-labeler/internal/corpus"
	"github.com/Kavirubc/gh-labeler/internal/embedding"
	"github.com/Kavirubc/gh-labeler/internal/labels"
	"github.com/Kavirubc/gh-labeler/internal/llm"
	"github.com/Kavirubc/gh-labeler/pkg/models"
)

// ErrNoCandidates is returned when no label is available to choose from
var ErrNoCandidates = errors.New("no candidate labels")

const classifySystem = `You are a triage assistant that assigns exactly one area label to GitHub issues and pull requests.
Choose only from the provided labels. Respond with a JSON object of the form
{"predictions": [{"label": "<label>", "confidence": <0-1>}]} listing at most three labels, most likely first.
Use low confidence when the text does not clearly belong to any area.`

// LabelLister lists a repository's labels
type LabelLister interface {
	ListLabels(ctx context.Context, org, repo string) ([]string, error)
}

// LLMPredictor asks a chat model to pick among the repository's area labels
type LLMPredictor struct {
	provider   llm.Provider
	lister     LabelLister
	filter     *labels.Filter
	configured []string
	candidates map[string][]string
}

// NewLLMPredictor creates a predictor. When configured is empty the
// candidates are the repository labels matching filter.
func NewLLMPredictor(provider llm.Provider, lister LabelLister, filter *labels.Filter, configured []string) *LLMPredictor {
	return &LLMPredictor{
		provider:   provider,
		lister:     lister,
		filter:     filter,
		configured: configured,
		candidates: make(map[string][]string),
	}
}

// Predict returns the model's suggestions restricted to candidate labels
func (p *LLMPredictor) Predict(ctx context.Context, item models.Item) ([]models.Prediction, error) {
	issue := item.Base()
	candidates, err := p.candidateLabels(ctx, issue.Org, issue.Repo)
	if err != nil {
		return nil, err
	}

	response, err := p.provider.CompleteJSON(ctx, classifySystem, buildPrompt(item, candidates))
	if err != nil {
		return nil, fmt.Errorf("LLM classification failed: %w", err)
	}

	return parsePredictions(response, candidates)
}

func (p *LLMPredictor) candidateLabels(ctx context.Context, org, repo string) ([]string, error) {
	key := org + "/" + repo
	if c, ok := p.candidates[key]; ok {
		return c, nil
	}

	names := p.configured
	if len(names) == 0 {
		listed, err := p.lister.ListLabels(ctx, org, repo)
		if err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}
		names = listed
	}

	candidates := p.filter.Select(names)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s: %w matching %q", key, ErrNoCandidates, p.filter.Prefix())
	}
	p.candidates[key] = candidates
	return candidates, nil
}

func buildPrompt(item models.Item, candidates []string) string {
	issue := item.Base()
	kind := "Issue"
	var folders []string
	if hf, ok := item.(models.HasFiles); ok {
		kind = "Pull request"
		folders = corpus.FolderNames(hf.Files())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s title: %s\n\n", kind, issue.Title)
	fmt.Fprintf(&b, "%s body:\n%s\n\n", kind, embedding.TruncateText(issue.Body, 4000))
	if len(folders) > 0 {
		fmt.Fprintf(&b, "Changed folders: %s\n\n", strings.Join(folders, ", "))
	}
	fmt.Fprintf(&b, "Available labels: %s\n\nReturn JSON only.", strings.Join(candidates, ", "))
	return b.String()
}

type llmAnswer struct {
	Predictions []struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	} `json:"predictions"`
}

// parsePredictions decodes the model answer. Labels outside candidates
// are dropped; names are matched case-insensitively and reported in
// their canonical spelling.
func parsePredictions(response string, candidates []string) ([]models.Prediction, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var answer llmAnswer
	if err := json.Unmarshal([]byte(response), &answer); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	canonical := make(map[string]string, len(candidates))
	for _, c := range candidates {
		canonical[strings.ToLower(c)] = c
	}

	seen := make(map[string]bool)
	var preds []models.Prediction
	for _, a := range answer.Predictions {
		name, ok := canonical[strings.ToLower(strings.TrimSpace(a.Label))]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		preds = append(preds, models.Prediction{Label: name, Score: min(max(a.Confidence, 0), 1)})
	}

	sortPredictions(preds)
	return preds, nil
}
