package predict

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/gh-labeler/internal/labels"
	"github.com/Kavirubc/gh-labeler/internal/vectordb"
	"github.com/Kavirubc/gh-labeler/pkg/models"
)

func areaFilter(t *testing.T) *labels.Filter {
	t.Helper()
	f, err := labels.NewPrefixFilter("area-")
	require.NoError(t, err)
	return f
}

type fakeSearcher struct {
	neighbors []vectordb.Neighbor
	err       error
	limit     int
}

func (f *fakeSearcher) SearchItem(_ context.Context, _ models.Item, limit int) ([]vectordb.Neighbor, error) {
	f.limit = limit
	return f.neighbors, f.err
}

func TestVectorPredictor(t *testing.T) {
	s := &fakeSearcher{neighbors: []vectordb.Neighbor{
		{Label: "area-net", Score: 0.9},
		{Label: "area-io", Score: 0.5},
		{Label: "area-net", Score: 0.6},
		{Label: "area-io", Score: -0.2},
		{Label: "", Score: 0.8},
	}}
	p := NewVectorPredictor(s, 5)

	preds, err := p.Predict(context.Background(), &models.Issue{})
	require.NoError(t, err)
	assert.Equal(t, 5, s.limit)

	require.Len(t, preds, 2)
	assert.Equal(t, "area-net", preds[0].Label)
	assert.InDelta(t, 0.75, preds[0].Score, 1e-9)
	assert.Equal(t, "area-io", preds[1].Label)
	assert.InDelta(t, 0.25, preds[1].Score, 1e-9)
}

func TestVectorPredictor_Empty(t *testing.T) {
	_, err := NewVectorPredictor(&fakeSearcher{}, 0).Predict(context.Background(), &models.Issue{})
	assert.ErrorIs(t, err, ErrNoNeighbors)

	boom := errors.New("qdrant down")
	_, err = NewVectorPredictor(&fakeSearcher{err: boom}, 0).Predict(context.Background(), &models.Issue{})
	assert.ErrorIs(t, err, boom)
}

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) CompleteJSON(_ context.Context, _, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) Close() error { return nil }

type fakeLister struct {
	names []string
	calls int
}

func (f *fakeLister) ListLabels(context.Context, string, string) ([]string, error) {
	f.calls++
	return f.names, nil
}

func TestLLMPredictor(t *testing.T) {
	provider := &fakeLLM{response: "```json\n" + `{"predictions": [
		{"label": "area-io", "confidence": 0.4},
		{"label": "AREA-NET", "confidence": 1.7},
		{"label": "bug", "confidence": 0.9},
		{"label": "area-unknown", "confidence": 0.8}
	]}` + "\n```"}
	lister := &fakeLister{names: []string{"bug", "area-net", "area-io", "needs-triage"}}
	p := NewLLMPredictor(provider, lister, areaFilter(t), nil)

	pr := &models.PullRequest{
		Issue:     models.Issue{Org: "org", Repo: "repo", Title: "Socket leak"},
		FileNames: []string{"src/net/socket.go"},
	}
	preds, err := p.Predict(context.Background(), pr)
	require.NoError(t, err)

	assert.Equal(t, []models.Prediction{
		{Label: "area-net", Score: 1},
		{Label: "area-io", Score: 0.4},
	}, preds)
	assert.Contains(t, provider.prompts[0], "Pull request title: Socket leak")
	assert.Contains(t, provider.prompts[0], "Changed folders: src/net")
	assert.Contains(t, provider.prompts[0], "Available labels: area-net, area-io")

	_, err = p.Predict(context.Background(), pr)
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls, "candidates are cached per repository")
}

func TestLLMPredictor_ConfiguredLabels(t *testing.T) {
	provider := &fakeLLM{response: `{"predictions": [{"label": "area-ui", "confidence": 0.7}]}`}
	lister := &fakeLister{}
	p := NewLLMPredictor(provider, lister, areaFilter(t), []string{"area-ui", "other"})

	preds, err := p.Predict(context.Background(), &models.Issue{Org: "o", Repo: "r"})
	require.NoError(t, err)
	assert.Equal(t, []models.Prediction{{Label: "area-ui", Score: 0.7}}, preds)
	assert.Zero(t, lister.calls)
	assert.Contains(t, provider.prompts[0], "Issue title:")
}

func TestLLMPredictor_Errors(t *testing.T) {
	_, err := NewLLMPredictor(&fakeLLM{}, &fakeLister{names: []string{"bug"}}, areaFilter(t), nil).
		Predict(context.Background(), &models.Issue{})
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = NewLLMPredictor(&fakeLLM{response: "not json"}, &fakeLister{}, areaFilter(t), []string{"area-a"}).
		Predict(context.Background(), &models.Issue{})
	assert.ErrorContains(t, err, "failed to parse")

	_, err = NewLLMPredictor(&fakeLLM{err: errors.New("rate limited")}, &fakeLister{}, areaFilter(t), []string{"area-a"}).
		Predict(context.Background(), &models.Issue{})
	assert.ErrorContains(t, err, "rate limited")
}

type stubPredictor struct {
	preds []models.Prediction
	err   error
	calls int
}

func (s *stubPredictor) Predict(context.Context, models.Item) ([]models.Prediction, error) {
	s.calls++
	return s.preds, s.err
}

type mutation struct {
	op     string
	number int
	label  string
}

type fakeMutator struct {
	ops    []mutation
	addErr error
}

func (f *fakeMutator) AddLabel(_ context.Context, _, _ string, number int, label string) error {
	f.ops = append(f.ops, mutation{"add", number, label})
	return f.addErr
}

func (f *fakeMutator) RemoveLabel(_ context.Context, _, _ string, number int, label string) error {
	f.ops = append(f.ops, mutation{"remove", number, label})
	return nil
}

func TestLabeler_Label(t *testing.T) {
	tests := []struct {
		name    string
		issue   *models.Issue
		preds   []models.Prediction
		predErr error
		opts    LabelerOptions
		want    models.LabelResult
		ops     []mutation
	}{
		{
			name:  "applies confident label and removes default",
			issue: &models.Issue{Number: 1, Labels: []string{"untriaged"}},
			preds: []models.Prediction{{Label: "area-net", Score: 0.8}},
			opts:  LabelerOptions{Threshold: 0.4, DefaultLabel: "untriaged"},
			want: models.LabelResult{
				Number:      1,
				Predictions: []models.Prediction{{Label: "area-net", Score: 0.8}},
				Applied:     "area-net",
				Removed:     "untriaged",
			},
			ops: []mutation{{"add", 1, "area-net"}, {"remove", 1, "untriaged"}},
		},
		{
			name:  "skips predictions outside the namespace",
			issue: &models.Issue{Number: 2},
			preds: []models.Prediction{{Label: "bug", Score: 0.99}, {Label: "area-io", Score: 0.5}},
			opts:  LabelerOptions{Threshold: 0.4},
			want: models.LabelResult{
				Number:      2,
				Predictions: []models.Prediction{{Label: "bug", Score: 0.99}, {Label: "area-io", Score: 0.5}},
				Applied:     "area-io",
			},
			ops: []mutation{{"add", 2, "area-io"}},
		},
		{
			name:  "below threshold adds default",
			issue: &models.Issue{Number: 3},
			preds: []models.Prediction{{Label: "area-io", Score: 0.2}},
			opts:  LabelerOptions{Threshold: 0.4, DefaultLabel: "untriaged"},
			want: models.LabelResult{
				Number:      3,
				Predictions: []models.Prediction{{Label: "area-io", Score: 0.2}},
				Applied:     "untriaged",
			},
			ops: []mutation{{"add", 3, "untriaged"}},
		},
		{
			name:  "below threshold without default",
			issue: &models.Issue{Number: 4},
			preds: []models.Prediction{{Label: "area-io", Score: 0.2}},
			opts:  LabelerOptions{Threshold: 0.4},
			want: models.LabelResult{
				Number:      4,
				Predictions: []models.Prediction{{Label: "area-io", Score: 0.2}},
				Skipped:     true,
				SkipReason:  SkipNoConfidence,
			},
		},
		{
			name:    "no neighbors falls back to default",
			issue:   &models.Issue{Number: 5},
			predErr: fmt.Errorf("search: %w", ErrNoNeighbors),
			opts:    LabelerOptions{Threshold: 0.4, DefaultLabel: "untriaged"},
			want:    models.LabelResult{Number: 5, Applied: "untriaged"},
			ops:     []mutation{{"add", 5, "untriaged"}},
		},
		{
			name:    "engine failure is reported",
			issue:   &models.Issue{Number: 6},
			predErr: errors.New("embedding quota exceeded"),
			opts:    LabelerOptions{Threshold: 0.4},
			want:    models.LabelResult{Number: 6, Error: "embedding quota exceeded"},
		},
		{
			name:  "excluded author",
			issue: &models.Issue{Number: 7, Author: "Dependabot[bot]"},
			opts:  LabelerOptions{ExcludedAuthors: []string{"dependabot[bot]"}},
			want:  models.LabelResult{Number: 7, Skipped: true, SkipReason: SkipExcludedAuthor},
		},
		{
			name:  "already labeled",
			issue: &models.Issue{Number: 8, Labels: []string{"Area-UI"}},
			want:  models.LabelResult{Number: 8, Skipped: true, SkipReason: SkipAlreadyLabeled},
		},
		{
			name:  "dry run writes nothing",
			issue: &models.Issue{Number: 9},
			preds: []models.Prediction{{Label: "area-net", Score: 0.9}},
			opts:  LabelerOptions{Threshold: 0.4, DryRun: true},
			want: models.LabelResult{
				Number:      9,
				Predictions: []models.Prediction{{Label: "area-net", Score: 0.9}},
				Applied:     "area-net",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutator := &fakeMutator{}
			tt.opts.Filter = areaFilter(t)
			l, err := NewLabeler(&stubPredictor{preds: tt.preds, err: tt.predErr}, mutator, tt.opts)
			require.NoError(t, err)

			got := l.Label(context.Background(), tt.issue)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ops, mutator.ops)
		})
	}
}

func TestLabeler_MutationFailureIsReported(t *testing.T) {
	mutator := &fakeMutator{addErr: errors.New("failed to add label \"area-net\": giving up after 4 attempts")}
	predictor := &stubPredictor{preds: []models.Prediction{{Label: "area-net", Score: 0.9}}}
	l, err := NewLabeler(predictor, mutator, LabelerOptions{Filter: areaFilter(t), Threshold: 0.5})
	require.NoError(t, err)

	results := l.LabelAll(context.Background(), []models.Item{
		&models.Issue{Number: 1},
		&models.PullRequest{Issue: models.Issue{Number: 2}},
	})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, r.Error, "giving up")
		assert.Empty(t, r.Applied)
	}
	assert.Equal(t, 2, predictor.calls)
}

func TestNewLabeler_RequiresFilter(t *testing.T) {
	_, err := NewLabeler(&stubPredictor{}, &fakeMutator{}, LabelerOptions{})
	assert.ErrorIs(t, err, labels.ErrEmptyPrefix)
}
