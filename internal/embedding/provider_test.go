package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/gh-labeler/internal/corpus"
	"github.com/Kavirubc/gh-labeler/pkg/models"
)

func TestPrepareText(t *testing.T) {
	assert.Equal(t, "Title: Crash\n\nBody: line one\nline two", PrepareText("Crash", "  line one\n\n  line two \n", nil))
	assert.Equal(t, "Title: Fix\n\nBody: \n\nFolders: src/a docs", PrepareText("Fix", "", []string{"src/a", "docs"}))

	long := PrepareText(strings.Repeat("x", 7000), "", nil)
	assert.Len(t, long, maxTextLen+len("..."))
}

func TestPrepareItemText_MatchesRecord(t *testing.T) {
	pr := &models.PullRequest{
		Issue:     models.Issue{Title: "Fix\t\"parser\"", Body: "Body\nmore"},
		FileNames: []string{"src/parser/lex.go", "README.md"},
	}
	rec := corpus.Record{
		Label:       "area-parser",
		Title:       corpus.Sanitize(pr.Title),
		Body:        corpus.Sanitize(pr.Body),
		FolderNames: []string{"src/parser"},
	}

	assert.Equal(t, PrepareRecordText(rec), PrepareItemText(pr))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "ab...", TruncateText("abcdef", 2))
	// Never split the two-byte rune at index 1.
	assert.Equal(t, "a...", TruncateText("aéb", 2))
}

type stubProvider struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubProvider) Embed(context.Context, string) ([]float32, error) {
	s.calls++
	return s.vec, s.err
}

func (s *stubProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = s.vec
	}
	return out, nil
}

func (s *stubProvider) Dimensions() int { return len(s.vec) }
func (s *stubProvider) Close() error    { return nil }

func TestFallbackProvider(t *testing.T) {
	primary := &stubProvider{err: errors.New("quota exceeded")}
	fallback := &stubProvider{vec: []float32{1, 2}}

	p := newFallbackProvider(primary, fallback)
	vec, err := p.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)

	vecs, err := p.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, 2, primary.calls)

	_, err = newFallbackProvider(primary, nil).Embed(context.Background(), "text")
	assert.ErrorContains(t, err, "no fallback")
}
