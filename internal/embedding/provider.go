package embedding

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Kavirubc/gh-labeler/internal/corpus"
	"github.com/Kavirubc/gh-labeler/pkg/models"
)

// maxTextLen keeps inputs around 1500 tokens
const maxTextLen = 6000

// Provider defines the interface for embedding generation
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// PrepareText combines title, body and changed folders for embedding.
// Corpus records and live items must go through the same function so
// their vectors are comparable.
func PrepareText(title, body string, folders []string) string {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(title)
	b.WriteString("\n\nBody: ")
	b.WriteString(CleanText(body))
	if len(folders) > 0 {
		b.WriteString("\n\nFolders: ")
		b.WriteString(strings.Join(folders, " "))
	}
	return TruncateText(b.String(), maxTextLen)
}

// PrepareItemText prepares an issue or pull request fetched from GitHub
func PrepareItemText(item models.Item) string {
	issue := item.Base()
	var folders []string
	if hf, ok := item.(models.HasFiles); ok {
		folders = corpus.FolderNames(hf.Files())
	}
	return PrepareText(corpus.Sanitize(issue.Title), corpus.Sanitize(issue.Body), folders)
}

// PrepareRecordText prepares a corpus record
func PrepareRecordText(rec corpus.Record) string {
	return PrepareText(rec.Title, rec.Body, rec.FolderNames)
}

// TruncateText truncates text to at most maxLen bytes without splitting a rune
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// CleanText removes blank lines and surrounding whitespace
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
