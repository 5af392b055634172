package processor

import (
	"context"
	"fmt"

	"github.com/Kavirubc/gh-labeler/internal/config"
	"github.com/Kavirubc/gh-labeler/internal/embedding"
	"github.com/Kavirubc/gh-labeler/internal/vectordb"
	"github.com/Kavirubc/gh-labeler/pkg/models"
)

// Searcher finds labeled corpus records near a query
type Searcher struct {
	embedder Embedder
	store    Store
	closers  []func() error
}

// NewSearcher creates a searcher backed by the configured embedding
// provider and Qdrant
func NewSearcher(cfg *config.Config) (*Searcher, error) {
	embedder, err := embedding.NewFallbackProvider(&cfg.Embedding)
	if err != nil {
		return nil, err
	}

	vdb, err := vectordb.NewClient(&cfg.Qdrant)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	s := newSearcher(embedder, vdb)
	s.closers = []func() error{embedder.Close, vdb.Close}
	return s, nil
}

func newSearcher(embedder Embedder, store Store) *Searcher {
	return &Searcher{embedder: embedder, store: store}
}

// Close releases resources
func (s *Searcher) Close() error {
	var err error
	for _, c := range s.closers {
		if cerr := c(); err == nil {
			err = cerr
		}
	}
	return err
}

// Search embeds free text and returns the nearest records of org/repo
func (s *Searcher) Search(ctx context.Context, org, repo, query string, limit int) ([]vectordb.Neighbor, error) {
	return s.search(ctx, org, repo, embedding.PrepareText(query, "", nil), limit, "")
}

// SearchItem returns the records nearest to an issue or pull request,
// restricted to records of the same kind
func (s *Searcher) SearchItem(ctx context.Context, item models.Item, limit int) ([]vectordb.Neighbor, error) {
	kind := "issue"
	if _, ok := item.(models.HasFiles); ok {
		kind = "pull"
	}
	issue := item.Base()
	return s.search(ctx, issue.Org, issue.Repo, embedding.PrepareItemText(item), limit, kind)
}

func (s *Searcher) search(ctx context.Context, org, repo, text string, limit int, kind string) ([]vectordb.Neighbor, error) {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	neighbors, err := s.store.Search(ctx, vectordb.CollectionName(org, repo), vector, limit, kind)
	if err != nil {
		return nil, err
	}
	return neighbors, nil
}
