package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kavirubc/gh-labeler/internal/config"
	"github.com/Kavirubc/gh-labeler/internal/corpus"
	"github.com/Kavirubc/gh-labeler/internal/embedding"
	"github.com/Kavirubc/gh-labeler/internal/vectordb"
	"github.com/Kavirubc/gh-labeler/pkg/models"
)

// Embedder generates vectors for text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Store persists and searches labeled vectors
type Store interface {
	EnsureCollection(ctx context.Context, name string, dimensions int) error
	UpsertBatch(ctx context.Context, collection string, points []vectordb.Point) error
	Search(ctx context.Context, collection string, vector []float32, limit int, kind string) ([]vectordb.Neighbor, error)
}

// Indexer loads corpus files into a repository's label collection
type Indexer struct {
	embedder  Embedder
	store     Store
	batchSize int
	dryRun    bool
	closers   []func() error
}

// NewIndexer creates an indexer backed by the configured embedding
// provider and Qdrant
func NewIndexer(cfg *config.Config, dryRun bool) (*Indexer, error) {
	embedder, err := embedding.NewFallbackProvider(&cfg.Embedding)
	if err != nil {
		return nil, err
	}

	vdb, err := vectordb.NewClient(&cfg.Qdrant)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	idx := newIndexer(embedder, vdb, cfg.Index.BatchSize, dryRun)
	idx.closers = []func() error{embedder.Close, vdb.Close}
	return idx, nil
}

func newIndexer(embedder Embedder, store Store, batchSize int, dryRun bool) *Indexer {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Indexer{embedder: embedder, store: store, batchSize: batchSize, dryRun: dryRun}
}

// Close releases resources
func (idx *Indexer) Close() error {
	var err error
	for _, c := range idx.closers {
		if cerr := c(); err == nil {
			err = cerr
		}
	}
	return err
}

// IndexFile embeds every record of a corpus file into the collection
// of org/repo. Records repeated within the file are skipped; a failed
// batch is counted and indexing continues.
func (idx *Indexer) IndexFile(ctx context.Context, path, org, repo string) (*models.IndexStats, error) {
	start := time.Now()

	records, kind, err := corpus.ReadFile(path)
	if err != nil {
		return nil, err
	}

	stats := &models.IndexStats{TotalRecords: len(records)}
	collection := vectordb.CollectionName(org, repo)
	log := slog.With("collection", collection, "file", path)

	if !idx.dryRun {
		if err := idx.store.EnsureCollection(ctx, collection, idx.embedder.Dimensions()); err != nil {
			return nil, fmt.Errorf("failed to ensure collection: %w", err)
		}
	}

	seen := make(map[string]struct{}, len(records))
	batch := make([]vectordb.Point, 0, idx.batchSize)
	texts := make([]string, 0, idx.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := idx.indexBatch(ctx, collection, batch, texts); err != nil {
			log.Warn("batch failed", "records", len(batch), "error", err)
			stats.Errors += len(batch)
		} else {
			stats.Indexed += len(batch)
			log.Info("indexed records", "indexed", stats.Indexed, "total", stats.TotalRecords)
		}
		batch = batch[:0]
		texts = texts[:0]
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if rec.Label == "" {
			stats.Skipped++
			continue
		}

		text := embedding.PrepareRecordText(rec)
		id := models.RecordUUID(collection, rec.Label, text)
		if _, dup := seen[id]; dup {
			stats.Skipped++
			continue
		}
		seen[id] = struct{}{}

		batch = append(batch, vectordb.Point{ID: id, Label: rec.Label, Title: rec.Title, Kind: kind.String()})
		texts = append(texts, text)
		if len(batch) == idx.batchSize {
			flush()
		}
	}
	flush()

	stats.DurationMs = int(time.Since(start).Milliseconds())
	return stats, nil
}

// indexBatch embeds and upserts one batch of points
func (idx *Indexer) indexBatch(ctx context.Context, collection string, points []vectordb.Point, texts []string) error {
	if idx.dryRun {
		return nil
	}

	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vectors) != len(points) {
		return fmt.Errorf("got %d embeddings for %d records", len(vectors), len(points))
	}

	for i := range points {
		points[i].Vector = vectors[i]
	}

	if err := idx.store.UpsertBatch(ctx, collection, points); err != nil {
		return fmt.Errorf("failed to upsert batch: %w", err)
	}
	return nil
}
