package predict

import (
	"context"
	"errors"

	"github.com/Kavirubc/gh-labeler/internal/vectordb"
	"github.com/Kavirubc/gh-labeler/pkg/models"
)

// ErrNoNeighbors is returned when the collection has nothing near the item
var ErrNoNeighbors = errors.New("no labeled neighbors found")

// NeighborSearcher finds labeled corpus records near an item
type NeighborSearcher interface {
	SearchItem(ctx context.Context, item models.Item, limit int) ([]vectordb.Neighbor, error)
}

// VectorPredictor votes over the nearest labeled corpus records. Each
// label scores its share of the total neighbor similarity.
type VectorPredictor struct {
	searcher  NeighborSearcher
	neighbors int
}

// NewVectorPredictor creates a predictor consulting k neighbors
func NewVectorPredictor(searcher NeighborSearcher, k int) *VectorPredictor {
	if k <= 0 {
		k = 10
	}
	return &VectorPredictor{searcher: searcher, neighbors: k}
}

// Predict returns one prediction per label seen among the neighbors
func (p *VectorPredictor) Predict(ctx context.Context, item models.Item) ([]models.Prediction, error) {
	neighbors, err := p.searcher.SearchItem(ctx, item, p.neighbors)
	if err != nil {
		return nil, err
	}

	votes := make(map[string]float64)
	var total float64
	for _, n := range neighbors {
		if n.Label == "" || n.Score <= 0 {
			continue
		}
		votes[n.Label] += n.Score
		total += n.Score
	}
	if total == 0 {
		return nil, ErrNoNeighbors
	}

	preds := make([]models.Prediction, 0, len(votes))
	for label, score := range votes {
		preds = append(preds, models.Prediction{Label: label, Score: score / total})
	}
	sortPredictions(preds)
	return preds, nil
}
