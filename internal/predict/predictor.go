// Package predict suggests area labels for issues and pull requests and
// applies them back to GitHub.
package predict

import (
	"context"
	"sort"

	"github.com/Kavirubc/gh-labeler/pkg/models"
)

// Predictor scores candidate labels for an item. Predictions are
// returned best first.
type Predictor interface {
	Predict(ctx context.Context, item models.Item) ([]models.Prediction, error)
}

// sortPredictions orders by descending score, then by label name
func sortPredictions(preds []models.Prediction) {
	sort.SliceStable(preds, func(i, j int) bool {
		if preds[i].Score != preds[j].Score {
			return preds[i].Score > preds[j].Score
		}
		return preds[i].Label < preds[j].Label
	})
}
