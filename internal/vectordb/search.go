package vectordb

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// Neighbor is a corpus record close to a query vector
type Neighbor struct {
	Label string
	Title string
	Kind  string
	Score float64
}

// Search returns up to limit nearest records, best first. A non-empty
// kind restricts results to that record kind.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int, kind string) ([]Neighbor, error) {
	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if kind != "" {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(payloadKind, kind)},
		}
	}

	points, err := c.qdrant.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	neighbors := make([]Neighbor, 0, len(points))
	for _, point := range points {
		neighbors = append(neighbors, Neighbor{
			Label: stringValue(point.Payload, payloadLabel),
			Title: stringValue(point.Payload, payloadTitle),
			Kind:  stringValue(point.Payload, payloadKind),
			Score: float64(point.Score),
		})
	}
	return neighbors, nil
}

func stringValue(payload map[string]*qdrant.Value, key string) string {
	if v := payload[key]; v != nil {
		return v.GetStringValue()
	}
	return ""
}
