package vectordb

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

const (
	payloadLabel = "label"
	payloadTitle = "title"
	payloadKind  = "kind"
)

// Point is one labeled corpus record with its embedding
type Point struct {
	ID     string
	Label  string
	Title  string
	Kind   string
	Vector []float32
}

// UpsertBatch inserts or updates labeled points
func (c *Client) UpsertBatch(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		structs[i] = toPointStruct(p)
	}

	_, err := c.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("batch upsert failed: %w", err)
	}
	return nil
}

func toPointStruct(p Point) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(p.ID),
		Vectors: qdrant.NewVectors(p.Vector...),
		Payload: qdrant.NewValueMap(map[string]any{
			payloadLabel: p.Label,
			payloadTitle: p.Title,
			payloadKind:  p.Kind,
		}),
	}
}
