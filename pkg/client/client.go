// Package client defines the graph database collaborator surface consumed
// by the backup engine: shard discovery, paged retrieval, schema listing
// and list serialization.
package client

import (
	"context"
	"encoding/json"
	"io"

	"github.com/graphback/graphback/pkg/types"
)

// Traverser retrieves bulk collections shard by shard.
type Traverser interface {
	// VertexShards asks the server to partition the vertex collection into
	// shards of roughly splitSize entries.
	VertexShards(ctx context.Context, splitSize int64) ([]types.Shard, error)

	// EdgeShards asks the server to partition the edge collection.
	EdgeShards(ctx context.Context, splitSize int64) ([]types.Shard, error)

	// Vertices fetches all vertices of one shard.
	Vertices(ctx context.Context, shard types.Shard) ([]types.GraphVertex, error)

	// Edges fetches all edges of one shard.
	Edges(ctx context.Context, shard types.Shard) ([]types.GraphEdge, error)
}

// SchemaReader lists the schema entity kinds. These collections are assumed
// small and are fetched in one call each.
type SchemaReader interface {
	PropertyKeys(ctx context.Context) ([]types.PropertyKeySchema, error)
	VertexLabels(ctx context.Context) ([]types.VertexLabelSchema, error)
	EdgeLabels(ctx context.Context) ([]types.EdgeLabelSchema, error)
	IndexLabels(ctx context.Context) ([]types.IndexLabelSchema, error)
}

// GraphClient is the full collaborator interface of the remote graph
// database. Errors returned by its methods should carry a
// types.RetryableError classification so the engine can distinguish
// transient failures from permanent ones.
type GraphClient interface {
	Traverser() Traverser
	Schema() SchemaReader
	Serializer() Serializer
}

// Serializer encodes an entity list into a stream.
type Serializer interface {
	EncodeList(w io.Writer, list interface{}) error
}

// jsonSerializer encodes lists as JSON arrays.
type jsonSerializer struct{}

// NewJSONSerializer returns the default JSON list serializer.
func NewJSONSerializer() Serializer {
	return jsonSerializer{}
}

func (jsonSerializer) EncodeList(w io.Writer, list interface{}) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
