package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/graphback/graphback/pkg/client"
	"github.com/graphback/graphback/pkg/types"
)

// mockClient implements client.GraphClient against in-memory data, with
// per-shard failure injection for retry and drop scenarios.
type mockClient struct {
	mu sync.Mutex

	vertexShards []types.Shard
	edgeShards   []types.Shard
	vertices     map[string][]types.GraphVertex // keyed by shard start
	edges        map[string][]types.GraphEdge

	// remaining transient failures per shard start; negative means the
	// shard always fails
	vertexFailures map[string]int
	fetchCalls     map[string]int

	// phase observation: each Edges call records how many vertex fetches
	// had finished when it started
	vertexFetchDelay  time.Duration
	vertexFetchesDone int
	edgeSawVertexDone []int

	propertyKeys []types.PropertyKeySchema
	vertexLabels []types.VertexLabelSchema
	edgeLabels   []types.EdgeLabelSchema
	indexLabels  []types.IndexLabelSchema

	schemaErr   error
	schemaCalls int
}

func newMockClient() *mockClient {
	return &mockClient{
		vertices:       make(map[string][]types.GraphVertex),
		edges:          make(map[string][]types.GraphEdge),
		vertexFailures: make(map[string]int),
		fetchCalls:     make(map[string]int),
	}
}

func (m *mockClient) Traverser() client.Traverser   { return m }
func (m *mockClient) Schema() client.SchemaReader   { return m }
func (m *mockClient) Serializer() client.Serializer { return client.NewJSONSerializer() }

func (m *mockClient) VertexShards(ctx context.Context, splitSize int64) ([]types.Shard, error) {
	return m.vertexShards, nil
}

func (m *mockClient) EdgeShards(ctx context.Context, splitSize int64) ([]types.Shard, error) {
	return m.edgeShards, nil
}

func (m *mockClient) Vertices(ctx context.Context, shard types.Shard) ([]types.GraphVertex, error) {
	if m.vertexFetchDelay > 0 {
		time.Sleep(m.vertexFetchDelay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchCalls[shard.Start]++
	if n, ok := m.vertexFailures[shard.Start]; ok {
		if n < 0 {
			return nil, types.Transient(errors.New("connection reset"))
		}
		if n > 0 {
			m.vertexFailures[shard.Start] = n - 1
			return nil, types.Transient(errors.New("connection reset"))
		}
	}
	m.vertexFetchesDone++
	return m.vertices[shard.Start], nil
}

func (m *mockClient) Edges(ctx context.Context, shard types.Shard) ([]types.GraphEdge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchCalls[shard.Start]++
	m.edgeSawVertexDone = append(m.edgeSawVertexDone, m.vertexFetchesDone)
	return m.edges[shard.Start], nil
}

func (m *mockClient) countSchemaCall() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemaCalls++
	return m.schemaErr
}

func (m *mockClient) PropertyKeys(ctx context.Context) ([]types.PropertyKeySchema, error) {
	if err := m.countSchemaCall(); err != nil {
		return nil, err
	}
	return m.propertyKeys, nil
}

func (m *mockClient) VertexLabels(ctx context.Context) ([]types.VertexLabelSchema, error) {
	if err := m.countSchemaCall(); err != nil {
		return nil, err
	}
	return m.vertexLabels, nil
}

func (m *mockClient) EdgeLabels(ctx context.Context) ([]types.EdgeLabelSchema, error) {
	if err := m.countSchemaCall(); err != nil {
		return nil, err
	}
	return m.edgeLabels, nil
}

func (m *mockClient) IndexLabels(ctx context.Context) ([]types.IndexLabelSchema, error) {
	if err := m.countSchemaCall(); err != nil {
		return nil, err
	}
	return m.indexLabels, nil
}

func (m *mockClient) calls(shardStart string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls[shardStart]
}

func (m *mockClient) edgeObservations() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.edgeSawVertexDone...)
}

// makeVertices builds n distinct vertices labeled label.
func makeVertices(label string, base, n int) []types.GraphVertex {
	vertices := make([]types.GraphVertex, n)
	for i := 0; i < n; i++ {
		vertices[i] = types.GraphVertex{ID: base + i, Label: label}
	}
	return vertices
}

// makeEdges builds n distinct edges labeled label between consecutive
// vertex IDs.
func makeEdges(label string, base, n int) []types.GraphEdge {
	edges := make([]types.GraphEdge, n)
	for i := 0; i < n; i++ {
		edges[i] = types.GraphEdge{
			ID:          fmt.Sprintf("%s-%d", label, base+i),
			Label:       label,
			Source:      base + i,
			SourceLabel: "person",
			Target:      base + i + 1,
			TargetLabel: "person",
		}
	}
	return edges
}
