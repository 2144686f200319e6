// Package types defines the entity model and core abstractions shared
// across the backup engine.
package types

import "fmt"

// EntityType identifies one of the six backup-able entity kinds.
type EntityType string

const (
	// Vertex is the bulk vertex collection.
	Vertex EntityType = "vertex"
	// Edge is the bulk edge collection.
	Edge EntityType = "edge"
	// PropertyKey is the property key schema kind.
	PropertyKey EntityType = "propertykey"
	// VertexLabel is the vertex label schema kind.
	VertexLabel EntityType = "vertexlabel"
	// EdgeLabel is the edge label schema kind.
	EdgeLabel EntityType = "edgelabel"
	// IndexLabel is the index label schema kind.
	IndexLabel EntityType = "indexlabel"
)

// AllEntityTypes returns every backup-able kind in backup order.
func AllEntityTypes() []EntityType {
	return []EntityType{
		Vertex, Edge, PropertyKey, VertexLabel, EdgeLabel, IndexLabel,
	}
}

// String returns the wire/file name of the entity kind.
func (t EntityType) String() string {
	return string(t)
}

// IsBulk reports whether the kind is a sharded bulk collection.
func (t EntityType) IsBulk() bool {
	return t == Vertex || t == Edge
}

// IsSchema reports whether the kind is a schema collection.
func (t EntityType) IsSchema() bool {
	switch t {
	case PropertyKey, VertexLabel, EdgeLabel, IndexLabel:
		return true
	default:
		return false
	}
}

// Valid reports whether the kind is one of the known entity types.
func (t EntityType) Valid() bool {
	return t.IsBulk() || t.IsSchema()
}

// ParseEntityType converts a string to an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityType, s)
	}
	return t, nil
}

// Shard is a server-issued descriptor of a contiguous slice of a bulk
// collection. It is opaque to the engine and consumed exactly once by a
// fetch call.
type Shard struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Length int64  `json:"length"`
}

// GraphVertex is a vertex entity as returned by the graph server.
type GraphVertex struct {
	ID         interface{}            `json:"id"`
	Label      string                 `json:"label"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// GraphEdge is an edge entity as returned by the graph server.
type GraphEdge struct {
	ID          string                 `json:"id"`
	Label       string                 `json:"label"`
	Source      interface{}            `json:"outV"`
	SourceLabel string                 `json:"outVLabel"`
	Target      interface{}            `json:"inV"`
	TargetLabel string                 `json:"inVLabel"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

// PropertyKeySchema describes a property key.
type PropertyKeySchema struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DataType    string `json:"data_type"`
	Cardinality string `json:"cardinality"`
}

// VertexLabelSchema describes a vertex label.
type VertexLabelSchema struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	IDStrategy  string   `json:"id_strategy"`
	PrimaryKeys []string `json:"primary_keys,omitempty"`
	Properties  []string `json:"properties,omitempty"`
}

// EdgeLabelSchema describes an edge label.
type EdgeLabelSchema struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	SourceLabel string   `json:"source_label"`
	TargetLabel string   `json:"target_label"`
	Frequency   string   `json:"frequency"`
	SortKeys    []string `json:"sort_keys,omitempty"`
	Properties  []string `json:"properties,omitempty"`
}

// IndexLabelSchema describes an index label.
type IndexLabelSchema struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	BaseType  string   `json:"base_type"`
	BaseValue string   `json:"base_value"`
	IndexType string   `json:"index_type"`
	Fields    []string `json:"fields,omitempty"`
}
