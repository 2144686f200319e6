package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/graphback/graphback/pkg/types"
)

func newTestClient(t *testing.T, handler http.Handler) *RestClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewRestClient(&RestConfig{
		Endpoint: server.URL,
		Graph:    "hugegraph",
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func TestRestClient_VertexShards(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphs/hugegraph/traversers/vertexshards" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("split_size"); got != "1048576" {
			t.Errorf("Expected split_size=1048576, got %s", got)
		}
		w.Write([]byte(`{"shards": [{"start": "0", "end": "100", "length": 100}]}`))
	}))

	shards, err := c.Traverser().VertexShards(context.Background(), 1048576)
	if err != nil {
		t.Fatalf("VertexShards failed: %v", err)
	}
	if len(shards) != 1 || shards[0].End != "100" {
		t.Errorf("Unexpected shards %+v", shards)
	}
}

func TestRestClient_Vertices(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("start"); got != "0" {
			t.Errorf("Expected start=0, got %s", got)
		}
		w.Write([]byte(`{"vertices": [{"id": 1, "label": "person"}, {"id": 2, "label": "person"}]}`))
	}))

	vertices, err := c.Traverser().Vertices(context.Background(), types.Shard{Start: "0", End: "100"})
	if err != nil {
		t.Fatalf("Vertices failed: %v", err)
	}
	if len(vertices) != 2 {
		t.Errorf("Expected 2 vertices, got %d", len(vertices))
	}
	if vertices[0].Label != "person" {
		t.Errorf("Unexpected vertex %+v", vertices[0])
	}
}

func TestRestClient_SchemaListing(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/graphs/hugegraph/schema/propertykeys":
			w.Write([]byte(`{"propertykeys": [{"id": 1, "name": "age", "data_type": "INT", "cardinality": "SINGLE"}]}`))
		case "/graphs/hugegraph/schema/indexlabels":
			w.Write([]byte(`{"indexlabels": []}`))
		default:
			http.NotFound(w, r)
		}
	}))

	pks, err := c.Schema().PropertyKeys(context.Background())
	if err != nil {
		t.Fatalf("PropertyKeys failed: %v", err)
	}
	if len(pks) != 1 || pks[0].Name != "age" {
		t.Errorf("Unexpected property keys %+v", pks)
	}

	ils, err := c.Schema().IndexLabels(context.Background())
	if err != nil {
		t.Fatalf("IndexLabels failed: %v", err)
	}
	if len(ils) != 0 {
		t.Errorf("Expected empty index labels, got %+v", ils)
	}
}

func TestRestClient_ServerErrorIsTransient(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
	}))

	_, err := c.Traverser().Vertices(context.Background(), types.Shard{})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !types.IsRetryable(err) {
		t.Errorf("Expected 503 to be classified retryable, got %v", err)
	}
}

func TestRestClient_ClientErrorIsPermanent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such graph", http.StatusBadRequest)
	}))

	_, err := c.Traverser().EdgeShards(context.Background(), 100)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if types.IsRetryable(err) {
		t.Errorf("Expected 400 to be classified permanent, got %v", err)
	}
}

func TestRestClient_NetworkErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close() // connection refused from here on

	c, err := NewRestClient(&RestConfig{Endpoint: endpoint, Graph: "g"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = c.Traverser().VertexShards(context.Background(), 100)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !types.IsRetryable(err) {
		t.Errorf("Expected network error to be classified retryable, got %v", err)
	}
}

func TestNewRestClient_Validation(t *testing.T) {
	if _, err := NewRestClient(nil); err == nil {
		t.Error("Expected error for nil config")
	}
	if _, err := NewRestClient(&RestConfig{Endpoint: "http://x"}); err == nil {
		t.Error("Expected error for missing graph name")
	}
}
