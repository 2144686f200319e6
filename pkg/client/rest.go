package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/graphback/graphback/pkg/types"
)

// RestConfig configures the REST graph client.
type RestConfig struct {
	// Endpoint is the server base URL, e.g. http://127.0.0.1:8080
	Endpoint string

	// Graph is the graph name backing the REST paths
	Graph string

	// Username and Password enable basic auth when non-empty
	Username string
	Password string

	// Timeout bounds each HTTP request
	Timeout time.Duration
}

// RestClient implements GraphClient over the graph server's REST API.
// Network failures and 5xx/429 responses are classified as transient;
// other non-2xx responses are permanent and fail fast.
type RestClient struct {
	cfg  *RestConfig
	http *http.Client
	ser  Serializer
}

// NewRestClient creates a REST graph client.
func NewRestClient(cfg *RestConfig) (*RestClient, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Graph == "" {
		return nil, fmt.Errorf("graph name is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &RestClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		ser:  NewJSONSerializer(),
	}, nil
}

// Traverser returns the shard/bulk retrieval surface.
func (c *RestClient) Traverser() Traverser {
	return (*restTraverser)(c)
}

// Schema returns the schema listing surface.
func (c *RestClient) Schema() SchemaReader {
	return (*restSchema)(c)
}

// Serializer returns the client's list serializer.
func (c *RestClient) Serializer() Serializer {
	return c.ser
}

// get performs a GET request and decodes the JSON response body into out.
func (c *RestClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := strings.TrimRight(c.cfg.Endpoint, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return types.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// network-level failures are worth retrying
		return types.Transient(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= http.StatusInternalServerError ||
			resp.StatusCode == http.StatusTooManyRequests {
			return types.Transient(err)
		}
		return types.Permanent(err)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.Permanent(fmt.Errorf("GET %s: decoding response: %w", path, err))
	}
	return nil
}

func (c *RestClient) graphPath(suffix string) string {
	return "/graphs/" + url.PathEscape(c.cfg.Graph) + suffix
}

func shardQuery(shard types.Shard) url.Values {
	return url.Values{
		"start": []string{shard.Start},
		"end":   []string{shard.End},
	}
}

// restTraverser implements Traverser over the REST API
type restTraverser RestClient

func (t *restTraverser) VertexShards(ctx context.Context, splitSize int64) ([]types.Shard, error) {
	c := (*RestClient)(t)
	var out struct {
		Shards []types.Shard `json:"shards"`
	}
	query := url.Values{"split_size": []string{strconv.FormatInt(splitSize, 10)}}
	if err := c.get(ctx, c.graphPath("/traversers/vertexshards"), query, &out); err != nil {
		return nil, err
	}
	return out.Shards, nil
}

func (t *restTraverser) EdgeShards(ctx context.Context, splitSize int64) ([]types.Shard, error) {
	c := (*RestClient)(t)
	var out struct {
		Shards []types.Shard `json:"shards"`
	}
	query := url.Values{"split_size": []string{strconv.FormatInt(splitSize, 10)}}
	if err := c.get(ctx, c.graphPath("/traversers/edgeshards"), query, &out); err != nil {
		return nil, err
	}
	return out.Shards, nil
}

func (t *restTraverser) Vertices(ctx context.Context, shard types.Shard) ([]types.GraphVertex, error) {
	c := (*RestClient)(t)
	var out struct {
		Vertices []types.GraphVertex `json:"vertices"`
	}
	if err := c.get(ctx, c.graphPath("/traversers/vertices"), shardQuery(shard), &out); err != nil {
		return nil, err
	}
	return out.Vertices, nil
}

func (t *restTraverser) Edges(ctx context.Context, shard types.Shard) ([]types.GraphEdge, error) {
	c := (*RestClient)(t)
	var out struct {
		Edges []types.GraphEdge `json:"edges"`
	}
	if err := c.get(ctx, c.graphPath("/traversers/edges"), shardQuery(shard), &out); err != nil {
		return nil, err
	}
	return out.Edges, nil
}

// restSchema implements SchemaReader over the REST API
type restSchema RestClient

func (s *restSchema) PropertyKeys(ctx context.Context) ([]types.PropertyKeySchema, error) {
	c := (*RestClient)(s)
	var out struct {
		PropertyKeys []types.PropertyKeySchema `json:"propertykeys"`
	}
	if err := c.get(ctx, c.graphPath("/schema/propertykeys"), nil, &out); err != nil {
		return nil, err
	}
	return out.PropertyKeys, nil
}

func (s *restSchema) VertexLabels(ctx context.Context) ([]types.VertexLabelSchema, error) {
	c := (*RestClient)(s)
	var out struct {
		VertexLabels []types.VertexLabelSchema `json:"vertexlabels"`
	}
	if err := c.get(ctx, c.graphPath("/schema/vertexlabels"), nil, &out); err != nil {
		return nil, err
	}
	return out.VertexLabels, nil
}

func (s *restSchema) EdgeLabels(ctx context.Context) ([]types.EdgeLabelSchema, error) {
	c := (*RestClient)(s)
	var out struct {
		EdgeLabels []types.EdgeLabelSchema `json:"edgelabels"`
	}
	if err := c.get(ctx, c.graphPath("/schema/edgelabels"), nil, &out); err != nil {
		return nil, err
	}
	return out.EdgeLabels, nil
}

func (s *restSchema) IndexLabels(ctx context.Context) ([]types.IndexLabelSchema, error) {
	c := (*RestClient)(s)
	var out struct {
		IndexLabels []types.IndexLabelSchema `json:"indexlabels"`
	}
	if err := c.get(ctx, c.graphPath("/schema/indexlabels"), nil, &out); err != nil {
		return nil, err
	}
	return out.IndexLabels, nil
}
