// Package es is a thin, engine-neutral client for the Elasticsearch and
// OpenSearch REST APIs used by esadmin.
//
// A Client wraps one of two backends, go-elasticsearch v7 or opensearch-go v2,
// selected by Config.Engine. Both backends issue the same REST calls; response
// decoding and error mapping are shared so callers never see engine-specific
// types.
package es

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Engine identifies the server product
type Engine string

const (
	EngineElasticsearch Engine = "elasticsearch"
	EngineOpenSearch    Engine = "opensearch"
)

// ParseEngine validates an engine name. Empty means elasticsearch.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "elasticsearch", "es":
		return EngineElasticsearch, nil
	case "opensearch", "os":
		return EngineOpenSearch, nil
	default:
		return "", fmt.Errorf("unknown engine %q (expected elasticsearch or opensearch)", s)
	}
}

// Config configures a Client
type Config struct {
	// Name labels the cluster in logs and results
	Name string

	// Addresses are the node URLs, e.g. http://localhost:9200
	Addresses []string

	Engine   Engine
	Username string
	Password string

	// Insecure skips TLS certificate verification
	Insecure bool

	// MaxRetries is the transport-level retry count for 502/503/504/429
	// answers and network errors. Zero disables transport retries, so
	// communication failures reach the caller on the first occurrence.
	MaxRetries int

	// Transport overrides the HTTP transport (tests)
	Transport http.RoundTripper

	// OpaqueID is sent as X-Opaque-Id on every request. Servers copy it
	// into slow logs and the task list.
	OpaqueID string

	Logger *slog.Logger
}

// OpaqueIDHeader tags requests with their origin
const OpaqueIDHeader = "X-Opaque-Id"

func (cfg Config) header() http.Header {
	if cfg.OpaqueID == "" {
		return nil
	}
	h := http.Header{}
	h.Set(OpaqueIDHeader, cfg.OpaqueID)
	return h
}

// response is the engine-neutral view of a REST answer
type response struct {
	StatusCode int
	Body       io.ReadCloser
}

func (r *response) isError() bool {
	return r.StatusCode > 299
}

func (r *response) close() {
	if r != nil && r.Body != nil {
		r.Body.Close()
	}
}

// backend issues REST calls through one of the official client libraries
type backend interface {
	Info(ctx context.Context) (*response, error)
	ClusterHealth(ctx context.Context, req HealthRequest) (*response, error)
	ListTasks(ctx context.Context, req ListTasksRequest) (*response, error)
	GetTask(ctx context.Context, id string) (*response, error)
	PutTemplate(ctx context.Context, name string, body io.Reader) (*response, error)
	GetTemplates(ctx context.Context, names []string) (*response, error)
	CreateIndex(ctx context.Context, name string, body io.Reader) (*response, error)
	DeleteIndex(ctx context.Context, names []string) (*response, error)
	IndexExists(ctx context.Context, name string) (*response, error)
	FieldCaps(ctx context.Context, indices, fields []string) (*response, error)
	GetDocument(ctx context.Context, index, id string) (*response, error)
	IndexDocument(ctx context.Context, req IndexDocumentRequest) (*response, error)
	Search(ctx context.Context, indices []string, body io.Reader, size int) (*response, error)
	Count(ctx context.Context, indices []string) (*response, error)
	Reindex(ctx context.Context, body io.Reader, refresh bool) (*response, error)
	Bulk(ctx context.Context, req BulkRequest, logger *slog.Logger) (BulkStats, error)
}

// Client talks to a single cluster
type Client struct {
	name      string
	engine    Engine
	addresses []string
	backend   backend
	logger    *slog.Logger
}

// New creates a client for the configured engine. No request is made.
func New(cfg Config) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("at least one address is required")
	}
	engine, err := ParseEngine(string(cfg.Engine))
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Addresses[0]
	}
	if cfg.Transport == nil {
		tp := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.Insecure {
			tp.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		cfg.Transport = tp
	}

	var b backend
	switch engine {
	case EngineOpenSearch:
		b, err = newOpenSearchBackend(cfg)
	default:
		b, err = newElasticsearchBackend(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", engine, err)
	}

	cfg.Logger.Debug("created search engine client",
		"cluster", cfg.Name,
		"engine", engine,
		"addresses", cfg.Addresses)

	return &Client{
		name:      cfg.Name,
		engine:    engine,
		addresses: cfg.Addresses,
		backend:   b,
		logger:    cfg.Logger,
	}, nil
}

// Name returns the cluster label
func (c *Client) Name() string { return c.name }

// Engine returns the server product this client speaks to
func (c *Client) Engine() Engine { return c.engine }

// Addresses returns the configured node URLs
func (c *Client) Addresses() []string { return c.addresses }

// do finishes a backend call: transport failures and undecodable bodies become
// TransportError, error statuses become ResponseError, and out receives the body.
func (c *Client) do(op string, res *response, err error, out any) error {
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer res.close()

	if res.isError() {
		return parseError(op, res)
	}
	if out == nil {
		return nil
	}
	if err := codec.NewDecoder(res.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// Info returns the root endpoint response
func (c *Client) Info(ctx context.Context) (*ServerInfo, error) {
	res, err := c.backend.Info(ctx)
	var info ServerInfo
	if err := c.do("info", res, err, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Ping checks that the cluster answers
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Info(ctx)
	return err
}

// ClusterHealth requests a health snapshot. A server-side wait that expires is
// not an error: the snapshot comes back with TimedOut set.
func (c *Client) ClusterHealth(ctx context.Context, req HealthRequest) (*ClusterHealth, error) {
	const op = "cluster health"
	res, err := c.backend.ClusterHealth(ctx, req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	// The server answers 408 with a complete body when wait_for_status expires.
	if res.StatusCode == http.StatusRequestTimeout {
		res.StatusCode = http.StatusOK
	}
	var health ClusterHealth
	if err := c.do(op, res, nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// wireTask is the task representation used by the task APIs
type wireTask struct {
	Node         string `json:"node"`
	ID           int64  `json:"id"`
	Type         string `json:"type"`
	Action       string `json:"action"`
	Description  string `json:"description"`
	StartTime    int64  `json:"start_time_in_millis"`
	RunningTime  int64  `json:"running_time_in_nanos"`
	Cancellable  bool   `json:"cancellable"`
	ParentTaskID string `json:"parent_task_id"`
}

func (w wireTask) info() TaskInfo {
	return TaskInfo{
		ID:           TaskID{Node: w.Node, Number: w.ID},
		Type:         w.Type,
		Action:       w.Action,
		Description:  w.Description,
		StartTime:    w.StartTime,
		RunningTime:  w.RunningTime,
		Cancellable:  w.Cancellable,
		ParentTaskID: w.ParentTaskID,
	}
}

type taskListResponse struct {
	Nodes map[string]struct {
		Name  string              `json:"name"`
		Tasks map[string]wireTask `json:"tasks"`
	} `json:"nodes"`
	NodeFailures []ErrorCause `json:"node_failures"`
}

// ListTasks returns the tasks currently running on the cluster, ordered by id
func (c *Client) ListTasks(ctx context.Context, req ListTasksRequest) ([]TaskInfo, error) {
	const op = "list tasks"
	res, err := c.backend.ListTasks(ctx, req)
	var body taskListResponse
	if err := c.do(op, res, err, &body); err != nil {
		return nil, err
	}
	if len(body.NodeFailures) > 0 {
		c.logger.Warn("task listing reported node failures",
			"cluster", c.name,
			"failures", len(body.NodeFailures),
			"reason", body.NodeFailures[0].Reason)
	}

	tasks := make([]TaskInfo, 0)
	for _, node := range body.Nodes {
		for _, t := range node.Tasks {
			tasks = append(tasks, t.info())
		}
	}
	sortTasks(tasks)
	return tasks, nil
}

// GetTask returns the live or stored state of one task
func (c *Client) GetTask(ctx context.Context, id TaskID) (*TaskStatus, error) {
	res, err := c.backend.GetTask(ctx, id.String())
	var body struct {
		Completed bool            `json:"completed"`
		Task      wireTask        `json:"task"`
		Response  json.RawMessage `json:"response"`
		Error     *ErrorCause     `json:"error"`
	}
	if err := c.do("get task", res, err, &body); err != nil {
		return nil, err
	}
	return &TaskStatus{
		Completed: body.Completed,
		Task:      body.Task.info(),
		Response:  body.Response,
		Error:     body.Error,
	}, nil
}

type acknowledgedResponse struct {
	Acknowledged bool `json:"acknowledged"`
}

// PutTemplate creates or replaces a legacy index template and reports whether the master acknowledged it
func (c *Client) PutTemplate(ctx context.Context, name string, body []byte) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("put template: name is required")
	}
	res, err := c.backend.PutTemplate(ctx, name, readerOf(body))
	var ack acknowledgedResponse
	if err := c.do("put template", res, err, &ack); err != nil {
		return false, err
	}
	return ack.Acknowledged, nil
}

// GetTemplates returns the legacy templates matching name, which may contain
// wildcards. No match returns an empty slice.
func (c *Client) GetTemplates(ctx context.Context, name string) ([]IndexTemplate, error) {
	var names []string
	if name != "" {
		names = []string{name}
	}
	res, err := c.backend.GetTemplates(ctx, names)
	var body map[string]IndexTemplate
	if err := c.do("get templates", res, err, &body); err != nil {
		if IsNotFound(err) {
			return []IndexTemplate{}, nil
		}
		return nil, err
	}

	templates := make([]IndexTemplate, 0, len(body))
	for n, t := range body {
		t.Name = n
		templates = append(templates, t)
	}
	sortTemplates(templates)
	return templates, nil
}

// CreateIndexResult is the server's answer to index creation
type CreateIndexResult struct {
	Acknowledged       bool   `json:"acknowledged"`
	ShardsAcknowledged bool   `json:"shards_acknowledged"`
	Index              string `json:"index"`
}

// CreateIndex creates an index with an optional settings/mappings body
func (c *Client) CreateIndex(ctx context.Context, name string, body []byte) (*CreateIndexResult, error) {
	res, err := c.backend.CreateIndex(ctx, name, readerOf(body))
	var out CreateIndexResult
	if err := c.do("create index", res, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteIndex deletes the named indexes
func (c *Client) DeleteIndex(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return fmt.Errorf("delete index: at least one index name is required")
	}
	res, err := c.backend.DeleteIndex(ctx, names)
	return c.do("delete index", res, err, nil)
}

// IndexExists reports whether the index exists
func (c *Client) IndexExists(ctx context.Context, name string) (bool, error) {
	const op = "index exists"
	res, err := c.backend.IndexExists(ctx, name)
	if err != nil {
		return false, &TransportError{Op: op, Err: err}
	}
	defer res.close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, parseError(op, res)
	}
}

// FieldCaps returns field capabilities for the given indexes (all when empty).
// Missing indexes are ignored and wildcards expand to open indexes only.
func (c *Client) FieldCaps(ctx context.Context, indices []string, fields ...string) (FieldCapabilities, error) {
	if len(fields) == 0 {
		fields = []string{"*"}
	}
	res, err := c.backend.FieldCaps(ctx, indices, fields)
	var body struct {
		Fields FieldCapabilities `json:"fields"`
	}
	if err := c.do("field capabilities", res, err, &body); err != nil {
		return nil, err
	}
	if body.Fields == nil {
		body.Fields = FieldCapabilities{}
	}
	return body.Fields, nil
}

// GetDocument fetches a document by id. A missing document returns Found=false
// without error; a missing index is an error.
func (c *Client) GetDocument(ctx context.Context, index, id string) (*Document, error) {
	const op = "get document"
	res, err := c.backend.GetDocument(ctx, index, id)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer res.close()

	if res.StatusCode == http.StatusNotFound {
		data, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
		var doc Document
		if err := codec.Unmarshal(data, &doc); err == nil && doc.ID != "" && !doc.Found {
			return &doc, nil
		}
		return nil, parseError(op, &response{StatusCode: res.StatusCode, Body: io.NopCloser(strings.NewReader(string(data)))})
	}

	var doc Document
	if err := c.do(op, res, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// IndexDocument stores a document
func (c *Client) IndexDocument(ctx context.Context, req IndexDocumentRequest) (*IndexDocumentResult, error) {
	if req.Index == "" {
		return nil, fmt.Errorf("index document: index is required")
	}
	res, err := c.backend.IndexDocument(ctx, req)
	var out IndexDocumentResult
	if err := c.do("index document", res, err, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type searchResponse struct {
	Took     int64 `json:"took"`
	TimedOut bool  `json:"timed_out"`
	Hits     struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []SearchHit `json:"hits"`
	} `json:"hits"`
}

// Search runs a query. A nil query matches all documents.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	query := req.Query
	if len(query) == 0 {
		query = json.RawMessage(`{"match_all":{}}`)
	}
	body, err := codec.Marshal(map[string]json.RawMessage{"query": query})
	if err != nil {
		return nil, fmt.Errorf("search: invalid query: %w", err)
	}

	res, err := c.backend.Search(ctx, req.Indices, readerOf(body), req.Size)
	var out searchResponse
	if err := c.do("search", res, err, &out); err != nil {
		return nil, err
	}
	return &SearchResult{
		Took:     out.Took,
		TimedOut: out.TimedOut,
		Total:    out.Hits.Total.Value,
		Hits:     out.Hits.Hits,
	}, nil
}

// Count returns the number of documents in the given indexes (all when empty)
func (c *Client) Count(ctx context.Context, indices ...string) (int64, error) {
	res, err := c.backend.Count(ctx, indices)
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.do("count", res, err, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// reindexBody is the reindex request body. Destination documents keep the
// source version (external versioning) and overwrite existing ids.
type reindexBody struct {
	Source struct {
		Index []string `json:"index"`
	} `json:"source"`
	Dest struct {
		Index       string `json:"index"`
		VersionType string `json:"version_type"`
		OpType      string `json:"op_type"`
	} `json:"dest"`
	Script  *Script `json:"script,omitempty"`
	MaxDocs int     `json:"max_docs,omitempty"`
}

// SubmitReindex starts a reindex without waiting for it and returns the task id
func (c *Client) SubmitReindex(ctx context.Context, req ReindexRequest) (TaskID, error) {
	const op = "reindex"
	if len(req.Source) == 0 || req.Destination == "" {
		return TaskID{}, fmt.Errorf("%s: source and destination are required", op)
	}

	var body reindexBody
	body.Source.Index = req.Source
	body.Dest.Index = req.Destination
	body.Dest.VersionType = "external"
	body.Dest.OpType = "index"
	body.MaxDocs = req.MaxDocs
	if req.Script != nil {
		script := *req.Script
		if script.Lang == "" {
			script.Lang = "painless"
		}
		body.Script = &script
	}

	data, err := codec.Marshal(body)
	if err != nil {
		return TaskID{}, fmt.Errorf("%s: failed to encode request: %w", op, err)
	}

	res, err := c.backend.Reindex(ctx, readerOf(data), req.Refresh)
	var out struct {
		Task string `json:"task"`
	}
	if err := c.do(op, res, err, &out); err != nil {
		return TaskID{}, err
	}
	id, err := ParseTaskID(out.Task)
	if err != nil {
		return TaskID{}, &TransportError{Op: op, Err: err}
	}
	return id, nil
}

// Bulk loads documents through the bulk API. Per-document failures are
// counted in the stats and logged; err reports request-level failures.
func (c *Client) Bulk(ctx context.Context, req BulkRequest) (BulkStats, error) {
	if req.Index == "" {
		return BulkStats{}, fmt.Errorf("bulk: index is required")
	}
	stats, err := c.backend.Bulk(ctx, req, c.logger.With("cluster", c.name, "index", req.Index))
	if err != nil {
		return stats, &TransportError{Op: "bulk", Err: err}
	}
	return stats, nil
}

func readerOf(body []byte) io.Reader {
	if len(body) == 0 {
		return nil
	}
	return strings.NewReader(string(body))
}
