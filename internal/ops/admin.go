// Package ops implements the administrative operations behind the esadmin
// commands on top of an es.Client and a poll.Poller.
package ops

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/internal/poll"
)

// Health retry budgets used by ListIndexes and IndexInfo
const (
	ListIndexesRetries = 6
	IndexInfoRetries   = 3
)

// Client is the subset of *es.Client used by Admin
type Client interface {
	Name() string
	ClusterHealth(ctx context.Context, req es.HealthRequest) (*es.ClusterHealth, error)
	ListTasks(ctx context.Context, req es.ListTasksRequest) ([]es.TaskInfo, error)
	GetTask(ctx context.Context, id es.TaskID) (*es.TaskStatus, error)
	PutTemplate(ctx context.Context, name string, body []byte) (bool, error)
	GetTemplates(ctx context.Context, name string) ([]es.IndexTemplate, error)
	CreateIndex(ctx context.Context, name string, body []byte) (*es.CreateIndexResult, error)
	DeleteIndex(ctx context.Context, names ...string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	FieldCaps(ctx context.Context, indices []string, fields ...string) (es.FieldCapabilities, error)
	GetDocument(ctx context.Context, index, id string) (*es.Document, error)
	IndexDocument(ctx context.Context, req es.IndexDocumentRequest) (*es.IndexDocumentResult, error)
	Search(ctx context.Context, req es.SearchRequest) (*es.SearchResult, error)
	Count(ctx context.Context, indices ...string) (int64, error)
	SubmitReindex(ctx context.Context, req es.ReindexRequest) (es.TaskID, error)
	Bulk(ctx context.Context, req es.BulkRequest) (es.BulkStats, error)
}

// Waiter is satisfied by *poll.Poller
type Waiter interface {
	AwaitClusterHealth(ctx context.Context, maxRetries int, indexNames ...string) (*es.ClusterHealth, error)
	AwaitTaskCompletion(ctx context.Context, taskID string) error
}

// Admin runs operations against one cluster
type Admin struct {
	client Client
	waiter Waiter
	logger *slog.Logger
}

// AdminOption configures an Admin
type AdminOption func(*Admin)

// WithWaiter replaces the default poller
func WithWaiter(w Waiter) AdminOption {
	return func(a *Admin) {
		if w != nil {
			a.waiter = w
		}
	}
}

// WithLogger sets the logger, tagged with the cluster name
func WithLogger(l *slog.Logger) AdminOption {
	return func(a *Admin) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Admin. Without WithWaiter a poll.Poller with default
// settings is built over client.
func New(client Client, opts ...AdminOption) *Admin {
	a := &Admin{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("cluster", client.Name())
	if a.waiter == nil {
		a.waiter = poll.New(client, poll.WithLogger(a.logger))
	}
	return a
}

// Client returns the underlying client
func (a *Admin) Client() Client {
	return a.client
}

// Health returns a health snapshot for the given indexes with the given budget
func (a *Admin) Health(ctx context.Context, maxRetries int, indexNames ...string) (*es.ClusterHealth, error) {
	return a.waiter.AwaitClusterHealth(ctx, maxRetries, indexNames...)
}

// ListIndexes returns the names of all indexes in a health snapshot
func (a *Admin) ListIndexes(ctx context.Context) (sets.Set[string], error) {
	health, err := a.waiter.AwaitClusterHealth(ctx, ListIndexesRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}

	names := sets.New[string]()
	for name := range health.Indices {
		names.Insert(name)
	}

	a.logger.Debug("cluster health",
		"cluster_name", health.ClusterName,
		"status", health.Status,
		"unassigned_shards", health.UnassignedShards)
	a.logger.Info("found indexes", "count", names.Len())
	return names, nil
}

// IndexInfo returns per-index health for the requested indexes
func (a *Admin) IndexInfo(ctx context.Context, indexNames ...string) (map[string]es.IndexHealth, error) {
	health, err := a.waiter.AwaitClusterHealth(ctx, IndexInfoRetries, indexNames...)
	if err != nil {
		return nil, fmt.Errorf("failed to get index info: %w", err)
	}

	a.logger.Debug("found indices", "count", len(health.Indices))
	for name, idx := range health.Indices {
		a.logger.Debug("index shards", "index", name, "active_shards", idx.ActiveShards)
	}
	if health.Indices == nil {
		return map[string]es.IndexHealth{}, nil
	}
	return health.Indices, nil
}

// PutTemplate stores an index template and reports whether it was acknowledged
func (a *Admin) PutTemplate(ctx context.Context, name string, body []byte) (bool, error) {
	acked, err := a.client.PutTemplate(ctx, name, body)
	if err != nil {
		return false, fmt.Errorf("failed to put template %q: %w", name, err)
	}
	if acked {
		a.logger.Info("put template request was acknowledged", "template", name)
	} else {
		a.logger.Error("put template request was not acknowledged", "template", name)
	}
	return acked, nil
}

// GetTemplates returns the templates matching name, which may contain wildcards
func (a *Admin) GetTemplates(ctx context.Context, name string) ([]es.IndexTemplate, error) {
	templates, err := a.client.GetTemplates(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get templates %q: %w", name, err)
	}
	a.logger.Debug("found existing templates", "count", len(templates), "pattern", name)
	for _, t := range templates {
		a.logger.Debug("found existing index template", "template", t.Name)
	}
	return templates, nil
}

// FieldCapabilities returns the capabilities of every field in the indexes
func (a *Admin) FieldCapabilities(ctx context.Context, indexNames ...string) (es.FieldCapabilities, error) {
	caps, err := a.client.FieldCaps(ctx, indexNames, "*")
	if err != nil {
		return nil, fmt.Errorf("failed to get field capabilities: %w", err)
	}
	return caps, nil
}

// UserDefinedFieldCapabilities drops metadata fields, whose names start with an underscore
func (a *Admin) UserDefinedFieldCapabilities(ctx context.Context, indexNames ...string) (es.FieldCapabilities, error) {
	caps, err := a.FieldCapabilities(ctx, indexNames...)
	if err != nil {
		return nil, err
	}
	out := make(es.FieldCapabilities, len(caps))
	for field, byType := range caps {
		if strings.HasPrefix(field, "_") {
			continue
		}
		out[field] = byType
	}
	return out, nil
}

// GetDocument fetches a document by id. The boolean is false when the index
// exists but the document does not.
func (a *Admin) GetDocument(ctx context.Context, index, id string) (*es.Document, bool, error) {
	doc, err := a.client.GetDocument(ctx, index, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get document %s/%s: %w", index, id, err)
	}
	return doc, doc.Found, nil
}

// PutDocument indexes a single document
func (a *Admin) PutDocument(ctx context.Context, req es.IndexDocumentRequest) (*es.IndexDocumentResult, error) {
	res, err := a.client.IndexDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to index document %s/%s: %w", req.Index, req.ID, err)
	}
	a.logger.Debug("indexed document", "index", res.Index, "id", res.ID, "result", res.Result, "version", res.Version)
	return res, nil
}

// Search runs a query in the indexes. An empty query matches all documents.
func (a *Admin) Search(ctx context.Context, query []byte, size int, indexNames ...string) (*es.SearchResult, error) {
	res, err := a.client.Search(ctx, es.SearchRequest{Indices: indexNames, Query: query, Size: size})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	a.logger.Debug("search complete", "took_ms", res.Took, "total", res.Total, "hits", len(res.Hits))
	return res, nil
}

// Count returns the number of documents in the indexes
func (a *Admin) Count(ctx context.Context, indexNames ...string) (int64, error) {
	n, err := a.client.Count(ctx, indexNames...)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return n, nil
}

// CreateIndex creates an index with an optional settings and mappings body
func (a *Admin) CreateIndex(ctx context.Context, name string, body []byte) error {
	res, err := a.client.CreateIndex(ctx, name, body)
	if err != nil {
		return fmt.Errorf("failed to create index %q: %w", name, err)
	}
	a.logger.Info("created index", "index", name, "acknowledged", res.Acknowledged)
	return nil
}

// DeleteIndex deletes the named index
func (a *Admin) DeleteIndex(ctx context.Context, name string) error {
	if err := a.client.DeleteIndex(ctx, name); err != nil {
		return fmt.Errorf("failed to delete index %q: %w", name, err)
	}
	a.logger.Info("deleted index", "index", name)
	return nil
}

// RecreateIndexes deletes each index that exists and creates it again with body
func (a *Admin) RecreateIndexes(ctx context.Context, body []byte, names ...string) error {
	for _, name := range names {
		exists, err := a.client.IndexExists(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check index %q: %w", name, err)
		}
		if exists {
			if err := a.DeleteIndex(ctx, name); err != nil {
				return err
			}
		}
		if err := a.CreateIndex(ctx, name, body); err != nil {
			return err
		}
	}
	return nil
}

// AsyncReindex submits a reindex without waiting and returns its task id
func (a *Admin) AsyncReindex(ctx context.Context, req es.ReindexRequest) (es.TaskID, error) {
	if len(req.Source) == 0 || req.Destination == "" {
		return es.TaskID{}, fmt.Errorf("reindex requires a source and a destination")
	}
	id, err := a.client.SubmitReindex(ctx, req)
	if err != nil {
		return es.TaskID{}, fmt.Errorf("failed to submit reindex: %w", err)
	}
	a.logger.Debug("submitted reindex", "task", id.String(), "source", req.Source, "destination", req.Destination)
	return id, nil
}

// Reindex submits a reindex and waits until its task is no longer running
func (a *Admin) Reindex(ctx context.Context, req es.ReindexRequest) (es.TaskID, error) {
	id, err := a.AsyncReindex(ctx, req)
	if err != nil {
		return es.TaskID{}, err
	}
	if err := a.WaitTask(ctx, id.String()); err != nil {
		return id, err
	}
	return id, nil
}

// WaitTask blocks until the task leaves the running task list
func (a *Admin) WaitTask(ctx context.Context, taskID string) error {
	if err := a.waiter.AwaitTaskCompletion(ctx, taskID); err != nil {
		return fmt.Errorf("failed waiting for task %s: %w", taskID, err)
	}
	a.logger.Debug("task finished", "task", taskID)
	return nil
}

// ListTasks returns the running tasks, optionally filtered by action patterns
func (a *Admin) ListTasks(ctx context.Context, actions ...string) ([]es.TaskInfo, error) {
	tasks, err := a.client.ListTasks(ctx, es.ListTasksRequest{Detailed: true, Actions: actions})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns the live or stored state of a task
func (a *Admin) GetTask(ctx context.Context, id es.TaskID) (*es.TaskStatus, error) {
	status, err := a.client.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", id, err)
	}
	return status, nil
}

// BulkLoad indexes documents through the bulk API
func (a *Admin) BulkLoad(ctx context.Context, req es.BulkRequest) (es.BulkStats, error) {
	stats, err := a.client.Bulk(ctx, req)
	if err != nil {
		return stats, fmt.Errorf("bulk load into %q failed: %w", req.Index, err)
	}
	a.logger.Info("bulk load complete",
		"index", req.Index,
		"indexed", stats.Indexed,
		"failed", stats.Failed,
		"requests", stats.Requests)
	if stats.Failed > 0 {
		return stats, fmt.Errorf("bulk load into %q: %d of %d documents failed", req.Index, stats.Failed, stats.Added)
	}
	return stats, nil
}
