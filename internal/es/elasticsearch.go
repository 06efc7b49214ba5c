package es

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/elastic/go-elasticsearch/v7/esutil"
)

// retryableStatuses are retried by the transport when Config.MaxRetries is positive
var retryableStatuses = []int{502, 503, 504, 429}

func retryBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 100 * time.Millisecond
}

type elasticsearchBackend struct {
	client *elasticsearch.Client
}

func newElasticsearchBackend(cfg Config) (*elasticsearchBackend, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		Transport:     cfg.Transport,
		DisableRetry:  cfg.MaxRetries <= 0,
		MaxRetries:    cfg.MaxRetries,
		RetryOnStatus: retryableStatuses,
		RetryBackoff:  retryBackoff,
		Header:        cfg.header(),
	})
	if err != nil {
		return nil, err
	}
	return &elasticsearchBackend{client: client}, nil
}

func fromES(res *esapi.Response, err error) (*response, error) {
	if err != nil {
		return nil, err
	}
	return &response{StatusCode: res.StatusCode, Body: res.Body}, nil
}

func (b *elasticsearchBackend) Info(ctx context.Context) (*response, error) {
	return fromES(esapi.InfoRequest{}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) ClusterHealth(ctx context.Context, req HealthRequest) (*response, error) {
	return fromES(esapi.ClusterHealthRequest{
		Index:         req.Indices,
		Level:         req.Level,
		WaitForStatus: string(req.WaitForStatus),
		Timeout:       req.Timeout,
	}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) ListTasks(ctx context.Context, req ListTasksRequest) (*response, error) {
	detailed := req.Detailed
	return fromES(esapi.TasksListRequest{
		Actions:  req.Actions,
		Nodes:    req.Nodes,
		Detailed: &detailed,
	}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) GetTask(ctx context.Context, id string) (*response, error) {
	return fromES(esapi.TasksGetRequest{TaskID: id}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) PutTemplate(ctx context.Context, name string, body io.Reader) (*response, error) {
	return fromES(esapi.IndicesPutTemplateRequest{Name: name, Body: body}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) GetTemplates(ctx context.Context, names []string) (*response, error) {
	return fromES(esapi.IndicesGetTemplateRequest{Name: names}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) CreateIndex(ctx context.Context, name string, body io.Reader) (*response, error) {
	return fromES(esapi.IndicesCreateRequest{Index: name, Body: body}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) DeleteIndex(ctx context.Context, names []string) (*response, error) {
	return fromES(esapi.IndicesDeleteRequest{Index: names}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) IndexExists(ctx context.Context, name string) (*response, error) {
	return fromES(esapi.IndicesExistsRequest{Index: []string{name}}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) FieldCaps(ctx context.Context, indices, fields []string) (*response, error) {
	lenient := true
	return fromES(esapi.FieldCapsRequest{
		Index:             indices,
		Fields:            fields,
		IgnoreUnavailable: &lenient,
		AllowNoIndices:    &lenient,
		ExpandWildcards:   "open",
	}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) GetDocument(ctx context.Context, index, id string) (*response, error) {
	return fromES(esapi.GetRequest{Index: index, DocumentID: id}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) IndexDocument(ctx context.Context, req IndexDocumentRequest) (*response, error) {
	r := esapi.IndexRequest{
		Index:      req.Index,
		DocumentID: req.ID,
		Body:       readerOf(req.Body),
	}
	if req.Create {
		r.OpType = "create"
	}
	if req.Refresh {
		r.Refresh = "true"
	}
	return fromES(r.Do(ctx, b.client))
}

func (b *elasticsearchBackend) Search(ctx context.Context, indices []string, body io.Reader, size int) (*response, error) {
	lenient := true
	r := esapi.SearchRequest{
		Index:             indices,
		Body:              body,
		IgnoreUnavailable: &lenient,
		AllowNoIndices:    &lenient,
		ExpandWildcards:   "open",
	}
	if size > 0 {
		r.Size = &size
	}
	return fromES(r.Do(ctx, b.client))
}

func (b *elasticsearchBackend) Count(ctx context.Context, indices []string) (*response, error) {
	return fromES(esapi.CountRequest{Index: indices}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) Reindex(ctx context.Context, body io.Reader, refresh bool) (*response, error) {
	wait := false
	return fromES(esapi.ReindexRequest{
		Body:              body,
		Refresh:           &refresh,
		WaitForCompletion: &wait,
	}.Do(ctx, b.client))
}

func (b *elasticsearchBackend) Bulk(ctx context.Context, req BulkRequest, logger *slog.Logger) (BulkStats, error) {
	cfg := esutil.BulkIndexerConfig{
		Client:     b.client,
		Index:      req.Index,
		NumWorkers: req.Workers,
		FlushBytes: req.FlushBytes,
		OnError: func(ctx context.Context, err error) {
			logger.Error("bulk request failed", "error", err)
		},
	}
	if req.Refresh {
		cfg.Refresh = "true"
	}

	indexer, err := esutil.NewBulkIndexer(cfg)
	if err != nil {
		return BulkStats{}, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for _, doc := range req.Documents {
		item := esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.ID,
			Body:       strings.NewReader(string(doc.Body)),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				logBulkFailure(logger, item.DocumentID, res.Status, res.Error.Type, res.Error.Reason, err)
			},
		}
		if err := indexer.Add(ctx, item); err != nil {
			indexer.Close(ctx)
			return statsFromES(indexer.Stats()), err
		}
	}

	if err := indexer.Close(ctx); err != nil {
		return statsFromES(indexer.Stats()), err
	}
	return statsFromES(indexer.Stats()), nil
}

func statsFromES(s esutil.BulkIndexerStats) BulkStats {
	return BulkStats{
		Added:    s.NumAdded,
		Indexed:  s.NumIndexed,
		Created:  s.NumCreated,
		Failed:   s.NumFailed,
		Requests: s.NumRequests,
	}
}

func logBulkFailure(logger *slog.Logger, id string, status int, errType, reason string, err error) {
	if err != nil {
		logger.Error("bulk item failed", "id", id, "error", err)
		return
	}
	logger.Error("bulk item rejected",
		"id", id,
		"status", strconv.Itoa(status)+" "+http.StatusText(status),
		"type", errType,
		"reason", reason)
}
