package es

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/opensearch-project/opensearch-go/v2/opensearchutil"
)

type openSearchBackend struct {
	client *opensearch.Client
}

func newOpenSearchBackend(cfg Config) (*openSearchBackend, error) {
	client, err := opensearch.NewClient(opensearch.Config{
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
	return &openSearchBackend{client: client}, nil
}

func fromOpenSearch(res *opensearchapi.Response, err error) (*response, error) {
	if err != nil {
		return nil, err
	}
	return &response{StatusCode: res.StatusCode, Body: res.Body}, nil
}

func (b *openSearchBackend) Info(ctx context.Context) (*response, error) {
	return fromOpenSearch(opensearchapi.InfoRequest{}.Do(ctx, b.client))
}

func (b *openSearchBackend) ClusterHealth(ctx context.Context, req HealthRequest) (*response, error) {
	return fromOpenSearch(opensearchapi.ClusterHealthRequest{
		Index:         req.Indices,
		Level:         req.Level,
		WaitForStatus: string(req.WaitForStatus),
		Timeout:       req.Timeout,
	}.Do(ctx, b.client))
}

func (b *openSearchBackend) ListTasks(ctx context.Context, req ListTasksRequest) (*response, error) {
	detailed := req.Detailed
	return fromOpenSearch(opensearchapi.TasksListRequest{
		Actions:  req.Actions,
		Nodes:    req.Nodes,
		Detailed: &detailed,
	}.Do(ctx, b.client))
}

func (b *openSearchBackend) GetTask(ctx context.Context, id string) (*response, error) {
	return fromOpenSearch(opensearchapi.TasksGetRequest{TaskID: id}.Do(ctx, b.client))
}

func (b *openSearchBackend) PutTemplate(ctx context.Context, name string, body io.Reader) (*response, error) {
	return fromOpenSearch(opensearchapi.IndicesPutTemplateRequest{Name: name, Body: body}.Do(ctx, b.client))
}

func (b *openSearchBackend) GetTemplates(ctx context.Context, names []string) (*response, error) {
	return fromOpenSearch(opensearchapi.IndicesGetTemplateRequest{Name: names}.Do(ctx, b.client))
}

func (b *openSearchBackend) CreateIndex(ctx context.Context, name string, body io.Reader) (*response, error) {
	return fromOpenSearch(opensearchapi.IndicesCreateRequest{Index: name, Body: body}.Do(ctx, b.client))
}

func (b *openSearchBackend) DeleteIndex(ctx context.Context, names []string) (*response, error) {
	return fromOpenSearch(opensearchapi.IndicesDeleteRequest{Index: names}.Do(ctx, b.client))
}

func (b *openSearchBackend) IndexExists(ctx context.Context, name string) (*response, error) {
	return fromOpenSearch(opensearchapi.IndicesExistsRequest{Index: []string{name}}.Do(ctx, b.client))
}

func (b *openSearchBackend) FieldCaps(ctx context.Context, indices, fields []string) (*response, error) {
	lenient := true
	return fromOpenSearch(opensearchapi.FieldCapsRequest{
		Index:             indices,
		Fields:            fields,
		IgnoreUnavailable: &lenient,
		AllowNoIndices:    &lenient,
		ExpandWildcards:   "open",
	}.Do(ctx, b.client))
}

func (b *openSearchBackend) GetDocument(ctx context.Context, index, id string) (*response, error) {
	return fromOpenSearch(opensearchapi.GetRequest{Index: index, DocumentID: id}.Do(ctx, b.client))
}

func (b *openSearchBackend) IndexDocument(ctx context.Context, req IndexDocumentRequest) (*response, error) {
	r := opensearchapi.IndexRequest{
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
	return fromOpenSearch(r.Do(ctx, b.client))
}

func (b *openSearchBackend) Search(ctx context.Context, indices []string, body io.Reader, size int) (*response, error) {
	lenient := true
	r := opensearchapi.SearchRequest{
		Index:             indices,
		Body:              body,
		IgnoreUnavailable: &lenient,
		AllowNoIndices:    &lenient,
		ExpandWildcards:   "open",
	}
	if size > 0 {
		r.Size = &size
	}
	return fromOpenSearch(r.Do(ctx, b.client))
}

func (b *openSearchBackend) Count(ctx context.Context, indices []string) (*response, error) {
	return fromOpenSearch(opensearchapi.CountRequest{Index: indices}.Do(ctx, b.client))
}

func (b *openSearchBackend) Reindex(ctx context.Context, body io.Reader, refresh bool) (*response, error) {
	wait := false
	return fromOpenSearch(opensearchapi.ReindexRequest{
		Body:              body,
		Refresh:           &refresh,
		WaitForCompletion: &wait,
	}.Do(ctx, b.client))
}

func (b *openSearchBackend) Bulk(ctx context.Context, req BulkRequest, logger *slog.Logger) (BulkStats, error) {
	cfg := opensearchutil.BulkIndexerConfig{
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

	indexer, err := opensearchutil.NewBulkIndexer(cfg)
	if err != nil {
		return BulkStats{}, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for _, doc := range req.Documents {
		item := opensearchutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.ID,
			Body:       strings.NewReader(string(doc.Body)),
			OnFailure: func(ctx context.Context, item opensearchutil.BulkIndexerItem, res opensearchutil.BulkIndexerResponseItem, err error) {
				logBulkFailure(logger, item.DocumentID, res.Status, res.Error.Type, res.Error.Reason, err)
			},
		}
		if err := indexer.Add(ctx, item); err != nil {
			indexer.Close(ctx)
			return statsFromOpenSearch(indexer.Stats()), err
		}
	}

	if err := indexer.Close(ctx); err != nil {
		return statsFromOpenSearch(indexer.Stats()), err
	}
	return statsFromOpenSearch(indexer.Stats()), nil
}

func statsFromOpenSearch(s opensearchutil.BulkIndexerStats) BulkStats {
	return BulkStats{
		Added:    s.NumAdded,
		Indexed:  s.NumIndexed,
		Created:  s.NumCreated,
		Failed:   s.NumFailed,
		Requests: s.NumRequests,
	}
}
