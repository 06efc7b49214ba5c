package apply

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/aryankumar/esadmin/internal/cli/cmdutil"
	"github.com/aryankumar/esadmin/internal/es"
	"github.com/aryankumar/esadmin/internal/ops"
	"github.com/aryankumar/esadmin/internal/util"
)

type bulkOptions struct {
	filename   string
	recursive  bool
	idField    string
	workers    int
	flushBytes int
	refresh    bool
}

// NewBulkCmd creates the bulk command
func NewBulkCmd() *cobra.Command {
	var o bulkOptions

	cmd := &cobra.Command{
		Use:   "bulk INDEX",
		Short: "Load documents through the bulk API",
		Long: `Load documents from JSON files into an index. A file holds one object, a
JSON array of objects, or newline-delimited objects (.ndjson, .jsonl). A
directory loads every such file in it.`,
		Example: `  # Load one file
  esadmin bulk users -f users.ndjson

  # Load a directory tree, taking ids from the "uid" field
  esadmin bulk users -f ./export -R --id-field uid --refresh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(cmd, args[0], o)
		},
	}

	cmd.Flags().StringVarP(&o.filename, "filename", "f", "", "file or directory to load (required)")
	cmd.Flags().BoolVarP(&o.recursive, "recursive", "R", false, "walk subdirectories")
	cmd.Flags().StringVar(&o.idField, "id-field", "", "top-level field used as document id")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "concurrent bulk requests (default: number of CPUs)")
	cmd.Flags().IntVar(&o.flushBytes, "flush-bytes", 0, "bulk request size threshold (default 5MB)")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "refresh the index when the load completes")
	_ = cmd.MarkFlagRequired("filename")

	return cmd
}

func runBulk(cmd *cobra.Command, index string, o bulkOptions) error {
	logger := slog.Default()

	docs, err := parseDocuments(o.filename, o.recursive, o.idField)
	if err != nil {
		return fmt.Errorf("failed to parse documents: %w", err)
	}
	if len(docs) == 0 {
		return util.NewValidationError("filename", o.filename, "no documents found")
	}
	logger.Info("parsed documents", "count", len(docs))

	ctx, s, cleanup, err := cmdutil.Connect(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return s.Run(ctx, func(ctx context.Context, admin *ops.Admin) (interface{}, error) {
		stats, err := admin.BulkLoad(ctx, es.BulkRequest{
			Index:      index,
			Documents:  docs,
			Workers:    o.workers,
			FlushBytes: o.flushBytes,
			Refresh:    o.refresh,
		})
		if err != nil {
			return nil, err
		}
		return cmdutil.BulkView{Index: index, BulkStats: stats}, nil
	})
}

// parseDocuments reads every document file under path
func parseDocuments(path string, recursive bool, idField string) ([]es.BulkDocument, error) {
	files, err := cmdutil.CollectFiles(path, recursive)
	if err != nil {
		return nil, err
	}

	var docs []es.BulkDocument
	for _, file := range files {
		fileDocs, err := parseDocumentsFromFile(file, idField)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		docs = append(docs, fileDocs...)
	}
	return docs, nil
}

func parseDocumentsFromFile(path, idField string) ([]es.BulkDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var raws []jsoniter.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, util.NewValidationError("document", nil, "invalid JSON array: "+err.Error())
		}
	} else {
		decoder := json.NewDecoder(bytes.NewReader(data))
		for {
			var raw jsoniter.RawMessage
			err := decoder.Decode(&raw)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, util.NewValidationError("document", len(raws)+1, "invalid JSON: "+err.Error())
			}
			raws = append(raws, raw)
		}
	}

	docs := make([]es.BulkDocument, 0, len(raws))
	for i, raw := range raws {
		doc, err := toBulkDocument(raw, idField)
		if err != nil {
			return nil, util.NewValidationError("document", i+1, err.Error())
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func toBulkDocument(raw []byte, idField string) (es.BulkDocument, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return es.BulkDocument{}, fmt.Errorf("document must be a JSON object")
	}

	doc := es.BulkDocument{Body: raw}
	if idField == "" {
		return doc, nil
	}
	switch v := fields[idField].(type) {
	case nil:
		return es.BulkDocument{}, fmt.Errorf("missing id field %q", idField)
	case string:
		doc.ID = v
	case float64:
		doc.ID = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		doc.ID = fmt.Sprint(v)
	}
	return doc, nil
}
