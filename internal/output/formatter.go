package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/aryankumar/esadmin/internal/executor"
)

// Format represents the output format type
type Format string

const (
	// FormatTable outputs data in a table format
	FormatTable Format = "table"
	// FormatJSON outputs data in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs data in YAML format
	FormatYAML Format = "yaml"
)

// ParseFormat validates an --output value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", s)
	}
}

// Tabular is implemented by values that know their table layout
type Tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

// Formatter defines the interface for output formatting
type Formatter interface {
	// Format outputs a single data item to the writer
	Format(w io.Writer, data interface{}) error

	// FormatMultiCluster outputs one result per cluster to the writer
	FormatMultiCluster(w io.Writer, results []executor.Result) error
}

// Option is a functional option for configuring formatters
type Option func(*Options)

// Options holds configuration for formatters
type Options struct {
	// NoColor disables color output
	NoColor bool

	// NoHeaders disables table headers
	NoHeaders bool

	// Wide enables wide output with additional columns
	Wide bool
}

// WithNoColor disables color output
func WithNoColor(noColor bool) Option {
	return func(o *Options) {
		o.NoColor = noColor
	}
}

// WithNoHeaders disables table headers
func WithNoHeaders(noHeaders bool) Option {
	return func(o *Options) {
		o.NoHeaders = noHeaders
	}
}

// WithWide enables wide output
func WithWide(wide bool) Option {
	return func(o *Options) {
		o.Wide = wide
	}
}

// NewFormatter creates a new formatter based on the specified format
func NewFormatter(format Format, opts ...Option) Formatter {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	switch format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	default:
		return NewTableFormatter(options)
	}
}

// clusterDocument is the JSON and YAML shape of one cluster result
type clusterDocument struct {
	Cluster  string      `json:"cluster"`
	Status   string      `json:"status"`
	Duration string      `json:"duration"`
	Error    string      `json:"error,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

func clusterDocuments(results []executor.Result) []clusterDocument {
	docs := make([]clusterDocument, len(results))
	for i, r := range results {
		doc := clusterDocument{Cluster: r.ClusterName, Duration: r.Duration.String()}
		if r.Error != nil {
			doc.Status = "failed"
			doc.Error = r.Error.Error()
		} else {
			doc.Status = "success"
			doc.Data = r.Data
		}
		docs[i] = doc
	}
	return docs
}
