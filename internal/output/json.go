package output

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/aryankumar/esadmin/internal/executor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	options *Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(opts *Options) *JSONFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &JSONFormatter{
		options: opts,
	}
}

// Format outputs a single data item as JSON
func (f *JSONFormatter) Format(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// FormatMultiCluster outputs multiple cluster results as JSON
func (f *JSONFormatter) FormatMultiCluster(w io.Writer, results []executor.Result) error {
	return f.Format(w, clusterDocuments(results))
}
