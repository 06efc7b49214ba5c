package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aryankumar/esadmin/internal/executor"
)

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	options *Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(opts *Options) *YAMLFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &YAMLFormatter{
		options: opts,
	}
}

// Format outputs a single data item as YAML. Values are encoded through
// their JSON form so json tags, raw document sources and task ids render
// the same way in both formats.
func (f *YAMLFormatter) Format(w io.Writer, data interface{}) error {
	node, err := toYAMLNode(data)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(node)
}

// FormatMultiCluster outputs multiple cluster results as YAML
func (f *YAMLFormatter) FormatMultiCluster(w io.Writer, results []executor.Result) error {
	return f.Format(w, clusterDocuments(results))
}

func toYAMLNode(data interface{}) (*yaml.Node, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert output to yaml: %w", err)
	}
	resetStyle(&doc)
	return &doc, nil
}

// resetStyle switches JSON flow style and quoting to block YAML
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}
