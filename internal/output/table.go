package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/aryankumar/esadmin/internal/executor"
)

// TableFormatter formats output as a table
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{
		options: opts,
	}
}

// Format outputs a single data item as a table
func (f *TableFormatter) Format(w io.Writer, data interface{}) error {
	colors := NewColorScheme(w, f.options.NoColor)

	switch v := data.(type) {
	case Tabular:
		f.render(w, colors, v.TableHeaders(), v.TableRows())
	case map[string]interface{}:
		f.formatMap(w, colors, v)
	case string:
		fmt.Fprintln(w, v)
	default:
		fmt.Fprintln(w, v)
	}
	return nil
}

// FormatMultiCluster renders one table for all clusters. When every
// successful result is Tabular the rows are merged under a CLUSTER column,
// otherwise a status table is printed. Failures are listed after the table.
func (f *TableFormatter) FormatMultiCluster(w io.Writer, results []executor.Result) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return nil
	}

	colors := NewColorScheme(w, f.options.NoColor)
	if headers, rows, ok := mergeTabular(results, colors); ok {
		if len(rows) > 0 {
			f.render(w, colors, headers, rows)
		}
		f.printFailures(w, results, colors)
		if len(results) > 1 {
			f.printSummary(w, results, colors)
		}
		return nil
	}

	headers := []string{"CLUSTER", "STATUS", "DURATION"}
	if f.options.Wide {
		headers = append(headers, "DATA")
	}
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, f.formatResultRow(result, colors))
	}
	f.render(w, colors, headers, rows)
	f.printSummary(w, results, colors)
	return nil
}

func mergeTabular(results []executor.Result, colors *ColorScheme) ([]string, [][]string, bool) {
	var headers []string
	var rows [][]string
	for _, r := range results {
		if r.Error != nil {
			continue
		}
		t, ok := r.Data.(Tabular)
		if !ok {
			return nil, nil, false
		}
		if headers == nil {
			headers = append([]string{"CLUSTER"}, t.TableHeaders()...)
		}
		for _, row := range t.TableRows() {
			rows = append(rows, append([]string{colors.ClusterName("%s", r.ClusterName)}, row...))
		}
	}
	if headers == nil {
		// every cluster failed
		return []string{"CLUSTER"}, nil, true
	}
	return headers, rows, true
}

// formatResultRow formats a single result as a table row
func (f *TableFormatter) formatResultRow(result executor.Result, colors *ColorScheme) []string {
	status := "Success"
	if result.Error != nil {
		status = "Failed"
	}

	row := []string{
		colors.ClusterName("%s", result.ClusterName),
		colors.StatusColor(result.Error != nil)("%s", status),
		colors.Duration("%s", result.Duration.Round(1000).String()),
	}

	if f.options.Wide {
		dataStr := ""
		if result.Error != nil {
			dataStr = result.Error.Error()
		} else if result.Data != nil {
			dataStr = fmt.Sprintf("%v", result.Data)
			if len(dataStr) > 50 {
				dataStr = dataStr[:47] + "..."
			}
		}
		row = append(row, dataStr)
	}
	return row
}

// formatMap formats a map as a two-column table sorted by key
func (f *TableFormatter) formatMap(w io.Writer, colors *ColorScheme, data map[string]interface{}) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, fmt.Sprintf("%v", data[k])})
	}
	f.render(w, colors, []string{"KEY", "VALUE"}, rows)
}

// render writes rows, coloring health values in STATUS and HEALTH columns
func (f *TableFormatter) render(w io.Writer, colors *ColorScheme, headers []string, rows [][]string) {
	table := f.createTable(w)

	healthCols := make(map[int]bool)
	for i, h := range headers {
		if h == "STATUS" || h == "HEALTH" {
			healthCols[i] = true
		}
	}

	if !f.options.NoHeaders {
		colored := make([]string, len(headers))
		for i, h := range headers {
			colored[i] = colors.Header("%s", h)
		}
		table.SetHeader(colored)
	}

	for _, row := range rows {
		if len(healthCols) > 0 {
			row = append([]string(nil), row...)
			for i := range row {
				if healthCols[i] {
					row[i] = colors.Health(row[i])
				}
			}
		}
		table.Append(row)
	}
	table.Render()
}

// createTable creates a new table with the default borderless layout
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	return table
}

func (f *TableFormatter) printFailures(w io.Writer, results []executor.Result, colors *ColorScheme) {
	failed := executor.FilterFailed(results)
	if len(failed) == 0 {
		return
	}
	fmt.Fprintln(w, "")
	for _, r := range failed {
		fmt.Fprintf(w, "%s %s: %s\n",
			colors.Error("%s", "error"),
			colors.ClusterName("%s", r.ClusterName),
			strings.TrimSpace(r.Error.Error()))
	}
}

// printSummary prints a summary of the results
func (f *TableFormatter) printSummary(w io.Writer, results []executor.Result, colors *ColorScheme) {
	summary := executor.Summarize(results)

	successText := colors.Success("%d successful", summary.Successful)
	failedText := fmt.Sprintf("%d failed", summary.Failed)
	if summary.Failed > 0 {
		failedText = colors.Error("%s", failedText)
	}
	durationText := colors.Duration("slowest=%s", summary.MaxDuration.Round(1000))

	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Summary: %s, %s, %s\n", successText, failedText, durationText)
}
