package cmdutil

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/aryankumar/esadmin/internal/es"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// clusterRow labels the cluster-wide line of a health table
const clusterRow = "<cluster>"

// IndexList is a sorted list of index names
type IndexList []string

// NewIndexList sorts the names of a set
func NewIndexList(names sets.Set[string]) IndexList {
	return IndexList(sets.List(names))
}

func (l IndexList) TableHeaders() []string { return []string{"INDEX"} }

func (l IndexList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, name := range l {
		rows = append(rows, []string{name})
	}
	return rows
}

// HealthView renders a health snapshot: one cluster line, then one line per index
type HealthView struct {
	*es.ClusterHealth
}

func (v HealthView) TableHeaders() []string {
	return []string{"INDEX", "HEALTH", "SHARDS", "REPLICAS", "ACTIVE", "RELOCATING", "INITIALIZING", "UNASSIGNED"}
}

func (v HealthView) TableRows() [][]string {
	h := v.ClusterHealth
	rows := [][]string{{
		clusterRow,
		string(h.Status),
		strconv.Itoa(h.ActivePrimaryShards),
		"-",
		strconv.Itoa(h.ActiveShards),
		strconv.Itoa(h.RelocatingShards),
		strconv.Itoa(h.InitializingShards),
		strconv.Itoa(h.UnassignedShards),
	}}

	names := make([]string, 0, len(h.Indices))
	for name := range h.Indices {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		idx := h.Indices[name]
		rows = append(rows, []string{
			name,
			string(idx.Status),
			strconv.Itoa(idx.NumberOfShards),
			strconv.Itoa(idx.NumberOfReplicas),
			strconv.Itoa(idx.ActiveShards),
			strconv.Itoa(idx.RelocatingShards),
			strconv.Itoa(idx.InitializingShards),
			strconv.Itoa(idx.UnassignedShards),
		})
	}
	return rows
}

// IndexInfoView is the per-index section of a health snapshot
type IndexInfoView map[string]es.IndexHealth

func (v IndexInfoView) TableHeaders() []string {
	return HealthView{}.TableHeaders()
}

func (v IndexInfoView) TableRows() [][]string {
	rows := HealthView{&es.ClusterHealth{Indices: v}}.TableRows()
	return rows[1:]
}

// TemplateList renders index templates
type TemplateList []es.IndexTemplate

func (l TemplateList) TableHeaders() []string {
	return []string{"NAME", "ORDER", "VERSION", "PATTERNS"}
}

func (l TemplateList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, t := range l {
		version := "-"
		if t.Version != nil {
			version = strconv.Itoa(*t.Version)
		}
		rows = append(rows, []string{t.Name, strconv.Itoa(t.Order), version, strings.Join(t.IndexPatterns, ",")})
	}
	return rows
}

// TaskList renders running tasks
type TaskList []es.TaskInfo

func (l TaskList) TableHeaders() []string {
	return []string{"TASK", "ACTION", "RUNNING", "CANCELLABLE", "DESCRIPTION"}
}

func (l TaskList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, t := range l {
		rows = append(rows, []string{
			t.ID.String(),
			t.Action,
			t.Running().Round(time.Millisecond).String(),
			strconv.FormatBool(t.Cancellable),
			truncate(t.Description, 60),
		})
	}
	return rows
}

// TaskView renders the state of one task
type TaskView struct {
	*es.TaskStatus
}

func (v TaskView) TableHeaders() []string {
	return []string{"TASK", "ACTION", "COMPLETED", "RUNNING", "ERROR"}
}

func (v TaskView) TableRows() [][]string {
	errText := ""
	if v.Error != nil {
		errText = v.Error.Type + ": " + v.Error.Reason
	}
	return [][]string{{
		v.Task.ID.String(),
		v.Task.Action,
		strconv.FormatBool(v.Completed),
		v.Task.Running().Round(time.Millisecond).String(),
		errText,
	}}
}

// TaskRef reports a task id and what happened to it
type TaskRef struct {
	Task   string `json:"task"`
	Status string `json:"status"`
}

func (r TaskRef) TableHeaders() []string { return []string{"TASK", "STATUS"} }

func (r TaskRef) TableRows() [][]string { return [][]string{{r.Task, r.Status}} }

// FieldCapsView renders field capabilities, one line per field and type
type FieldCapsView es.FieldCapabilities

func (v FieldCapsView) TableHeaders() []string {
	return []string{"FIELD", "TYPE", "SEARCHABLE", "AGGREGATABLE"}
}

func (v FieldCapsView) TableRows() [][]string {
	var rows [][]string
	for _, field := range es.FieldCapabilities(v).Fields() {
		types := make([]string, 0, len(v[field]))
		for typ := range v[field] {
			types = append(types, typ)
		}
		sort.Strings(types)
		for _, typ := range types {
			c := v[field][typ]
			rows = append(rows, []string{field, typ, strconv.FormatBool(c.Searchable), strconv.FormatBool(c.Aggregatable)})
		}
	}
	return rows
}

// SearchView renders search hits
type SearchView struct {
	*es.SearchResult
}

func (v SearchView) TableHeaders() []string {
	return []string{"INDEX", "ID", "SCORE", "SOURCE"}
}

func (v SearchView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Hits))
	for _, hit := range v.Hits {
		score := "-"
		if hit.Score != nil {
			score = strconv.FormatFloat(*hit.Score, 'f', 3, 64)
		}
		rows = append(rows, []string{hit.Index, hit.ID, score, compact(hit.Source, 80)})
	}
	return rows
}

// DocumentView renders one stored document
type DocumentView struct {
	*es.Document
}

func (v DocumentView) TableHeaders() []string {
	return []string{"INDEX", "ID", "VERSION", "SOURCE"}
}

func (v DocumentView) TableRows() [][]string {
	return [][]string{{v.Index, v.ID, strconv.FormatInt(v.Version, 10), compact(v.Source, 80)}}
}

// WriteResult reports the outcome of a write to a named object
type WriteResult struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Result string `json:"result"`
}

func (r WriteResult) TableHeaders() []string { return []string{"KIND", "NAME", "RESULT"} }

func (r WriteResult) TableRows() [][]string { return [][]string{{r.Kind, r.Name, r.Result}} }

// WriteResults is a batch of writes
type WriteResults []WriteResult

func (l WriteResults) TableHeaders() []string { return WriteResult{}.TableHeaders() }

func (l WriteResults) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{r.Kind, r.Name, r.Result})
	}
	return rows
}

// BulkView renders the statistics of a bulk load
type BulkView struct {
	Index string `json:"index"`
	es.BulkStats
}

func (v BulkView) TableHeaders() []string {
	return []string{"INDEX", "ADDED", "INDEXED", "CREATED", "FAILED", "REQUESTS"}
}

func (v BulkView) TableRows() [][]string {
	u := func(n uint64) string { return strconv.FormatUint(n, 10) }
	return [][]string{{v.Index, u(v.Added), u(v.Indexed), u(v.Created), u(v.Failed), u(v.Requests)}}
}

func compact(source map[string]any, limit int) string {
	if len(source) == 0 {
		return ""
	}
	b, err := json.Marshal(source)
	if err != nil {
		return fmt.Sprint(source)
	}
	return truncate(string(b), limit)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
