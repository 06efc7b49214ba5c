package apply

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aryankumar/esadmin/internal/util"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseDocumentsFromFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		idField string
		wantIDs []string
		invalid bool
	}{
		{name: "ndjson", content: "{\"id\":\"a\"}\n\n{\"id\":\"b\"}\n", idField: "id", wantIDs: []string{"a", "b"}},
		{name: "array", content: `[{"id":1},{"id":2.5}]`, idField: "id", wantIDs: []string{"1", "2.5"}},
		{name: "concatenated objects", content: `{"id":"x"}{"id":"y"}`, idField: "id", wantIDs: []string{"x", "y"}},
		{name: "no id field", content: `{"id":"x"}`, wantIDs: []string{""}},
		{name: "empty file", content: "  \n"},
		{name: "missing id", content: `{"name":"x"}`, idField: "id", invalid: true},
		{name: "not an object", content: `[1,2]`, invalid: true},
		{name: "broken line", content: "{\"id\":\"a\"}\n{\"id\":", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".json", tt.content)
			docs, err := parseDocumentsFromFile(path, tt.idField)
			if tt.invalid {
				if !errors.Is(err, util.ErrInvalidInput) {
					t.Fatalf("expected invalid input, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(docs) != len(tt.wantIDs) {
				t.Fatalf("got %d documents, want %d", len(docs), len(tt.wantIDs))
			}
			for i, doc := range docs {
				if doc.ID != tt.wantIDs[i] {
					t.Errorf("doc %d id = %q, want %q", i, doc.ID, tt.wantIDs[i])
				}
				if len(doc.Body) == 0 {
					t.Errorf("doc %d has no body", i)
				}
			}
		})
	}
}

func TestParseDocumentsNamesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.ndjson", `{"id":"a"}`)
	writeFile(t, dir, "bad.json", `{"id":`)

	_, err := parseDocuments(dir, false, "id")
	if err == nil {
		t.Fatal("expected error")
	}
	if want := filepath.Join(dir, "bad.json"); !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not name %s", err, want)
	}
}
