package es

import (
	"encoding/json"
	"testing"
)

func TestParseTaskID(t *testing.T) {
	tests := []struct {
		input   string
		want    TaskID
		wantErr bool
	}{
		{input: "oTUltX4IQMOUUVeiohTt8A:12345", want: TaskID{Node: "oTUltX4IQMOUUVeiohTt8A", Number: 12345}},
		{input: " node-1:0 ", want: TaskID{Node: "node-1", Number: 0}},
		{input: "node-1", wantErr: true},
		{input: ":12", wantErr: true},
		{input: "node-1:", wantErr: true},
		{input: "node-1:abc", wantErr: true},
		{input: "node-1:-4", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTaskID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTaskID(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTaskID(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTaskID(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.String() != tt.want.Node+":"+jsonNumber(tt.want.Number) {
				t.Errorf("String() = %q", got.String())
			}
		})
	}
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestTaskID_JSON(t *testing.T) {
	id := TaskID{Node: "n1", Number: 42}
	data, err := json.Marshal(struct {
		Task TaskID `json:"task"`
	}{id})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"task":"n1:42"}` {
		t.Errorf("got %s", data)
	}

	var decoded struct {
		Task TaskID `json:"task"`
	}
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Task != id {
		t.Errorf("got %+v, want %+v", decoded.Task, id)
	}
}

func TestHealthStatus(t *testing.T) {
	tests := []struct {
		status HealthStatus
		other  HealthStatus
		want   bool
	}{
		{StatusGreen, StatusYellow, true},
		{StatusYellow, StatusYellow, true},
		{StatusRed, StatusYellow, false},
		{StatusYellow, StatusGreen, false},
		{"GREEN", StatusRed, true},
		{"", StatusRed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status)+">="+string(tt.other), func(t *testing.T) {
			if got := tt.status.AtLeast(tt.other); got != tt.want {
				t.Errorf("%q.AtLeast(%q) = %v, want %v", tt.status, tt.other, got, tt.want)
			}
		})
	}

	if _, err := ParseHealthStatus("purple"); err == nil {
		t.Error("expected error for unknown status")
	}
	if s, err := ParseHealthStatus(" Yellow "); err != nil || s != StatusYellow {
		t.Errorf("ParseHealthStatus(Yellow) = %q, %v", s, err)
	}
}

func TestParseEngine(t *testing.T) {
	tests := map[string]Engine{
		"":              EngineElasticsearch,
		"elasticsearch": EngineElasticsearch,
		"ES":            EngineElasticsearch,
		"opensearch":    EngineOpenSearch,
		"os":            EngineOpenSearch,
	}
	for input, want := range tests {
		got, err := ParseEngine(input)
		if err != nil || got != want {
			t.Errorf("ParseEngine(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := ParseEngine("solr"); err == nil {
		t.Error("expected error for unsupported engine")
	}
}
