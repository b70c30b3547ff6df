package aesthetics

import (
	"bufio"
	"bytes"
	"testing"

	gojson "github.com/goccy/go-json"
)

func TestWriteLayoutTrace_EmitsOneEventPerStage(t *testing.T) {
	var buf bytes.Buffer
	records := []StageRecord{
		{Stage: "graph_build", NodeCount: 4},
		{Stage: "crossing_minimize", NodeCount: 4, Crossings: 2, Iterations: 3},
	}
	if err := WriteLayoutTrace(&buf, "0xdeadbeef", records); err != nil {
		t.Fatalf("WriteLayoutTrace: %v", err)
	}

	var lines []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) != len(records) {
		t.Fatalf("expected %d lines, got %d", len(records), len(lines))
	}

	type decoded struct {
		Event      string `json:"event"`
		IRHash     string `json:"ir_hash"`
		StageIndex int    `json:"stage_index"`
		Stage      string `json:"stage"`
		NodeCount  int    `json:"node_count"`
		Crossings  int    `json:"crossings"`
		Iterations int    `json:"iterations"`
	}
	for i, line := range lines {
		var ev decoded
		if err := gojson.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line %d: unmarshal: %v", i, err)
		}
		if ev.Event != "layout_trace" {
			t.Fatalf("line %d: expected event layout_trace, got %q", i, ev.Event)
		}
		if ev.StageIndex != i {
			t.Fatalf("line %d: expected stage_index %d, got %d", i, i, ev.StageIndex)
		}
		if ev.Stage != records[i].Stage || ev.NodeCount != records[i].NodeCount ||
			ev.Crossings != records[i].Crossings || ev.Iterations != records[i].Iterations {
			t.Fatalf("line %d: expected %+v, got %+v", i, records[i], ev)
		}
	}
}
