package aesthetics

import (
	"fmt"
	"hash/fnv"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"

	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// StageRecord is one pipeline stage's contribution to the layout_trace
// evidence event: node_count is the graph size as of that stage,
// crossings/iterations stay 0 until the crossing-minimization stage has
// run and carry its result from then on.
type StageRecord struct {
	Stage      string
	NodeCount  int
	Crossings  int
	Iterations int
}

// LayoutMetricsInput bundles the run-level facts (diagram shape, budget
// outcome) that sit alongside Metrics in the layout_metrics evidence event
// but aren't part of the scoring objective itself.
type LayoutMetricsInput struct {
	DiagramType    string
	Nodes          int
	Edges          int
	Ranks          int
	BudgetExceeded bool
}

type layoutMetricsEvent struct {
	Event              string  `json:"event"`
	IRHash             string  `json:"ir_hash"`
	DiagramType        string  `json:"diagram_type"`
	Nodes              int     `json:"nodes"`
	Edges              int     `json:"edges"`
	Ranks              int     `json:"ranks"`
	BudgetExceeded     bool    `json:"budget_exceeded"`
	Crossings          int     `json:"crossings"`
	Bends              int     `json:"bends"`
	PositionVariance   float64 `json:"position_variance"`
	TotalEdgeLength    float64 `json:"total_edge_length"`
	AlignedNodes       int     `json:"aligned_nodes"`
	Symmetry           float64 `json:"symmetry"`
	Compactness        float64 `json:"compactness"`
	EdgeLengthVariance float64 `json:"edge_length_variance"`
	LabelCollisions    int     `json:"label_collisions"`
	ScoreDefault       float64 `json:"score_default"`
	ScoreNormal        float64 `json:"score_normal"`
	ScoreCompact       float64 `json:"score_compact"`
	ScoreRich          float64 `json:"score_rich"`
}

type layoutTraceEvent struct {
	Event      string `json:"event"`
	IRHash     string `json:"ir_hash"`
	StageIndex int    `json:"stage_index"`
	Stage      string `json:"stage"`
	NodeCount  int    `json:"node_count"`
	Crossings  int    `json:"crossings"`
	Iterations int    `json:"iterations"`
}

type mermaidLegendEvent struct {
	Event         string  `json:"event"`
	IRHash        string  `json:"ir_hash"`
	LegendMode    string  `json:"legend_mode"`
	LegendHeight  float64 `json:"legend_height"`
	LegendWidth   float64 `json:"legend_width"`
	LegendLines   int     `json:"legend_lines"`
	OverflowCount int     `json:"overflow_count"`
}

// WriteLayoutMetrics appends a layout_metrics JSONL event to w: m plus the
// run-level facts in in_, scored under the preset actually selected
// (scoreDefault) and under all three named presets.
func WriteLayoutMetrics(w io.Writer, irHash string, in LayoutMetricsInput, scoreDefault float64, m Metrics) error {
	presets := config.Presets()
	return writeLine(w, layoutMetricsEvent{
		Event:              "layout_metrics",
		IRHash:             irHash,
		DiagramType:        in.DiagramType,
		Nodes:              in.Nodes,
		Edges:              in.Edges,
		Ranks:              in.Ranks,
		BudgetExceeded:     in.BudgetExceeded,
		Crossings:          m.Crossings,
		Bends:              m.Bends,
		PositionVariance:   m.PositionVariance,
		TotalEdgeLength:    m.TotalEdgeLength,
		AlignedNodes:       m.AlignedNodes,
		Symmetry:           m.Symmetry,
		Compactness:        m.Compactness,
		EdgeLengthVariance: m.EdgeLengthVariance,
		LabelCollisions:    m.LabelCollisions,
		ScoreDefault:       scoreDefault,
		ScoreNormal:        Score(m, presets[config.PresetNormal]),
		ScoreCompact:       Score(m, presets[config.PresetCompact]),
		ScoreRich:          Score(m, presets[config.PresetRich]),
	})
}

// WriteLayoutTrace appends one layout_trace JSONL event per pipeline stage
// in records.
func WriteLayoutTrace(w io.Writer, irHash string, records []StageRecord) error {
	for i, r := range records {
		err := writeLine(w, layoutTraceEvent{
			Event:      "layout_trace",
			IRHash:     irHash,
			StageIndex: i,
			Stage:      r.Stage,
			NodeCount:  r.NodeCount,
			Crossings:  r.Crossings,
			Iterations: r.Iterations,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteMermaidLegend appends a mermaid_legend JSONL event to w; it writes
// nothing when legend is nil (no labels spilled over). mode is "below" or "right",
// matching the legend's configured anchor.
func WriteMermaidLegend(w io.Writer, irHash string, legend *ir.LegendLayout, mode string) error {
	if legend == nil {
		return nil
	}
	return writeLine(w, mermaidLegendEvent{
		Event:         "mermaid_legend",
		IRHash:        irHash,
		LegendMode:    mode,
		LegendHeight:  legend.Rect.H,
		LegendWidth:   legend.Rect.W,
		LegendLines:   len(legend.Entries),
		OverflowCount: legend.OverflowCount,
	})
}

func writeLine(w io.Writer, v interface{}) error {
	data, err := gojson.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// IRHash computes a stable FNV-1a/64 hash over a canonical textual encoding
// of d, used to correlate evidence events produced across a single engine
// run back to the diagram that generated them.
func IRHash(d *ir.IR) string {
	h := fnv.New64a()
	writeCanonical(h, d)
	return fmt.Sprintf("0x%016x", h.Sum64())
}

func writeCanonical(w io.Writer, d *ir.IR) {
	io.WriteString(w, string(d.DiagramType))
	io.WriteString(w, "|")
	io.WriteString(w, d.Direction.String())
	for _, n := range d.Nodes {
		io.WriteString(w, "|N:")
		io.WriteString(w, n.ID)
		io.WriteString(w, ",")
		io.WriteString(w, n.Shape)
	}
	for _, e := range d.Edges {
		io.WriteString(w, "|E:")
		writeEndpoint(w, e.From)
		io.WriteString(w, ">")
		writeEndpoint(w, e.To)
	}
	for _, c := range d.Clusters {
		io.WriteString(w, "|C:")
		io.WriteString(w, c.ID)
	}
}

func writeEndpoint(w io.Writer, e ir.Endpoint) {
	if e.Kind == ir.EndpointPort {
		io.WriteString(w, "p")
	} else {
		io.WriteString(w, "n")
	}
	io.WriteString(w, strconv.Itoa(e.Index))
}
