// Package config holds the engine's tunable parameters: iteration and
// routing budgets, spacing, the A* routing weights, label placement
// limits, and the aesthetic weight presets. It loads from YAML and applies
// environment variable overrides after the file pass.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Spacing controls node sizing and inter-node gaps used by the coordinate
// assigner and cluster bounder.
type Spacing struct {
	RankGap       float64 `yaml:"rank_gap"`
	NodeGap       float64 `yaml:"node_gap"`
	LabelPadding  float64 `yaml:"label_padding"`
	MinNodeWidth  float64 `yaml:"min_node_width"`
	MinNodeHeight float64 `yaml:"min_node_height"`
	ClusterPadding float64 `yaml:"cluster_padding"`
	ClusterTitleHeight float64 `yaml:"cluster_title_height"`
}

// DefaultSpacing returns sensible spacing defaults.
func DefaultSpacing() Spacing {
	return Spacing{
		RankGap:            48,
		NodeGap:            24,
		LabelPadding:       6,
		MinNodeWidth:       40,
		MinNodeHeight:      24,
		ClusterPadding:     16,
		ClusterTitleHeight: 20,
	}
}

// RoutingWeights parameterizes the A* edge router.
type RoutingWeights struct {
	CellSize        float64 `yaml:"cell_size"`
	StepCost        float64 `yaml:"step_cost"`
	BendPenalty     float64 `yaml:"bend_penalty"`
	CrossingPenalty float64 `yaml:"crossing_penalty"`
	LaneGap         float64 `yaml:"lane_gap"`
}

// DefaultRoutingWeights returns sensible A* routing weights.
func DefaultRoutingWeights() RoutingWeights {
	return RoutingWeights{
		CellSize:        8,
		StepCost:        1,
		BendPenalty:     3,
		CrossingPenalty: 5,
		LaneGap:         6,
	}
}

// LabelPlacementConfig parameterizes text wrapping and collision avoidance.
type LabelPlacementConfig struct {
	MaxLabelWidth       int     `yaml:"max_label_width"`
	MaxLines            int     `yaml:"max_lines"`
	OffsetStep          float64 `yaml:"offset_step"`
	MaxOffset           float64 `yaml:"max_offset"`
	SpatialCellSize     float64 `yaml:"spatial_cell_size"`
	LabelMargin         float64 `yaml:"label_margin"`
	LeaderLineThreshold float64 `yaml:"leader_line_threshold"`
	LegendSpillover     bool    `yaml:"legend_spillover"`
}

// DefaultLabelPlacementConfig returns sensible label placement defaults.
func DefaultLabelPlacementConfig() LabelPlacementConfig {
	return LabelPlacementConfig{
		MaxLabelWidth:       24,
		MaxLines:            3,
		OffsetStep:          6,
		MaxOffset:           48,
		SpatialCellSize:     32, // ≈ twice the label line height
		LabelMargin:         2,
		LeaderLineThreshold: 10,
		LegendSpillover:     true,
	}
}

// LegendConfig parameterizes ComputeLegendLayout.
type LegendConfig struct {
	MaxEntryWidth int     `yaml:"max_entry_width"`
	MaxEntries    int     `yaml:"max_entries"`
	EntryHeight   float64 `yaml:"entry_height"`
	Below         bool    `yaml:"below"` // false = to the right of the diagram
}

// DefaultLegendConfig returns sensible legend defaults.
func DefaultLegendConfig() LegendConfig {
	return LegendConfig{
		MaxEntryWidth: 40,
		MaxEntries:    20,
		EntryHeight:   16,
		Below:         true,
	}
}

// AestheticWeights weighs the metrics in pkg/aesthetics into a single
// objective. Lower objective values are better.
type AestheticWeights struct {
	Crossings           float64 `yaml:"crossings"`
	Bends               float64 `yaml:"bends"`
	PositionVariance    float64 `yaml:"position_variance"`
	EdgeLengthVariance  float64 `yaml:"edge_length_variance"`
	Symmetry            float64 `yaml:"symmetry"`
	Compactness         float64 `yaml:"compactness"`
	LabelCollisions     float64 `yaml:"label_collisions"`
}

// WeightPreset names the three built-in presets plus the always-on default.
type WeightPreset string

const (
	PresetNormal  WeightPreset = "normal"
	PresetCompact WeightPreset = "compact"
	PresetRich    WeightPreset = "rich"
)

// Presets returns the built-in weight presets, tuned so that Normal is a
// balanced baseline, Compact weighs compactness and position variance more
// heavily (favoring dense layouts), and Rich weighs symmetry and label
// collisions more heavily (favoring presentation diagrams).
func Presets() map[WeightPreset]AestheticWeights {
	return map[WeightPreset]AestheticWeights{
		PresetNormal: {
			Crossings: 4, Bends: 1, PositionVariance: 1, EdgeLengthVariance: 1,
			Symmetry: 1, Compactness: 1, LabelCollisions: 3,
		},
		PresetCompact: {
			Crossings: 3, Bends: 1, PositionVariance: 2, EdgeLengthVariance: 0.5,
			Symmetry: 0.5, Compactness: 3, LabelCollisions: 2,
		},
		PresetRich: {
			Crossings: 2, Bends: 0.5, PositionVariance: 0.5, EdgeLengthVariance: 1,
			Symmetry: 3, Compactness: 0.5, LabelCollisions: 4,
		},
	}
}

// Config is the top-level engine configuration: the budget and bundling
// switches callers hand in, plus the spacing/routing/label knobs needed
// to actually drive the subsystems.
type Config struct {
	LayoutIterationBudget int    `yaml:"layout_iteration_budget"`
	RouteBudget           int    `yaml:"route_budget"`
	EdgeBundling          bool   `yaml:"edge_bundling"`
	EdgeBundleMinCount    int    `yaml:"edge_bundle_min_count"`
	EnableStyles          bool   `yaml:"enable_styles"`
	LogPath               string `yaml:"log_path,omitempty"`

	UseGridRouter bool `yaml:"use_grid_router"`

	Spacing        Spacing              `yaml:"spacing"`
	Routing        RoutingWeights       `yaml:"routing"`
	LabelPlacement LabelPlacementConfig `yaml:"label_placement"`
	Legend         LegendConfig         `yaml:"legend"`
}

// DefaultConfig returns a Config with sensible defaults, with environment
// overrides already applied.
func DefaultConfig() Config {
	cfg := Config{
		LayoutIterationBudget: 24,
		RouteBudget:           20000,
		EdgeBundling:          false,
		EdgeBundleMinCount:    2,
		EnableStyles:          true,
		UseGridRouter:         false,
		Spacing:               DefaultSpacing(),
		Routing:               DefaultRoutingWeights(),
		LabelPlacement:        DefaultLabelPlacementConfig(),
		Legend:                DefaultLegendConfig(),
	}
	return ApplyEnvOverrides(cfg)
}

// Load reads a Config from a YAML file. Returns DefaultConfig if path does
// not exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return ApplyEnvOverrides(cfg), nil
}

// Save writes cfg to path as YAML.
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnvOverrides overrides a handful of budget/flag fields from
// DIAGRAMLAYOUT_* environment variables after a config file load.
func ApplyEnvOverrides(cfg Config) Config {
	if v, ok := lookupInt("DIAGRAMLAYOUT_ITERATION_BUDGET"); ok {
		cfg.LayoutIterationBudget = v
	}
	if v, ok := lookupInt("DIAGRAMLAYOUT_ROUTE_BUDGET"); ok {
		cfg.RouteBudget = v
	}
	if v, ok := lookupBool("DIAGRAMLAYOUT_EDGE_BUNDLING"); ok {
		cfg.EdgeBundling = v
	}
	if v, ok := lookupBool("DIAGRAMLAYOUT_USE_GRID_ROUTER"); ok {
		cfg.UseGridRouter = v
	}
	if v := os.Getenv("DIAGRAMLAYOUT_LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	return cfg
}

func lookupInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func lookupBool(name string) (bool, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
