// Command diagramlayout lays out a normalized diagram IR (JSON-encoded,
// produced by an external Mermaid parser) and renders it to the terminal.
// It is a thin driver over package engine: parsing Mermaid source and
// rendering pixel-perfect boxes both live in external collaborators, so
// the CLI renders a coarse ASCII/ANSI grid good enough to sanity-check a
// layout run.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"

	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/engine"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
	"github.com/vanderheijden86/diagramlayout/pkg/svgdebug"
)

var (
	flagIn      = flag.String("in", "", "path to a JSON-encoded ir.IR (required)")
	flagConfig  = flag.String("config", "", "path to a YAML config file (optional, defaults applied)")
	flagPreset  = flag.String("preset", "normal", "aesthetic weight preset: normal, compact, rich")
	flagSVG     = flag.String("svg", "", "write an SVG debug dump to this path")
	flagPNG     = flag.String("png", "", "write a PNG debug dump to this path")
	flagWatch   = flag.Bool("watch", false, "re-layout on every change to -in")
	flagCopy    = flag.Bool("copy", false, "copy the rendered grid to the clipboard")
	flagEvidence = flag.String("evidence", "", "append JSONL evidence events to this path")
)

func main() {
	flag.Parse()
	if *flagIn == "" {
		fmt.Fprintln(os.Stderr, "diagramlayout: -in is required")
		os.Exit(2)
	}

	cfg := config.DefaultConfig()
	if *flagConfig != "" {
		loaded, err := config.Load(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "diagramlayout: loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if err := runOnce(*flagIn, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "diagramlayout: %v\n", err)
		os.Exit(1)
	}

	if *flagWatch {
		if err := watchLoop(*flagIn, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "diagramlayout: watch: %v\n", err)
			os.Exit(1)
		}
	}
}

func runOnce(path string, cfg config.Config) error {
	d, err := loadIR(path)
	if err != nil {
		return fmt.Errorf("loading IR: %w", err)
	}

	eng := engine.New()
	opts := engine.Options{Preset: config.WeightPreset(*flagPreset)}

	if *flagEvidence != "" {
		f, err := os.OpenFile(*flagEvidence, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening evidence file: %w", err)
		}
		defer f.Close()
		opts.EvidenceOut = f
	}

	layout, err := eng.Layout(d, cfg, opts)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	rendered := render(d, layout)
	fmt.Println(rendered)

	if *flagCopy {
		if err := clipboard.WriteAll(rendered); err != nil {
			fmt.Fprintf(os.Stderr, "diagramlayout: clipboard: %v\n", err)
		}
	}
	if *flagSVG != "" {
		f, err := os.Create(*flagSVG)
		if err != nil {
			return fmt.Errorf("creating svg: %w", err)
		}
		defer f.Close()
		svgdebug.Write(f, d, layout, svgdebug.DefaultOptions())
	}
	if *flagPNG != "" {
		if err := svgdebug.RenderPNG(*flagPNG, d, layout, svgdebug.DefaultOptions()); err != nil {
			return fmt.Errorf("rendering png: %w", err)
		}
	}
	return nil
}

func loadIR(path string) (*ir.IR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d ir.IR
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// render draws a terminal-width-aware ASCII grid of node boxes, styled with
// lipgloss. Coordinates are scaled down to a character-cell grid; this is
// a debugging aid, not a pixel-accurate renderer.
func render(d *ir.IR, layout *ir.DiagramLayout) string {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 100
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Foreground(lipgloss.Color("69"))

	var lines []string
	lines = append(lines, fmt.Sprintf("diagram: %s  direction=%s  nodes=%d  edges=%d  crossings=%d",
		d.DiagramType, d.Direction, len(layout.Nodes), len(layout.Edges), layout.Stats.Crossings))

	scale := 1.0
	if layout.BoundingBox.W > float64(width) && layout.BoundingBox.W > 0 {
		scale = float64(width) / layout.BoundingBox.W
	}

	for _, n := range layout.Nodes {
		label := ""
		if n.Index >= 0 && n.Index < len(d.Nodes) {
			label = d.LabelText(d.Nodes[n.Index].LabelID)
		}
		lines = append(lines, boxStyle.Render(fmt.Sprintf("%s  @(%.0f,%.0f)", label, n.Rect.X*scale, n.Rect.Y*scale)))
	}
	if layout.Degradation != nil {
		lines = append(lines, fmt.Sprintf("degraded: %s", layout.Degradation.Reason))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func watchLoop(path string, cfg config.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := runOnce(path, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "diagramlayout: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "diagramlayout: watch error: %v\n", err)
		case <-sig:
			return nil
		}
	}
}
