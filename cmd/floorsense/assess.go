package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"floorsense/internal/assess"
	"floorsense/internal/audit"
	"floorsense/internal/history"
	"floorsense/internal/layout"
	"floorsense/internal/observe"
	"floorsense/internal/report"
	"floorsense/internal/workspace"
)

// input is one layout file ready to assess.
type input struct {
	Path      string
	Hash      string
	LinksPath string
	Layout    layout.Layout
	Links     []layout.CollaborationLink
}

func newEngine(e *env, source string, m *observe.Metrics) (*assess.Engine, error) {
	opts, err := e.Config.Policy()
	if err != nil {
		return nil, err
	}
	opts.Source = source
	opts.Metrics = m
	return assess.New(opts), nil
}

// loadInput reads a layout and its links. Without an explicit links path the
// workspace convention links/<name>.yml is used when that file exists.
func loadInput(ws *workspace.Workspace, layoutPath, linksPath string) (input, error) {
	path, err := ws.ResolvePath(layoutPath)
	if err != nil {
		return input{}, fmt.Errorf("resolve --layout: %w", err)
	}
	l, hash, err := layout.LoadFile(path)
	if err != nil {
		return input{}, err
	}
	in := input{Path: path, Hash: hash, Layout: l}

	if linksPath != "" {
		in.LinksPath, err = ws.ResolvePath(linksPath)
		if err != nil {
			return input{}, fmt.Errorf("resolve --links: %w", err)
		}
	} else if conv := ws.LinksFor(path); fileExists(conv) {
		in.LinksPath = conv
	}
	if in.LinksPath != "" {
		in.Links, err = layout.LoadLinks(in.LinksPath)
		if err != nil {
			return input{}, err
		}
	}
	return in, nil
}

// loadAllInputs loads every layout file in the workspace layouts directory,
// aggregating validation errors across files.
func loadAllInputs(ws *workspace.Workspace) ([]input, error) {
	var files []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := filepath.Glob(filepath.Join(ws.LayoutsDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan layouts dir: %w", err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no layout YAML files found in %s", ws.LayoutsDir)
	}
	sort.Strings(files)

	var inputs []input
	var vErrs layout.ValidationErrors
	for _, path := range files {
		in, err := loadInput(ws, path, "")
		if err != nil {
			var ve layout.ValidationErrors
			if errors.As(err, &ve) {
				vErrs = append(vErrs, ve...)
				continue
			}
			return nil, err
		}
		inputs = append(inputs, in)
	}
	if len(vErrs) > 0 {
		return nil, vErrs
	}
	return inputs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

type assessOutput struct {
	RunID        string        `json:"run_id"`
	SnapshotPath string        `json:"snapshot_path"`
	Report       assess.Report `json:"report"`
}

func runAssess(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("assess", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	layoutPath := fs.String("layout", "", "Path to a layout YAML file")
	all := fs.Bool("all", false, "Assess every layout in <workspace>/layouts")
	linksPath := fs.String("links", "", "Path to a links YAML file (default: <workspace>/links/<layout>.yml when present)")
	asJSON := fs.Bool("json", false, "Print the reports as JSON")
	outPath := fs.String("out", "", "Snapshot path (default: <workspace>/reports/<layout>/<timestamp>.json)")
	concurrency := fs.Int("concurrency", 4, "Maximum layouts assessed in parallel with --all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*layoutPath == "") == !*all {
		return fmt.Errorf("exactly one of --layout or --all is required")
	}
	if *all && (*linksPath != "" || *outPath != "") {
		return fmt.Errorf("--links and --out cannot be combined with --all")
	}

	e, err := loadEnv(g)
	if err != nil {
		return err
	}

	var inputs []input
	if *all {
		inputs, err = loadAllInputs(e.Workspace)
	} else {
		var in input
		in, err = loadInput(e.Workspace, *layoutPath, *linksPath)
		inputs = []input{in}
	}
	if err != nil {
		return err
	}

	engine, err := newEngine(e, "cli", observe.DefaultMetrics())
	if err != nil {
		return err
	}
	store, err := history.Open(e.Workspace.HistoryDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	names := make([]string, len(inputs))
	jobs := make([]assess.Job, len(inputs))
	for i, in := range inputs {
		names[i] = in.Layout.Name
		jobs[i] = assess.Job{Layout: in.Layout, Links: in.Links}
	}
	logEvent(e.Audit, audit.AssessmentStarted, map[string]any{
		"workspace": e.Workspace.Root,
		"layouts":   names,
	})

	reports, err := engine.Batch(context.Background(), jobs, *concurrency)
	if err != nil {
		logEvent(e.Audit, audit.AssessmentFailed, map[string]any{
			"layouts": names,
			"error":   err.Error(),
		})
		return err
	}

	outputs := make([]assessOutput, len(reports))
	for i, r := range reports {
		run, err := store.Record(r, inputs[i].Hash, "cli")
		if err != nil {
			return err
		}
		path := *outPath
		if path == "" {
			path = report.PathFor(e.Workspace.ReportDir(r.Layout), r.AssessedAt)
		} else if path, err = e.Workspace.ResolvePath(path); err != nil {
			return fmt.Errorf("resolve --out: %w", err)
		}
		snap := report.Snapshot{RunID: run.ID, LayoutHash: inputs[i].Hash, Report: r}
		if err := report.WriteJSON(path, snap); err != nil {
			return err
		}
		outputs[i] = assessOutput{RunID: run.ID, SnapshotPath: path, Report: r}

		logEvent(e.Audit, audit.AssessmentFinished, map[string]any{
			"layout":        r.Layout,
			"layout_hash":   inputs[i].Hash,
			"run_id":        run.ID,
			"snapshot_path": path,
			"efficiency":    r.Efficiency.OverallScore,
			"safety":        r.Safety.OverallScore,
			"safety_level":  r.Safety.SafetyLevel,
			"skipped_links": len(r.Efficiency.SkippedLinks),
		})
	}

	if *asJSON {
		var v any = outputs
		if !*all {
			v = outputs[0]
		}
		return printJSON(v)
	}
	for i, out := range outputs {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprint(os.Stdout, report.Text(out.Report))
		fmt.Fprintf(os.Stdout, "Run: %s\n", out.RunID)
		fmt.Fprintf(os.Stdout, "Wrote snapshot: %s\n", out.SnapshotPath)
	}
	return nil
}

func runLinks(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("links", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	layoutPath := fs.String("layout", "", "Path to a layout YAML file")
	linksPath := fs.String("links", "", "Path to a links YAML file (default: <workspace>/links/<layout>.yml when present)")
	asJSON := fs.Bool("json", false, "Print the links as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *layoutPath == "" {
		return fmt.Errorf("--layout is required")
	}

	e, err := loadEnv(g)
	if err != nil {
		return err
	}
	in, err := loadInput(e.Workspace, *layoutPath, *linksPath)
	if err != nil {
		return err
	}
	engine, err := newEngine(e, "cli", observe.DefaultMetrics())
	if err != nil {
		return err
	}
	links, skipped, err := engine.Links(context.Background(), in.Layout, in.Links)
	if err != nil {
		return err
	}

	if *asJSON {
		return printJSON(map[string]any{"links": links, "skipped": skipped})
	}
	fmt.Fprintf(os.Stdout, "Layout: %s (%d links)\n", in.Layout.Name, len(links))
	for _, l := range links {
		origin := "supplied"
		if l.AutoInferred {
			origin = "inferred"
		}
		fmt.Fprintf(os.Stdout, "  %-24s %s <-> %s  %-6s  weight=%.2f  (%s)\n",
			l.ID, l.SourceZoneID, l.TargetZoneID, l.Intensity, l.Weight(), origin)
	}
	for _, s := range skipped {
		fmt.Fprintf(os.Stdout, "  skipped %s: %s\n", s.Link.ID, s.Reason)
	}
	return nil
}

func runHistory(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	layoutName := fs.String("layout", "", "Only show runs of this layout name")
	limit := fs.Int("limit", 20, "Maximum runs to show")
	asJSON := fs.Bool("json", false, "Print the runs as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(g)
	if err != nil {
		return err
	}
	store, err := history.Open(e.Workspace.HistoryDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(*layoutName, *limit)
	if err != nil {
		return err
	}
	if *asJSON {
		type row struct {
			ID              string    `json:"id"`
			Layout          string    `json:"layout"`
			LayoutHash      string    `json:"layout_hash"`
			Source          string    `json:"source"`
			EfficiencyScore float64   `json:"efficiency_score"`
			SafetyScore     float64   `json:"safety_score"`
			SafetyLevel     string    `json:"safety_level"`
			CreatedAt       time.Time `json:"created_at"`
		}
		rows := make([]row, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, row{r.ID, r.Layout, r.LayoutHash, r.Source,
				r.EfficiencyScore, r.SafetyScore, string(r.SafetyLevel), r.CreatedAt})
		}
		return printJSON(rows)
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No assessments recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%s  %s  %-16s  efficiency=%3.0f  safety=%3.0f (%s)  %s\n",
			r.ID[:8], r.CreatedAt.Format(time.RFC3339), r.Layout,
			r.EfficiencyScore, r.SafetyScore, r.SafetyLevel, r.Source)
	}
	return nil
}

func runDiff(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: %s diff <run-a> <run-b>", appName)
	}

	e, err := loadEnv(g)
	if err != nil {
		return err
	}
	store, err := history.Open(e.Workspace.HistoryDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var reports [2]assess.Report
	var ids [2]string
	for i, id := range fs.Args() {
		run, err := store.Get(id)
		if err != nil {
			return err
		}
		reports[i], err = run.Report()
		if err != nil {
			return err
		}
		ids[i] = run.ID
	}

	text, err := report.Diff(reports[0], reports[1], ids[0], ids[1])
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintln(os.Stdout, "No differences")
		return nil
	}
	fmt.Fprint(os.Stdout, text)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
