package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"floorsense/internal/audit"
	"floorsense/internal/config"
	"floorsense/internal/workspace"
)

const appName = "floorsense"

func main() {
	flag.String("workspace", "", "Path to workspace root")
	flag.String("log-level", "", "Log level: debug, info, warn, error (default: from floorsense.yml)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s: floor plan communication and psychological safety assessment\n\n", appName)
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [command] [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  init     Initialize a new workspace")
		fmt.Fprintln(os.Stderr, "  assess   Assess one layout or every layout in the workspace")
		fmt.Fprintln(os.Stderr, "  links    Show the collaboration links of a layout")
		fmt.Fprintln(os.Stderr, "  history  List recorded assessments")
		fmt.Fprintln(os.Stderr, "  diff     Compare two recorded assessments")
		fmt.Fprintln(os.Stderr, "  watch    Re-assess a layout whenever its file changes")
		fmt.Fprintln(os.Stderr, "  serve    Serve the assessment API over HTTP")
		fmt.Fprintln(os.Stderr, "  help     Show this help")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	globals, remaining, err := extractGlobalFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	args := remaining
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		flag.Usage()
		return
	}

	var run func([]string, globalFlags) error
	switch args[0] {
	case "init":
		run = runInit
	case "assess":
		run = runAssess
	case "links":
		run = runLinks
	case "history":
		run = runHistory
	case "diff":
		run = runDiff
	case "watch":
		run = runWatch
	case "serve":
		run = runServe
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
	if err := run(args[1:], globals); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are accepted anywhere on the command line.
type globalFlags struct {
	Workspace string
	LogLevel  string
}

func extractGlobalFlags(args []string) (globalFlags, []string, error) {
	var g globalFlags
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		var target *string
		var name string
		switch {
		case arg == "--workspace" || strings.HasPrefix(arg, "--workspace="):
			target, name = &g.Workspace, "--workspace"
		case arg == "--log-level" || strings.HasPrefix(arg, "--log-level="):
			target, name = &g.LogLevel, "--log-level"
		default:
			remaining = append(remaining, arg)
			continue
		}
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			*target = v
			continue
		}
		if i+1 >= len(args) {
			return globalFlags{}, nil, fmt.Errorf("%s requires a value", name)
		}
		*target = args[i+1]
		i++
	}
	if g.LogLevel != "" && !config.LogLevel(g.LogLevel).IsValid() {
		return globalFlags{}, nil, fmt.Errorf("--log-level %q is invalid; valid values: debug, info, warn, error", g.LogLevel)
	}
	return g, remaining, nil
}

// env is the resolved workspace, its configuration and the audit log every
// command shares.
type env struct {
	Workspace *workspace.Workspace
	Config    *config.Config
	Audit     *audit.Logger
}

func loadEnv(g globalFlags) (*env, error) {
	root := strings.TrimSpace(g.Workspace)
	if root == "" {
		return nil, fmt.Errorf("--workspace is required")
	}
	ws, err := workspace.Resolve(root)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(ws.ConfigPath)
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if g.LogLevel != "" {
		level = config.LogLevel(g.LogLevel)
	}
	slog.SetDefault(newLogger(level))

	if err := ws.EnsureDirs(); err != nil {
		return nil, err
	}
	return &env{Workspace: ws, Config: cfg, Audit: audit.NewLogger(auditDBPath(ws))}, nil
}

// auditDBPath prefers $FLOORSENSE_AUDIT_DB over the workspace default.
func auditDBPath(ws *workspace.Workspace) string {
	if p := strings.TrimSpace(os.Getenv(audit.EnvDBPath)); p != "" {
		return p
	}
	return ws.AuditDBPath
}

func newLogger(level config.LogLevel) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level.SlogLevel()}))
}

func logEvent(l *audit.Logger, eventType string, payload map[string]any) {
	if err := l.LogEvent("cli", eventType, payload); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}
}

func runInit(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(g.Workspace) == "" {
		return fmt.Errorf("--workspace is required")
	}

	root, err := workspace.ResolveRoot(g.Workspace)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create workspace root: %w", err)
	}
	ws, err := workspace.Resolve(root)
	if err != nil {
		return err
	}
	if err := ws.EnsureDirs(); err != nil {
		return err
	}

	files := []struct {
		path     string
		contents string
	}{
		{ws.ConfigPath, defaultConfigTemplate},
		{filepath.Join(ws.LayoutsDir, "studio.yml"), studioLayoutTemplate},
		{filepath.Join(ws.LinksDir, "studio.yml"), studioLinksTemplate},
	}
	var written []string
	for _, f := range files {
		created, err := writeFileIfMissing(f.path, f.contents)
		if err != nil {
			return err
		}
		if created {
			written = append(written, f.path)
		}
	}

	logEvent(audit.NewLogger(auditDBPath(ws)), audit.WorkspaceInit, map[string]any{
		"workspace": ws.Root,
		"written":   written,
	})

	fmt.Fprintf(os.Stdout, "Initialized workspace: %s\n", ws.Root)
	fmt.Fprintln(os.Stdout, "Next steps:")
	fmt.Fprintf(os.Stdout, "  %s assess --workspace %s --layout layouts/studio.yml\n", appName, ws.Root)
	fmt.Fprintf(os.Stdout, "  %s watch --workspace %s --layout layouts/studio.yml\n", appName, ws.Root)
	return nil
}

func writeFileIfMissing(path string, contents string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("ensure dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
