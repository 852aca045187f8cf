package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFileName is the name of the workspace configuration file.
const ConfigFileName = "floorsense.yml"

// Workspace defines workspace-relative paths for floorsense operations.
type Workspace struct {
	Root          string
	LayoutsDir    string
	LinksDir      string
	ReportsDir    string
	AuditDir      string
	AuditDBPath   string
	HistoryDBPath string
	ConfigPath    string
}

// Resolve expands and validates the workspace root, ensuring it exists.
func Resolve(root string) (*Workspace, error) {
	abs, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", abs)
	}
	return newWorkspace(abs), nil
}

// ResolveRoot resolves the workspace root without requiring it to exist.
func ResolveRoot(root string) (string, error) {
	return resolveRoot(root)
}

// New returns the workspace layout for root without touching the filesystem.
func New(root string) (*Workspace, error) {
	abs, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	return newWorkspace(abs), nil
}

// EnsureDirs creates the workspace subdirectories.
func (w *Workspace) EnsureDirs() error {
	if w == nil {
		return fmt.Errorf("workspace is nil")
	}
	for _, dir := range []string{w.LayoutsDir, w.LinksDir, w.ReportsDir, w.AuditDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure %s: %w", dir, err)
		}
	}
	return nil
}

// ResolvePath returns an absolute path, resolving relative paths from the workspace root.
func (w *Workspace) ResolvePath(path string) (string, error) {
	if w == nil {
		return "", fmt.Errorf("workspace is nil")
	}
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded), nil
	}
	return filepath.Abs(filepath.Join(w.Root, expanded))
}

// ReportDir is the snapshot directory of one layout.
func (w *Workspace) ReportDir(layoutName string) string {
	return filepath.Join(w.ReportsDir, layoutName)
}

// LinksFor returns the conventional link file of a layout file:
// links/<base name>.yml.
func (w *Workspace) LinksFor(layoutPath string) string {
	base := strings.TrimSuffix(filepath.Base(layoutPath), filepath.Ext(layoutPath))
	return filepath.Join(w.LinksDir, base+".yml")
}

func newWorkspace(root string) *Workspace {
	return &Workspace{
		Root:          root,
		LayoutsDir:    filepath.Join(root, "layouts"),
		LinksDir:      filepath.Join(root, "links"),
		ReportsDir:    filepath.Join(root, "reports"),
		AuditDir:      filepath.Join(root, "audit"),
		AuditDBPath:   filepath.Join(root, "audit", "audit.sqlite"),
		HistoryDBPath: filepath.Join(root, "audit", "history.sqlite"),
		ConfigPath:    filepath.Join(root, ConfigFileName),
	}
}

func resolveRoot(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", fmt.Errorf("workspace root is required")
	}
	expanded, err := expandHome(root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve workspace: %w", err)
	}
	return abs, nil
}

func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:]), nil
	}
	return "", fmt.Errorf("unsupported home expansion: %s", path)
}
