package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveAndEnsureDirs(t *testing.T) {
	root := t.TempDir()
	ws, err := Resolve(root)
	if err != nil {
		t.Fatal(err)
	}
	if ws.ConfigPath != filepath.Join(root, ConfigFileName) {
		t.Fatalf("config path = %s", ws.ConfigPath)
	}
	if err := ws.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{ws.LayoutsDir, ws.LinksDir, ws.ReportsDir, ws.AuditDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("%s not created: %v", dir, err)
		}
	}
	if got := ws.ReportDir("hq"); got != filepath.Join(root, "reports", "hq") {
		t.Fatalf("report dir = %s", got)
	}
	if got := ws.LinksFor("layouts/hq.yaml"); got != filepath.Join(root, "links", "hq.yml") {
		t.Fatalf("links file = %s", got)
	}
}

func TestResolveRejectsMissingRoot(t *testing.T) {
	if _, err := Resolve(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}
	if _, err := Resolve("  "); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestResolvePath(t *testing.T) {
	root := t.TempDir()
	ws, err := Resolve(root)
	if err != nil {
		t.Fatal(err)
	}
	rel, err := ws.ResolvePath("layouts/hq.yml")
	if err != nil {
		t.Fatal(err)
	}
	if rel != filepath.Join(root, "layouts", "hq.yml") {
		t.Fatalf("relative = %s", rel)
	}
	abs, err := ws.ResolvePath("/tmp/x.yml")
	if err != nil || abs != "/tmp/x.yml" {
		t.Fatalf("absolute = %s, %v", abs, err)
	}
}
