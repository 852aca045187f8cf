package harness

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

// BinaryEnv names a prebuilt floorsense binary to test instead of building
// ./cmd/floorsense, e.g. a release artifact in CI.
const BinaryEnv = "FLOORSENSE_TEST_BINARY"

var (
	rootOnce sync.Once
	root     string
	rootErr  error

	binOnce sync.Once
	bin     string
	binErr  error
)

// RepoRoot returns the directory holding the module's go.mod.
func RepoRoot(t *testing.T) string {
	t.Helper()
	rootOnce.Do(func() { root, rootErr = findRoot() })
	if rootErr != nil {
		t.Fatalf("resolve repo root: %v", rootErr)
	}
	return root
}

func findRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("locate harness source")
	}
	for dir := filepath.Dir(file); ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no go.mod above %s", filepath.Dir(file))
		}
		dir = parent
	}
}

// BuildBinary returns the floorsense binary under test: $FLOORSENSE_TEST_BINARY
// when set, otherwise ./cmd/floorsense built once per test run.
func BuildBinary(t *testing.T) string {
	t.Helper()
	repo := RepoRoot(t)
	binOnce.Do(func() { bin, binErr = resolveBinary(repo) })
	if binErr != nil {
		t.Fatalf("floorsense binary: %v", binErr)
	}
	return bin
}

func resolveBinary(repo string) (string, error) {
	if p := os.Getenv(BinaryEnv); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("%s: %w", BinaryEnv, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("%s: %w", BinaryEnv, err)
		}
		return abs, nil
	}

	dir, err := os.MkdirTemp("", "floorsense-it-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	out := filepath.Join(dir, "floorsense")
	if runtime.GOOS == "windows" {
		out += ".exe"
	}
	cmd := exec.Command("go", "build", "-trimpath", "-o", out, "./cmd/floorsense")
	cmd.Dir = repo
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("go build ./cmd/floorsense: %w\n%s", err, output)
	}
	return out, nil
}
