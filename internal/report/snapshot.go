package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"floorsense/internal/assess"
)

// SchemaVersion is written into every snapshot file.
const SchemaVersion = 1

// Snapshot is the on-disk form of a report.
type Snapshot struct {
	SchemaVersion int           `json:"schema_version"`
	RunID         string        `json:"run_id,omitempty"`
	LayoutHash    string        `json:"layout_hash,omitempty"`
	Report        assess.Report `json:"report"`
}

// WriteJSON atomically writes snap to path via a temp file and rename.
func WriteJSON(path string, snap Snapshot) error {
	if path == "" {
		return fmt.Errorf("snapshot path is required")
	}
	snap.SchemaVersion = SchemaVersion

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot written by WriteJSON. Unknown fields are rejected.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema_version %d", snap.SchemaVersion)
	}
	return &snap, nil
}

// PathFor names the snapshot of an assessment taken at t. Names sort
// chronologically.
func PathFor(dir string, t time.Time) string {
	return filepath.Join(dir, t.UTC().Format("20060102T150405.000Z")+".json")
}

// LatestPath returns the newest snapshot in dir.
func LatestPath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read snapshots dir: %w", err)
	}
	var candidates []string
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".json") {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, ent.Name()))
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no snapshots found in %s", dir)
	}
	sort.Strings(candidates)
	return candidates[len(candidates)-1], nil
}
