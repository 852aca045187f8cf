package layout

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// linksFile is the on-disk shape of an explicit collaboration link list.
type linksFile struct {
	Links []CollaborationLink `yaml:"links"`
}

// Parse decodes and validates a YAML layout document.
func Parse(data []byte, source string) (Layout, error) {
	var l Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return Layout{}, ValidationErrors{{
			Source:  source,
			Field:   "yaml",
			Message: err.Error(),
		}}
	}
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		l.Name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	if err := Validate(l, source); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// LoadFile reads and validates a single layout file. It also returns the
// sha256 of the raw file content for change tracking.
func LoadFile(path string) (Layout, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, "", fmt.Errorf("read %s: %w", path, err)
	}
	l, err := Parse(data, path)
	if err != nil {
		return Layout{}, "", err
	}
	return l, Hash(data), nil
}

// LoadDir loads every *.yml and *.yaml layout in dir, sorted by file name.
// Validation problems across files are aggregated.
func LoadDir(dir string) ([]Layout, error) {
	var files []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan layout dir: %w", err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no layout YAML files found in %s", dir)
	}
	sort.Strings(files)

	var layouts []Layout
	var vErrs ValidationErrors
	for _, path := range files {
		l, _, err := LoadFile(path)
		if err != nil {
			if ve, ok := err.(ValidationErrors); ok {
				vErrs = append(vErrs, ve...)
				continue
			}
			return nil, err
		}
		layouts = append(layouts, l)
	}
	if len(vErrs) > 0 {
		return nil, vErrs
	}
	return layouts, nil
}

// LoadLinks reads an explicit collaboration link list. Zone references are
// checked later, against the layout being assessed.
func LoadLinks(path string) ([]CollaborationLink, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseLinks(data, path)
}

// ParseLinks decodes a links document. An empty document has no links.
func ParseLinks(data []byte, source string) ([]CollaborationLink, error) {
	var file linksFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	return file.Links, nil
}

// Hash returns the hex sha256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
