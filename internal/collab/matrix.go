package collab

import (
	"fmt"

	"floorsense/internal/layout"
)

// Matrix is a symmetric zone-type × zone-type intensity lookup. Pairs
// without an entry are low intensity.
type Matrix struct {
	entries map[string]layout.Intensity
}

// MatrixEntry is one symmetric cell of a Matrix.
type MatrixEntry struct {
	A         layout.ZoneType  `yaml:"a" json:"a"`
	B         layout.ZoneType  `yaml:"b" json:"b"`
	Intensity layout.Intensity `yaml:"intensity" json:"intensity"`
}

// NewMatrix builds a matrix from entries. Later entries override earlier ones.
func NewMatrix(entries ...MatrixEntry) (Matrix, error) {
	m := Matrix{entries: make(map[string]layout.Intensity, len(entries))}
	if err := m.apply(entries); err != nil {
		return Matrix{}, err
	}
	return m, nil
}

// With returns a copy of m with the given entries applied on top.
func (m Matrix) With(entries ...MatrixEntry) (Matrix, error) {
	out := Matrix{entries: make(map[string]layout.Intensity, len(m.entries)+len(entries))}
	for k, v := range m.entries {
		out.entries[k] = v
	}
	if err := out.apply(entries); err != nil {
		return Matrix{}, err
	}
	return out, nil
}

func (m *Matrix) apply(entries []MatrixEntry) error {
	for i, e := range entries {
		if !e.A.Valid() || !e.B.Valid() {
			return fmt.Errorf("matrix entry %d: unknown zone type in %q/%q", i, e.A, e.B)
		}
		if !e.Intensity.Valid() {
			return fmt.Errorf("matrix entry %d: unknown intensity %q", i, e.Intensity)
		}
		m.entries[typeKey(e.A, e.B)] = e.Intensity
	}
	return nil
}

// Lookup returns the intensity for a pair of zone types, in either order,
// defaulting to low.
func (m Matrix) Lookup(a, b layout.ZoneType) layout.Intensity {
	if v, ok := m.entries[typeKey(a, b)]; ok {
		return v
	}
	return layout.IntensityLow
}

func typeKey(a, b layout.ZoneType) string {
	return layout.PairKey(string(a), string(b))
}

// DefaultMatrix is the stock intensity table used when no override is configured.
func DefaultMatrix() Matrix {
	m, err := NewMatrix(defaultEntries...)
	if err != nil {
		panic(fmt.Sprintf("collab: invalid default matrix: %v", err))
	}
	return m
}

var defaultEntries = []MatrixEntry{
	{layout.ZoneWorkspace, layout.ZoneWorkspace, layout.IntensityHigh},
	{layout.ZoneWorkspace, layout.ZoneMeeting, layout.IntensityHigh},
	{layout.ZoneWorkspace, layout.ZoneLab, layout.IntensityHigh},
	{layout.ZoneWorkspace, layout.ZoneCompute, layout.IntensityMedium},
	{layout.ZoneWorkspace, layout.ZoneLounge, layout.IntensityMedium},
	{layout.ZoneWorkspace, layout.ZoneEntrance, layout.IntensityMedium},
	{layout.ZoneWorkspace, layout.ZoneStorage, layout.IntensityLow},
	{layout.ZoneWorkspace, layout.ZoneUtility, layout.IntensityLow},

	{layout.ZoneMeeting, layout.ZoneMeeting, layout.IntensityMedium},
	{layout.ZoneMeeting, layout.ZoneLab, layout.IntensityMedium},
	{layout.ZoneMeeting, layout.ZoneEntrance, layout.IntensityMedium},
	{layout.ZoneMeeting, layout.ZoneLounge, layout.IntensityMedium},

	{layout.ZoneLab, layout.ZoneLab, layout.IntensityHigh},
	{layout.ZoneLab, layout.ZoneCompute, layout.IntensityHigh},
	{layout.ZoneLab, layout.ZoneStorage, layout.IntensityMedium},

	{layout.ZoneCompute, layout.ZoneCompute, layout.IntensityMedium},
	{layout.ZoneCompute, layout.ZoneUtility, layout.IntensityMedium},
	{layout.ZoneStorage, layout.ZoneUtility, layout.IntensityMedium},
	{layout.ZoneEntrance, layout.ZoneLounge, layout.IntensityMedium},
}

// Empty reports whether m has no entries.
func (m Matrix) Empty() bool {
	return len(m.entries) == 0
}

// IsZero reports whether m is the zero value, as opposed to a matrix built
// by NewMatrix or With. NewMatrix() with no entries is not zero: it is a
// deliberate table in which every pair is low.
func (m Matrix) IsZero() bool {
	return m.entries == nil
}
