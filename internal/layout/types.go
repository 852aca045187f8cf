package layout

import (
	"errors"
	"sort"
	"strings"
)

// ZoneType is the closed set of zone kinds a floor plan may contain.
type ZoneType string

const (
	ZoneWorkspace ZoneType = "workspace"
	ZoneMeeting   ZoneType = "meeting"
	ZoneCompute   ZoneType = "compute"
	ZoneStorage   ZoneType = "storage"
	ZoneEntrance  ZoneType = "entrance"
	ZoneUtility   ZoneType = "utility"
	ZoneLab       ZoneType = "lab"
	ZoneLounge    ZoneType = "lounge"
)

// ZoneTypes lists every known zone type in a stable order.
func ZoneTypes() []ZoneType {
	return []ZoneType{
		ZoneWorkspace,
		ZoneMeeting,
		ZoneCompute,
		ZoneStorage,
		ZoneEntrance,
		ZoneUtility,
		ZoneLab,
		ZoneLounge,
	}
}

// Valid reports whether t is one of the known zone types.
func (t ZoneType) Valid() bool {
	switch t {
	case ZoneWorkspace, ZoneMeeting, ZoneCompute, ZoneStorage,
		ZoneEntrance, ZoneUtility, ZoneLab, ZoneLounge:
		return true
	}
	return false
}

// Intensity is the intended collaboration strength between two zones.
type Intensity string

const (
	IntensityHigh   Intensity = "high"
	IntensityMedium Intensity = "medium"
	IntensityLow    Intensity = "low"
)

// Valid reports whether i is a known intensity.
func (i Intensity) Valid() bool {
	switch i {
	case IntensityHigh, IntensityMedium, IntensityLow:
		return true
	}
	return false
}

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

type Dimensions struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Unit   string  `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Zone is a named rectangular region of a floor plan. Position is the top-left corner.
type Zone struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Type      ZoneType `json:"type" yaml:"type"`
	Position  Position `json:"position" yaml:"position"`
	Size      Size     `json:"size" yaml:"size"`
	Color     string   `json:"color,omitempty" yaml:"color,omitempty"`
	Equipment []string `json:"equipment,omitempty" yaml:"equipment,omitempty"`
}

// Layout is an immutable floor plan snapshot.
type Layout struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Dimensions  Dimensions `json:"dimensions" yaml:"dimensions"`
	Zones       []Zone     `json:"zones" yaml:"zones"`
}

// CollaborationLink is a relationship between two zones with an intensity label.
// CustomWeight, when set, scales the link's efficiency.
type CollaborationLink struct {
	ID           string    `json:"id" yaml:"id"`
	SourceZoneID string    `json:"source_zone_id" yaml:"source_zone_id"`
	TargetZoneID string    `json:"target_zone_id" yaml:"target_zone_id"`
	Intensity    Intensity `json:"intensity" yaml:"intensity"`
	AutoInferred bool      `json:"auto_inferred" yaml:"auto_inferred"`
	CustomWeight *float64  `json:"custom_weight,omitempty" yaml:"custom_weight,omitempty"`
}

// Weight returns the custom weight, defaulting to 1.
func (l CollaborationLink) Weight() float64 {
	if l.CustomWeight == nil {
		return 1
	}
	return *l.CustomWeight
}

// ZoneByID returns the zone with the given id, if present.
func (l *Layout) ZoneByID(id string) (Zone, bool) {
	if l == nil {
		return Zone{}, false
	}
	for _, z := range l.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// ZoneIndex maps zone ids to zones.
func (l *Layout) ZoneIndex() map[string]Zone {
	idx := make(map[string]Zone, len(l.Zones))
	for _, z := range l.Zones {
		idx[z.ID] = z
	}
	return idx
}

// PairKey returns a canonical key for an unordered pair of zone ids so that
// (a, b) and (b, a) compare equal.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// SortedKey joins the given zone ids in ascending order.
func SortedKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// ErrZoneNotFound reports a reference to a zone id that is not part of the layout.
var ErrZoneNotFound = errors.New("zone not found")
