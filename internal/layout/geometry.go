package layout

import "math"

// boundaryEpsilon absorbs floating point noise when testing boundary contact.
const boundaryEpsilon = 1e-9

type Point struct {
	X float64
	Y float64
}

// Center returns the geometric center of the zone.
func (z Zone) Center() Point {
	return Point{
		X: z.Position.X + z.Size.Width/2,
		Y: z.Position.Y + z.Size.Height/2,
	}
}

func (z Zone) Area() float64 {
	return z.Size.Width * z.Size.Height
}

// HalfExtent is half of the zone's longer side.
func (z Zone) HalfExtent() float64 {
	return math.Max(z.Size.Width, z.Size.Height) / 2
}

// AspectRatio is long side over short side. Callers must have validated the
// zone: a zero-sized side yields +Inf.
func (z Zone) AspectRatio() float64 {
	long := math.Max(z.Size.Width, z.Size.Height)
	short := math.Min(z.Size.Width, z.Size.Height)
	return long / short
}

// TouchesBoundary reports whether any edge of the zone lies on (or past) the
// layout boundary.
func (z Zone) TouchesBoundary(d Dimensions) bool {
	return z.Position.X <= boundaryEpsilon ||
		z.Position.Y <= boundaryEpsilon ||
		z.Position.X+z.Size.Width >= d.Width-boundaryEpsilon ||
		z.Position.Y+z.Size.Height >= d.Height-boundaryEpsilon
}

// Center returns the layout's geometric center.
func (d Dimensions) Center() Point {
	return Point{X: d.Width / 2, Y: d.Height / 2}
}

func (d Dimensions) Diagonal() float64 {
	return math.Hypot(d.Width, d.Height)
}

// Distance is the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// ZoneDistance is the Euclidean distance between two zone centers.
func ZoneDistance(a, b Zone) float64 {
	return Distance(a.Center(), b.Center())
}
