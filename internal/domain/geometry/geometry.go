// Package geometry implements the zone-crossing test: a pure function
// of a track's previous and current centroid against an oriented
// boundary segment.
package geometry

import (
	"math"

	"github.com/cylvision/dockwatch/internal/domain/direction"
	"github.com/cylvision/dockwatch/internal/domain/model"
)

// DefaultMinTravel is the minimum centroid displacement, in pixels,
// before a crossing test runs. Movements at or below it are treated as
// detector jitter on a stationary object.
const DefaultMinTravel = 10.0

// Side returns the signed cross product locating (x, y) relative to the
// oriented line through (x1, y1) -> (x2, y2). Negative means the point
// lies on the "loaded" half-plane; zero means exactly on the line.
func Side(x, y, x1, y1, x2, y2 float64) float64 {
	return (x-x1)*(y2-y1) - (y-y1)*(x2-x1)
}

// SideOf is Side for model points.
func SideOf(p model.Point, z model.Zone) float64 {
	return Side(p.X(), p.Y(), z.P1.X(), z.P1.Y(), z.P2.X(), z.P2.Y())
}

// Distance is the euclidean distance between two points.
func Distance(a, b model.Point) float64 {
	return math.Hypot(a.X()-b.X(), a.Y()-b.Y())
}

// DetectCrossing decides whether the movement prev -> cur crossed the
// zone segment, and in which direction.
//
// The crossing predicate is side(prev)*side(cur) <= 0: the endpoints
// lie on opposite sides, or cur sits exactly on the line. Direction is
// loaded when side(cur) < 0; the side(cur) == 0 boundary case is
// classified unloaded. That tie-break is arbitrary relative to how an
// operator happened to enter the segment endpoints, but it is frozen:
// flipping it would silently invert all historical direction semantics.
//
// minTravel suppresses jitter; pass DefaultMinTravel unless configured
// otherwise. Movements with distance <= minTravel never cross.
func DetectCrossing(prev, cur model.Point, z model.Zone, minTravel float64) (direction.Direction, bool) {
	if Distance(prev, cur) <= minTravel {
		return "", false
	}
	s1 := SideOf(prev, z)
	s2 := SideOf(cur, z)
	if s1*s2 > 0 {
		return "", false
	}
	if s2 < 0 {
		return direction.Loaded, true
	}
	return direction.Unloaded, true
}

// ValidSegment reports whether a zone's endpoints are distinct. A
// degenerate segment has no sides and can never be crossed.
func ValidSegment(z model.Zone) bool {
	return z.P1 != z.P2
}
