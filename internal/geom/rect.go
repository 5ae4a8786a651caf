package geom

import "math"

// Rect is an axis-aligned real-valued rectangle, half-open on the max edge
// to match Go's image.Rectangle convention.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewRect builds a Rect from an image width and height with origin at (0,0).
func NewRect(w, h int) Rect {
	return Rect{MinX: 0, MinY: 0, MaxX: float64(w), MaxY: float64(h)}
}

// Width returns the rect's width.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the rect's height.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the rect's center point.
func (r Rect) Center() Vec {
	return Vec{(r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2}
}

// Contains reports whether p lies within r (inclusive of the min edges,
// exclusive of the max edges).
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Y >= r.MinY && p.Y < r.MaxY
}

// ClipSegment clips the infinite line through origin+t*dir (dir must be
// unit length) against r and returns the [tMin, tMax] parameter range of
// the intersection. ok is false if the line misses r entirely.
//
// This is the Liang-Barsky formulation: each of the four half-plane
// constraints tightens [tMin, tMax] in turn.
func (r Rect) ClipSegment(origin, dir Vec) (tMin, tMax float64, ok bool) {
	tMin, tMax = math.Inf(-1), math.Inf(1)

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > tMax {
				return false
			}
			if t > tMin {
				tMin = t
			}
		} else {
			if t < tMin {
				return false
			}
			if t < tMax {
				tMax = t
			}
		}
		return true
	}

	if !clip(-dir.X, origin.X-r.MinX) {
		return 0, 0, false
	}
	if !clip(dir.X, r.MaxX-origin.X) {
		return 0, 0, false
	}
	if !clip(-dir.Y, origin.Y-r.MinY) {
		return 0, 0, false
	}
	if !clip(dir.Y, r.MaxY-origin.Y) {
		return 0, 0, false
	}
	if tMin > tMax {
		return 0, 0, false
	}
	return tMin, tMax, true
}
