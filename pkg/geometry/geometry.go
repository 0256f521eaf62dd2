// Package geometry provides the collision-approximation volumes used by the
// constraint evaluator.
//
// Scene entities are approximated by simple convex volumes: points (reference
// markers like the TCP), spheres, capsules (limbs, robot links), and
// axis-aligned boxes (table, workpiece, housings). Distances between any pair
// of volumes are exact except segment-vs-box, which is resolved numerically.
//
// All distances are signed: a negative value means the volumes interpenetrate
// by that depth. Callers that only care about separation should clamp at zero.
package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Volume is a convex collision-approximation volume in world coordinates.
type Volume interface {
	// Translate returns a copy of the volume moved by v.
	Translate(v r3.Vector) Volume

	// Bounds returns a conservative axis-aligned bounding box.
	Bounds() AABB

	fmt.Stringer
}

// =============================================================================
// Point
// =============================================================================

// Point is a zero-extent reference marker, e.g. a tool center point.
type Point struct {
	P r3.Vector
}

// Translate returns the point moved by v.
func (p Point) Translate(v r3.Vector) Volume { return Point{P: p.P.Add(v)} }

// Bounds returns a degenerate box at the point.
func (p Point) Bounds() AABB { return AABB{Min: p.P, Max: p.P} }

func (p Point) String() string {
	return fmt.Sprintf("point(%.3f, %.3f, %.3f)", p.P.X, p.P.Y, p.P.Z)
}

// =============================================================================
// Sphere
// =============================================================================

// Sphere is a ball with a center and radius.
type Sphere struct {
	Center r3.Vector
	Radius float64
}

// Translate returns the sphere moved by v.
func (s Sphere) Translate(v r3.Vector) Volume {
	return Sphere{Center: s.Center.Add(v), Radius: s.Radius}
}

// Bounds returns the enclosing axis-aligned box.
func (s Sphere) Bounds() AABB {
	r := r3.Vector{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func (s Sphere) String() string { return fmt.Sprintf("sphere(r=%.3f)", s.Radius) }

// =============================================================================
// Capsule
// =============================================================================

// Capsule is a line segment from A to B surrounded by Radius on all sides.
// It approximates elongated bodies such as human limbs and robot links.
type Capsule struct {
	A, B   r3.Vector
	Radius float64
}

// Translate returns the capsule moved by v.
func (c Capsule) Translate(v r3.Vector) Volume {
	return Capsule{A: c.A.Add(v), B: c.B.Add(v), Radius: c.Radius}
}

// Bounds returns the enclosing axis-aligned box.
func (c Capsule) Bounds() AABB {
	r := r3.Vector{X: c.Radius, Y: c.Radius, Z: c.Radius}
	lo := r3.Vector{X: math.Min(c.A.X, c.B.X), Y: math.Min(c.A.Y, c.B.Y), Z: math.Min(c.A.Z, c.B.Z)}
	hi := r3.Vector{X: math.Max(c.A.X, c.B.X), Y: math.Max(c.A.Y, c.B.Y), Z: math.Max(c.A.Z, c.B.Z)}
	return AABB{Min: lo.Sub(r), Max: hi.Add(r)}
}

func (c Capsule) String() string { return fmt.Sprintf("capsule(r=%.3f)", c.Radius) }

// =============================================================================
// AABB
// =============================================================================

// AABB is an axis-aligned box given by its minimum and maximum corners.
type AABB struct {
	Min, Max r3.Vector
}

// NewAABB constructs a box from a center and per-axis half extents.
func NewAABB(center, halfExtent r3.Vector) AABB {
	return AABB{Min: center.Sub(halfExtent), Max: center.Add(halfExtent)}
}

// YawAABB returns the axis-aligned box enclosing a box of the given half
// extents rotated by yaw degrees about the vertical axis. Scene entities are
// only ever rotated about Z, so the enclosing box stays tight in Z.
func YawAABB(center, halfExtent r3.Vector, yawDeg float64) AABB {
	yaw := yawDeg * math.Pi / 180
	c, s := math.Abs(math.Cos(yaw)), math.Abs(math.Sin(yaw))
	he := r3.Vector{
		X: halfExtent.X*c + halfExtent.Y*s,
		Y: halfExtent.X*s + halfExtent.Y*c,
		Z: halfExtent.Z,
	}
	return NewAABB(center, he)
}

// Translate returns the box moved by v.
func (b AABB) Translate(v r3.Vector) Volume {
	return AABB{Min: b.Min.Add(v), Max: b.Max.Add(v)}
}

// Bounds returns the box itself.
func (b AABB) Bounds() AABB { return b }

// Center returns the box center.
func (b AABB) Center() r3.Vector { return b.Min.Add(b.Max).Mul(0.5) }

// HalfExtent returns the per-axis half sizes.
func (b AABB) HalfExtent() r3.Vector { return b.Max.Sub(b.Min).Mul(0.5) }

// ClosestPoint returns the point inside the box closest to p.
func (b AABB) ClosestPoint(p r3.Vector) r3.Vector {
	return r3.Vector{
		X: clamp(p.X, b.Min.X, b.Max.X),
		Y: clamp(p.Y, b.Min.Y, b.Max.Y),
		Z: clamp(p.Z, b.Min.Z, b.Max.Z),
	}
}

// Contains reports whether p lies inside or on the boundary of the box.
func (b AABB) Contains(p r3.Vector) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Overlaps reports whether the two boxes share any volume (touching counts).
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

func (b AABB) String() string {
	he := b.HalfExtent()
	return fmt.Sprintf("box(%.3f x %.3f x %.3f)", 2*he.X, 2*he.Y, 2*he.Z)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
