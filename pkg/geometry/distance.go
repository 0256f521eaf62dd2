package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// segBoxIterations bounds the ternary search used for segment-vs-box
// distance. 64 halvings shrink the parameter interval below 1e-19, far
// beyond float64 resolution, while staying fully deterministic.
const segBoxIterations = 64

// ClosestPointOnSegment returns the point on segment [a, b] closest to p.
func ClosestPointOnSegment(a, b, p r3.Vector) r3.Vector {
	ab := b.Sub(a)
	denom := ab.Dot(ab)
	if denom == 0 {
		return a
	}
	t := clamp(p.Sub(a).Dot(ab)/denom, 0, 1)
	return a.Add(ab.Mul(t))
}

// DistToSegment returns the distance from p to segment [a, b].
func DistToSegment(a, b, p r3.Vector) float64 {
	return ClosestPointOnSegment(a, b, p).Sub(p).Norm()
}

// ClosestPointsSegmentSegment returns the pair of closest points on segments
// [p1, q1] and [p2, q2].
func ClosestPointsSegmentSegment(p1, q1, p2, q2 r3.Vector) (r3.Vector, r3.Vector) {
	const eps = 1e-12
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= eps && e <= eps:
		return p1, p2
	case a <= eps:
		t = clamp(f/e, 0, 1)
	case e <= eps:
		s = clamp(-d1.Dot(r)/a, 0, 1)
	default:
		c := d1.Dot(r)
		b := d1.Dot(d2)
		denom := a*e - b*b
		if denom > eps {
			s = clamp((b*f-c*e)/denom, 0, 1)
		}
		t = (b*s + f) / e
		if t < 0 {
			t = 0
			s = clamp(-c/a, 0, 1)
		} else if t > 1 {
			t = 1
			s = clamp((b-c)/a, 0, 1)
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

// SegmentDistance returns the distance between segments [p1, q1] and [p2, q2].
func SegmentDistance(p1, q1, p2, q2 r3.Vector) float64 {
	cp1, cp2 := ClosestPointsSegmentSegment(p1, q1, p2, q2)
	return cp1.Sub(cp2).Norm()
}

// segmentAABBDistance returns the distance from segment [a, b] to the box.
// Distance to a convex set is convex along the segment, so a fixed-iteration
// ternary search on the segment parameter converges to the minimum.
func segmentAABBDistance(a, b r3.Vector, box AABB) float64 {
	at := func(t float64) float64 {
		p := a.Add(b.Sub(a).Mul(t))
		return box.ClosestPoint(p).Sub(p).Norm()
	}
	lo, hi := 0.0, 1.0
	for range segBoxIterations {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if at(m1) <= at(m2) {
			hi = m2
		} else {
			lo = m1
		}
	}
	return at((lo + hi) / 2)
}

// Distance returns the signed distance between two volumes. Positive values
// are the separation between surfaces; negative values are penetration depth.
// Distance is symmetric and deterministic: identical inputs always yield the
// identical result.
func Distance(a, b Volume) float64 {
	switch av := a.(type) {
	case Point:
		return pointDistance(av, b)
	case Sphere:
		return sphereDistance(av, b)
	case Capsule:
		return capsuleDistance(av, b)
	case AABB:
		return aabbDistance(av, b)
	}
	return math.Inf(1)
}

// Overlaps reports whether two volumes share any space.
func Overlaps(a, b Volume) bool {
	return Distance(a, b) <= 0
}

func pointDistance(p Point, b Volume) float64 {
	switch bv := b.(type) {
	case Point:
		return p.P.Sub(bv.P).Norm()
	case Sphere:
		return p.P.Sub(bv.Center).Norm() - bv.Radius
	case Capsule:
		return DistToSegment(bv.A, bv.B, p.P) - bv.Radius
	case AABB:
		return bv.ClosestPoint(p.P).Sub(p.P).Norm()
	}
	return math.Inf(1)
}

func sphereDistance(s Sphere, b Volume) float64 {
	switch bv := b.(type) {
	case Point:
		return pointDistance(bv, s)
	case Sphere:
		return s.Center.Sub(bv.Center).Norm() - s.Radius - bv.Radius
	case Capsule:
		return DistToSegment(bv.A, bv.B, s.Center) - s.Radius - bv.Radius
	case AABB:
		return bv.ClosestPoint(s.Center).Sub(s.Center).Norm() - s.Radius
	}
	return math.Inf(1)
}

func capsuleDistance(c Capsule, b Volume) float64 {
	switch bv := b.(type) {
	case Point, Sphere:
		return Distance(bv, c)
	case Capsule:
		return SegmentDistance(c.A, c.B, bv.A, bv.B) - c.Radius - bv.Radius
	case AABB:
		return segmentAABBDistance(c.A, c.B, bv) - c.Radius
	}
	return math.Inf(1)
}

func aabbDistance(b AABB, o Volume) float64 {
	switch ov := o.(type) {
	case Point, Sphere, Capsule:
		return Distance(ov, b)
	case AABB:
		return aabbAABBDistance(b, ov)
	}
	return math.Inf(1)
}

// aabbAABBDistance computes the signed distance between two axis-aligned
// boxes: the Euclidean gap when separated, or the (negative) smallest
// penetration depth when overlapping.
func aabbAABBDistance(a, b AABB) float64 {
	gaps := [3]float64{
		math.Max(a.Min.X-b.Max.X, b.Min.X-a.Max.X),
		math.Max(a.Min.Y-b.Max.Y, b.Min.Y-a.Max.Y),
		math.Max(a.Min.Z-b.Max.Z, b.Min.Z-a.Max.Z),
	}

	sumSq := 0.0
	separated := false
	for _, g := range gaps {
		if g > 0 {
			separated = true
			sumSq += g * g
		}
	}
	if separated {
		return math.Sqrt(sumSq)
	}
	// Overlapping: the least-negative gap is the cheapest way out.
	return math.Max(gaps[0], math.Max(gaps[1], gaps[2]))
}
