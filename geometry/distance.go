package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PointSegmentDistance returns the distance from p to the segment s0-s1
func PointSegmentDistance(p, s0, s1 mgl64.Vec3) float64 {
	return math.Sqrt(pointSegmentDistSqr(p, s0, s1))
}

// SegmentSegmentDistance returns the minimum distance between the segments
// a0-a1 and b0-b1.
func SegmentSegmentDistance(a0, a1, b0, b1 mgl64.Vec3) float64 {
	return math.Sqrt(segmentSegmentDistSqr(a0, a1, b0, b1))
}

func pointSegmentDistSqr(p, s0, s1 mgl64.Vec3) float64 {
	v := s1.Sub(s0)
	w := p.Sub(s0)

	c1 := w.Dot(v)
	if c1 <= 0 {
		return w.LenSqr()
	}
	c2 := v.Dot(v)
	if c2 <= c1 {
		return p.Sub(s1).LenSqr()
	}

	return p.Sub(s0.Add(v.Mul(c1 / c2))).LenSqr()
}

// segmentSegmentDistSqr minimises |P(s) - Q(t)|² over s, t in [0, 1].
// The unconstrained minimum is clamped edge by edge, which covers the nine
// regions of the (s, t) square.
func segmentSegmentDistSqr(p0, p1, q0, q1 mgl64.Vec3) float64 {
	u := p1.Sub(p0)
	v := q1.Sub(q0)
	w := p0.Sub(q0)

	a := u.Dot(u)
	b := u.Dot(v)
	c := v.Dot(v)
	d := u.Dot(w)
	e := v.Dot(w)

	if a == 0 {
		return pointSegmentDistSqr(p0, q0, q1)
	}
	if c == 0 {
		return pointSegmentDistSqr(q0, p0, p1)
	}

	det := a*c - b*b
	sN, sD := 0.0, det
	tN, tD := 0.0, det

	if det <= relEpsilon*a*c {
		// Parallel: pin s to 0 and solve for t
		sN, sD = 0, 1
		tN, tD = e, c
	} else {
		sN = b*e - c*d
		tN = a*e - b*d
		if sN < 0 {
			sN = 0
			tN, tD = e, c
		} else if sN > sD {
			sN = sD
			tN, tD = e+b, c
		}
	}

	if tN < 0 {
		tN = 0
		switch {
		case -d < 0:
			sN = 0
		case -d > a:
			sN = sD
		default:
			sN, sD = -d, a
		}
	} else if tN > tD {
		tN = tD
		switch {
		case -d+b < 0:
			sN = 0
		case -d+b > a:
			sN = sD
		default:
			sN, sD = -d+b, a
		}
	}

	sc := sN / sD
	tc := tN / tD

	return w.Add(u.Mul(sc)).Sub(v.Mul(tc)).LenSqr()
}

// DistanceToPoint returns the distance from p to the filled triangle
func (t Triangle) DistanceToPoint(p mgl64.Vec3) float64 {
	return math.Sqrt(t.distSqrToPoint(p))
}

func (t Triangle) distSqrToPoint(p mgl64.Vec3) float64 {
	n := t.Normal()
	if n != (mgl64.Vec3{}) {
		d := n.Dot(p.Sub(t.A))
		if t.containsCoplanar(p.Sub(n.Mul(d)), n) {
			return d * d
		}
	}

	best := pointSegmentDistSqr(p, t.A, t.B)
	best = math.Min(best, pointSegmentDistSqr(p, t.B, t.C))
	return math.Min(best, pointSegmentDistSqr(p, t.C, t.A))
}

// containsCoplanar reports whether q, assumed to lie in the triangle plane,
// falls inside the triangle or on its boundary.
func (t Triangle) containsCoplanar(q, n mgl64.Vec3) bool {
	v := t.Vertices()
	for i := 0; i < 3; i++ {
		edge := v[(i+1)%3].Sub(v[i])
		if n.Dot(edge.Cross(q.Sub(v[i]))) < -relEpsilon*edge.LenSqr() {
			return false
		}
	}
	return true
}

// DistanceToSegment returns the minimum distance between the filled
// triangle and the segment p0-p1. A segment piercing the triangle is at
// distance zero.
func (t Triangle) DistanceToSegment(p0, p1 mgl64.Vec3) float64 {
	return math.Sqrt(t.distSqrToSegment(p0, p1))
}

func (t Triangle) distSqrToSegment(p0, p1 mgl64.Vec3) float64 {
	n := t.Normal()
	if n != (mgl64.Vec3{}) {
		d0 := n.Dot(p0.Sub(t.A))
		d1 := n.Dot(p1.Sub(t.A))
		if d0 != d1 && ((d0 <= 0 && d1 >= 0) || (d0 >= 0 && d1 <= 0)) {
			hit := p0.Add(p1.Sub(p0).Mul(d0 / (d0 - d1)))
			if t.containsCoplanar(hit, n) {
				return 0
			}
		}
	}

	best := math.Min(t.distSqrToPoint(p0), t.distSqrToPoint(p1))
	v := t.Vertices()
	for i := 0; i < 3; i++ {
		best = math.Min(best, segmentSegmentDistSqr(p0, p1, v[i], v[(i+1)%3]))
	}

	return best
}

// Distance returns the minimum distance between two triangles, taken over
// every edge of one triangle against the other filled triangle.
//
// Full containment is not special cased: a triangle nested inside the other
// is only found through the edge distances.
func (t Triangle) Distance(other Triangle) float64 {
	best := math.Inf(1)

	v := other.Vertices()
	for i := 0; i < 3; i++ {
		best = math.Min(best, t.distSqrToSegment(v[i], v[(i+1)%3]))
	}

	v = t.Vertices()
	for i := 0; i < 3; i++ {
		best = math.Min(best, other.distSqrToSegment(v[i], v[(i+1)%3]))
	}

	return math.Sqrt(best)
}
