package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Triangle is a value type made of three pairwise distinct points.
//
// Distinct vertices are a precondition: callers must reject
// degenerate input with IsDegenerate before building a Triangle. Methods do
// not check it and give meaningless answers when it is violated.
type Triangle struct {
	A, B, C mgl64.Vec3
}

// IsDegenerate reports whether a, b and c do not span a well-defined plane
// (coincident or collinear points).
func IsDegenerate(a, b, c mgl64.Vec3) bool {
	return faceNormal(a, b, c) == mgl64.Vec3{}
}

// Vertices returns the three corners in order
func (t Triangle) Vertices() [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{t.A, t.B, t.C}
}

// Normal returns the unit normal, or the zero vector when the triangle has
// no well-defined normal.
func (t Triangle) Normal() mgl64.Vec3 {
	return faceNormal(t.A, t.B, t.C)
}

// Plane returns the supporting plane of the triangle
func (t Triangle) Plane() Plane {
	return NewPlane(t.A, t.B, t.C)
}

// BoundingBox returns the axis-aligned box of the three vertices
func (t Triangle) BoundingBox() AABB {
	return EmptyAABB().ExtendPoint(t.A).ExtendPoint(t.B).ExtendPoint(t.C)
}

// Transform returns the triangle with every vertex mapped through m
func (t Triangle) Transform(m mgl64.Mat4) Triangle {
	return Triangle{
		A: mgl64.TransformCoordinate(t.A, m),
		B: mgl64.TransformCoordinate(t.B, m),
		C: mgl64.TransformCoordinate(t.C, m),
	}
}

// IntersectEpsilon reports whether the triangles intersect or lie within
// epsilon of each other. An epsilon of zero is the exact test.
func (t Triangle) IntersectEpsilon(other Triangle, epsilon float64) bool {
	if epsilon <= 0 {
		return t.Intersect(other)
	}
	if t.Intersect(other) {
		return true
	}
	return t.Distance(other) <= epsilon
}

// Intersect reports whether the two triangles share at least one point.
//
// Each triangle's vertices are classified against the other triangle's
// plane. When all three lie strictly on one side there is no intersection.
// Otherwise both triangles cut the common line of the two planes in an
// interval, and the triangles intersect when those intervals overlap.
// Coplanar triangles are resolved with a 2D overlap test in the shared
// plane.
func (t Triangle) Intersect(other Triangle) bool {
	v1 := t.Vertices()
	v2 := other.Vertices()

	plane1 := t.Plane()
	plane2 := other.Plane()
	if plane1.Normal == (mgl64.Vec3{}) || plane2.Normal == (mgl64.Vec3{}) {
		return false
	}

	tol := tolerance(v1, v2)

	d1 := classify(plane2, v1, tol)
	d2 := classify(plane1, v2, tol)
	if strictlyOneSide(d1) || strictlyOneSide(d2) {
		return false
	}

	if allZero(d1) || allZero(d2) {
		return coplanarOverlap(v1, v2, plane1.Normal, tol)
	}

	// Nearly parallel planes still cross along a line, only exactly
	// parallel normals leave no direction to measure along.
	dir := plane1.Normal.Cross(plane2.Normal)
	if dir.LenSqr() == 0 {
		return coplanarOverlap(v1, v2, plane1.Normal, tol)
	}
	dir = dir.Normalize()

	lo1, hi1 := lineInterval(v1, d1, dir)
	lo2, hi2 := lineInterval(v2, d2, dir)

	return hi1 >= lo2-tol && hi2 >= lo1-tol
}

// tolerance returns the absolute length below which distances are treated
// as zero, scaled to the magnitude of the coordinates involved.
func tolerance(v1, v2 [3]mgl64.Vec3) float64 {
	return scaledTolerance(v1[:], v2[:])
}

// scaledTolerance is 1e-10 times the largest coordinate magnitude of the
// points, and never less than 1e-10.
func scaledTolerance(points ...[]mgl64.Vec3) float64 {
	scale := 1.0
	for _, set := range points {
		for _, v := range set {
			for i := 0; i < 3; i++ {
				scale = math.Max(scale, math.Abs(v[i]))
			}
		}
	}
	return 1e-10 * scale
}

// classify returns the signed distances of vertices to plane, snapping
// values within tol to exactly zero.
func classify(plane Plane, vertices [3]mgl64.Vec3, tol float64) [3]float64 {
	var d [3]float64
	for i, v := range vertices {
		d[i] = plane.SignedDistance(v)
		if math.Abs(d[i]) <= tol {
			d[i] = 0
		}
	}
	return d
}

func strictlyOneSide(d [3]float64) bool {
	return (d[0] > 0 && d[1] > 0 && d[2] > 0) || (d[0] < 0 && d[1] < 0 && d[2] < 0)
}

func allZero(d [3]float64) bool {
	return d[0] == 0 && d[1] == 0 && d[2] == 0
}

// lineInterval returns the extent, measured along dir, of the segment where
// the triangle crosses the other plane: vertices lying on the plane plus the
// crossing points of edges whose endpoints lie on opposite sides.
func lineInterval(v [3]mgl64.Vec3, d [3]float64, dir mgl64.Vec3) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	add := func(p mgl64.Vec3) {
		s := dir.Dot(p)
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}

	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		if d[i] == 0 {
			add(v[i])
		}
		if (d[i] < 0 && d[j] > 0) || (d[i] > 0 && d[j] < 0) {
			add(v[i].Add(v[j].Sub(v[i]).Mul(d[i] / (d[i] - d[j]))))
		}
	}

	return lo, hi
}

type point2 [2]float64

// coplanarOverlap projects both triangles onto the coordinate plane where
// the shared normal is dominant and tests them for overlap there.
func coplanarOverlap(v1, v2 [3]mgl64.Vec3, normal mgl64.Vec3, tol float64) bool {
	axis := 0
	for i := 1; i < 3; i++ {
		if math.Abs(normal[i]) > math.Abs(normal[axis]) {
			axis = i
		}
	}
	i0, i1 := (axis+1)%3, (axis+2)%3

	var a, b [3]point2
	for k := 0; k < 3; k++ {
		a[k] = point2{v1[k][i0], v1[k][i1]}
		b[k] = point2{v2[k][i0], v2[k][i1]}
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if segmentsIntersect2D(a[i], a[(i+1)%3], b[j], b[(j+1)%3], tol) {
				return true
			}
		}
	}

	// No edge crossings: either one triangle holds the other, or they are disjoint
	return pointInTriangle2D(a[0], b, tol) || pointInTriangle2D(b[0], a, tol)
}

func orient2D(p, q, r point2) float64 {
	return (q[0]-p[0])*(r[1]-p[1]) - (q[1]-p[1])*(r[0]-p[0])
}

func length2D(p, q point2) float64 {
	return math.Hypot(q[0]-p[0], q[1]-p[1])
}

// snap zeroes an orientation value when the point lies within tol of the
// line through the edge of length edgeLen.
func snap(o, edgeLen, tol float64) float64 {
	if math.Abs(o) <= tol*edgeLen {
		return 0
	}
	return o
}

func onSegment2D(p, q, r point2, tol float64) bool {
	return r[0] >= math.Min(p[0], q[0])-tol && r[0] <= math.Max(p[0], q[0])+tol &&
		r[1] >= math.Min(p[1], q[1])-tol && r[1] <= math.Max(p[1], q[1])+tol
}

func segmentsIntersect2D(p1, p2, q1, q2 point2, tol float64) bool {
	lp := length2D(p1, p2)
	lq := length2D(q1, q2)

	o1 := snap(orient2D(p1, p2, q1), lp, tol)
	o2 := snap(orient2D(p1, p2, q2), lp, tol)
	o3 := snap(orient2D(q1, q2, p1), lq, tol)
	o4 := snap(orient2D(q1, q2, p2), lq, tol)

	if ((o1 > 0 && o2 < 0) || (o1 < 0 && o2 > 0)) &&
		((o3 > 0 && o4 < 0) || (o3 < 0 && o4 > 0)) {
		return true
	}

	return (o1 == 0 && onSegment2D(p1, p2, q1, tol)) ||
		(o2 == 0 && onSegment2D(p1, p2, q2, tol)) ||
		(o3 == 0 && onSegment2D(q1, q2, p1, tol)) ||
		(o4 == 0 && onSegment2D(q1, q2, p2, tol))
}

func pointInTriangle2D(p point2, tri [3]point2, tol float64) bool {
	var pos, neg bool
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		o := snap(orient2D(tri[i], tri[j], p), length2D(tri[i], tri[j]), tol)
		if o > 0 {
			pos = true
		} else if o < 0 {
			neg = true
		}
	}
	return !(pos && neg)
}
