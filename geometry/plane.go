package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane is defined by the equation: Normal · p - Distance = 0
// Normal is unit length, or zero when the plane was built from a
// degenerate triangle.
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

// NewPlane builds the plane through a, b and c. The normal follows the
// right-hand rule on (b-a) x (c-a).
func NewPlane(a, b, c mgl64.Vec3) Plane {
	n := faceNormal(a, b, c)
	return Plane{Normal: n, Distance: n.Dot(a)}
}

// SignedDistance returns the signed distance of p to the plane
func (p Plane) SignedDistance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) - p.Distance
}

// IsInHalfSpace reports whether point lies on the side the normal points to.
// Points on the plane are inside.
func (p Plane) IsInHalfSpace(point mgl64.Vec3) bool {
	return p.SignedDistance(point) >= 0
}

// IntersectLine intersects the infinite line through p0 and p1 with the
// plane. It fails when the line is parallel to the plane.
func (p Plane) IntersectLine(p0, p1 mgl64.Vec3) (mgl64.Vec3, bool) {
	dir := p1.Sub(p0)
	denom := p.Normal.Dot(dir)
	if math.Abs(denom) <= relEpsilon*dir.Len() {
		return mgl64.Vec3{}, false
	}
	t := (p.Distance - p.Normal.Dot(p0)) / denom
	return p0.Add(dir.Mul(t)), true
}

// relEpsilon is the relative tolerance used to detect vanishing cross
// products and parallel directions.
const relEpsilon = 1e-12

// faceNormal returns the unit normal of the triangle a, b, c, or the zero
// vector when the edges are (nearly) parallel.
func faceNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	e0 := b.Sub(a)
	e1 := c.Sub(a)
	n := e0.Cross(e1)
	lenSqr := n.LenSqr()
	scale := e0.LenSqr() * e1.LenSqr()
	if lenSqr == 0 || lenSqr <= relEpsilon*relEpsilon*scale {
		return mgl64.Vec3{}
	}
	return n.Mul(1 / math.Sqrt(lenSqr))
}
