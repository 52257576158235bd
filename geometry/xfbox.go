package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// XfBox is an axis-aligned box placed in world space by an affine transform
type XfBox struct {
	Box       AABB
	Transform mgl64.Mat4
	inverse   mgl64.Mat4
}

// NewXfBox builds the oriented box and caches the inverse transform
func NewXfBox(box AABB, transform mgl64.Mat4) XfBox {
	return XfBox{
		Box:       box,
		Transform: transform,
		inverse:   transform.Inv(),
	}
}

// Inverse returns the world to local transform
func (x XfBox) Inverse() mgl64.Mat4 {
	return x.inverse
}

// IsEmpty reports whether the local box is empty
func (x XfBox) IsEmpty() bool {
	return x.Box.IsEmpty()
}

// Corners returns the 8 corners in world space
func (x XfBox) Corners() [8]mgl64.Vec3 {
	corners := x.Box.Corners()
	for i := range corners {
		corners[i] = mgl64.TransformCoordinate(corners[i], x.Transform)
	}
	return corners
}

// Project returns the world axis-aligned box enclosing the oriented box
func (x XfBox) Project() AABB {
	return x.Box.Transform(x.Transform)
}

// ContainsPoint reports whether the world point p lies in the oriented box
func (x XfBox) ContainsPoint(p mgl64.Vec3) bool {
	if x.IsEmpty() {
		return false
	}
	return x.Box.ContainsPoint(mgl64.TransformCoordinate(p, x.inverse))
}

// Expand grows the box so that every world point within epsilon of the
// original box is inside the result. The local margin is epsilon scaled by
// an upper bound of the inverse transform's stretch, so scaled-down
// transforms still produce a large enough box.
func (x XfBox) Expand(epsilon float64) XfBox {
	if epsilon <= 0 || x.IsEmpty() {
		return x
	}

	var stretch float64
	for _, axis := range [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		stretch += mgl64.TransformNormal(axis, x.inverse).LenSqr()
	}

	x.Box = x.Box.Expand(epsilon * math.Sqrt(stretch))
	return x
}

// Intersects reports whether the two oriented boxes overlap, touching
// included. It runs a separating axis test over the world axes, the face
// normals of both boxes and the cross products of their edges. Axes that
// vanish are skipped, which can only turn a separation into an overlap.
// Gaps below the same scale-relative tolerance as the triangle test count
// as touching.
func (x XfBox) Intersects(other XfBox) bool {
	if x.IsEmpty() || other.IsEmpty() {
		return false
	}

	ca := x.Corners()
	cb := other.Corners()
	tol := scaledTolerance(ca[:], cb[:])

	if !x.Project().Expand(tol).Overlaps(other.Project()) {
		return false
	}
	ea := x.edges()
	eb := other.edges()

	var axes []mgl64.Vec3
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		if n, ok := crossAxis(ea[i], ea[j]); ok {
			axes = append(axes, n)
		}
		if n, ok := crossAxis(eb[i], eb[j]); ok {
			axes = append(axes, n)
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if n, ok := crossAxis(ea[i], eb[j]); ok {
				axes = append(axes, n)
			}
		}
	}

	for _, axis := range axes {
		minA, maxA := projectOnto(ca, axis)
		minB, maxB := projectOnto(cb, axis)
		if maxA < minB-tol || maxB < minA-tol {
			return false
		}
	}

	return true
}

// edges returns the world direction of the three local box axes, scaled by
// the box size.
func (x XfBox) edges() [3]mgl64.Vec3 {
	size := x.Box.Size()
	var out [3]mgl64.Vec3
	for i := 0; i < 3; i++ {
		var local mgl64.Vec3
		local[i] = size[i]
		out[i] = mgl64.TransformNormal(local, x.Transform)
	}
	return out
}

func crossAxis(a, b mgl64.Vec3) (mgl64.Vec3, bool) {
	n := a.Cross(b)
	lenSqr := n.LenSqr()
	if lenSqr == 0 || lenSqr <= relEpsilon*relEpsilon*a.LenSqr()*b.LenSqr() {
		return mgl64.Vec3{}, false
	}
	return n.Mul(1 / math.Sqrt(lenSqr)), true
}

func projectOnto(points [8]mgl64.Vec3, axis mgl64.Vec3) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		d := axis.Dot(p)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}
