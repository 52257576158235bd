package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns a box that contains nothing. Extending it by any point
// yields a box around that point only.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box has a negative extent on any axis
func (a AABB) IsEmpty() bool {
	return a.Max.X() < a.Min.X() || a.Max.Y() < a.Min.Y() || a.Max.Z() < a.Min.Z()
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Contains checks if other lies completely inside the AABB
func (a AABB) Contains(other AABB) bool {
	return a.ContainsPoint(other.Min) && a.ContainsPoint(other.Max)
}

// Overlaps checks if two AABBs overlap. Touching faces count as overlap.
func (a AABB) Overlaps(other AABB) bool {
	if a.IsEmpty() || other.IsEmpty() {
		return false
	}
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// ExtendPoint grows the box so it contains point
func (a AABB) ExtendPoint(point mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = math.Min(a.Min[i], point[i])
		a.Max[i] = math.Max(a.Max[i], point[i])
	}
	return a
}

// Extend returns the union of both boxes
func (a AABB) Extend(other AABB) AABB {
	if other.IsEmpty() {
		return a
	}
	return a.ExtendPoint(other.Min).ExtendPoint(other.Max)
}

// Expand grows the box by margin on every side
func (a AABB) Expand(margin float64) AABB {
	if a.IsEmpty() {
		return a
	}
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Scale scales the box extents by factor around its center
func (a AABB) Scale(factor float64) AABB {
	if a.IsEmpty() {
		return a
	}
	center := a.Center()
	half := a.Max.Sub(a.Min).Mul(0.5 * factor)
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Center returns the middle point of the box
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis
func (a AABB) Size() mgl64.Vec3 {
	if a.IsEmpty() {
		return mgl64.Vec3{}
	}
	return a.Max.Sub(a.Min)
}

// Corners returns the 8 corners of the box
func (a AABB) Corners() [8]mgl64.Vec3 {
	return [8]mgl64.Vec3{
		{a.Min.X(), a.Min.Y(), a.Min.Z()},
		{a.Max.X(), a.Min.Y(), a.Min.Z()},
		{a.Min.X(), a.Max.Y(), a.Min.Z()},
		{a.Max.X(), a.Max.Y(), a.Min.Z()},
		{a.Min.X(), a.Min.Y(), a.Max.Z()},
		{a.Max.X(), a.Min.Y(), a.Max.Z()},
		{a.Min.X(), a.Max.Y(), a.Max.Z()},
		{a.Max.X(), a.Max.Y(), a.Max.Z()},
	}
}

// Transform returns the axis-aligned box enclosing the 8 transformed corners
func (a AABB) Transform(m mgl64.Mat4) AABB {
	if a.IsEmpty() {
		return a
	}

	corners := a.Corners()
	out := EmptyAABB()
	for _, corner := range corners {
		out = out.ExtendPoint(mgl64.TransformCoordinate(corner, m))
	}

	return out
}
