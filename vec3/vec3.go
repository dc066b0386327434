// Package vec3 provides the 3D vector and axis-aligned bounding box
// primitives used throughout cutsim. Arithmetic is delegated to the
// teacher's own github.com/soypat/geometry/ms3 package (the same one
// gsdf.go imports for its Vec/Box concern) rather than hand-rolled: Vec
// is a named type convertible to ms3.Vec so the free-function call
// style (vec3.Add(a, b) rather than a.Add(b)) that the rest of cutsim
// already uses is preserved, while the actual math runs through ms3.
package vec3

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// Vec is a point or direction in 3D space. It is layout-identical to
// ms3.Vec so conversion between the two is free.
type Vec struct {
	X, Y, Z float32
}

func toMS3(a Vec) ms3.Vec   { return ms3.Vec{X: a.X, Y: a.Y, Z: a.Z} }
func fromMS3(a ms3.Vec) Vec { return Vec{X: a.X, Y: a.Y, Z: a.Z} }

// Add returns a+b.
func Add(a, b Vec) Vec {
	return fromMS3(ms3.Add(toMS3(a), toMS3(b)))
}

// Sub returns a-b.
func Sub(a, b Vec) Vec {
	return fromMS3(ms3.Sub(toMS3(a), toMS3(b)))
}

// Neg returns -a.
func Neg(a Vec) Vec {
	return fromMS3(ms3.Scale(-1, toMS3(a)))
}

// Scale returns a vector scaled by s.
func Scale(s float32, a Vec) Vec {
	return fromMS3(ms3.Scale(s, toMS3(a)))
}

// AddScalar adds s to every component of a.
func AddScalar(s float32, a Vec) Vec {
	return fromMS3(ms3.AddScalar(s, toMS3(a)))
}

// Dot returns the dot product of a and b.
func Dot(a, b Vec) float32 {
	return ms3.Dot(toMS3(a), toMS3(b))
}

// Cross returns the cross product a×b.
func Cross(a, b Vec) Vec {
	return fromMS3(ms3.Cross(toMS3(a), toMS3(b)))
}

// Norm returns the Euclidean length of a.
func Norm(a Vec) float32 {
	return ms3.Norm(toMS3(a))
}

// NormSquared returns the squared Euclidean length of a, avoiding the sqrt.
func NormSquared(a Vec) float32 {
	return ms3.Dot(toMS3(a), toMS3(a))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec) float32 {
	return ms3.Norm(ms3.Sub(toMS3(a), toMS3(b)))
}

// Normalize returns a scaled to unit length. Returns the zero vector
// if a is the zero vector, matching ms3.Unit's behaviour at the origin.
func Normalize(a Vec) Vec {
	if a == (Vec{}) {
		return Vec{}
	}
	return fromMS3(ms3.Unit(toMS3(a)))
}

// Min returns the component-wise minimum of a and b.
func Min(a, b Vec) Vec {
	return fromMS3(ms3.MinElem(toMS3(a), toMS3(b)))
}

// Max returns the component-wise maximum of a and b.
func Max(a, b Vec) Vec {
	return fromMS3(ms3.MaxElem(toMS3(a), toMS3(b)))
}

// Abs returns the component-wise absolute value of a.
func Abs(a Vec) Vec {
	return fromMS3(ms3.AbsElem(toMS3(a)))
}

// MaxComponent returns the largest of the three components.
func (a Vec) MaxComponent() float32 {
	return toMS3(a).Max()
}

// MinComponent returns the smallest of the three components.
func (a Vec) MinComponent() float32 {
	return toMS3(a).Min()
}

// Array returns the vector as a [3]float32 in X,Y,Z order.
func (a Vec) Array() [3]float32 {
	return [3]float32{a.X, a.Y, a.Z}
}

// RotateAboutAxis rotates a about an arbitrary axis (need not be unit
// length; it is normalized internally) by angle radians, using Rodrigues'
// rotation formula built from ms3's Dot/Cross/Scale/Add primitives.
func RotateAboutAxis(p Vec, axis Vec, angle float32) Vec {
	k := Normalize(axis)
	sinA, cosA := math32.Sincos(angle)
	term1 := Scale(cosA, p)
	term2 := Scale(sinA, Cross(k, p))
	term3 := Scale(Dot(k, p)*(1-cosA), k)
	return Add(Add(term1, term2), term3)
}

// RotateXZ applies the Tait-Bryan composite rotation used throughout the
// volume package: rotate about the X axis by alpha, then about the Z axis
// by gamma.
func RotateXZ(p Vec, alpha, gamma float32) Vec {
	p = RotateAboutAxis(p, Vec{X: 1}, alpha)
	p = RotateAboutAxis(p, Vec{Z: 1}, gamma)
	return p
}

// InverseRotateXZ undoes RotateXZ: rotate about Z by -gamma, then about X by -alpha.
func InverseRotateXZ(p Vec, alpha, gamma float32) Vec {
	p = RotateAboutAxis(p, Vec{Z: 1}, -gamma)
	p = RotateAboutAxis(p, Vec{X: 1}, -alpha)
	return p
}
