// Package math provides vector types shared by tile formats.
package math

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec3FromArray builds a vector from components in x, y, z order.
func Vec3FromArray(a [3]float32) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}

// Array returns the components in x, y, z order.
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Swizzle builds a vector whose i-th component is a[order[i]].
func Swizzle(a [3]float32, order [3]int) Vec3 {
	return Vec3{a[order[0]], a[order[1]], a[order[2]]}
}
