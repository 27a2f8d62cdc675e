package math

import (
	"testing"
)

func TestVec3FromArray(t *testing.T) {
	got := Vec3FromArray([3]float32{1, 2, 3})
	want := Vec3{1, 2, 3}
	if got != want {
		t.Errorf("Vec3FromArray() = %v, want %v", got, want)
	}
	if got.Array() != [3]float32{1, 2, 3} {
		t.Errorf("Vec3.Array() = %v, want [1 2 3]", got.Array())
	}
}

func TestSwizzle(t *testing.T) {
	tests := []struct {
		order [3]int
		want  Vec3
	}{
		{[3]int{0, 1, 2}, Vec3{1, 2, 3}},
		{[3]int{2, 1, 0}, Vec3{3, 2, 1}},
		{[3]int{2, 0, 1}, Vec3{3, 1, 2}},
	}

	for _, tc := range tests {
		if got := Swizzle([3]float32{1, 2, 3}, tc.order); got != tc.want {
			t.Errorf("Swizzle(%v) = %v, want %v", tc.order, got, tc.want)
		}
	}
}
