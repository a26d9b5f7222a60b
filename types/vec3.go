package types

import "math"

func (f Vec3) Add(o Vec3) Vec3 {
	return Vec3{f[0] + o[0], f[1] + o[1], f[2] + o[2]}
}

func (f Vec3) Sub(o Vec3) Vec3 {
	return Vec3{f[0] - o[0], f[1] - o[1], f[2] - o[2]}
}

func (f Vec3) Scale(s float32) Vec3 {
	return Vec3{f[0] * s, f[1] * s, f[2] * s}
}

func (f Vec3) Dot(o Vec3) float32 {
	return float32(f[0]*o[0]) + float32(f[1]*o[1]) + float32(f[2]*o[2])
}

func (f Vec3) Length() float32 {
	return float32(math.Sqrt(float64(f.Dot(f))))
}
