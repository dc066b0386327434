//go:build !tinygo && cgo

package viewer

import "github.com/chewxy/math32"

// Column-major 4x4 matrices, the layout gl.UniformMatrix4fv expects.
// No matrix library appears anywhere in the example pack (mathgl/glm is
// never imported), so this handful of well-known camera-matrix formulas
// is hand-rolled rather than grounded on a teacher file.

func identity4() [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func mul4(a, b [16]float32) [16]float32 {
	var r [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

func sub3(a, b [3]float32) [3]float32 { return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func norm3(v [3]float32) [3]float32 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

func cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot3(a, b [3]float32) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func lookAt(eye, center, up [3]float32) [16]float32 {
	f := norm3(sub3(center, eye))
	s := norm3(cross3(f, up))
	u := cross3(s, f)
	return [16]float32{
		s[0], u[0], -f[0], 0,
		s[1], u[1], -f[1], 0,
		s[2], u[2], -f[2], 0,
		-dot3(s, eye), -dot3(u, eye), dot3(f, eye), 1,
	}
}

func perspective(fovy, aspect, near, far float32) [16]float32 {
	t := math32.Tan(fovy / 2)
	var m [16]float32
	m[0] = 1 / (aspect * t)
	m[5] = 1 / t
	m[10] = -(far + near) / (far - near)
	m[11] = -1
	m[14] = -(2 * far * near) / (far - near)
	return m
}
