package volume

import (
	"errors"

	"github.com/cutsim/cutsim/vec3"
)

type sphere struct {
	center vec3.Vec
	r      float32
	tag    Tag
}

// NewSphere creates a sphere of radius r centered at c, tagged for CSG colour purposes.
func NewSphere(c vec3.Vec, r float32, tag Tag) (Volume, error) {
	if r <= 0 {
		return nil, errors.New("volume: zero or negative sphere radius")
	}
	return &sphere{center: c, r: r, tag: tag}, nil
}

func (s *sphere) Dist(p vec3.Vec) float32 {
	return s.r - vec3.Distance(p, s.center)
}

func (s *sphere) Bounds() vec3.Box {
	r := vec3.Vec{X: s.r, Y: s.r, Z: s.r}
	return vec3.NewBox(vec3.Sub(s.center, r), vec3.Add(s.center, r))
}

func (s *sphere) Color() Tag { return s.tag }
