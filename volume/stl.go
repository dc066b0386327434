package volume

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/cutsim/cutsim/vec3"
)

// facet is one triangle of an STL mesh, with the edge vectors and inverse
// squared edge lengths precomputed so the closest-feature test in the inner
// Dist loop does no per-query division.
type facet struct {
	normal     vec3.Vec
	v0, v1, v2 vec3.Vec

	e0, e1, e2 vec3.Vec // v1-v0, v2-v1, v0-v2
	invLen0    float32
	invLen1    float32
	invLen2    float32
}

func newFacet(normal, v0, v1, v2 vec3.Vec) facet {
	e0 := vec3.Sub(v1, v0)
	e1 := vec3.Sub(v2, v1)
	e2 := vec3.Sub(v0, v2)
	return facet{
		normal: normal, v0: v0, v1: v1, v2: v2,
		e0: e0, e1: e1, e2: e2,
		invLen0: safeInv(vec3.NormSquared(e0)),
		invLen1: safeInv(vec3.NormSquared(e1)),
		invLen2: safeInv(vec3.NormSquared(e2)),
	}
}

func safeInv(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return 1 / x
}

// closestPoint returns the closest point on the triangle to p, via the
// standard plane-projection + barycentric-clamp feature test: the region
// the foot of the perpendicular falls into (face interior, an edge, or a
// vertex) determines which feature actually holds the closest point.
func (f *facet) closestPoint(p vec3.Vec) vec3.Vec {
	planeDist := vec3.Dot(vec3.Sub(p, f.v0), f.normal)
	proj := vec3.Sub(p, vec3.Scale(planeDist, f.normal))

	// Edge-side tests via 2D cross products in the triangle's plane.
	c0 := vec3.Dot(vec3.Cross(f.e0, vec3.Sub(proj, f.v0)), f.normal)
	c1 := vec3.Dot(vec3.Cross(f.e1, vec3.Sub(proj, f.v1)), f.normal)
	c2 := vec3.Dot(vec3.Cross(f.e2, vec3.Sub(proj, f.v2)), f.normal)

	switch {
	case c0 >= 0 && c1 >= 0 && c2 >= 0:
		return proj // interior
	case c0 < 0:
		return clampToSegment(proj, f.v0, f.e0, f.invLen0)
	case c1 < 0:
		return clampToSegment(proj, f.v1, f.e1, f.invLen1)
	default:
		return clampToSegment(proj, f.v2, f.e2, f.invLen2)
	}
}

func clampToSegment(p, origin, edge vec3.Vec, invLenSq float32) vec3.Vec {
	t := vec3.Dot(vec3.Sub(p, origin), edge) * invLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return vec3.Add(origin, vec3.Scale(t, edge))
}

// mesh is a signed-distance Volume backed by an STL triangle mesh: the
// answer is the signed distance of smallest magnitude across all facets,
// with sign taken from the facet normal at the closest feature.
type mesh struct {
	facets []facet
	bounds vec3.Box
	tag    Tag
}

// NewMeshFromSTL reads a binary or ASCII STL file and builds a Volume from it.
func NewMeshFromSTL(path string, tag Tag) (Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("volume: open stl %q: %w", path, err)
	}
	defer f.Close()
	facets, err := readSTL(f)
	if err != nil {
		return nil, fmt.Errorf("volume: parse stl %q: %w", path, err)
	}
	if len(facets) == 0 {
		return nil, fmt.Errorf("volume: stl %q has no facets", path)
	}
	bb := vec3.NewEmptyBox()
	for _, ft := range facets {
		bb = bb.IncludePoint(ft.v0)
		bb = bb.IncludePoint(ft.v1)
		bb = bb.IncludePoint(ft.v2)
	}
	return &mesh{facets: facets, bounds: bb, tag: tag}, nil
}

func (m *mesh) Dist(p vec3.Vec) float32 {
	best := float32(math.MaxFloat32)
	bestSigned := float32(0)
	for i := range m.facets {
		ft := &m.facets[i]
		cp := ft.closestPoint(p)
		d := vec3.Distance(p, cp)
		if d < best {
			best = d
			// Outward-facing facet normal: a point on the interior side of
			// the facet has p-cp pointing against the normal (sign < 0),
			// and Volume's contract wants that case positive (inside).
			sign := vec3.Dot(vec3.Sub(p, cp), ft.normal)
			if sign < 0 {
				bestSigned = d
			} else {
				bestSigned = -d
			}
		}
	}
	return bestSigned
}

func (m *mesh) Bounds() vec3.Box { return m.bounds }
func (m *mesh) Color() Tag       { return m.tag }

// readSTL dispatches to the binary or ASCII STL reader based on the header.
func readSTL(r io.Reader) ([]facet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("solid")) {
		// Still could be binary with a "solid" prefix; binary STL is
		// identified definitively by its 80-byte header + uint32 count
		// matching the remaining stream length, so try ASCII first and
		// fall back to binary parsing if the ASCII scan finds no facets.
		facets, asciiErr := readSTLASCII(bufio.NewReader(bytes.NewReader(data)))
		if asciiErr == nil && len(facets) > 0 {
			return facets, nil
		}
	}
	return readSTLBinary(bufio.NewReader(bytes.NewReader(data)))
}

func readSTLBinary(r *bufio.Reader) ([]facet, error) {
	var header [80]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading facet count: %w", err)
	}
	facets := make([]facet, 0, count)
	var buf [50]byte
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("reading facet %d: %w", i, err)
		}
		n := readVec(buf[0:12])
		v0 := readVec(buf[12:24])
		v1 := readVec(buf[24:36])
		v2 := readVec(buf[36:48])
		facets = append(facets, newFacet(n, v0, v1, v2))
	}
	return facets, nil
}

func readVec(b []byte) vec3.Vec {
	return vec3.Vec{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
	}
}

func readSTLASCII(r *bufio.Reader) ([]facet, error) {
	var facets []facet
	var normal vec3.Vec
	var verts []vec3.Vec
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			if len(fields) != 5 || fields[1] != "normal" {
				return nil, errors.New("malformed facet normal line")
			}
			normal = vec3.Vec{X: parseFloat(fields[2]), Y: parseFloat(fields[3]), Z: parseFloat(fields[4])}
			verts = verts[:0]
		case "vertex":
			if len(fields) != 4 {
				return nil, errors.New("malformed vertex line")
			}
			verts = append(verts, vec3.Vec{X: parseFloat(fields[1]), Y: parseFloat(fields[2]), Z: parseFloat(fields[3])})
		case "endfacet":
			if len(verts) != 3 {
				return nil, errors.New("facet without exactly 3 vertices")
			}
			facets = append(facets, newFacet(normal, verts[0], verts[1], verts[2]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return facets, nil
}

func parseFloat(s string) float32 {
	var f float64
	fmt.Sscanf(s, "%g", &f)
	return float32(f)
}
