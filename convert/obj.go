package convert

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/printforge/slicerun/core"
)

// OBJ converts Wavefront OBJ geometry to binary STL. Only vertex and face
// statements matter for slicing; normals, texture coordinates, groups and
// materials are skipped. Polygonal faces are fan-triangulated.
type OBJ struct{}

type vec3 struct {
	x, y, z float32
}

// Convert parses the OBJ text and encodes the triangles as binary STL:
// 80-byte header, uint32 triangle count, then per triangle a computed facet
// normal, three vertices and a zero attribute word, all little-endian.
func (OBJ) Convert(data []byte, onProgress func(float64)) ([]byte, error) {
	fail := func(reason string, err error) ([]byte, error) {
		return nil, &core.ConversionError{Extension: "obj", Reason: reason, Err: err}
	}

	var vertices []vec3
	var triangles [][3]vec3

	// First pass counts lines so parsing progress has a denominator.
	total := bytes.Count(data, []byte("\n")) + 1
	lineNo := 0

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		if onProgress != nil && lineNo%512 == 0 {
			// Parsing is the first half of the conversion work.
			onProgress(0.5 * float64(lineNo) / float64(total))
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return fail(fmt.Sprintf("line %d: vertex needs 3 coordinates", lineNo), nil)
			}
			var v vec3
			for i, dst := range []*float32{&v.x, &v.y, &v.z} {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return fail(fmt.Sprintf("line %d: bad vertex coordinate", lineNo), err)
				}
				*dst = float32(f)
			}
			vertices = append(vertices, v)
		case "f":
			if len(fields) < 4 {
				return fail(fmt.Sprintf("line %d: face needs at least 3 vertices", lineNo), nil)
			}
			corners := make([]vec3, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := resolveIndex(ref, len(vertices))
				if err != nil {
					return fail(fmt.Sprintf("line %d: %v", lineNo, err), nil)
				}
				corners = append(corners, vertices[idx])
			}
			for i := 1; i < len(corners)-1; i++ {
				triangles = append(triangles, [3]vec3{corners[0], corners[i], corners[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fail("read input", err)
	}
	if len(triangles) == 0 {
		return fail("no faces found", nil)
	}

	out, err := encodeBinarySTL(triangles, func(frac float64) {
		if onProgress != nil {
			onProgress(0.5 + 0.5*frac)
		}
	})
	if err != nil {
		return fail("encode stl", err)
	}
	if onProgress != nil {
		onProgress(1)
	}
	return out, nil
}

// resolveIndex parses an OBJ face vertex reference ("7", "7/1", "7//2",
// "-1") into a zero-based vertex index.
func resolveIndex(ref string, vertexCount int) (int, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", ref)
	}
	if n < 0 {
		n = vertexCount + n + 1 // relative indices count back from the end
	}
	if n < 1 || n > vertexCount {
		return 0, fmt.Errorf("face index %d out of range (have %d vertices)", n, vertexCount)
	}
	return n - 1, nil
}

func encodeBinarySTL(triangles [][3]vec3, onProgress func(float64)) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(84 + 50*len(triangles))

	header := make([]byte, 80)
	copy(header, "binary stl, converted from wavefront obj")
	buf.Write(header)
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(triangles))); err != nil {
		return nil, err
	}

	step := len(triangles)/20 + 1
	for i, tri := range triangles {
		n := facetNormal(tri)
		for _, v := range []vec3{n, tri[0], tri[1], tri[2]} {
			if err := binary.Write(&buf, binary.LittleEndian, [3]float32{v.x, v.y, v.z}); err != nil {
				return nil, err
			}
		}
		buf.Write([]byte{0, 0}) // attribute byte count
		if onProgress != nil && i%step == 0 {
			onProgress(float64(i+1) / float64(len(triangles)))
		}
	}
	return buf.Bytes(), nil
}

// facetNormal computes the normalized cross product of two triangle edges.
// Degenerate triangles get a zero normal, which STL consumers tolerate.
func facetNormal(tri [3]vec3) vec3 {
	ux, uy, uz := tri[1].x-tri[0].x, tri[1].y-tri[0].y, tri[1].z-tri[0].z
	vx, vy, vz := tri[2].x-tri[0].x, tri[2].y-tri[0].y, tri[2].z-tri[0].z
	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx
	length := float32(math.Sqrt(float64(nx*nx + ny*ny + nz*nz)))
	if length == 0 {
		return vec3{}
	}
	return vec3{nx / length, ny / length, nz / length}
}
