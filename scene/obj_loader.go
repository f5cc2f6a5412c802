package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"ibl-renderer/core"
)

// objFace is an already-triangulated face (three vertex references).
type objFace struct {
	vIdx, vtIdx, vnIdx [3]int // 0-based position / UV / normal indices (-1 = absent)
}

// LoadOBJ parses a Wavefront .obj file into one display mesh. Every object
// and group is merged. When a referenced .mtl file names the material used
// by the first face, its Kd, Pm and Pr values become Model.Material.
func LoadOBJ(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	m, mtllib, usemtl, err := parseOBJ(f, path)
	if err != nil {
		return nil, err
	}
	if mtllib != "" && usemtl != "" {
		mats, err := loadMTL(filepath.Join(filepath.Dir(path), mtllib))
		if err == nil {
			if mat, ok := mats[usemtl]; ok {
				m.Material = mat
			}
		}
	}
	return m, nil
}

// parseOBJ reads geometry from r. It returns the first mtllib and the
// material active at the first face.
func parseOBJ(r io.Reader, name string) (model *Model, mtllib, usemtl string, err error) {
	var positions []mgl32.Vec3
	var normals []mgl32.Vec3
	var uvs []mgl32.Vec2
	var faces []objFace

	current := ""
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				continue
			}
			positions = append(positions, parseVec3(fields[1:4]))

		case "vn":
			if len(fields) < 4 {
				continue
			}
			normals = append(normals, parseVec3(fields[1:4]))

		case "vt":
			if len(fields) < 3 {
				continue
			}
			u, _ := strconv.ParseFloat(fields[1], 32)
			v, _ := strconv.ParseFloat(fields[2], 32)
			uvs = append(uvs, mgl32.Vec2{float32(u), float32(v)})

		case "usemtl":
			if len(fields) > 1 {
				current = fields[1]
			}

		case "mtllib":
			if len(fields) > 1 && mtllib == "" {
				mtllib = fields[1]
			}

		case "f":
			if len(fields) < 4 {
				continue
			}
			if len(faces) == 0 {
				usemtl = current
			}
			var fverts []faceVertex
			for _, tok := range fields[1:] {
				fverts = append(fverts, parseFaceVertex(tok, len(positions), len(uvs), len(normals)))
			}
			// fan: 0-1-2, 0-2-3, ...
			for i := 1; i+1 < len(fverts); i++ {
				f0, f1, f2 := fverts[0], fverts[i], fverts[i+1]
				faces = append(faces, objFace{
					vIdx:  [3]int{f0.v, f1.v, f2.v},
					vtIdx: [3]int{f0.vt, f1.vt, f2.vt},
					vnIdx: [3]int{f0.vn, f1.vn, f2.vn},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, "", "", fmt.Errorf("scan obj: %w", err)
	}
	if len(faces) == 0 {
		return nil, "", "", fmt.Errorf("no geometry found in %q", name)
	}

	mesh := buildMeshFromOBJ(name, faces, positions, normals, uvs)
	ComputeTangents(mesh)
	return &Model{Mesh: mesh, Bounds: mesh.LocalAABB}, mtllib, usemtl, nil
}

func parseVec3(fields []string) mgl32.Vec3 {
	var v mgl32.Vec3
	for i := range v {
		f, _ := strconv.ParseFloat(fields[i], 32)
		v[i] = float32(f)
	}
	return v
}

type faceVertex struct{ v, vt, vn int }

// parseFaceVertex parses one face vertex token: "v", "v/vt", "v//vn",
// "v/vt/vn". OBJ indices are 1-based; negative ones count back from the
// latest element. Absent indices are -1.
func parseFaceVertex(tok string, nv, nvt, nvn int) faceVertex {
	parseIdx := func(s string, n int) int {
		if s == "" {
			return -1
		}
		i, err := strconv.Atoi(s)
		switch {
		case err != nil || i == 0:
			return -1
		case i > 0:
			return i - 1
		default:
			return n + i
		}
	}
	parts := strings.Split(tok, "/")
	res := faceVertex{v: -1, vt: -1, vn: -1}
	if len(parts) > 0 {
		res.v = parseIdx(parts[0], nv)
	}
	if len(parts) > 1 {
		res.vt = parseIdx(parts[1], nvt)
	}
	if len(parts) > 2 {
		res.vn = parseIdx(parts[2], nvn)
	}
	return res
}

// buildMeshFromOBJ converts parsed face data into a deduplicated Mesh.
func buildMeshFromOBJ(
	name string,
	faces []objFace,
	positions []mgl32.Vec3,
	normals []mgl32.Vec3,
	uvs []mgl32.Vec2,
) *Mesh {
	vertMap := map[faceVertex]uint32{}
	var vertices []core.Vertex
	var indices []uint32

	safePos := func(i int) mgl32.Vec3 {
		if i >= 0 && i < len(positions) {
			return positions[i]
		}
		return mgl32.Vec3{}
	}
	safeNorm := func(i int) mgl32.Vec3 {
		if i >= 0 && i < len(normals) {
			return normals[i]
		}
		return mgl32.Vec3{0, 1, 0}
	}
	safeUV := func(i int) mgl32.Vec2 {
		if i >= 0 && i < len(uvs) {
			return uvs[i]
		}
		return mgl32.Vec2{}
	}

	for _, face := range faces {
		for c := 0; c < 3; c++ {
			k := faceVertex{face.vIdx[c], face.vtIdx[c], face.vnIdx[c]}
			idx, ok := vertMap[k]
			if !ok {
				idx = uint32(len(vertices))
				vertices = append(vertices, core.Vertex{
					Position: safePos(k.v),
					Normal:   safeNorm(k.vn),
					UV:       safeUV(k.vt),
				})
				vertMap[k] = idx
			}
			indices = append(indices, idx)
		}
	}

	if len(normals) == 0 {
		generateSmoothNormals(vertices, indices)
	}

	return CreateMeshFromData(name, vertices, indices)
}

// generateSmoothNormals writes area-weighted vertex normals.
func generateSmoothNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0 := vertices[i0].Position
		v1 := vertices[i1].Position
		v2 := vertices[i2].Position
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if accum[i].LenSqr() > 0 {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}

// ── MTL loader ───────────────────────────────────────────────────────────────

// loadMTL reads Kd as albedo and the PBR extension keys Pm and Pr.
func loadMTL(path string) (map[string]*MaterialParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseMTL(f)
}

func parseMTL(r io.Reader) (map[string]*MaterialParams, error) {
	mats := map[string]*MaterialParams{}
	var cur *MaterialParams

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "newmtl":
			if len(fields) > 1 {
				m := DefaultMaterial()
				mats[fields[1]] = &m
				cur = &m
			}
		case "Kd":
			if cur != nil && len(fields) >= 4 {
				cur.Albedo = parseVec3(fields[1:4])
			}
		case "Pm":
			if cur != nil && len(fields) >= 2 {
				v, _ := strconv.ParseFloat(fields[1], 32)
				cur.Metallic = float32(v)
			}
		case "Pr":
			if cur != nil && len(fields) >= 2 {
				v, _ := strconv.ParseFloat(fields[1], 32)
				cur.Roughness = float32(v)
			}
		}
	}
	for _, m := range mats {
		m.Clamp()
	}
	return mats, scanner.Err()
}
