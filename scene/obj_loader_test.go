package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const quadOBJ = `# unit quad in the XY plane
mtllib quad.mtl
o quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl gold
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJQuad(t *testing.T) {
	m, mtllib, usemtl, err := parseOBJ(strings.NewReader(quadOBJ), "quad.obj")
	if err != nil {
		t.Fatalf("parseOBJ: %v", err)
	}
	if mtllib != "quad.mtl" || usemtl != "gold" {
		t.Errorf("materials: expected quad.mtl/gold, got %q/%q", mtllib, usemtl)
	}
	if len(m.Mesh.Vertices) != 4 {
		t.Errorf("vertices: expected 4, got %d", len(m.Mesh.Vertices))
	}
	if len(m.Mesh.Indices) != 6 {
		t.Errorf("indices: expected 6, got %d", len(m.Mesh.Indices))
	}
	if !vecApprox(m.Bounds.Max, mgl32.Vec3{1, 1, 0}, 1e-5) || !vecApprox(m.Bounds.Min, mgl32.Vec3{-1, -1, 0}, 1e-5) {
		t.Errorf("bounds: expected [-1,-1,0]..[1,1,0], got %v..%v", m.Bounds.Min, m.Bounds.Max)
	}
	// tangents follow +U
	if !vecApprox(m.Mesh.Vertices[0].Tangent, mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("tangent: expected +X, got %v", m.Mesh.Vertices[0].Tangent)
	}
}

func TestParseOBJNegativeIndicesAndSmoothNormals(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	m, _, _, err := parseOBJ(strings.NewReader(src), "tri.obj")
	if err != nil {
		t.Fatalf("parseOBJ: %v", err)
	}
	if got := m.Mesh.Vertices[1].Position; !vecApprox(got, mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("relative index: expected (1,0,0), got %v", got)
	}
	for i, v := range m.Mesh.Vertices {
		if !vecApprox(v.Normal, mgl32.Vec3{0, 0, 1}, 1e-5) {
			t.Errorf("normal %d: expected +Z, got %v", i, v.Normal)
		}
	}
}

func TestParseOBJEmpty(t *testing.T) {
	if _, _, _, err := parseOBJ(strings.NewReader("v 0 0 0\n"), "empty.obj"); err == nil {
		t.Error("parseOBJ: expected error for file without faces")
	}
}

func TestParseMTL(t *testing.T) {
	mats, err := parseMTL(strings.NewReader("newmtl gold\nKd 1 0.8 0.3\nPm 1\nPr 0.01\nnewmtl plain\n"))
	if err != nil {
		t.Fatalf("parseMTL: %v", err)
	}
	gold := mats["gold"]
	if gold == nil {
		t.Fatal("gold: missing")
	}
	if !vecApprox(gold.Albedo, mgl32.Vec3{1, 0.8, 0.3}, 1e-5) {
		t.Errorf("albedo: expected (1,0.8,0.3), got %v", gold.Albedo)
	}
	if gold.Metallic != 1 {
		t.Errorf("metallic: expected 1, got %v", gold.Metallic)
	}
	if gold.Roughness != MinRoughness {
		t.Errorf("roughness: expected clamp to %v, got %v", MinRoughness, gold.Roughness)
	}
	if plain := mats["plain"]; plain == nil || *plain != DefaultMaterial() {
		t.Errorf("plain: expected default material, got %+v", plain)
	}
}

func TestLoadModelOBJWithMaterial(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "quad.obj"), []byte(quadOBJ), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "quad.mtl"), []byte("newmtl gold\nKd 1 0.8 0.3\nPm 1\nPr 0.4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadModel(filepath.Join(dir, "quad.obj"))
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if m.Material == nil {
		t.Fatal("material: expected gold from quad.mtl")
	}
	if m.Material.Roughness != 0.4 || m.Material.Metallic != 1 {
		t.Errorf("material: expected metallic 1 roughness 0.4, got %v %v", m.Material.Metallic, m.Material.Roughness)
	}
}
