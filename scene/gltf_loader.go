package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"ibl-renderer/core"
)

// Model is a display model flattened into one mesh in model space.
type Model struct {
	Mesh   *Mesh
	Bounds AABB

	// Material is the surface the file describes, nil when it has none.
	Material *MaterialParams
}

// LoadModel reads a Wavefront .obj or a glTF .gltf/.glb file.
func LoadModel(path string) (*Model, error) {
	if strings.EqualFold(filepath.Ext(path), ".obj") {
		return LoadOBJ(path)
	}
	return loadGLTF(path)
}

// loadGLTF bakes every mesh primitive reachable from the default scene into
// a single triangle mesh. Node transforms are applied to positions and
// normals.
func loadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	var verts []core.Vertex
	var indices []uint32

	var visit func(idx int, parent mgl32.Mat4)
	visit = func(idx int, parent mgl32.Mat4) {
		if idx >= len(doc.Nodes) {
			return
		}
		gn := doc.Nodes[idx]
		world := parent.Mul4(nodeMatrix(gn))

		if gn.Mesh != nil && *gn.Mesh < len(doc.Meshes) {
			gm := doc.Meshes[*gn.Mesh]
			for _, prim := range gm.Primitives {
				v, ix, err := loadGLTFPrimitive(doc, *prim)
				if err != nil {
					// skip primitives we cannot read
					continue
				}
				base := uint32(len(verts))
				normalMat := world.Mat3().Inv().Transpose()
				for _, vv := range v {
					vv.Position = mgl32.TransformCoordinate(vv.Position, world)
					vv.Normal = normalMat.Mul3x1(vv.Normal).Normalize()
					verts = append(verts, vv)
				}
				for _, i := range ix {
					indices = append(indices, base+i)
				}
			}
		}
		for _, c := range gn.Children {
			visit(c, world)
		}
	}

	for _, root := range rootNodes(doc) {
		visit(root, mgl32.Ident4())
	}
	if len(verts) == 0 {
		return nil, fmt.Errorf("gltf %q: no triangle geometry", path)
	}

	m := CreateMeshFromData(path, verts, indices)
	ComputeTangents(m)
	return &Model{Mesh: m, Bounds: m.LocalAABB}, nil
}

// FitTransform returns a matrix that centres the model at the origin and
// scales its largest extent to 2·radius.
func (m *Model) FitTransform(radius float32) mgl32.Mat4 {
	size := m.Bounds.Size()
	extent := max(size[0], size[1], size[2])
	if extent <= 0 {
		return mgl32.Ident4()
	}
	s := 2 * radius / extent
	c := m.Bounds.Center()
	return mgl32.Scale3D(s, s, s).Mul4(mgl32.Translate3D(-c[0], -c[1], -c[2]))
}

func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	// No default scene: collect all parentless nodes
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// nodeMatrix returns the node's local transform: its explicit matrix when
// present, T·R·S otherwise.
func nodeMatrix(gn *gltf.Node) mgl32.Mat4 {
	if mat := gn.MatrixOrDefault(); mat != identityMatrix {
		var m mgl32.Mat4
		for i, v := range mat {
			m[i] = float32(v)
		}
		return m
	}
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]
	s := gn.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// loadGLTFPrimitive converts one triangle-list primitive into vertices and
// indices.
func loadGLTFPrimitive(doc *gltf.Document, prim gltf.Primitive) ([]core.Vertex, []uint32, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, nil, fmt.Errorf("unsupported primitive mode %d", prim.Mode)
	}
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: mgl32.Vec3(p),
			Normal:   mgl32.Vec3{0, 1, 0},
		}
		if i < len(normals) {
			v.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(verts))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	return verts, indices, nil
}
