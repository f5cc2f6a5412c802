package software

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"ibl-renderer/ibl"
)

func testSettings() ibl.Settings {
	return ibl.Settings{
		EnvironmentSize: 16,
		IrradianceSize:  4,
		PrefilterSize:   16,
		PrefilterLevels: 5,
		BRDFSize:        16,
		IrradianceDelta: 0.025,
		SampleCount:     256,
	}
}

func uniformPanorama(w, h int, k float32) *Panorama {
	pix := make([]float32, w*h*3)
	for i := range pix {
		pix[i] = k
	}
	return NewPanorama(w, h, pix)
}

// linearPanorama stores a + b·y, where y is the height of the direction each
// row maps to.
func linearPanorama(w, h int, a, b float32) *Panorama {
	pix := make([]float32, w*h*3)
	for j := 0; j < h; j++ {
		v := (float32(j) + 0.5) / float32(h)
		y := math32.Sin((v - 0.5) * math32.Pi)
		for i := 0; i < w; i++ {
			o := (j*w + i) * 3
			pix[o], pix[o+1], pix[o+2] = a+b*y, a+b*y, a+b*y
		}
	}
	return NewPanorama(w, h, pix)
}

func run(t *testing.T, pano *Panorama, s ibl.Settings) (*Device, *ibl.Resources) {
	t.Helper()
	dev := NewDevice()
	p, err := ibl.NewPipeline(dev, dev.Programs(), s, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	res, err := p.Run(pano)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return dev, res
}

func near(a, b, tol float32) bool {
	return math32.Abs(a-b) <= tol
}

func nearVec(a, b mgl32.Vec3, tol float32) bool {
	return near(a[0], b[0], tol) && near(a[1], b[1], tol) && near(a[2], b[2], tol)
}

var probeDirs = []mgl32.Vec3{
	{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
	{1, 1, 1}, {-1, 0.3, 0.7}, {0.2, -0.9, -0.4}, {0.99, 0.01, 1},
}

func TestEquirectUV(t *testing.T) {
	cases := []struct {
		dir  mgl32.Vec3
		u, v float32
	}{
		{mgl32.Vec3{1, 0, 0}, 0.5, 0.5},
		{mgl32.Vec3{0, 0, 1}, 0.75, 0.5},
		{mgl32.Vec3{0, 0, -1}, 0.25, 0.5},
		{mgl32.Vec3{0, 1, 0}, 0.5, 1},
		{mgl32.Vec3{0, -1, 0}, 0.5, 0},
	}
	for _, c := range cases {
		u, v := EquirectUV(c.dir)
		if !near(u, c.u, 1e-5) || !near(v, c.v, 1e-5) {
			t.Errorf("EquirectUV(%v): expected (%v, %v), got (%v, %v)", c.dir, c.u, c.v, u, v)
		}
	}
}

func TestCaptureUniformPanorama(t *testing.T) {
	const k = 3.5
	_, res := run(t, uniformPanorama(8, 4, k), testSettings())
	env := res.Environment.(*Texture)

	for mip := 0; mip < env.Levels(); mip++ {
		for _, face := range ibl.CubeFaces {
			for i, v := range env.Pixels(face, mip) {
				if v != k {
					t.Fatalf("environment face %v mip %d value %d: expected %v, got %v", face, mip, i, k, v)
				}
			}
		}
	}
}

func TestIrradianceOfUniformEnvironment(t *testing.T) {
	const k = 1.5
	_, res := run(t, uniformPanorama(4, 2, k), testSettings())
	irr := res.Irradiance.(*Texture)

	for _, face := range ibl.CubeFaces {
		for i, v := range irr.Pixels(face, 0) {
			if !near(v, k, 0.01*k) {
				t.Fatalf("irradiance face %v value %d: expected %v, got %v", face, i, k, v)
			}
		}
	}
}

func TestPrefilterMirrorLimit(t *testing.T) {
	s := testSettings()
	_, res := run(t, linearPanorama(64, 32, 1, 0.5), s)
	env := res.Environment.(*Texture)
	pre := res.Prefiltered.(*Texture)

	n := s.PrefilterSize
	for _, face := range ibl.CubeFaces {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				dir := ibl.FaceDirection(face, (float32(x)+0.5)/float32(n), (float32(y)+0.5)/float32(n))
				want := env.SampleCube(dir, 0)
				got := pre.Texel(face, 0, x, y)
				if !nearVec(got, want, 0.01*want[0]) {
					t.Fatalf("mip 0 face %v (%d,%d): expected %v, got %v", face, x, y, want, got)
				}
			}
		}
	}
}

func TestPrefilterBlurLimit(t *testing.T) {
	const a, b = 1.0, 0.5
	s := testSettings()
	s.IrradianceSize = 8
	_, res := run(t, linearPanorama(64, 32, a, b), s)
	pre := res.Prefiltered.(*Texture)
	irr := res.Irradiance.(*Texture)

	// cosine-weighted mean of a + b·cosθ over the upper hemisphere
	want := float32(a + 2*b/3)
	up := mgl32.Vec3{0, 1, 0}

	blur := pre.SampleCube(up, float32(s.PrefilterLevels-1))
	if !near(blur[0], want, 0.05) {
		t.Errorf("prefilter last mip at +Y: expected %v, got %v", want, blur[0])
	}
	diffuse := irr.SampleCube(up, 0)
	if !near(diffuse[0], want, 0.03) {
		t.Errorf("irradiance at +Y: expected %v, got %v", want, diffuse[0])
	}
	if !near(blur[0], diffuse[0], 0.06) {
		t.Errorf("prefilter last mip %v too far from irradiance %v", blur[0], diffuse[0])
	}

	mirror := pre.SampleCube(up, 0)
	if !near(mirror[0], a+b, 0.02) {
		t.Errorf("prefilter mip 0 at +Y: expected %v, got %v", a+b, mirror[0])
	}
}

func TestBRDFCorner(t *testing.T) {
	s := testSettings()
	_, res := run(t, uniformPanorama(1, 1, 1), s)
	lut := res.BRDFLUT.(*Texture)

	if lut.Channels() != 2 {
		t.Fatalf("lut channels: expected 2, got %d", lut.Channels())
	}
	// x = N·V → 1, y = roughness → 0
	corner := lut.Texel(ibl.Face2D, 0, s.BRDFSize-1, 0)
	if !near(corner[0], 1, 0.05) || !near(corner[1], 0, 0.05) {
		t.Errorf("lut corner: expected (1, 0), got (%v, %v)", corner[0], corner[1])
	}

	a, b := IntegrateBRDF(0.999, 0.001, 1024)
	if !near(a, 1, 0.02) || !near(b, 0, 0.02) {
		t.Errorf("IntegrateBRDF(0.999, 0.001): expected (1, 0), got (%v, %v)", a, b)
	}

	// rough grazing texels lose energy
	rough := lut.Texel(ibl.Face2D, 0, 0, s.BRDFSize-1)
	if rough[0]+rough[1] >= corner[0]+corner[1] {
		t.Errorf("lut rough grazing %v should be darker than smooth normal %v", rough, corner)
	}
}

func TestEndToEndConstantPanorama(t *testing.T) {
	want := mgl32.Vec3{2, 2, 2}
	s := testSettings()
	_, res := run(t, uniformPanorama(1, 1, 2), s)
	env := res.Environment.(*Texture)
	irr := res.Irradiance.(*Texture)
	pre := res.Prefiltered.(*Texture)

	for _, dir := range probeDirs {
		if got := env.SampleCube(dir, 0); !nearVec(got, want, 1e-3) {
			t.Errorf("environment %v: expected %v, got %v", dir, want, got)
		}
		if got := irr.SampleCube(dir, 0); !nearVec(got, want, 0.02) {
			t.Errorf("irradiance %v: expected %v, got %v", dir, want, got)
		}
		for mip := 0; mip < s.PrefilterLevels; mip++ {
			if got := pre.SampleCube(dir, float32(mip)); !nearVec(got, want, 0.01) {
				t.Errorf("prefiltered %v mip %d: expected %v, got %v", dir, mip, want, got)
			}
		}
	}
}

func TestRenderTargetWritesOnlyAttachedImage(t *testing.T) {
	dev := NewDevice()
	tex, err := dev.NewCubeMap(ibl.TextureDesc{Size: 8, Levels: 4, Format: ibl.FormatRGB16F})
	if err != nil {
		t.Fatal(err)
	}
	cube := tex.(*Texture)
	for l := range cube.pix {
		for f := range cube.pix[l] {
			for i := range cube.pix[l][f] {
				cube.pix[l][f][i] = -1
			}
		}
	}

	rt := ibl.NewRenderTarget(dev)
	prog := dev.ConstantProgram(mgl32.Vec3{5, 5, 5})
	prog.Use()
	if err := rt.Configure(4, 4); err != nil {
		t.Fatal(err)
	}
	if err := rt.Attach(cube, ibl.FaceNegY, 1); err != nil {
		t.Fatal(err)
	}
	if err := rt.Draw(dev.DrawQuad); err != nil {
		t.Fatal(err)
	}

	for l := 0; l < cube.Levels(); l++ {
		for _, face := range ibl.CubeFaces {
			want := float32(-1)
			if face == ibl.FaceNegY && l == 1 {
				want = 5
			}
			for i, v := range cube.Pixels(face, l) {
				if v != want {
					t.Fatalf("face %v mip %d value %d: expected %v, got %v", face, l, i, want, v)
				}
			}
		}
	}
	if _, _, px := dev.Stats(); px != 16 {
		t.Errorf("pixels drawn: expected 16, got %d", px)
	}
}

func TestDrawClipsToDepthBuffer(t *testing.T) {
	// Without the render target's size check a stale depth buffer silently
	// limits the written region.
	dev := NewDevice()
	tex, _ := dev.NewTexture2D(ibl.TextureDesc{Size: 4, Levels: 1, Format: ibl.FormatRG16F})
	prog := dev.ConstantProgram(mgl32.Vec3{1, 1, 0})
	prog.Use()

	dev.BindTarget()
	dev.ResizeDepth(2, 2)
	dev.Viewport(4, 4)
	if err := dev.AttachColor(tex, ibl.Face2D, 0); err != nil {
		t.Fatal(err)
	}
	dev.Clear()
	dev.DrawQuad()

	lut := tex.(*Texture)
	written := 0
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if lut.Texel(ibl.Face2D, 0, x, y)[0] == 1 {
				written++
			}
		}
	}
	if written != 4 {
		t.Errorf("written texels: expected 4, got %d", written)
	}
}

func TestGenerateMipmapsBoxFilter(t *testing.T) {
	dev := NewDevice()
	tex, _ := dev.NewCubeMap(ibl.TextureDesc{Size: 2, Levels: 2, Format: ibl.FormatRGB16F})
	cube := tex.(*Texture)
	face := cube.Pixels(ibl.FacePosZ, 0)
	for i, v := range []float32{1, 2, 3, 4} {
		face[i*3], face[i*3+1], face[i*3+2] = v, v, v
	}
	dev.GenerateMipmaps(cube)
	if got := cube.Texel(ibl.FacePosZ, 1, 0, 0); got[0] != 2.5 {
		t.Errorf("mip 1: expected 2.5, got %v", got[0])
	}
	if got := cube.Texel(ibl.FaceNegZ, 1, 0, 0); got[0] != 0 {
		t.Errorf("untouched face mip 1: expected 0, got %v", got[0])
	}
}

func TestHammersley(t *testing.T) {
	x, y := Hammersley(0, 4)
	if x != 0 || y != 0 {
		t.Errorf("Hammersley(0): expected (0, 0), got (%v, %v)", x, y)
	}
	x, y = Hammersley(1, 4)
	if x != 0.25 || y != 0.5 {
		t.Errorf("Hammersley(1): expected (0.25, 0.5), got (%v, %v)", x, y)
	}
	_, y = Hammersley(3, 4)
	if y != 0.75 {
		t.Errorf("Hammersley(3).y: expected 0.75, got %v", y)
	}
}

func TestImportanceSampleGGXSmoothIsNormal(t *testing.T) {
	n := mgl32.Vec3{0.3, 0.4, 0.866}.Normalize()
	for i := 0; i < 16; i++ {
		x1, x2 := Hammersley(i, 16)
		h := ImportanceSampleGGX(x1, x2, n, 0)
		if h.Sub(n).Len() > 1e-4 {
			t.Fatalf("sample %d at roughness 0: expected %v, got %v", i, n, h)
		}
	}
}
