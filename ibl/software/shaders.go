package software

import (
	"math/bits"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// 1/(2π), 1/π
var invAtan = [2]float32{0.15915494309, 0.31830988618}

// EquirectUV maps a unit direction to equirectangular texture coordinates.
func EquirectUV(dir mgl32.Vec3) (u, v float32) {
	u = math32.Atan2(dir[2], dir[0])*invAtan[0] + 0.5
	v = math32.Asin(clamp(dir[1], -1, 1))*invAtan[1] + 0.5
	return u, v
}

func shadeEquirect(p *Program, f Fragment) mgl32.Vec4 {
	pano := p.panorama("equirectangularMap")
	if pano == nil {
		return mgl32.Vec4{}
	}
	u, v := EquirectUV(f.Dir.Normalize())
	return pano.Sample(u, v).Vec4(1)
}

// tangentFrame returns an orthonormal right/up pair around n.
func tangentFrame(n mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(n[1]) >= 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	right := up.Cross(n).Normalize()
	return right, n.Cross(right).Normalize()
}

func shadeIrradiance(p *Program, f Fragment) mgl32.Vec4 {
	env := p.cube("environmentMap")
	if env == nil {
		return mgl32.Vec4{}
	}
	delta := p.floats["sampleDelta"]
	n := f.Dir.Normalize()
	right, up := tangentFrame(n)

	var irr mgl32.Vec3
	samples := 0
	for phi := float32(0); phi < 2*math32.Pi; phi += delta {
		sinPhi, cosPhi := math32.Sin(phi), math32.Cos(phi)
		for theta := float32(0); theta < 0.5*math32.Pi; theta += delta {
			sinTheta, cosTheta := math32.Sin(theta), math32.Cos(theta)
			tangent := mgl32.Vec3{sinTheta * cosPhi, sinTheta * sinPhi, cosTheta}
			dir := right.Mul(tangent[0]).Add(up.Mul(tangent[1])).Add(n.Mul(tangent[2]))
			irr = irr.Add(env.SampleCube(dir, 0).Mul(cosTheta * sinTheta))
			samples++
		}
	}
	return irr.Mul(math32.Pi / float32(samples)).Vec4(1)
}

// Hammersley returns point i of an n-point Hammersley set.
func Hammersley(i, n int) (float32, float32) {
	return float32(i) / float32(n), float32(bits.Reverse32(uint32(i))) * 2.3283064365386963e-10
}

// ImportanceSampleGGX maps a uniform sample to a GGX-distributed half vector
// around n.
func ImportanceSampleGGX(xi1, xi2 float32, n mgl32.Vec3, roughness float32) mgl32.Vec3 {
	a := roughness * roughness
	phi := 2 * math32.Pi * xi1
	cosTheta := math32.Sqrt((1 - xi2) / (1 + (a*a-1)*xi2))
	sinTheta := math32.Sqrt(1 - cosTheta*cosTheta)
	sinPhi, cosPhi := math32.Sin(phi), math32.Cos(phi)
	h := mgl32.Vec3{cosPhi * sinTheta, sinPhi * sinTheta, cosTheta}

	up := mgl32.Vec3{0, 0, 1}
	if math32.Abs(n[2]) >= 0.999 {
		up = mgl32.Vec3{1, 0, 0}
	}
	tangent := up.Cross(n).Normalize()
	bitangent := n.Cross(tangent)
	return tangent.Mul(h[0]).Add(bitangent.Mul(h[1])).Add(n.Mul(h[2])).Normalize()
}

// DistributionGGX is the Trowbridge-Reitz normal distribution.
func DistributionGGX(nDotH, roughness float32) float32 {
	a := roughness * roughness
	a2 := a * a
	d := nDotH*nDotH*(a2-1) + 1
	return a2 / (math32.Pi * d * d)
}

func shadePrefilter(p *Program, f Fragment) mgl32.Vec4 {
	env := p.cube("environmentMap")
	if env == nil {
		return mgl32.Vec4{}
	}
	roughness := p.floats["roughness"]
	resolution := p.floats["resolution"]
	count := int(p.ints["sampleCount"])

	n := f.Dir.Normalize()
	v := n
	saTexel := 4 * math32.Pi / (6 * resolution * resolution)

	var color mgl32.Vec3
	var weight float32
	for i := 0; i < count; i++ {
		x1, x2 := Hammersley(i, count)
		h := ImportanceSampleGGX(x1, x2, n, roughness)
		l := h.Mul(2 * v.Dot(h)).Sub(v).Normalize()

		nDotL := max(n.Dot(l), 0)
		if nDotL <= 0 {
			continue
		}
		var mip float32
		if roughness > 0 {
			nDotH := max(n.Dot(h), 0)
			hDotV := max(h.Dot(v), 0)
			pdf := DistributionGGX(nDotH, roughness)*nDotH/(4*hDotV) + 0.0001
			saSample := 1 / (float32(count)*pdf + 0.0001)
			mip = 0.5 * math32.Log2(saSample/saTexel)
		}
		color = color.Add(env.SampleCube(l, mip).Mul(nDotL))
		weight += nDotL
	}
	if weight == 0 {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	return color.Mul(1 / weight).Vec4(1)
}

func geometrySchlickGGX(nDotV, roughness float32) float32 {
	// k for image-based lighting
	k := roughness * roughness / 2
	return nDotV / (nDotV*(1-k) + k)
}

func geometrySmith(nDotV, nDotL, roughness float32) float32 {
	return geometrySchlickGGX(nDotV, roughness) * geometrySchlickGGX(nDotL, roughness)
}

// IntegrateBRDF returns the split-sum scale and bias for a view angle and
// roughness.
func IntegrateBRDF(nDotV, roughness float32, count int) (float32, float32) {
	v := mgl32.Vec3{math32.Sqrt(1 - nDotV*nDotV), 0, nDotV}
	n := mgl32.Vec3{0, 0, 1}

	var a, b float32
	for i := 0; i < count; i++ {
		x1, x2 := Hammersley(i, count)
		h := ImportanceSampleGGX(x1, x2, n, roughness)
		l := h.Mul(2 * v.Dot(h)).Sub(v).Normalize()

		nDotL := max(l[2], 0)
		nDotH := max(h[2], 0)
		vDotH := max(v.Dot(h), 0)
		if nDotL > 0 {
			g := geometrySmith(nDotV, nDotL, roughness)
			gVis := g * vDotH / (nDotH * nDotV)
			fc := math32.Pow(1-vDotH, 5)
			a += (1 - fc) * gVis
			b += fc * gVis
		}
	}
	return a / float32(count), b / float32(count)
}

func shadeBRDF(p *Program, f Fragment) mgl32.Vec4 {
	a, b := IntegrateBRDF(f.UV[0], f.UV[1], int(p.ints["sampleCount"]))
	return mgl32.Vec4{a, b, 0, 1}
}

func clamp(x, lo, hi float32) float32 {
	return max(lo, min(x, hi))
}
