package ibl

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	captureNear = 0.1
	captureFar  = 10.0
)

// CaptureProjection is the 90° square frustum every cube face is rendered with.
var CaptureProjection = mgl32.Perspective(mgl32.DegToRad(90), 1, captureNear, captureFar)

// CaptureViews holds the look-at matrix of each face, indexed by Face.
// The up vectors follow the cube map convention where face t grows towards -Y
// on the side faces and towards ±Z on the top and bottom faces.
var CaptureViews = [6]mgl32.Mat4{
	mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}),
	mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}),
	mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}),
	mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}),
	mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}),
	mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}),
}

// FaceCoords maps a direction to the cube face it hits and the face
// coordinates (s, t) in [0,1], using the major-axis table of the OpenGL
// specification.
func FaceCoords(dir mgl32.Vec3) (Face, float32, float32) {
	x, y, z := dir[0], dir[1], dir[2]
	ax, ay, az := math32.Abs(x), math32.Abs(y), math32.Abs(z)

	var face Face
	var sc, tc, ma float32
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if x >= 0 {
			face, sc, tc = FacePosX, -z, -y
		} else {
			face, sc, tc = FaceNegX, z, -y
		}
	case ay >= az:
		ma = ay
		if y >= 0 {
			face, sc, tc = FacePosY, x, z
		} else {
			face, sc, tc = FaceNegY, x, -z
		}
	default:
		ma = az
		if z >= 0 {
			face, sc, tc = FacePosZ, x, -y
		} else {
			face, sc, tc = FaceNegZ, -x, -y
		}
	}
	if ma == 0 {
		return FacePosX, 0.5, 0.5
	}
	return face, (sc/ma + 1) / 2, (tc/ma + 1) / 2
}

// FaceDirection is the inverse of FaceCoords: it returns the unnormalised
// direction through face coordinates (s, t).
func FaceDirection(face Face, s, t float32) mgl32.Vec3 {
	sc := 2*s - 1
	tc := 2*t - 1
	switch face {
	case FacePosX:
		return mgl32.Vec3{1, -tc, -sc}
	case FaceNegX:
		return mgl32.Vec3{-1, -tc, sc}
	case FacePosY:
		return mgl32.Vec3{sc, 1, tc}
	case FaceNegY:
		return mgl32.Vec3{sc, -1, -tc}
	case FacePosZ:
		return mgl32.Vec3{sc, -tc, 1}
	default:
		return mgl32.Vec3{-sc, -tc, -1}
	}
}

// Unproject returns the world-space direction seen through normalised device
// coordinates (ndcX, ndcY) by a camera with the given projection and view.
func Unproject(proj, view mgl32.Mat4, ndcX, ndcY float32) mgl32.Vec3 {
	inv := proj.Mul4(view).Inv()
	far := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	near := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	f := far.Vec3().Mul(1 / far[3])
	n := near.Vec3().Mul(1 / near[3])
	return f.Sub(n).Normalize()
}
