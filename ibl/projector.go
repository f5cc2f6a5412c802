package ibl

import "fmt"

// ProjectToCubeFaces renders prog into all six faces of dst at mip level mip,
// each face res×res. bind activates the pass input before every face. No
// other face or mip of dst is written.
func ProjectToCubeFaces(rt *RenderTarget, dev Device, bind func(), dst Texture, mip, res int, prog Program) error {
	prog.Use()
	prog.SetMat4("projection", CaptureProjection)

	for _, face := range CubeFaces {
		bind()
		prog.SetMat4("view", CaptureViews[face])

		if err := rt.Configure(res, res); err != nil {
			return err
		}
		if err := rt.Attach(dst, face, mip); err != nil {
			return fmt.Errorf("project face %v: %w", face, err)
		}
		if err := rt.Draw(dev.DrawCube); err != nil {
			return fmt.Errorf("project face %v: %w", face, err)
		}
	}
	return nil
}
