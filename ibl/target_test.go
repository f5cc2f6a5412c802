package ibl

import (
	"errors"
	"testing"
)

func TestRenderTargetStartsUnconfigured(t *testing.T) {
	rt := NewRenderTarget(newRecorder())
	if rt.State() != Unconfigured {
		t.Errorf("State: expected %v, got %v", Unconfigured, rt.State())
	}
	if err := rt.Draw(func() {}); !errors.Is(err, ErrNotAttached) {
		t.Errorf("Draw before configure: expected ErrNotAttached, got %v", err)
	}
}

func TestRenderTargetAttachRequiresConfigure(t *testing.T) {
	rt := NewRenderTarget(newRecorder())
	tex := &fakeTexture{desc: TextureDesc{Size: 32, Levels: 1}, cube: true}
	if err := rt.Attach(tex, FacePosX, 0); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Attach: expected ErrNotConfigured, got %v", err)
	}
}

func TestRenderTargetConfigureResizesDepthAndViewport(t *testing.T) {
	dev := newRecorder()
	rt := NewRenderTarget(dev)
	if err := rt.Configure(64, 64); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if dev.depthW != 64 || dev.depthH != 64 {
		t.Errorf("depth: expected 64x64, got %dx%d", dev.depthW, dev.depthH)
	}
	if dev.viewW != 64 || dev.viewH != 64 {
		t.Errorf("viewport: expected 64x64, got %dx%d", dev.viewW, dev.viewH)
	}
	if rt.State() != Configured {
		t.Errorf("State: expected %v, got %v", Configured, rt.State())
	}
	if err := rt.Configure(0, 64); err == nil {
		t.Error("Configure(0, 64): expected error")
	}
}

func TestRenderTargetRejectsWrongMipSize(t *testing.T) {
	rt := NewRenderTarget(newRecorder())
	tex := &fakeTexture{desc: TextureDesc{Size: 128, Levels: 5}, cube: true}

	if err := rt.Configure(128, 128); err != nil {
		t.Fatal(err)
	}
	// mip 1 is 64x64 and must not be written through a 128x128 depth buffer.
	if err := rt.Attach(tex, FacePosY, 1); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Attach mip 1 at 128: expected ErrSizeMismatch, got %v", err)
	}
	if err := rt.Attach(tex, FacePosY, 5); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Attach mip 5: expected ErrSizeMismatch, got %v", err)
	}
	if err := rt.Attach(tex, Face2D, 0); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Attach cube as 2D: expected ErrSizeMismatch, got %v", err)
	}

	if err := rt.Configure(64, 64); err != nil {
		t.Fatal(err)
	}
	if err := rt.Attach(tex, FacePosY, 1); err != nil {
		t.Errorf("Attach mip 1 at 64: unexpected error %v", err)
	}
}

func TestRenderTargetConfigureDropsAttachment(t *testing.T) {
	dev := newRecorder()
	rt := NewRenderTarget(dev)
	tex := &fakeTexture{desc: TextureDesc{Size: 16, Levels: 1}}

	if err := rt.Configure(16, 16); err != nil {
		t.Fatal(err)
	}
	if err := rt.Attach(tex, Face2D, 0); err != nil {
		t.Fatal(err)
	}
	att, ok := rt.Attachment()
	if !ok || att.Texture != tex || att.Face != Face2D {
		t.Errorf("Attachment: expected tex/2D, got %+v ok=%v", att, ok)
	}

	drawn := false
	if err := rt.Draw(func() { drawn = true }); err != nil || !drawn {
		t.Errorf("Draw while attached: err=%v drawn=%v", err, drawn)
	}
	if dev.clears != 1 {
		t.Errorf("clears: expected 1, got %d", dev.clears)
	}

	if err := rt.Configure(16, 16); err != nil {
		t.Fatal(err)
	}
	if _, ok := rt.Attachment(); ok {
		t.Error("Attachment after Configure: expected none")
	}
	if err := rt.Draw(func() {}); !errors.Is(err, ErrNotAttached) {
		t.Errorf("Draw after Configure: expected ErrNotAttached, got %v", err)
	}
}

func TestRenderTargetAttachFailureLeavesConfigured(t *testing.T) {
	dev := newRecorder()
	dev.failAttach = true
	rt := NewRenderTarget(dev)
	tex := &fakeTexture{desc: TextureDesc{Size: 8, Levels: 1}}

	if err := rt.Configure(8, 8); err != nil {
		t.Fatal(err)
	}
	if err := rt.Attach(tex, Face2D, 0); err == nil {
		t.Fatal("Attach: expected device error")
	}
	if rt.State() != Configured {
		t.Errorf("State: expected %v, got %v", Configured, rt.State())
	}
	if rt.Attachments() != 0 {
		t.Errorf("Attachments: expected 0, got %d", rt.Attachments())
	}
}

func TestRenderTargetRelease(t *testing.T) {
	dev := newRecorder()
	rt := NewRenderTarget(dev)
	if err := rt.Configure(4, 4); err != nil {
		t.Fatal(err)
	}
	rt.Release()
	if rt.State() != Unconfigured {
		t.Errorf("State: expected %v, got %v", Unconfigured, rt.State())
	}
	if len(dev.events) == 0 || dev.events[len(dev.events)-1] != "unbind" {
		t.Errorf("events: expected trailing unbind, got %v", dev.events)
	}
}
