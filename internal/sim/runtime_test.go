package sim

import (
	"testing"

	"github.com/Faultbox/xrkit/pkg/input"
	"github.com/Faultbox/xrkit/pkg/model"
	"github.com/Faultbox/xrkit/pkg/openxr/depthtex"
	"github.com/Faultbox/xrkit/pkg/openxr/refreshrate"
	"github.com/Faultbox/xrkit/pkg/openxr/rendermodel"
	"github.com/Faultbox/xrkit/pkg/openxr/simhands"
)

func startedBackend(t *testing.T, exts ...string) *Backend {
	t.Helper()
	b := NewBackend(NewRuntime())
	for _, e := range exts {
		b.RequestExt(e)
	}
	b.StartSession()
	return b
}

func TestBackendGating(t *testing.T) {
	b := NewBackend(NewRuntime())
	b.RequestExt(refreshrate.ExtName)

	if b.ExtEnabled(refreshrate.ExtName) {
		t.Error("no extension is enabled before the session starts")
	}
	if b.GetFunction("xrGetDisplayRefreshRateFB") != nil {
		t.Error("no symbol resolves before the session starts")
	}

	b.StartSession()
	if !b.ExtEnabled(refreshrate.ExtName) {
		t.Error("requested extension must be enabled after start")
	}
	if b.ExtEnabled(rendermodel.ExtName) {
		t.Error("unrequested extension must stay disabled")
	}
	if b.GetFunction("xrGetDisplayRefreshRateFB") == nil {
		t.Error("expected the symbol to resolve after start")
	}
}

func TestBuildGLBParses(t *testing.T) {
	m, err := model.FromMemory("test.glb", BuildGLB("grip", "point"), nil)
	if err != nil {
		t.Fatalf("generated GLB did not parse: %v", err)
	}
	if m.Anims().Count() != 2 {
		t.Errorf("expected 2 animations, got %d", m.Anims().Count())
	}
	if m.Anims().Name(0) != "grip" {
		t.Errorf("expected animation grip, got %s", m.Anims().Name(0))
	}
}

func TestRefreshRateEndToEnd(t *testing.T) {
	b := startedBackend(t, refreshrate.ExtName)

	rates := refreshrate.All(b, false)
	if len(rates) != 3 {
		t.Fatalf("expected 3 rates, got %d", len(rates))
	}

	available := refreshrate.Probe(b, []int{60, 72, 80, 90, 120}, false)
	want := []float32{72, 90, 120}
	if len(available) != len(want) {
		t.Fatalf("expected %d available rates, got %d", len(want), len(available))
	}
	for i := range want {
		if available[i] != want[i] {
			t.Errorf("available %d: expected %f, got %f", i, want[i], available[i])
		}
	}
	if rate, ok := refreshrate.Current(b); !ok || rate != 72 {
		t.Errorf("expected the prior rate 72 restored, got %f ok=%v", rate, ok)
	}
}

func TestRenderModelEndToEnd(t *testing.T) {
	b := startedBackend(t, rendermodel.ExtName)
	state := &input.State{}

	rm, err := rendermodel.New(b, state)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	paths, err := rm.EnumeratePaths()
	if err != nil {
		t.Fatalf("EnumeratePaths failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}

	props, err := rm.Properties("/model_fb/controller/left")
	if err != nil {
		t.Fatalf("Properties failed: %v", err)
	}
	if props.ModelName != "sim controller left" {
		t.Errorf("unexpected model name %q", props.ModelName)
	}

	if err := rm.SetupControllerModels("/model_fb/controller/left", "/model_fb/controller/right", true); err != nil {
		t.Fatalf("SetupControllerModels failed: %v", err)
	}
	m := state.ControllerModel(input.Right)
	if m == nil {
		t.Fatal("expected the right visual")
	}
	if m.Anims().CurAnim() != 0 {
		t.Errorf("expected animation 0 playing, got %d", m.Anims().CurAnim())
	}
}

func TestDisconnectedModelStillLoads(t *testing.T) {
	rt := NewRuntime()
	rt.AddModel(&ModelEntry{
		Path: "/model_fb/keyboard",
		Name: "sim keyboard",
		Data: BuildGLB(),
	})
	b := NewBackend(rt)
	b.RequestExt(rendermodel.ExtName)
	b.StartSession()

	rm, err := rendermodel.New(b, &input.State{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	// The properties query reports unavailable, but the load still works.
	if _, err := rm.Properties("/model_fb/keyboard"); err == nil {
		t.Error("expected strict Properties to fail for a disconnected model")
	}
	data, err := rm.Load("/model_fb/keyboard")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected model bytes")
	}
}

func TestSimultaneousHandsEndToEnd(t *testing.T) {
	rt := NewRuntime()
	b := NewBackend(rt)
	b.RequestExt(simhands.ExtName)
	b.StartSession()

	if !simhands.Supported(b, false) {
		t.Fatal("expected Supported true")
	}
	if !simhands.Resume(b, false) {
		t.Fatal("expected Resume true")
	}
	if !rt.SimultaneousActive() {
		t.Error("expected the runtime resumed")
	}
	if !simhands.Pause(b, false) {
		t.Fatal("expected Pause true")
	}
	if rt.SimultaneousActive() {
		t.Error("expected the runtime paused")
	}
}

func TestSimultaneousHandsNotEnabled(t *testing.T) {
	b := startedBackend(t) // nothing requested
	if simhands.Supported(b, false) || simhands.Resume(b, false) || simhands.Pause(b, false) {
		t.Error("expected every operation false without the extension")
	}
}

func TestDepthSwapchainEndToEnd(t *testing.T) {
	b := startedBackend(t, depthtex.ExtName)

	ext, err := depthtex.New(b)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !ext.SupportsDepthTracking(false) {
		t.Fatal("expected depth tracking supported")
	}

	resolutions, err := ext.EnumerateResolutions()
	if err != nil {
		t.Fatalf("EnumerateResolutions failed: %v", err)
	}
	if len(resolutions) != 3 {
		t.Fatalf("expected 3 resolutions, got %d", len(resolutions))
	}

	info := depthtex.NewSwapchainCreateInfo(depthtex.ResolutionHalf,
		depthtex.SwapchainCreateSmoothDepth|depthtex.SwapchainCreateRawDepth)
	sc, err := ext.CreateSwapchain(&info)
	if err != nil {
		t.Fatalf("CreateSwapchain failed: %v", err)
	}

	images, err := ext.EnumerateImages(sc)
	if err != nil {
		t.Fatalf("EnumerateImages failed: %v", err)
	}
	if len(images) < 1 {
		t.Fatal("expected at least one image")
	}
	for i, img := range images {
		if img.RawDepthImage == nil || img.SmoothDepthImage == nil {
			t.Errorf("image %d: expected raw and smooth depth planes", i)
		}
		if img.RawDepthConfidenceImage != nil || img.SmoothDepthConfidenceImage != nil {
			t.Errorf("image %d: unexpected confidence planes", i)
		}
	}

	index, err := ext.AcquireImage(sc)
	if err != nil {
		t.Fatalf("AcquireImage failed: %v", err)
	}
	if int(index) >= len(images) {
		t.Errorf("acquired index %d out of range", index)
	}

	if err := ext.DestroySwapchain(sc); err != nil {
		t.Fatalf("DestroySwapchain failed: %v", err)
	}
	if _, err := ext.EnumerateImages(sc); err == nil {
		t.Error("expected enumerate on a destroyed swapchain to fail")
	}
}

func TestDepthTextureEndToEnd(t *testing.T) {
	b := startedBackend(t, depthtex.ExtName)
	ext, _ := depthtex.New(b)

	info := depthtex.NewTextureCreateInfo(640, 480, depthtex.SurfaceOriginTopLeft)
	tex, err := ext.CreateTexture(&info)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	surface, err := ext.AcquireTexture(tex)
	if err != nil {
		t.Fatalf("AcquireTexture failed: %v", err)
	}
	if surface.Surface == nil {
		t.Error("expected a surface pointer")
	}
	if _, err := ext.AcquireTexture(tex); err == nil {
		t.Error("expected double acquire to fail")
	}
	if err := ext.ReleaseTexture(tex); err != nil {
		t.Fatalf("ReleaseTexture failed: %v", err)
	}
	if err := ext.DestroyTexture(tex); err != nil {
		t.Fatalf("DestroyTexture failed: %v", err)
	}
	if err := ext.DestroyTexture(tex); err == nil {
		t.Error("expected double destroy to fail")
	}
}
