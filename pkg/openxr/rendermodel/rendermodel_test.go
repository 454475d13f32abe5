package rendermodel

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/Faultbox/xrkit/pkg/input"
	"github.com/Faultbox/xrkit/pkg/openxr"
	"github.com/Faultbox/xrkit/pkg/openxr/openxrtest"
)

var testGLTF = []byte(`{"asset":{"version":"2.0"},"animations":[{"name":"grip"}]}`)

// fakeModels scripts the render-model symbols onto a test backend: a path
// atom table and per-path model entries.
type fakeModels struct {
	paths       []string
	entries     map[string]*fakeEntry
	loadCalls   int
	capsFlags   uint64
	sawCapsTag  bool
	propsResult openxr.Result
}

type fakeEntry struct {
	name string
	key  uint64
	data []byte
}

func (f *fakeModels) atom(path string) uint64 {
	for i, p := range f.paths {
		if p == path {
			return uint64(i + 1)
		}
	}
	f.paths = append(f.paths, path)
	return uint64(len(f.paths))
}

func (f *fakeModels) byAtom(atom uint64) *fakeEntry {
	if atom < 1 || atom > uint64(len(f.paths)) {
		return nil
	}
	return f.entries[f.paths[atom-1]]
}

func (f *fakeModels) byKey(key uint64) *fakeEntry {
	for _, e := range f.entries {
		if e.key == key {
			return e
		}
	}
	return nil
}

func install(b *openxrtest.Backend, f *fakeModels) {
	b.Register("xrStringToPath", func(args ...uintptr) openxr.Result {
		path := openxrtest.CString(args[1])
		if path == "" {
			return openxr.ErrorPathInvalid
		}
		openxrtest.Put(args[2], f.atom(path))
		return openxr.Success
	})
	b.Register("xrPathToString", func(args ...uintptr) openxr.Result {
		atom := uint64(args[1])
		if atom < 1 || atom > uint64(len(f.paths)) {
			return openxr.ErrorPathInvalid
		}
		raw := append([]byte(f.paths[atom-1]), 0)
		capacity := uint32(args[2])
		openxrtest.Put(args[3], uint32(len(raw)))
		if capacity == 0 {
			return openxr.Success
		}
		copy(openxrtest.SliceOf[byte](args[4], capacity), raw)
		return openxr.Success
	})
	b.Register("xrEnumerateRenderModelPathsFB", func(args ...uintptr) openxr.Result {
		capacity := uint32(args[1])
		openxrtest.Put(args[2], uint32(len(f.entries)))
		if capacity == 0 {
			return openxr.Success
		}
		infos := openxrtest.SliceOf[PathInfoFB](args[3], capacity)
		i := 0
		for _, path := range f.paths {
			if f.entries[path] != nil {
				infos[i].Path = f.atom(path)
				i++
			}
		}
		return openxr.Success
	})
	b.Register("xrGetRenderModelPropertiesFB", func(args ...uintptr) openxr.Result {
		entry := f.byAtom(uint64(args[1]))
		if entry == nil {
			return openxr.ErrorPathInvalid
		}
		props := (*PropertiesFB)(unsafe.Pointer(args[2]))
		if props.Next != nil {
			caps := (*CapabilitiesRequestFB)(props.Next)
			f.sawCapsTag = caps.Type == openxr.TypeRenderModelCapabilitiesRequestFB
			f.capsFlags = caps.Flags
		}
		props.VendorID = 0x5157
		props.ModelName = [64]byte{}
		copy(props.ModelName[:], entry.name)
		props.ModelKey = entry.key
		props.ModelVersion = 2
		props.Flags = SupportsGLTF20Subset2
		return f.propsResult
	})
	b.Register("xrLoadRenderModelFB", func(args ...uintptr) openxr.Result {
		info := (*LoadInfoFB)(unsafe.Pointer(args[1]))
		entry := f.byKey(info.ModelKey)
		if entry == nil {
			return openxr.ErrorValidationFailure
		}
		f.loadCalls++
		buffer := (*BufferFB)(unsafe.Pointer(args[2]))
		buffer.BufferCountOutput = uint32(len(entry.data))
		if buffer.BufferCapacityInput == 0 {
			return openxr.Success
		}
		copy(unsafe.Slice(buffer.Buffer, buffer.BufferCapacityInput), entry.data)
		return openxr.Success
	})
}

func newFake() (*openxrtest.Backend, *fakeModels) {
	f := &fakeModels{
		entries: map[string]*fakeEntry{
			"/model_fb/controller/left":  {name: "left controller", key: 11, data: testGLTF},
			"/model_fb/controller/right": {name: "right controller", key: 12, data: testGLTF},
		},
		propsResult: openxr.Success,
	}
	b := openxrtest.New(ExtName)
	install(b, f)
	f.atom("/model_fb/controller/left")
	f.atom("/model_fb/controller/right")
	return b, f
}

func TestNewRequiresExtension(t *testing.T) {
	b, _ := newFake()
	b.Enabled[ExtName] = false
	if _, err := New(b, &input.State{}); !errors.Is(err, openxr.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewRequiresEverySymbol(t *testing.T) {
	b, _ := newFake()
	delete(b.Funcs, "xrLoadRenderModelFB")
	if _, err := New(b, &input.State{}); !errors.Is(err, openxr.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable on missing symbol, got %v", err)
	}
}

func TestEnumeratePathsRoundTrip(t *testing.T) {
	b, _ := newFake()
	rm, err := New(b, &input.State{})
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
	for _, path := range paths {
		// string -> atom -> string must be the identity.
		atom, err := rm.pathValue(path)
		if err != nil {
			t.Fatalf("pathValue(%s) failed: %v", path, err)
		}
		back, err := rm.pathString(atom)
		if err != nil {
			t.Fatalf("pathString failed: %v", err)
		}
		if back != path {
			t.Errorf("round trip: expected %s, got %s", path, back)
		}
	}
}

func TestProperties(t *testing.T) {
	b, f := newFake()
	rm, err := New(b, &input.State{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	props, err := rm.Properties("/model_fb/controller/left")
	if err != nil {
		t.Fatalf("Properties failed: %v", err)
	}
	if props.ModelName != "left controller" {
		t.Errorf("expected name truncated at first null, got %q", props.ModelName)
	}
	if props.VendorID != 0x5157 || props.ModelVersion != 2 {
		t.Errorf("unexpected properties: %+v", props)
	}
	if !f.sawCapsTag {
		t.Error("expected a chained capabilities request")
	}
	if f.capsFlags != SupportsGLTF20Subset2 {
		t.Errorf("expected subset-2 capability flag, got %#x", f.capsFlags)
	}
}

func TestPropertiesStrict(t *testing.T) {
	b, f := newFake()
	rm, _ := New(b, &input.State{})

	f.propsResult = openxr.RenderModelUnavailableFB
	if _, err := rm.Properties("/model_fb/controller/left"); err == nil {
		t.Error("standalone Properties must reject qualified statuses")
	}
}

func TestLoadToleratesExpectedStatuses(t *testing.T) {
	b, f := newFake()
	rm, _ := New(b, &input.State{})

	for _, res := range []openxr.Result{openxr.Success, openxr.RenderModelUnavailableFB, openxr.SessionLossPending} {
		f.propsResult = res
		data, err := rm.Load("/model_fb/controller/left")
		if err != nil {
			t.Errorf("Load with properties status %v failed: %v", res, err)
			continue
		}
		if string(data) != string(testGLTF) {
			t.Errorf("Load with properties status %v returned wrong bytes", res)
		}
	}

	f.propsResult = openxr.ErrorRuntimeFailure
	if _, err := rm.Load("/model_fb/controller/left"); err == nil {
		t.Error("Load must fail on a real properties error")
	}
}

func TestControllerModelCaching(t *testing.T) {
	b, f := newFake()
	rm, _ := New(b, &input.State{})

	m1, err := rm.ControllerModel(input.Right, "/model_fb/controller/right")
	if err != nil {
		t.Fatalf("ControllerModel failed: %v", err)
	}
	m2, err := rm.ControllerModel(input.Right, "/model_fb/controller/right")
	if err != nil {
		t.Fatalf("second ControllerModel failed: %v", err)
	}
	if m1 != m2 {
		t.Error("expected the cached model on the second call")
	}
	if f.loadCalls != 2 { // two-phase: size query plus fill
		t.Errorf("expected exactly one two-phase load, got %d calls", f.loadCalls)
	}
	if m1.Name() != "/model_fb/controller/right.gltf" {
		t.Errorf("unexpected synthetic filename %s", m1.Name())
	}
}

func TestSetupControllerModels(t *testing.T) {
	b, _ := newFake()
	state := &input.State{}
	rm, _ := New(b, state)

	err := rm.SetupControllerModels("/model_fb/controller/left", "/model_fb/controller/right", true)
	if err != nil {
		t.Fatalf("SetupControllerModels failed: %v", err)
	}
	for _, hand := range []input.Handed{input.Left, input.Right} {
		m := state.ControllerModel(hand)
		if m == nil {
			t.Fatalf("expected an active visual for %s", hand)
		}
		if m.Anims().CurAnim() != 0 {
			t.Errorf("%s: expected animation 0 playing, got %d", hand, m.Anims().CurAnim())
		}
	}
}

func TestSetupRightFailureLeavesLeftUntouched(t *testing.T) {
	b, f := newFake()
	state := &input.State{}
	rm, _ := New(b, state)

	delete(f.entries, "/model_fb/controller/right")
	err := rm.SetupControllerModels("/model_fb/controller/left", "/model_fb/controller/right", true)
	if err == nil {
		t.Fatal("expected setup to fail")
	}
	if state.ControllerModel(input.Left) != nil {
		t.Error("left visual must stay untouched when the right hand fails")
	}
}

func TestDisableControllerModels(t *testing.T) {
	b, _ := newFake()
	state := &input.State{}
	rm, _ := New(b, state)

	if err := rm.SetupControllerModels("/model_fb/controller/left", "/model_fb/controller/right", false); err != nil {
		t.Fatalf("SetupControllerModels failed: %v", err)
	}
	rm.DisableControllerModels()

	if state.ControllerModel(input.Left) != nil || state.ControllerModel(input.Right) != nil {
		t.Error("expected visuals cleared")
	}
	if rm.controllers[input.Left] != nil || rm.controllers[input.Right] != nil {
		t.Error("expected cache dropped")
	}
}
