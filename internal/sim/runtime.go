// Package sim emulates just enough of an OpenXR runtime to run every
// extension subsystem on a desktop: a symbol table of Go-implemented procs,
// a path-atom table, a render-model registry serving generated GLB assets,
// refresh-rate state, simultaneous-tracking state and depth swapchains.
package sim

import (
	"math"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/xrkit/internal/logger"
	"github.com/Faultbox/xrkit/pkg/openxr"
	"github.com/Faultbox/xrkit/pkg/openxr/depthtex"
	"github.com/Faultbox/xrkit/pkg/openxr/refreshrate"
	"github.com/Faultbox/xrkit/pkg/openxr/rendermodel"
	"github.com/Faultbox/xrkit/pkg/openxr/simhands"
)

// get reads a T through a proc argument.
func get[T any](p uintptr) T { return *(*T)(unsafe.Pointer(p)) }

// put writes a T through a proc argument.
func put[T any](p uintptr, v T) { *(*T)(unsafe.Pointer(p)) = v }

// sliceOf views n elements of T at a proc argument.
func sliceOf[T any](p uintptr, n uint32) []T {
	if p == 0 || n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(p)), n)
}

// floatFromBits decodes a float argument passed as its bit pattern.
func floatFromBits(p uintptr) float32 { return math.Float32frombits(uint32(p)) }

// cString reads a null-terminated string through a proc argument.
func cString(p uintptr) string {
	if p == 0 {
		return ""
	}
	var out []byte
	for i := uintptr(0); ; i++ {
		b := *(*byte)(unsafe.Pointer(p + i))
		if b == 0 {
			return string(out)
		}
		out = append(out, b)
	}
}

// chainHeader is the leading layout shared by every chained structure.
type chainHeader struct {
	Type openxr.StructureType
	_    uint32
	Next unsafe.Pointer
}

// boolProps is the layout of the chained probe structures: a header followed
// by one Bool32.
type boolProps struct {
	chainHeader
	Supports openxr.Bool32
}

// ModelEntry is one render model the emulated runtime serves.
type ModelEntry struct {
	Path         string
	Name         string
	VendorID     uint32
	ModelVersion uint32
	Flags        uint64
	Data         []byte
	// Connected controls whether the properties call reports the model's
	// device as present.
	Connected bool
}

type textureState struct {
	info     depthtex.TextureCreateInfo
	surface  unsafe.Pointer
	acquired bool
}

type swapchainState struct {
	images []depthtex.SwapchainImage
	planes [][]float32
	next   uint32
}

// Runtime is the emulated runtime state plus its symbol table. Main-thread
// only, like the native runtime it stands in for.
type Runtime struct {
	exts map[string]bool

	refreshRates []float32
	currentRate  float32

	paths  []string
	models []*ModelEntry
	keys   map[uint64]*ModelEntry

	simHandsSupported bool
	simHandsActive    bool

	depthSupported   bool
	depthResolutions []depthtex.Resolution
	surfaces         SurfaceProvider

	textures       map[*textureState]bool
	swapchains     map[depthtex.Swapchain]*swapchainState
	nextSwapchain  depthtex.Swapchain
	swapchainDepth int

	procs map[string]openxr.ProcFunc
}

// NewRuntime builds a runtime with every extension supported: refresh rates
// 72/90/120 (currently 72), one controller model per hand, simultaneous
// tracking supported, all three depth resolutions, and three images per
// depth swapchain.
func NewRuntime() *Runtime {
	rt := &Runtime{
		exts: map[string]bool{
			refreshrate.ExtName: true,
			rendermodel.ExtName: true,
			simhands.ExtName:    true,
			depthtex.ExtName:    true,
		},
		refreshRates:      []float32{72, 90, 120},
		currentRate:       72,
		keys:              map[uint64]*ModelEntry{},
		simHandsSupported: true,
		depthSupported:    true,
		depthResolutions: []depthtex.Resolution{
			depthtex.ResolutionQuarter, depthtex.ResolutionHalf, depthtex.ResolutionFull,
		},
		surfaces:       heapSurfaces{},
		textures:       map[*textureState]bool{},
		swapchains:     map[depthtex.Swapchain]*swapchainState{},
		nextSwapchain:  1,
		swapchainDepth: 3,
	}
	rt.AddModel(&ModelEntry{
		Path:      "/model_fb/controller/left",
		Name:      "sim controller left",
		VendorID:  0x5157,
		Data:      BuildGLB("grip"),
		Connected: true,
	})
	rt.AddModel(&ModelEntry{
		Path:      "/model_fb/controller/right",
		Name:      "sim controller right",
		VendorID:  0x5157,
		Data:      BuildGLB("grip"),
		Connected: true,
	})
	rt.installProcs()
	return rt
}

// SupportsExt reports whether the runtime offers the extension.
func (rt *Runtime) SupportsExt(name string) bool { return rt.exts[name] }

// SetExtSupported scripts extension availability, for tests and demos.
func (rt *Runtime) SetExtSupported(name string, ok bool) { rt.exts[name] = ok }

// SetRefreshRates replaces the supported rate table and the current rate.
func (rt *Runtime) SetRefreshRates(rates []float32, current float32) {
	rt.refreshRates = rates
	rt.currentRate = current
}

// CurrentRate returns the rate the runtime is running at.
func (rt *Runtime) CurrentRate() float32 { return rt.currentRate }

// SimultaneousActive reports whether simultaneous tracking is resumed.
func (rt *Runtime) SimultaneousActive() bool { return rt.simHandsActive }

// SetSurfaceProvider replaces the depth surface allocator.
func (rt *Runtime) SetSurfaceProvider(p SurfaceProvider) { rt.surfaces = p }

// AddModel registers a render model. Model keys are session-scoped; the
// runtime assigns a fresh one per entry.
func (rt *Runtime) AddModel(m *ModelEntry) {
	m.ModelVersion = 1
	rt.models = append(rt.models, m)
	key := uint64(0x4000 + len(rt.keys))
	rt.keys[key] = m
	rt.pathAtom(m.Path)
}

// Proc resolves a runtime symbol.
func (rt *Runtime) Proc(name string) openxr.Proc {
	fn, ok := rt.procs[name]
	if !ok {
		return nil
	}
	return fn
}

// pathAtom interns a path string; atom values start at 1.
func (rt *Runtime) pathAtom(path string) uint64 {
	for i, p := range rt.paths {
		if p == path {
			return uint64(i + 1)
		}
	}
	rt.paths = append(rt.paths, path)
	return uint64(len(rt.paths))
}

func (rt *Runtime) pathName(atom uint64) (string, bool) {
	if atom < 1 || atom > uint64(len(rt.paths)) {
		return "", false
	}
	return rt.paths[atom-1], true
}

func (rt *Runtime) modelByAtom(atom uint64) *ModelEntry {
	path, ok := rt.pathName(atom)
	if !ok {
		return nil
	}
	for _, m := range rt.models {
		if m.Path == path {
			return m
		}
	}
	return nil
}

func (rt *Runtime) keyOf(m *ModelEntry) uint64 {
	for key, entry := range rt.keys {
		if entry == m {
			return key
		}
	}
	return 0
}

func (rt *Runtime) installProcs() {
	rt.procs = map[string]openxr.ProcFunc{
		"xrGetSystemProperties": rt.getSystemProperties,

		"xrEnumerateDisplayRefreshRatesFB": rt.enumerateRefreshRates,
		"xrGetDisplayRefreshRateFB":        rt.getRefreshRate,
		"xrRequestDisplayRefreshRateFB":    rt.requestRefreshRate,

		"xrStringToPath":                rt.stringToPath,
		"xrPathToString":                rt.pathToString,
		"xrEnumerateRenderModelPathsFB": rt.enumerateModelPaths,
		"xrGetRenderModelPropertiesFB":  rt.getModelProperties,
		"xrLoadRenderModelFB":           rt.loadModel,

		"xrResumeSimultaneousHandsAndControllersTrackingMETA": rt.resumeSimultaneous,
		"xrPauseSimultaneousHandsAndControllersTrackingMETA":  rt.pauseSimultaneous,

		"xrEnumerateDepthResolutionsAndroid":     rt.enumerateDepthResolutions,
		"xrCreateDepthTextureAndroid":            rt.createDepthTexture,
		"xrDestroyDepthTextureAndroid":           rt.destroyDepthTexture,
		"xrAcquireDepthTextureAndroid":           rt.acquireDepthTexture,
		"xrReleaseDepthTextureAndroid":           rt.releaseDepthTexture,
		"xrCreateDepthSwapchainAndroid":          rt.createDepthSwapchain,
		"xrDestroyDepthSwapchainAndroid":         rt.destroyDepthSwapchain,
		"xrEnumerateDepthSwapchainImagesAndroid": rt.enumerateDepthSwapchainImages,
		"xrAcquireDepthSwapchainImageAndroid":    rt.acquireDepthSwapchainImage,
	}
}

// getSystemProperties fills the core properties and walks the next chain,
// answering every probe structure it recognizes.
func (rt *Runtime) getSystemProperties(args ...uintptr) openxr.Result {
	props := (*openxr.SystemProperties)(unsafe.Pointer(args[2]))
	props.SystemID = uint64(args[1])
	props.VendorID = 0x5157
	copy(props.SystemName[:], "xrkit simulator")
	props.TrackingProperties.OrientationTracking = 1
	props.TrackingProperties.PositionTracking = 1

	for next := props.Next; next != nil; {
		header := (*chainHeader)(next)
		switch header.Type {
		case openxr.TypeSystemSimultaneousHandsAndControllersPropertiesMeta:
			p := (*boolProps)(next)
			p.Supports = 0
			if rt.simHandsSupported {
				p.Supports = 1
			}
		case openxr.TypeSystemDepthTrackingPropertiesAndroid:
			p := (*boolProps)(next)
			p.Supports = 0
			if rt.depthSupported {
				p.Supports = 1
			}
		default:
			logger.Warn("sim: unrecognized chained structure", zap.Uint32("type", uint32(header.Type)))
		}
		next = header.Next
	}
	return openxr.Success
}

func (rt *Runtime) enumerateRefreshRates(args ...uintptr) openxr.Result {
	capacity := uint32(args[1])
	put(args[2], uint32(len(rt.refreshRates)))
	if capacity == 0 {
		return openxr.Success
	}
	if int(capacity) < len(rt.refreshRates) {
		return openxr.ErrorValidationFailure
	}
	copy(sliceOf[float32](args[3], capacity), rt.refreshRates)
	return openxr.Success
}

func (rt *Runtime) getRefreshRate(args ...uintptr) openxr.Result {
	put(args[1], rt.currentRate)
	return openxr.Success
}

func (rt *Runtime) requestRefreshRate(args ...uintptr) openxr.Result {
	rate := floatFromBits(args[1])
	for _, r := range rt.refreshRates {
		if r == rate {
			rt.currentRate = rate
			return openxr.Success
		}
	}
	return openxr.ErrorFeatureUnsupported
}

func (rt *Runtime) stringToPath(args ...uintptr) openxr.Result {
	path := cString(args[1])
	if path == "" {
		return openxr.ErrorPathInvalid
	}
	put(args[2], rt.pathAtom(path))
	return openxr.Success
}

func (rt *Runtime) pathToString(args ...uintptr) openxr.Result {
	name, ok := rt.pathName(uint64(args[1]))
	if !ok {
		return openxr.ErrorPathInvalid
	}
	raw := append([]byte(name), 0)
	capacity := uint32(args[2])
	put(args[3], uint32(len(raw)))
	if capacity == 0 {
		return openxr.Success
	}
	if int(capacity) < len(raw) {
		return openxr.ErrorValidationFailure
	}
	copy(sliceOf[byte](args[4], capacity), raw)
	return openxr.Success
}

func (rt *Runtime) enumerateModelPaths(args ...uintptr) openxr.Result {
	capacity := uint32(args[1])
	put(args[2], uint32(len(rt.models)))
	if capacity == 0 {
		return openxr.Success
	}
	if int(capacity) < len(rt.models) {
		return openxr.ErrorValidationFailure
	}
	infos := sliceOf[rendermodel.PathInfoFB](args[3], capacity)
	for i, m := range rt.models {
		infos[i].Path = rt.pathAtom(m.Path)
	}
	return openxr.Success
}

func (rt *Runtime) getModelProperties(args ...uintptr) openxr.Result {
	m := rt.modelByAtom(uint64(args[1]))
	if m == nil {
		return openxr.ErrorPathInvalid
	}
	props := (*rendermodel.PropertiesFB)(unsafe.Pointer(args[2]))
	props.VendorID = m.VendorID
	props.ModelName = [64]byte{}
	copy(props.ModelName[:], m.Name)
	props.ModelKey = rt.keyOf(m)
	props.ModelVersion = m.ModelVersion
	props.Flags = m.Flags
	if !m.Connected {
		return openxr.RenderModelUnavailableFB
	}
	return openxr.Success
}

func (rt *Runtime) loadModel(args ...uintptr) openxr.Result {
	info := (*rendermodel.LoadInfoFB)(unsafe.Pointer(args[1]))
	m, ok := rt.keys[info.ModelKey]
	if !ok {
		return openxr.ErrorValidationFailure
	}
	buffer := (*rendermodel.BufferFB)(unsafe.Pointer(args[2]))
	buffer.BufferCountOutput = uint32(len(m.Data))
	if buffer.BufferCapacityInput == 0 {
		return openxr.Success
	}
	if int(buffer.BufferCapacityInput) < len(m.Data) {
		return openxr.ErrorValidationFailure
	}
	copy(unsafe.Slice(buffer.Buffer, buffer.BufferCapacityInput), m.Data)
	return openxr.Success
}

func (rt *Runtime) resumeSimultaneous(args ...uintptr) openxr.Result {
	if !rt.simHandsSupported {
		return openxr.ErrorFeatureUnsupported
	}
	rt.simHandsActive = true
	return openxr.Success
}

func (rt *Runtime) pauseSimultaneous(args ...uintptr) openxr.Result {
	if !rt.simHandsSupported {
		return openxr.ErrorFeatureUnsupported
	}
	rt.simHandsActive = false
	return openxr.Success
}

func (rt *Runtime) enumerateDepthResolutions(args ...uintptr) openxr.Result {
	capacity := uint32(args[1])
	put(args[2], uint32(len(rt.depthResolutions)))
	if capacity == 0 {
		return openxr.Success
	}
	if int(capacity) < len(rt.depthResolutions) {
		return openxr.ErrorValidationFailure
	}
	copy(sliceOf[depthtex.Resolution](args[3], capacity), rt.depthResolutions)
	return openxr.Success
}

func (rt *Runtime) createDepthTexture(args ...uintptr) openxr.Result {
	info := get[depthtex.TextureCreateInfo](args[1])
	if info.Resolution.Width == 0 || info.Resolution.Height == 0 {
		return openxr.ErrorValidationFailure
	}
	st := &textureState{
		info:    info,
		surface: rt.surfaces.Acquire(info.Resolution.Width, info.Resolution.Height),
	}
	rt.textures[st] = true
	tex := (*depthtex.Texture)(unsafe.Pointer(args[2]))
	tex.Texture = unsafe.Pointer(st)
	return openxr.Success
}

func (rt *Runtime) textureOf(p uintptr) *textureState {
	tex := (*depthtex.Texture)(unsafe.Pointer(p))
	st := (*textureState)(tex.Texture)
	if st == nil || !rt.textures[st] {
		return nil
	}
	return st
}

func (rt *Runtime) destroyDepthTexture(args ...uintptr) openxr.Result {
	st := rt.textureOf(args[1])
	if st == nil {
		return openxr.ErrorHandleInvalid
	}
	rt.surfaces.Release(st.surface)
	delete(rt.textures, st)
	return openxr.Success
}

func (rt *Runtime) acquireDepthTexture(args ...uintptr) openxr.Result {
	st := rt.textureOf(args[1])
	if st == nil {
		return openxr.ErrorHandleInvalid
	}
	if st.acquired {
		return openxr.ErrorValidationFailure
	}
	st.acquired = true
	info := (*depthtex.SurfaceInfo)(unsafe.Pointer(args[2]))
	info.Surface = st.surface
	return openxr.Success
}

func (rt *Runtime) releaseDepthTexture(args ...uintptr) openxr.Result {
	st := rt.textureOf(args[1])
	if st == nil {
		return openxr.ErrorHandleInvalid
	}
	if !st.acquired {
		return openxr.ErrorValidationFailure
	}
	st.acquired = false
	return openxr.Success
}

func (rt *Runtime) createDepthSwapchain(args ...uintptr) openxr.Result {
	info := get[depthtex.SwapchainCreateInfo](args[1])
	width, height := info.Resolution.Dimensions()
	if width == 0 {
		return openxr.ErrorValidationFailure
	}

	st := &swapchainState{}
	plane := func() unsafe.Pointer {
		buf := make([]float32, width*height)
		st.planes = append(st.planes, buf)
		return unsafe.Pointer(&buf[0])
	}
	for i := 0; i < rt.swapchainDepth; i++ {
		img := depthtex.SwapchainImage{Type: openxr.TypeDepthSwapchainImageAndroid}
		if info.CreateFlags&depthtex.SwapchainCreateRawDepth != 0 {
			img.RawDepthImage = plane()
		}
		if info.CreateFlags&depthtex.SwapchainCreateRawConfidence != 0 {
			img.RawDepthConfidenceImage = plane()
		}
		if info.CreateFlags&depthtex.SwapchainCreateSmoothDepth != 0 {
			img.SmoothDepthImage = plane()
		}
		if info.CreateFlags&depthtex.SwapchainCreateSmoothConfidence != 0 {
			img.SmoothDepthConfidenceImage = plane()
		}
		st.images = append(st.images, img)
	}

	handle := rt.nextSwapchain
	rt.nextSwapchain++
	rt.swapchains[handle] = st
	put(args[2], handle)
	return openxr.Success
}

func (rt *Runtime) destroyDepthSwapchain(args ...uintptr) openxr.Result {
	handle := depthtex.Swapchain(args[1])
	if _, ok := rt.swapchains[handle]; !ok {
		return openxr.ErrorHandleInvalid
	}
	delete(rt.swapchains, handle)
	return openxr.Success
}

func (rt *Runtime) enumerateDepthSwapchainImages(args ...uintptr) openxr.Result {
	st, ok := rt.swapchains[depthtex.Swapchain(args[0])]
	if !ok {
		return openxr.ErrorHandleInvalid
	}
	capacity := uint32(args[1])
	put(args[2], uint32(len(st.images)))
	if capacity == 0 {
		return openxr.Success
	}
	if int(capacity) < len(st.images) {
		return openxr.ErrorValidationFailure
	}
	copy(sliceOf[depthtex.SwapchainImage](args[3], capacity), st.images)
	return openxr.Success
}

func (rt *Runtime) acquireDepthSwapchainImage(args ...uintptr) openxr.Result {
	st, ok := rt.swapchains[depthtex.Swapchain(args[1])]
	if !ok {
		return openxr.ErrorHandleInvalid
	}
	index := st.next
	st.next = (st.next + 1) % uint32(len(st.images))
	put(args[2], index)
	return openxr.Success
}
