// Package rendermodel drives the XR_FB_render_model extension: enumerating
// runtime-provided model paths, querying per-path properties, loading binary
// model buffers, and caching per-hand controller models with an input-driven
// animation state.
package rendermodel

import (
	"fmt"
	"runtime"
	"unicode/utf8"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/xrkit/internal/logger"
	"github.com/Faultbox/xrkit/pkg/input"
	"github.com/Faultbox/xrkit/pkg/model"
	"github.com/Faultbox/xrkit/pkg/openxr"
)

// ExtName must be requested before session creation for this subsystem to
// construct.
const ExtName = "XR_FB_render_model"

// SupportsGLTF20Subset2 is the capability flag requested on every
// properties query.
const SupportsGLTF20Subset2 uint64 = 0x2

const modelNameSize = 64

// PathInfoFB mirrors XrRenderModelPathInfoFB.
type PathInfoFB struct {
	Type openxr.StructureType
	_    uint32
	Next unsafe.Pointer
	Path uint64
}

// PropertiesFB mirrors XrRenderModelPropertiesFB.
type PropertiesFB struct {
	Type         openxr.StructureType
	_            uint32
	Next         unsafe.Pointer
	VendorID     uint32
	ModelName    [modelNameSize]byte
	ModelKey     uint64
	ModelVersion uint32
	Flags        uint64
}

// CapabilitiesRequestFB mirrors XrRenderModelCapabilitiesRequestFB. It is
// chained onto the properties query to declare which model format the caller
// can consume.
type CapabilitiesRequestFB struct {
	Type  openxr.StructureType
	_     uint32
	Next  unsafe.Pointer
	Flags uint64
}

// LoadInfoFB mirrors XrRenderModelLoadInfoFB.
type LoadInfoFB struct {
	Type     openxr.StructureType
	_        uint32
	Next     unsafe.Pointer
	ModelKey uint64
}

// BufferFB mirrors XrRenderModelBufferFB.
type BufferFB struct {
	Type                openxr.StructureType
	_                   uint32
	Next                unsafe.Pointer
	BufferCapacityInput uint32
	BufferCountOutput   uint32
	Buffer              *byte
}

// Properties is the decoded result of a properties query. The model key is
// session-scoped and intentionally not exposed here; Load re-queries it
// right before use.
type Properties struct {
	VendorID     uint32
	ModelName    string
	ModelVersion uint32
	Flags        uint64
}

// RenderModel owns the extension's resolved function pointers and the
// per-hand controller model cache. Main-thread only; valid for one session.
type RenderModel struct {
	backend openxr.Backend
	input   input.System

	enumeratePaths openxr.Proc
	getProperties  openxr.Proc
	loadModel      openxr.Proc
	stringToPath   openxr.Proc
	pathToString   openxr.Proc

	controllers [2]*model.Model
}

// New probes the extension and resolves every required symbol. Returns
// openxr.ErrUnavailable when the extension cannot run on this backend or any
// symbol fails to resolve.
func New(b openxr.Backend, in input.System) (*RenderModel, error) {
	if !openxr.ExtAvailable(b, ExtName) {
		return nil, openxr.ErrUnavailable
	}
	r := &RenderModel{backend: b, input: in}
	for _, sym := range []struct {
		name string
		proc *openxr.Proc
	}{
		{"xrEnumerateRenderModelPathsFB", &r.enumeratePaths},
		{"xrGetRenderModelPropertiesFB", &r.getProperties},
		{"xrLoadRenderModelFB", &r.loadModel},
		{"xrStringToPath", &r.stringToPath},
		{"xrPathToString", &r.pathToString},
	} {
		if *sym.proc = b.GetFunction(sym.name); *sym.proc == nil {
			logger.Err("symbol did not resolve", zap.String("name", sym.name))
			return nil, openxr.ErrUnavailable
		}
	}
	return r, nil
}

// pathValue resolves a path string to the runtime's opaque path value.
func (r *RenderModel) pathValue(path string) (uint64, error) {
	cstr := append([]byte(path), 0)
	var value uint64
	res := r.stringToPath.Call(
		uintptr(r.backend.Instance()),
		uintptr(unsafe.Pointer(&cstr[0])),
		uintptr(unsafe.Pointer(&value)),
	)
	runtime.KeepAlive(cstr)
	if res != openxr.Success {
		return 0, openxr.ResultError("xrStringToPath", res)
	}
	return value, nil
}

// pathString resolves an opaque path value back to its UTF-8 string. The
// runtime reports the buffer length including the trailing null.
func (r *RenderModel) pathString(value uint64) (string, error) {
	raw, res := openxr.TwoCall(func(capacity uint32, count *uint32, items []byte) openxr.Result {
		var buf uintptr
		if len(items) > 0 {
			buf = uintptr(unsafe.Pointer(&items[0]))
		}
		return r.pathToString.Call(
			uintptr(r.backend.Instance()),
			uintptr(value),
			uintptr(capacity),
			uintptr(unsafe.Pointer(count)),
			buf,
		)
	})
	if res != openxr.Success {
		return "", openxr.ResultError("xrPathToString", res)
	}
	for len(raw) > 0 && raw[len(raw)-1] == 0 {
		raw = raw[:len(raw)-1]
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("rendermodel: path %#x is not valid UTF-8", value)
	}
	return string(raw), nil
}

// EnumeratePaths returns every render-model path the runtime offers. A
// failure at any step, the string resolution of individual paths included,
// fails the whole enumeration.
func (r *RenderModel) EnumeratePaths() ([]string, error) {
	infos, res := openxr.TwoCall(func(capacity uint32, count *uint32, items []PathInfoFB) openxr.Result {
		var buf uintptr
		if len(items) > 0 {
			for i := range items {
				items[i].Type = openxr.TypeRenderModelPathInfoFB
			}
			buf = uintptr(unsafe.Pointer(&items[0]))
		}
		return r.enumeratePaths.Call(
			uintptr(r.backend.Session()),
			uintptr(capacity),
			uintptr(unsafe.Pointer(count)),
			buf,
		)
	})
	if res != openxr.Success {
		return nil, openxr.ResultError("xrEnumerateRenderModelPathsFB", res)
	}

	paths := make([]string, 0, len(infos))
	for _, info := range infos {
		s, err := r.pathString(info.Path)
		if err != nil {
			return nil, err
		}
		paths = append(paths, s)
	}
	return paths, nil
}

// queryProperties issues the raw properties call for an opaque path value,
// chaining the capability request. The caller decides which non-success
// statuses to tolerate.
func (r *RenderModel) queryProperties(value uint64) (PropertiesFB, openxr.Result) {
	caps := CapabilitiesRequestFB{
		Type:  openxr.TypeRenderModelCapabilitiesRequestFB,
		Flags: SupportsGLTF20Subset2,
	}
	props := PropertiesFB{
		Type: openxr.TypeRenderModelPropertiesFB,
		Next: unsafe.Pointer(&caps),
	}
	res := r.getProperties.Call(
		uintptr(r.backend.Session()),
		uintptr(value),
		uintptr(unsafe.Pointer(&props)),
	)
	runtime.KeepAlive(&caps)
	return props, res
}

// Properties queries the decoded properties of one model path. Any
// non-success status is an error here; only Load tolerates the expected
// qualified statuses.
func (r *RenderModel) Properties(path string) (Properties, error) {
	value, err := r.pathValue(path)
	if err != nil {
		return Properties{}, err
	}
	props, res := r.queryProperties(value)
	if res != openxr.Success {
		return Properties{}, openxr.ResultError("xrGetRenderModelPropertiesFB", res)
	}
	return Properties{
		VendorID:     props.VendorID,
		ModelName:    decodeModelName(props.ModelName),
		ModelVersion: props.ModelVersion,
		Flags:        props.Flags,
	}, nil
}

// decodeModelName cuts the fixed-size name buffer at the first null.
func decodeModelName(buf [modelNameSize]byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf[:])
}

// Load fetches the binary model buffer for a path. The properties query that
// produces the model key tolerates the unavailable and session-loss-pending
// statuses so the key can still be attempted; the load itself is strict.
func (r *RenderModel) Load(path string) ([]byte, error) {
	value, err := r.pathValue(path)
	if err != nil {
		return nil, err
	}
	props, res := r.queryProperties(value)
	switch res {
	case openxr.Success, openxr.RenderModelUnavailableFB, openxr.SessionLossPending:
	default:
		return nil, openxr.ResultError("xrGetRenderModelPropertiesFB", res)
	}

	loadInfo := LoadInfoFB{
		Type:     openxr.TypeRenderModelLoadInfoFB,
		ModelKey: props.ModelKey,
	}
	data, res := openxr.TwoCall(func(capacity uint32, count *uint32, items []byte) openxr.Result {
		buffer := BufferFB{
			Type:                openxr.TypeRenderModelBufferFB,
			BufferCapacityInput: capacity,
		}
		if len(items) > 0 {
			buffer.Buffer = &items[0]
		}
		res := r.loadModel.Call(
			uintptr(r.backend.Session()),
			uintptr(unsafe.Pointer(&loadInfo)),
			uintptr(unsafe.Pointer(&buffer)),
		)
		*count = buffer.BufferCountOutput
		runtime.KeepAlive(&buffer)
		return res
	})
	runtime.KeepAlive(&loadInfo)
	if res != openxr.Success {
		return nil, openxr.ResultError("xrLoadRenderModelFB", res)
	}
	return data, nil
}

// ControllerModel returns the cached model for a hand, loading it on first
// use. The loaded bytes are wrapped under a synthetic "<path>.gltf" filename
// and given an identity local transform.
func (r *RenderModel) ControllerModel(hand input.Handed, path string) (*model.Model, error) {
	if m := r.controllers[hand]; m != nil {
		return m, nil
	}
	data, err := r.Load(path)
	if err != nil {
		return nil, err
	}
	m, err := model.FromMemory(path+".gltf", data, nil)
	if err != nil {
		return nil, err
	}
	m.SetLocalTransform(model.Identity())
	r.controllers[hand] = m
	return m, nil
}

// SetupControllerModels loads both controller models and registers them as
// the active visuals, right hand first so a failure leaves the left hand
// untouched. Not transactional: models loaded before a failure stay cached.
func (r *RenderModel) SetupControllerModels(leftPath, rightPath string, withAnimation bool) error {
	if err := r.setupHand(input.Right, rightPath, withAnimation); err != nil {
		return err
	}
	return r.setupHand(input.Left, leftPath, withAnimation)
}

func (r *RenderModel) setupHand(hand input.Handed, path string, withAnimation bool) error {
	m, err := r.ControllerModel(hand, path)
	if err != nil {
		return fmt.Errorf("rendermodel: %s controller: %w", hand, err)
	}
	r.input.SetControllerModel(hand, m)
	if withAnimation && m.Anims().Count() > 0 {
		m.Anims().PlayAnimIdx(0, model.AnimModeLoop)
		if m.Anims().Count() > 1 {
			logger.Warn("controller model has multiple animations, driving only the first",
				zap.String("hand", hand.String()), zap.Int("count", m.Anims().Count()))
		}
	}
	return nil
}

// DisableControllerModels clears the active visuals from the input system
// before dropping the cache.
func (r *RenderModel) DisableControllerModels() {
	r.input.SetControllerModel(input.Left, nil)
	r.input.SetControllerModel(input.Right, nil)
	r.controllers[input.Left] = nil
	r.controllers[input.Right] = nil
}
