// Package depthtex drives the XR_ANDROID_depth_texture extension: probing
// depth-tracking support, enumerating depth resolutions, and managing depth
// textures and depth swapchains.
package depthtex

import (
	"fmt"
	"runtime"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/xrkit/internal/logger"
	"github.com/Faultbox/xrkit/pkg/openxr"
)

// ExtName must be requested before session creation for this subsystem to
// construct.
const ExtName = "XR_ANDROID_depth_texture"

// Resolution tags the depth resolutions the runtime can serve.
type Resolution uint32

const (
	ResolutionQuarter Resolution = 1
	ResolutionHalf    Resolution = 2
	ResolutionFull    Resolution = 3
)

// String returns a human-readable resolution name.
func (r Resolution) String() string {
	switch r {
	case ResolutionQuarter:
		return "quarter"
	case ResolutionHalf:
		return "half"
	case ResolutionFull:
		return "full"
	default:
		return fmt.Sprintf("resolution(%d)", uint32(r))
	}
}

// Dimensions returns the pixel size of the resolution tag, or (0, 0) for an
// unknown tag.
func (r Resolution) Dimensions() (width, height uint32) {
	switch r {
	case ResolutionQuarter:
		return 640, 480
	case ResolutionHalf:
		return 1280, 960
	case ResolutionFull:
		return 2560, 1920
	default:
		return 0, 0
	}
}

// SwapchainCreateFlags selects which image planes a depth swapchain carries.
type SwapchainCreateFlags uint64

const (
	SwapchainCreateSmoothDepth      SwapchainCreateFlags = 0x00000001
	SwapchainCreateSmoothConfidence SwapchainCreateFlags = 0x00000002
	SwapchainCreateRawDepth         SwapchainCreateFlags = 0x00000004
	SwapchainCreateRawConfidence    SwapchainCreateFlags = 0x00000008
)

// SurfaceOrigin selects the vertical origin of a depth texture surface.
type SurfaceOrigin uint32

const (
	SurfaceOriginTopLeft    SurfaceOrigin = 0
	SurfaceOriginBottomLeft SurfaceOrigin = 1
)

// ResolutionInfo mirrors XrDepthResolutionInfoANDROID.
type ResolutionInfo struct {
	Type   openxr.StructureType
	_      uint32
	Next   unsafe.Pointer
	Width  uint32
	Height uint32
}

// SurfaceInfo mirrors XrDepthSurfaceInfoANDROID; Surface is the platform
// surface pointer the runtime filled in on acquire.
type SurfaceInfo struct {
	Type    openxr.StructureType
	_       uint32
	Next    unsafe.Pointer
	Surface unsafe.Pointer
}

// TextureCreateInfo mirrors XrDepthTextureCreateInfoANDROID.
type TextureCreateInfo struct {
	Type          openxr.StructureType
	_             uint32
	Next          unsafe.Pointer
	Resolution    ResolutionInfo
	SurfaceOrigin SurfaceOrigin
	_             uint32
}

// Texture mirrors XrDepthTextureANDROID: the opaque depth-texture handle.
type Texture struct {
	Type    openxr.StructureType
	_       uint32
	Next    unsafe.Pointer
	Texture unsafe.Pointer
}

// SwapchainCreateInfo mirrors XrDepthSwapchainCreateInfoANDROID.
type SwapchainCreateInfo struct {
	Type        openxr.StructureType
	_           uint32
	Next        unsafe.Pointer
	Resolution  Resolution
	_           uint32
	CreateFlags SwapchainCreateFlags
}

// SwapchainImage mirrors XrDepthSwapchainImageANDROID. Each pointer is
// non-null exactly when the matching create flag was set.
type SwapchainImage struct {
	Type                       openxr.StructureType
	_                          uint32
	Next                       unsafe.Pointer
	RawDepthImage              unsafe.Pointer
	RawDepthConfidenceImage    unsafe.Pointer
	SmoothDepthImage           unsafe.Pointer
	SmoothDepthConfidenceImage unsafe.Pointer
}

// Swapchain is the opaque depth-swapchain handle.
type Swapchain uint64

// systemDepthTrackingProperties mirrors
// XrSystemDepthTrackingPropertiesANDROID.
type systemDepthTrackingProperties struct {
	Type                  openxr.StructureType
	_                     uint32
	Next                  unsafe.Pointer
	SupportsDepthTracking openxr.Bool32
}

// NewTextureCreateInfo builds a fully tagged texture create-info for the
// given pixel size and surface origin.
func NewTextureCreateInfo(width, height uint32, origin SurfaceOrigin) TextureCreateInfo {
	return TextureCreateInfo{
		Type: openxr.TypeDepthTextureCreateInfoAndroid,
		Resolution: ResolutionInfo{
			Type:   openxr.TypeDepthResolutionInfoAndroid,
			Width:  width,
			Height: height,
		},
		SurfaceOrigin: origin,
	}
}

// NewSwapchainCreateInfo builds a fully tagged swapchain create-info.
func NewSwapchainCreateInfo(res Resolution, flags SwapchainCreateFlags) SwapchainCreateInfo {
	return SwapchainCreateInfo{
		Type:        openxr.TypeDepthSwapchainCreateInfoAndroid,
		Resolution:  res,
		CreateFlags: flags,
	}
}

// Extension owns the resolved function pointers of the depth-texture
// extension. Main-thread only; valid for one session.
type Extension struct {
	backend openxr.Backend

	enumerateResolutions openxr.Proc
	createTexture        openxr.Proc
	destroyTexture       openxr.Proc
	acquireTexture       openxr.Proc
	releaseTexture       openxr.Proc
	createSwapchain      openxr.Proc
	destroySwapchain     openxr.Proc
	enumerateImages      openxr.Proc
	acquireImage         openxr.Proc
}

// New probes the extension and resolves every symbol. All nine must resolve;
// otherwise openxr.ErrUnavailable is returned.
func New(b openxr.Backend) (*Extension, error) {
	if !openxr.ExtAvailable(b, ExtName) {
		return nil, openxr.ErrUnavailable
	}
	e := &Extension{backend: b}
	for _, sym := range []struct {
		name string
		proc *openxr.Proc
	}{
		{"xrEnumerateDepthResolutionsAndroid", &e.enumerateResolutions},
		{"xrCreateDepthTextureAndroid", &e.createTexture},
		{"xrDestroyDepthTextureAndroid", &e.destroyTexture},
		{"xrAcquireDepthTextureAndroid", &e.acquireTexture},
		{"xrReleaseDepthTextureAndroid", &e.releaseTexture},
		{"xrCreateDepthSwapchainAndroid", &e.createSwapchain},
		{"xrDestroyDepthSwapchainAndroid", &e.destroySwapchain},
		{"xrEnumerateDepthSwapchainImagesAndroid", &e.enumerateImages},
		{"xrAcquireDepthSwapchainImageAndroid", &e.acquireImage},
	} {
		if *sym.proc = b.GetFunction(sym.name); *sym.proc == nil {
			logger.Err("symbol did not resolve", zap.String("name", sym.name))
			return nil, openxr.ErrUnavailable
		}
	}
	return e, nil
}

// SupportsDepthTracking probes the system-properties chain for depth
// tracking support. Any failure reports false.
func (e *Extension) SupportsDepthTracking(withLog bool) bool {
	props := systemDepthTrackingProperties{
		Type: openxr.TypeSystemDepthTrackingPropertiesAndroid,
	}
	res := openxr.QuerySystemProperties(e.backend, unsafe.Pointer(&props))
	runtime.KeepAlive(&props)
	if res != openxr.Success {
		logger.Err("depth tracking probe failed", zap.Stringer("result", res))
		return false
	}
	if withLog {
		logger.Info("depth tracking", zap.Bool("supported", props.SupportsDepthTracking.True()))
	}
	return props.SupportsDepthTracking.True()
}

// EnumerateResolutions returns the depth resolutions the device supports.
func (e *Extension) EnumerateResolutions() ([]Resolution, error) {
	resolutions, res := openxr.TwoCall(func(capacity uint32, count *uint32, items []Resolution) openxr.Result {
		var buf uintptr
		if len(items) > 0 {
			buf = uintptr(unsafe.Pointer(&items[0]))
		}
		return e.enumerateResolutions.Call(
			uintptr(e.backend.Session()),
			uintptr(capacity),
			uintptr(unsafe.Pointer(count)),
			buf,
		)
	})
	if res != openxr.Success {
		return nil, openxr.ResultError("xrEnumerateDepthResolutionsAndroid", res)
	}
	return resolutions, nil
}

// CreateTexture creates a depth texture. The returned handle must be
// destroyed exactly once with DestroyTexture.
func (e *Extension) CreateTexture(info *TextureCreateInfo) (*Texture, error) {
	tex := &Texture{Type: openxr.TypeDepthTextureAndroid}
	res := e.createTexture.Call(
		uintptr(e.backend.Session()),
		uintptr(unsafe.Pointer(info)),
		uintptr(unsafe.Pointer(tex)),
	)
	runtime.KeepAlive(info)
	if res != openxr.Success {
		return nil, openxr.ResultError("xrCreateDepthTextureAndroid", res)
	}
	return tex, nil
}

// DestroyTexture destroys a depth texture. The handle must not be used
// afterwards.
func (e *Extension) DestroyTexture(tex *Texture) error {
	res := e.destroyTexture.Call(uintptr(e.backend.Session()), uintptr(unsafe.Pointer(tex)))
	runtime.KeepAlive(tex)
	if res != openxr.Success {
		return openxr.ResultError("xrDestroyDepthTextureAndroid", res)
	}
	return nil
}

// AcquireTexture acquires the texture's platform surface. Every acquire must
// be paired with exactly one ReleaseTexture before the texture is destroyed.
func (e *Extension) AcquireTexture(tex *Texture) (SurfaceInfo, error) {
	info := SurfaceInfo{Type: openxr.TypeDepthSurfaceInfoAndroid}
	res := e.acquireTexture.Call(
		uintptr(e.backend.Session()),
		uintptr(unsafe.Pointer(tex)),
		uintptr(unsafe.Pointer(&info)),
	)
	runtime.KeepAlive(tex)
	if res != openxr.Success {
		return SurfaceInfo{}, openxr.ResultError("xrAcquireDepthTextureAndroid", res)
	}
	return info, nil
}

// ReleaseTexture releases a previously acquired surface.
func (e *Extension) ReleaseTexture(tex *Texture) error {
	res := e.releaseTexture.Call(uintptr(e.backend.Session()), uintptr(unsafe.Pointer(tex)))
	runtime.KeepAlive(tex)
	if res != openxr.Success {
		return openxr.ResultError("xrReleaseDepthTextureAndroid", res)
	}
	return nil
}

// CreateSwapchain creates a depth swapchain. The returned handle must be
// destroyed exactly once with DestroySwapchain.
func (e *Extension) CreateSwapchain(info *SwapchainCreateInfo) (Swapchain, error) {
	var sc Swapchain
	res := e.createSwapchain.Call(
		uintptr(e.backend.Session()),
		uintptr(unsafe.Pointer(info)),
		uintptr(unsafe.Pointer(&sc)),
	)
	runtime.KeepAlive(info)
	if res != openxr.Success {
		return 0, openxr.ResultError("xrCreateDepthSwapchainAndroid", res)
	}
	return sc, nil
}

// DestroySwapchain destroys a depth swapchain. The handle and every image
// record enumerated from it must not be used afterwards.
func (e *Extension) DestroySwapchain(sc Swapchain) error {
	res := e.destroySwapchain.Call(uintptr(e.backend.Session()), uintptr(sc))
	if res != openxr.Success {
		return openxr.ResultError("xrDestroyDepthSwapchainAndroid", res)
	}
	return nil
}

// EnumerateImages returns the swapchain's image list. The list is stable for
// the swapchain's lifetime.
func (e *Extension) EnumerateImages(sc Swapchain) ([]SwapchainImage, error) {
	images, res := openxr.TwoCall(func(capacity uint32, count *uint32, items []SwapchainImage) openxr.Result {
		var buf uintptr
		if len(items) > 0 {
			for i := range items {
				items[i].Type = openxr.TypeDepthSwapchainImageAndroid
			}
			buf = uintptr(unsafe.Pointer(&items[0]))
		}
		return e.enumerateImages.Call(
			uintptr(sc),
			uintptr(capacity),
			uintptr(unsafe.Pointer(count)),
			buf,
		)
	})
	if res != openxr.Success {
		return nil, openxr.ResultError("xrEnumerateDepthSwapchainImagesAndroid", res)
	}
	return images, nil
}

// AcquireImage returns the index of the next image to write, in range of the
// list EnumerateImages returned.
func (e *Extension) AcquireImage(sc Swapchain) (uint32, error) {
	var index uint32
	res := e.acquireImage.Call(
		uintptr(e.backend.Session()),
		uintptr(sc),
		uintptr(unsafe.Pointer(&index)),
	)
	if res != openxr.Success {
		return 0, openxr.ResultError("xrAcquireDepthSwapchainImageAndroid", res)
	}
	return index, nil
}
