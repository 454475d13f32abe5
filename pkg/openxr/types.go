package openxr

import (
	"runtime"
	"unsafe"
)

// StructureType tags the first field of every chained runtime structure.
// The numeric values are wire-level constants defined by the runtime
// specification and must match byte-for-byte; types_test.go pins them.
type StructureType uint32

const (
	TypeSystemProperties StructureType = 1000

	TypeRenderModelPathInfoFB            StructureType = 1000119000
	TypeRenderModelPropertiesFB          StructureType = 1000119001
	TypeRenderModelBufferFB              StructureType = 1000119002
	TypeRenderModelLoadInfoFB            StructureType = 1000119003
	TypeSystemRenderModelPropertiesFB    StructureType = 1000119004
	TypeRenderModelCapabilitiesRequestFB StructureType = 1000119005

	TypeDepthResolutionInfoAndroid           StructureType = 1000343000
	TypeDepthSurfaceInfoAndroid              StructureType = 1000343001
	TypeDepthTextureCreateInfoAndroid        StructureType = 1000343002
	TypeDepthTextureAndroid                  StructureType = 1000343003
	TypeDepthSwapchainCreateInfoAndroid      StructureType = 1000343004
	TypeDepthSwapchainImageAndroid           StructureType = 1000343005
	TypeSystemDepthTrackingPropertiesAndroid StructureType = 1000343006

	TypeSystemSimultaneousHandsAndControllersPropertiesMeta   StructureType = 1000532001
	TypeSimultaneousHandsAndControllersTrackingResumeInfoMeta StructureType = 1000532002
	TypeSimultaneousHandsAndControllersTrackingPauseInfoMeta  StructureType = 1000532003
)

// Bool32 is the four-byte boolean used inside runtime structures.
type Bool32 uint32

// True reports whether the runtime set the flag.
func (b Bool32) True() bool { return b != 0 }

// MaxSystemNameSize is the fixed size of SystemProperties.SystemName.
const MaxSystemNameSize = 256

// SystemGraphicsProperties mirrors XrSystemGraphicsProperties.
type SystemGraphicsProperties struct {
	MaxSwapchainImageHeight uint32
	MaxSwapchainImageWidth  uint32
	MaxLayerCount           uint32
}

// SystemTrackingProperties mirrors XrSystemTrackingProperties.
type SystemTrackingProperties struct {
	OrientationTracking Bool32
	PositionTracking    Bool32
}

// SystemProperties mirrors XrSystemProperties. Extension probes chain their
// own properties structure through Next.
type SystemProperties struct {
	Type               StructureType
	Next               unsafe.Pointer
	SystemID           uint64
	VendorID           uint32
	SystemName         [MaxSystemNameSize]byte
	GraphicsProperties SystemGraphicsProperties
	TrackingProperties SystemTrackingProperties
}

// QuerySystemProperties issues xrGetSystemProperties with the given
// extension structure chained onto the core properties. The caller owns the
// chained structure and reads its fields after a successful return.
func QuerySystemProperties(b Backend, next unsafe.Pointer) Result {
	proc := b.GetFunction("xrGetSystemProperties")
	if proc == nil {
		return ErrorFunctionUnsupported
	}
	props := SystemProperties{
		Type:     TypeSystemProperties,
		Next:     next,
		SystemID: b.SystemID(),
	}
	res := proc.Call(uintptr(b.Instance()), uintptr(b.SystemID()), uintptr(unsafe.Pointer(&props)))
	runtime.KeepAlive(&props)
	return res
}
