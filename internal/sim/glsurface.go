package sim

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// SurfaceProvider allocates the platform surfaces the emulated runtime hands
// out on depth-texture acquire.
type SurfaceProvider interface {
	Acquire(width, height uint32) unsafe.Pointer
	Release(p unsafe.Pointer)
}

// heapSurfaces is the default provider: plain heap buffers, one float per
// pixel. Good enough for anything that never samples the surface.
type heapSurfaces struct{}

func (heapSurfaces) Acquire(width, height uint32) unsafe.Pointer {
	buf := make([]float32, width*height)
	return unsafe.Pointer(&buf[0])
}

func (heapSurfaces) Release(unsafe.Pointer) {}

// GLSurfaces backs depth surfaces with single-channel float GL textures so a
// desktop renderer can visualize them. Requires a current GL context on the
// calling thread.
type GLSurfaces struct {
	textures map[unsafe.Pointer]uint32
}

// NewGLSurfaces returns a GL-backed provider.
func NewGLSurfaces() *GLSurfaces {
	return &GLSurfaces{textures: map[unsafe.Pointer]uint32{}}
}

// Acquire creates an R32F texture of the given size and returns its id
// boxed as the surface pointer.
func (s *GLSurfaces) Acquire(width, height uint32) unsafe.Pointer {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R32F, int32(width), int32(height), 0, gl.RED, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	handle := new(uint32)
	*handle = tex
	p := unsafe.Pointer(handle)
	s.textures[p] = tex
	return p
}

// TextureID returns the GL texture behind a surface pointer, or 0.
func (s *GLSurfaces) TextureID(p unsafe.Pointer) uint32 { return s.textures[p] }

// Release deletes the texture behind the surface pointer.
func (s *GLSurfaces) Release(p unsafe.Pointer) {
	tex, ok := s.textures[p]
	if !ok {
		return
	}
	gl.DeleteTextures(1, &tex)
	delete(s.textures, p)
}
