// Package model wraps binary model assets just far enough for controller
// visuals: GLB/glTF container parsing and the animation collection a
// controller model drives.
package model

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

// GLB container errors.
var (
	ErrEmptyData     = errors.New("model: empty data")
	ErrInvalidMagic  = errors.New("model: invalid glb magic")
	ErrTruncatedGLB  = errors.New("model: truncated glb chunk")
	ErrNoJSONChunk   = errors.New("model: glb has no JSON chunk")
	ErrInvalidGLTF   = errors.New("model: invalid gltf document")
	ErrNotGLTF2      = errors.New("model: unsupported gltf version")
	ErrUnknownFormat = errors.New("model: unrecognized model format")
)

const (
	glbMagic     = 0x46546C67 // "glTF"
	glbChunkJSON = 0x4E4F534A // "JSON"
	glbChunkBIN  = 0x004E4942 // "BIN\0"
)

// AnimMode selects how an animation advances.
type AnimMode int

const (
	AnimModeLoop AnimMode = iota
	AnimModeOnce
	AnimModeManual
)

// Shader is an optional material override for loaded models.
type Shader struct {
	Name string
}

// Anim is one animation channel of a model.
type Anim struct {
	Name string
}

// Model is a loaded model asset. It owns its animation playback state; all
// methods are main-thread only.
type Model struct {
	name   string
	shader *Shader
	anims  []Anim

	activeAnim int
	animMode   AnimMode
	animTime   float32

	localTransform [16]float32
}

// Identity returns the identity 4x4 transform in column-major order.
func Identity() [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

type gltfDoc struct {
	Asset struct {
		Version string `json:"version"`
	} `json:"asset"`
	Animations []struct {
		Name string `json:"name"`
	} `json:"animations"`
}

// FromMemory parses model data named by a synthetic filename. GLB containers
// and plain JSON glTF documents are recognized by their leading bytes.
func FromMemory(filename string, data []byte, shader *Shader) (*Model, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	var doc []byte
	switch {
	case len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic:
		jsonChunk, err := glbJSONChunk(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filename, err)
		}
		doc = jsonChunk
	case bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("{")):
		doc = data
	default:
		return nil, fmt.Errorf("parsing %s: %w", filename, ErrUnknownFormat)
	}

	var parsed gltfDoc
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("parsing %s: %w: %v", filename, ErrInvalidGLTF, err)
	}
	if parsed.Asset.Version != "2.0" {
		return nil, fmt.Errorf("parsing %s: %w (%q)", filename, ErrNotGLTF2, parsed.Asset.Version)
	}

	m := &Model{
		name:           filename,
		shader:         shader,
		activeAnim:     -1,
		localTransform: Identity(),
	}
	for i, a := range parsed.Animations {
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("anim%d", i)
		}
		m.anims = append(m.anims, Anim{Name: name})
	}
	return m, nil
}

// glbJSONChunk extracts the JSON chunk from a GLB container.
func glbJSONChunk(data []byte) ([]byte, error) {
	// 12-byte header: magic, version, total length.
	if len(data) < 12 {
		return nil, ErrTruncatedGLB
	}
	if binary.LittleEndian.Uint32(data) != glbMagic {
		return nil, ErrInvalidMagic
	}

	offset := 12
	for offset+8 <= len(data) {
		chunkLen := int(binary.LittleEndian.Uint32(data[offset:]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4:])
		offset += 8
		if offset+chunkLen > len(data) {
			return nil, ErrTruncatedGLB
		}
		if chunkType == glbChunkJSON {
			return data[offset : offset+chunkLen], nil
		}
		offset += chunkLen
	}
	return nil, ErrNoJSONChunk
}

// Name returns the synthetic filename the model was loaded under.
func (m *Model) Name() string { return m.name }

// SetLocalTransform replaces the root node transform.
func (m *Model) SetLocalTransform(t [16]float32) { m.localTransform = t }

// LocalTransform returns the root node transform.
func (m *Model) LocalTransform() [16]float32 { return m.localTransform }

// Anims returns the model's animation collection.
func (m *Model) Anims() *Anims { return &Anims{m: m} }

// Anims is the animation collection of one model.
type Anims struct {
	m *Model
}

// Count returns the number of animations.
func (a *Anims) Count() int { return len(a.m.anims) }

// Name returns the name of animation i, or "" when out of range.
func (a *Anims) Name(i int) string {
	if i < 0 || i >= len(a.m.anims) {
		return ""
	}
	return a.m.anims[i].Name
}

// PlayAnimIdx starts animation i in the given mode. Out-of-range indices
// are ignored, as is a model without animations.
func (a *Anims) PlayAnimIdx(i int, mode AnimMode) {
	if i < 0 || i >= len(a.m.anims) {
		return
	}
	a.m.activeAnim = i
	a.m.animMode = mode
	a.m.animTime = 0
}

// AnimTime sets the playback time of the active animation. A model without
// an active animation ignores the call.
func (a *Anims) AnimTime(t float32) {
	if a.m.activeAnim < 0 {
		return
	}
	a.m.animTime = t
}

// CurAnimTime returns the playback time of the active animation.
func (a *Anims) CurAnimTime() float32 { return a.m.animTime }

// CurAnim returns the index of the active animation, or -1.
func (a *Anims) CurAnim() int { return a.m.activeAnim }

// CurAnimMode returns the mode the active animation was started with.
func (a *Anims) CurAnimMode() AnimMode { return a.m.animMode }
