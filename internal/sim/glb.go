package sim

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
)

// BuildGLB assembles a minimal valid GLB container holding a glTF 2.0
// document with the given animation names. The emulated runtime serves these
// as render-model buffers.
func BuildGLB(animNames ...string) []byte {
	type anim struct {
		Name string `json:"name"`
	}
	doc := struct {
		Asset struct {
			Version string `json:"version"`
		} `json:"asset"`
		Animations []anim `json:"animations,omitempty"`
	}{}
	doc.Asset.Version = "2.0"
	for _, name := range animNames {
		doc.Animations = append(doc.Animations, anim{Name: name})
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		panic("sim: marshaling gltf document: " + err.Error())
	}
	// Chunks are padded to four bytes; JSON pads with spaces.
	for len(payload)%4 != 0 {
		payload = append(payload, ' ')
	}

	var buf bytes.Buffer
	le := binary.LittleEndian
	write := func(v uint32) {
		var b [4]byte
		le.PutUint32(b[:], v)
		buf.Write(b[:])
	}
	write(0x46546C67) // "glTF"
	write(2)
	write(uint32(12 + 8 + len(payload)))
	write(uint32(len(payload)))
	write(0x4E4F534A) // "JSON"
	buf.Write(payload)
	return buf.Bytes()
}
