package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type UniformKind int

const (
	UniformFloat UniformKind = iota
	UniformMat4
)

// Uniform is one member of a shader's uniform struct. Members are laid out
// in declaration order following WGSL uniform address space rules.
type Uniform struct {
	Name string
	Kind UniformKind
}

func (k UniformKind) size() uint64 {
	if k == UniformMat4 {
		return 64
	}
	return 4
}

func (k UniformKind) align() uint64 {
	if k == UniformMat4 {
		return 16
	}
	return 4
}

func alignUp(v, a uint64) uint64 {
	return (v + a - 1) &^ (a - 1)
}

// UniformLayout returns the byte offset of every member and the struct size,
// rounded up to 16 bytes. An empty list has size 0.
func UniformLayout(uniforms []Uniform) ([]uint64, uint64) {
	offsets := make([]uint64, len(uniforms))
	var off uint64
	for i, u := range uniforms {
		off = alignUp(off, u.Kind.align())
		offsets[i] = off
		off += u.Kind.size()
	}
	if off == 0 {
		return offsets, 0
	}
	return offsets, alignUp(off, 16)
}

// PackUniforms serializes values into a little-endian buffer matching
// UniformLayout. Missing values are written as zero.
func PackUniforms(uniforms []Uniform, floats map[string]float32, matrices map[string]mgl32.Mat4) []byte {
	offsets, size := UniformLayout(uniforms)
	buf := make([]byte, size)
	for i, u := range uniforms {
		off := offsets[i]
		switch u.Kind {
		case UniformFloat:
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(floats[u.Name]))
		case UniformMat4:
			m := matrices[u.Name]
			// mgl32 is column-major, as WGSL expects
			for j := 0; j < 16; j++ {
				binary.LittleEndian.PutUint32(buf[off+uint64(j)*4:], math.Float32bits(m[j]))
			}
		}
	}
	return buf
}
