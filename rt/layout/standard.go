// Package layout computes GPU buffer layouts from tagged Go structs.
//
// A struct is the single description of a buffer: each exported field carries
// a `gpu:"name[,wide][,pad]"` tag. Compile walks the fields once and produces
// the offsets used both by the host encoder and by the WGSL struct emitter, so
// the two sides cannot drift apart.
//
// Packing standard used for uniform buffers (Uniform):
//
//	f32/u32/i32/bool | align 4  | size 4
//	vec2<f32>        | align 8  | size 8
//	vec3<f32>        | align 16 | size 12
//	vec4<f32>        | align 16 | size 16
//	mat3x3<f32>      | align 16 | size 48 (3 columns of 16 bytes)
//	mat4x4<f32>      | align 16 | size 64
//	array<E, N>      | align roundUp(16, align(E)) | stride roundUp(align(E), size(E)), must be a multiple of 16
//	struct           | size rounded up to 16
//
// Storage uses the same scalar/vector/matrix rules with natural array strides.
package layout

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType   = errors.New("layout: unsupported field type")
	ErrStandardViolation = errors.New("layout: field violates packing standard")
	ErrTypeMismatch      = errors.New("layout: value type does not match layout")
	ErrShortBuffer       = errors.New("layout: destination buffer too small")
)

// Standard selects the address-space packing rules.
type Standard int

const (
	// Uniform follows the WGSL uniform address space (std140 equivalent).
	Uniform Standard = iota
	// Storage follows the WGSL storage address space (std430 equivalent).
	Storage
)

func (s Standard) String() string {
	switch s {
	case Uniform:
		return "uniform"
	case Storage:
		return "storage"
	}
	return fmt.Sprintf("Standard(%d)", int(s))
}

// Kind is the GPU type class of a member or of an array element.
type Kind int

const (
	KindF32 Kind = iota
	KindU32
	KindI32
	KindBool
	KindVec2
	KindVec3
	KindVec4
	KindMat3
	KindMat4
)

var kindNames = [...]string{
	KindF32:  "f32",
	KindU32:  "u32",
	KindI32:  "i32",
	KindBool: "u32", // bool is not host-shareable
	KindVec2: "vec2<f32>",
	KindVec3: "vec3<f32>",
	KindVec4: "vec4<f32>",
	KindMat3: "mat3x3<f32>",
	KindMat4: "mat4x4<f32>",
}

// WGSL returns the WGSL type name for k.
func (k Kind) WGSL() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Align returns the alignment of a single (non-array) value of kind k.
func (k Kind) Align() int {
	switch k {
	case KindVec2:
		return 8
	case KindVec3, KindVec4, KindMat3, KindMat4:
		return 16
	}
	return 4
}

// Size returns the byte size of a single (non-array) value of kind k.
func (k Kind) Size() int {
	switch k {
	case KindVec2:
		return 8
	case KindVec3:
		return 12
	case KindVec4:
		return 16
	case KindMat3:
		return 48
	case KindMat4:
		return 64
	}
	return 4
}

// Components returns the float count written per value (matrix columns are padded separately).
func (k Kind) Components() int {
	switch k {
	case KindVec2:
		return 2
	case KindVec3:
		return 3
	case KindVec4:
		return 4
	case KindMat3:
		return 9
	case KindMat4:
		return 16
	}
	return 1
}

func roundUp(align, n int) int {
	return (n + align - 1) / align * align
}

// arrayRules returns (align, stride) for an array of elem under s.
// wide arrays store every vec2 element in a vec4 slot.
func (s Standard) arrayRules(elem Kind, wide bool) (align, stride int, err error) {
	ea, es := elem.Align(), elem.Size()
	if wide {
		ea, es = KindVec4.Align(), KindVec4.Size()
	}
	stride = roundUp(ea, es)
	align = ea
	if s == Uniform {
		align = roundUp(16, ea)
		if stride%16 != 0 {
			return 0, 0, fmt.Errorf("%w: %s array stride %d is not a multiple of 16 in the %s standard (store it wide)",
				ErrStandardViolation, elem.WGSL(), stride, s)
		}
	}
	return align, stride, nil
}

// structAlign returns the alignment a struct with the given largest member alignment gets under s.
func (s Standard) structAlign(maxAlign int) int {
	if s == Uniform {
		return roundUp(16, maxAlign)
	}
	return maxAlign
}
