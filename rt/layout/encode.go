package layout

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
)

// Encode writes v into dst[:l.Size()] following the layout. Padding bytes,
// including pad-tagged fields and the reserved upper half of wide elements,
// are zeroed.
func (l *Layout) Encode(dst []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("%w: nil %s", ErrTypeMismatch, rv.Type())
		}
		rv = rv.Elem()
	}
	if rv.Type() != l.typ {
		return fmt.Errorf("%w: got %s, layout is %s", ErrTypeMismatch, rv.Type(), l.typ)
	}
	if len(dst) < l.size {
		return fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(dst), l.size)
	}
	clear(dst[:l.size])

	for _, m := range l.members {
		if m.Synthetic() || m.Pad {
			continue
		}
		fv := rv.FieldByIndex(m.index)
		if !m.IsArray() {
			putValue(dst[m.Offset:], m.Kind, fv)
			continue
		}
		for i := 0; i < m.Len; i++ {
			putValue(dst[m.Offset+i*m.Stride:], m.Kind, fv.Index(i))
		}
	}
	return nil
}

// Bytes returns a freshly allocated encoding of v.
func (l *Layout) Bytes(v any) ([]byte, error) {
	buf := make([]byte, l.size)
	if err := l.Encode(buf, v); err != nil {
		return nil, err
	}
	return buf, nil
}

func putF32(buf []byte, off int, f float64) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(f)))
}

func putValue(buf []byte, k Kind, v reflect.Value) {
	switch k {
	case KindF32:
		putF32(buf, 0, v.Float())
	case KindU32:
		binary.LittleEndian.PutUint32(buf, uint32(v.Uint()))
	case KindI32:
		binary.LittleEndian.PutUint32(buf, uint32(int32(v.Int())))
	case KindBool:
		var b uint32
		if v.Bool() {
			b = 1
		}
		binary.LittleEndian.PutUint32(buf, b)
	case KindVec2, KindVec3, KindVec4, KindMat4:
		for i := 0; i < k.Components(); i++ {
			putF32(buf, i*4, v.Index(i).Float())
		}
	case KindMat3:
		// Column-major; each 3-float column occupies a 16-byte row on the GPU.
		for c := 0; c < 3; c++ {
			for r := 0; r < 3; r++ {
				putF32(buf, c*16+r*4, v.Index(c*3+r).Float())
			}
		}
	}
}
