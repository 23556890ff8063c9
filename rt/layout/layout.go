package layout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidName = errors.New("layout: invalid member name")

var (
	vec2Type = reflect.TypeOf(mgl32.Vec2{})
	vec3Type = reflect.TypeOf(mgl32.Vec3{})
	vec4Type = reflect.TypeOf(mgl32.Vec4{})
	mat3Type = reflect.TypeOf(mgl32.Mat3{})
	mat4Type = reflect.TypeOf(mgl32.Mat4{})
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Member is one entry of a compiled layout, in offset order.
type Member struct {
	Name  string // WGSL member name
	Field string // Go field name, empty for synthesized gap padding
	Kind  Kind   // element kind for arrays
	Len   int    // array length, 0 for non-arrays
	Wide  bool   // vec2 elements stored in vec4 slots; upper components are reserved
	Pad   bool

	Offset int
	Size   int
	Align  int
	Stride int // array element stride, 0 for non-arrays

	index []int
}

func (m Member) End() int        { return m.Offset + m.Size }
func (m Member) IsArray() bool   { return m.Len > 0 }
func (m Member) Synthetic() bool { return m.Field == "" }

// WGSLType returns the member's declared WGSL type.
func (m Member) WGSLType() string {
	if !m.IsArray() {
		return m.Kind.WGSL()
	}
	elem := m.Kind.WGSL()
	if m.Wide {
		elem = KindVec4.WGSL()
	}
	return fmt.Sprintf("array<%s, %d>", elem, m.Len)
}

// Layout is the immutable result of Compile. It is safe for concurrent use.
type Layout struct {
	typ      reflect.Type
	standard Standard
	members  []Member
	byName   map[string]int
	size     int
	align    int
}

type cacheKey struct {
	typ      reflect.Type
	standard Standard
}

var compiled sync.Map // cacheKey -> *Layout

// Compile computes the layout of v's struct type (v may be a struct or a pointer to one)
// under standard s. Results are cached per type and standard.
func Compile(s Standard, v any) (*Layout, error) {
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v is not a struct", ErrUnsupportedType, t)
	}
	key := cacheKey{t, s}
	if l, ok := compiled.Load(key); ok {
		return l.(*Layout), nil
	}
	l, err := build(s, t)
	if err != nil {
		return nil, err
	}
	actual, _ := compiled.LoadOrStore(key, l)
	return actual.(*Layout), nil
}

// MustCompile is Compile for statically known types; it panics on error.
func MustCompile(s Standard, v any) *Layout {
	l, err := Compile(s, v)
	if err != nil {
		panic(err)
	}
	return l
}

func classify(t reflect.Type) (Kind, bool) {
	switch t {
	case vec2Type:
		return KindVec2, true
	case vec3Type:
		return KindVec3, true
	case vec4Type:
		return KindVec4, true
	case mat3Type:
		return KindMat3, true
	case mat4Type:
		return KindMat4, true
	}
	switch t.Kind() {
	case reflect.Float32:
		return KindF32, true
	case reflect.Uint32:
		return KindU32, true
	case reflect.Int32:
		return KindI32, true
	case reflect.Bool:
		return KindBool, true
	}
	return 0, false
}

func parseTag(tag string) (name string, wide, pad bool) {
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		switch opt {
		case "wide":
			wide = true
		case "pad":
			pad = true
		}
	}
	return name, wide, pad
}

func build(s Standard, t reflect.Type) (*Layout, error) {
	l := &Layout{
		typ:      t,
		standard: s,
		byName:   make(map[string]int),
	}
	offset, maxAlign, gaps := 0, 4, 0

	addGap := func(from, to int) {
		for o := from; o < to; o += 4 {
			name := fmt.Sprintf("_gap%d", gaps)
			gaps++
			l.byName[name] = len(l.members)
			l.members = append(l.members, Member{
				Name: name, Kind: KindU32, Pad: true,
				Offset: o, Size: 4, Align: 4,
			})
		}
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("gpu")
		if !ok || tag == "-" {
			continue
		}
		name, wide, pad := parseTag(tag)
		if !identRe.MatchString(name) || strings.HasPrefix(name, "__") || strings.HasPrefix(name, "_gap") {
			return nil, fmt.Errorf("%w: %q on field %s", ErrInvalidName, name, f.Name)
		}
		if _, dup := l.byName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate %q on field %s", ErrInvalidName, name, f.Name)
		}

		m := Member{Name: name, Field: f.Name, Wide: wide, Pad: pad, index: f.Index}
		if k, ok := classify(f.Type); ok {
			m.Kind, m.Align, m.Size = k, k.Align(), k.Size()
		} else if f.Type.Kind() == reflect.Array {
			k, ok := classify(f.Type.Elem())
			if !ok {
				return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, f.Name, f.Type)
			}
			if f.Type.Len() == 0 {
				return nil, fmt.Errorf("%w: %s is a zero-length array", ErrUnsupportedType, f.Name)
			}
			align, stride, err := s.arrayRules(k, wide)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			m.Kind, m.Len, m.Align, m.Stride = k, f.Type.Len(), align, stride
			m.Size = m.Len * stride
		} else {
			return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, f.Name, f.Type)
		}
		if wide && (!m.IsArray() || m.Kind != KindVec2) {
			return nil, fmt.Errorf("%w: %s is tagged wide but is not a vec2 array", ErrStandardViolation, f.Name)
		}

		aligned := roundUp(m.Align, offset)
		addGap(offset, aligned)
		m.Offset = aligned
		offset = m.End()
		maxAlign = max(maxAlign, m.Align)

		l.byName[name] = len(l.members)
		l.members = append(l.members, m)
	}
	if len(l.members) == 0 {
		return nil, fmt.Errorf("%w: %s has no gpu-tagged fields", ErrUnsupportedType, t)
	}

	l.align = s.structAlign(maxAlign)
	l.size = roundUp(l.align, offset)
	addGap(offset, l.size)
	return l, nil
}

// Size is the total byte size, including trailing padding.
func (l *Layout) Size() int { return l.size }

func (l *Layout) Align() int { return l.align }

func (l *Layout) Standard() Standard { return l.standard }

// Type is the Go struct type the layout was compiled from.
func (l *Layout) Type() reflect.Type { return l.typ }

// Members returns a copy of all members in offset order, synthesized gaps included.
func (l *Layout) Members() []Member {
	out := make([]Member, len(l.members))
	copy(out, l.members)
	return out
}

func (l *Layout) Member(name string) (Member, bool) {
	i, ok := l.byName[name]
	if !ok {
		return Member{}, false
	}
	return l.members[i], true
}

// Offset returns the byte offset of the named member.
func (l *Layout) Offset(name string) (int, bool) {
	m, ok := l.Member(name)
	return m.Offset, ok
}
