package core

import (
	"encoding/binary"
	"testing"

	"github.com/gekko3d/sdfrt/rt/layout"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneDataLayout_Size(t *testing.T) {
	l := SceneDataLayout()
	assert.Equal(t, SceneDataSize, l.Size())
	assert.Equal(t, 16, l.Align())

	buf, err := NewSceneData().Bytes()
	require.NoError(t, err)
	assert.Len(t, buf, SceneDataSize)
}

func TestSceneDataLayout_Offsets(t *testing.T) {
	l := SceneDataLayout()
	want := map[string]int{
		"projection_matrix":                  0,
		"inv_projection_matrix":              64,
		"inv_view_matrix":                    128,
		"view_matrix":                        192,
		"projection_matrix_view":             256,
		"inv_projection_matrix_view":         384,
		"eye_offset":                         512,
		"main_cam_inv_view_matrix":           544,
		"viewport_size":                      608,
		"screen_pixel_size":                  616,
		"directional_penumbra_shadow_kernel": 624,
		"directional_soft_shadow_kernel":     1136,
		"penumbra_shadow_kernel":             1648,
		"soft_shadow_kernel":                 2160,
		"radiance_inverse_xform":             2672,
		"ambient_light_color_energy":         2720,
		"ambient_color_sky_mix":              2736,
		"use_reflection_cubemap":             2748,
		"shadow_atlas_pixel_size":            2752,
		"directional_light_count":            2768,
		"z_far":                              2776,
		"z_near":                             2780,
		"fog_enabled":                        2800,
		"_pad0":                              2824,
		"fog_depth_begin":                    2828,
		"fog_light_color":                    2832,
		"fog_depth_end":                      2844,
		"time":                               2856,
		"taa_jitter":                         2864,
		"camera_visible_layers":              2888,
		"pass_alpha_multiplier":              2892,
	}
	for name, off := range want {
		got, ok := l.Offset(name)
		require.True(t, ok, name)
		assert.Equal(t, off, got, name)
	}
}

func TestSceneDataLayout_NoImplicitPadding(t *testing.T) {
	members := SceneDataLayout().Members()
	for i, m := range members {
		assert.False(t, m.Synthetic(), "%s: field list should not need synthesized gaps", m.Name)
		assert.Zero(t, m.Offset%m.Align, "%s misaligned", m.Name)
		if m.IsArray() {
			assert.Zero(t, m.Stride%16, "%s stride", m.Name)
		}
		if i+1 < len(members) {
			assert.LessOrEqual(t, m.End(), members[i+1].Offset, m.Name)
		}
	}
	assert.Equal(t, SceneDataSize, members[len(members)-1].End())
}

func TestSceneDataLayout_WGSL(t *testing.T) {
	src := SceneDataLayout().WGSL("SceneData")
	assert.Contains(t, src, "2896 bytes")
	assert.Contains(t, src, "\tprojection_matrix: mat4x4<f32>, // offset 0\n")
	assert.Contains(t, src, "\tprojection_matrix_view: array<mat4x4<f32>, 2>, // offset 256\n")
	assert.Contains(t, src, "\tsoft_shadow_kernel: array<vec4<f32>, 32>, // offset 2160, xy only\n")
	assert.Contains(t, src, "\tradiance_inverse_xform: mat3x3<f32>, // offset 2672\n")
	assert.Contains(t, src, "\tuse_ambient_light: u32, // offset 2740\n")
	assert.Contains(t, src, "\t_pad0: f32, // offset 2824\n")
}

func TestSetMonoView_ZeroFillsSecondEye(t *testing.T) {
	sd := NewSceneData()
	sd.ProjectionView[1] = mgl32.Ident4()
	sd.InvProjectionView[1] = mgl32.Ident4()
	sd.EyeOffset[1] = mgl32.Vec4{1, 2, 3, 4}

	proj := mgl32.Perspective(mgl32.DegToRad(60), 1.5, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
	sd.SetMonoView(proj, view)

	assert.Equal(t, proj, sd.ProjectionView[0])
	assert.Equal(t, sd.InvView, sd.MainCamInvView)
	assert.Equal(t, mgl32.Mat4{}, sd.ProjectionView[1])

	buf, err := sd.Bytes()
	require.NoError(t, err)
	l := SceneDataLayout()
	for _, name := range []string{"projection_matrix_view", "inv_projection_matrix_view"} {
		off, _ := l.Offset(name)
		for i := off + 64; i < off+128; i++ {
			require.Zero(t, buf[i], "%s eye 1 byte %d", name, i-off)
		}
	}
	off, _ := l.Offset("eye_offset")
	for i := off; i < off+32; i++ {
		require.Zero(t, buf[i])
	}
}

func TestSetStereoView(t *testing.T) {
	sd := NewSceneData()
	left := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	right := mgl32.Translate3D(0.1, 0, 0).Mul4(left)
	sd.SetStereoView([MaxViews]mgl32.Mat4{left, right}, [MaxViews]mgl32.Vec3{{-0.03, 0, 0}, {0.03, 0, 0}}, mgl32.Ident4())

	assert.Equal(t, left, sd.Projection)
	assert.Equal(t, right, sd.ProjectionView[1])
	assert.Equal(t, mgl32.Vec4{0.03, 0, 0, 0}, sd.EyeOffset[1])
	assert.True(t, sd.InvProjectionView[1].ApproxEqualThreshold(right.Inv(), 1e-6))
}

func TestSceneData_EncodeFlagsAndPadding(t *testing.T) {
	sd := NewSceneData()
	sd.FogEnabled = true
	sd.UseAmbientLight = false
	sd.SetViewport(Resolution{Width: 640, Height: 480})
	buf, err := sd.Bytes()
	require.NoError(t, err)

	l := SceneDataLayout()
	u32 := func(name string) uint32 {
		off, ok := l.Offset(name)
		require.True(t, ok, name)
		return binary.LittleEndian.Uint32(buf[off:])
	}
	assert.Equal(t, uint32(1), u32("fog_enabled"))
	assert.Equal(t, uint32(0), u32("use_ambient_light"))
	assert.Equal(t, uint32(0), u32("_pad0"))
	assert.Equal(t, ^uint32(0), u32("camera_visible_layers"))

	m, _ := l.Member("_pad0")
	assert.True(t, m.Pad)
	assert.Equal(t, layout.KindF32, m.Kind)
	assert.Equal(t, mgl32.Vec2{1.0 / 640, 1.0 / 480}, sd.ScreenPixelSize)
}

func TestSetViewport_Empty(t *testing.T) {
	sd := &SceneData{}
	sd.SetViewport(Resolution{})
	assert.Equal(t, mgl32.Vec2{}, sd.ScreenPixelSize)
}

func TestVogelDisk(t *testing.T) {
	disk := VogelDisk(8)
	for i, p := range disk {
		if i < 8 {
			assert.LessOrEqual(t, p.Len(), float32(1), "tap %d", i)
			assert.NotEqual(t, mgl32.Vec2{}, p, "tap %d", i)
		} else {
			assert.Equal(t, mgl32.Vec2{}, p, "tap %d", i)
		}
	}
	full := VogelDisk(100)
	assert.NotEqual(t, mgl32.Vec2{}, full[ShadowKernelSize-1])
	assert.Equal(t, [ShadowKernelSize]mgl32.Vec2{}, VogelDisk(-1))
}

func TestMarchParamsLayout(t *testing.T) {
	l := MarchParamsLayout()
	assert.Equal(t, 64, l.Size())
	off, _ := l.Offset("max_steps")
	assert.Equal(t, 44, off)
	off, _ = l.Offset("debug_mode")
	assert.Equal(t, 60, off)

	p := DefaultMarchParams()
	buf, err := p.Bytes()
	require.NoError(t, err)
	assert.Equal(t, uint32(128), binary.LittleEndian.Uint32(buf[44:]))
}
