package core

import (
	"math"

	"github.com/gekko3d/sdfrt/rt/layout"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxViews is the number of per-eye matrix slots carried in every frame.
	MaxViews = 2
	// ShadowKernelSize is the entry count of each shadow sampling kernel.
	ShadowKernelSize = 32
	// SceneDataSize is the encoded size of SceneData in the uniform standard.
	SceneDataSize = 2896
)

// SceneData is the per-frame uniform block read by the compute pass.
// Field order is the GPU member order; the WGSL declaration is generated from
// these tags, so edit the struct rather than the shader.
type SceneData struct {
	Projection    mgl32.Mat4 `gpu:"projection_matrix"`
	InvProjection mgl32.Mat4 `gpu:"inv_projection_matrix"`
	InvView       mgl32.Mat4 `gpu:"inv_view_matrix"`
	View          mgl32.Mat4 `gpu:"view_matrix"`

	ProjectionView    [MaxViews]mgl32.Mat4 `gpu:"projection_matrix_view"`
	InvProjectionView [MaxViews]mgl32.Mat4 `gpu:"inv_projection_matrix_view"`
	EyeOffset         [MaxViews]mgl32.Vec4 `gpu:"eye_offset"`

	// Inverse view of the main camera, kept separate so billboards stay
	// camera-facing in shadow passes.
	MainCamInvView mgl32.Mat4 `gpu:"main_cam_inv_view_matrix"`

	ViewportSize    mgl32.Vec2 `gpu:"viewport_size"`
	ScreenPixelSize mgl32.Vec2 `gpu:"screen_pixel_size"`

	DirectionalPenumbraShadowKernel [ShadowKernelSize]mgl32.Vec2 `gpu:"directional_penumbra_shadow_kernel,wide"`
	DirectionalSoftShadowKernel     [ShadowKernelSize]mgl32.Vec2 `gpu:"directional_soft_shadow_kernel,wide"`
	PenumbraShadowKernel            [ShadowKernelSize]mgl32.Vec2 `gpu:"penumbra_shadow_kernel,wide"`
	SoftShadowKernel                [ShadowKernelSize]mgl32.Vec2 `gpu:"soft_shadow_kernel,wide"`

	RadianceInvXform        mgl32.Mat3 `gpu:"radiance_inverse_xform"`
	AmbientLightColorEnergy mgl32.Vec4 `gpu:"ambient_light_color_energy"`
	AmbientColorSkyMix      float32    `gpu:"ambient_color_sky_mix"`
	UseAmbientLight         bool       `gpu:"use_ambient_light"`
	UseAmbientCubemap       bool       `gpu:"use_ambient_cubemap"`
	UseReflectionCubemap    bool       `gpu:"use_reflection_cubemap"`

	ShadowAtlasPixelSize       mgl32.Vec2 `gpu:"shadow_atlas_pixel_size"`
	DirectionalShadowPixelSize mgl32.Vec2 `gpu:"directional_shadow_pixel_size"`
	DirectionalLightCount      uint32     `gpu:"directional_light_count"`
	DualParaboloidSide         float32    `gpu:"dual_paraboloid_side"`

	ZFar  float32 `gpu:"z_far"`
	ZNear float32 `gpu:"z_near"`

	RoughnessLimiterEnabled bool    `gpu:"roughness_limiter_enabled"`
	RoughnessLimiterAmount  float32 `gpu:"roughness_limiter_amount"`
	RoughnessLimiterLimit   float32 `gpu:"roughness_limiter_limit"`
	OpaquePrepassThreshold  float32 `gpu:"opaque_prepass_threshold"`

	FogEnabled       bool    `gpu:"fog_enabled"`
	FogMode          uint32  `gpu:"fog_mode"`
	FogDensity       float32 `gpu:"fog_density"`
	FogHeight        float32 `gpu:"fog_height"`
	FogHeightDensity float32 `gpu:"fog_height_density"`
	FogDepthCurve    float32 `gpu:"fog_depth_curve"`
	_                float32 `gpu:"_pad0,pad"`
	FogDepthBegin    float32 `gpu:"fog_depth_begin"`

	FogLightColor        mgl32.Vec3 `gpu:"fog_light_color"`
	FogDepthEnd          float32    `gpu:"fog_depth_end"`
	FogSunScatter        float32    `gpu:"fog_sun_scatter"`
	FogAerialPerspective float32    `gpu:"fog_aerial_perspective"`

	Time                 float32 `gpu:"time"`
	ReflectionMultiplier float32 `gpu:"reflection_multiplier"`

	TAAJitter                     mgl32.Vec2 `gpu:"taa_jitter"`
	MaterialUV2Mode               bool       `gpu:"material_uv2_mode"`
	EmissiveExposureNormalization float32    `gpu:"emissive_exposure_normalization"`
	IBLExposureNormalization      float32    `gpu:"IBL_exposure_normalization"`
	PancakeShadows                bool       `gpu:"pancake_shadows"`
	CameraVisibleLayers           uint32     `gpu:"camera_visible_layers"`
	PassAlphaMultiplier           float32    `gpu:"pass_alpha_multiplier"`
}

// Fog modes.
const (
	FogModeExponential uint32 = iota
	FogModeDepth
)

// SceneDataLayout returns the compiled uniform layout of SceneData.
func SceneDataLayout() *layout.Layout {
	return layout.MustCompile(layout.Uniform, SceneData{})
}

// NewSceneData returns a frame with neutral multipliers and all layers visible.
// Camera fields are left zero until SetMonoView or SetStereoView is called.
func NewSceneData() *SceneData {
	sd := &SceneData{
		RadianceInvXform:              mgl32.Ident3(),
		AmbientLightColorEnergy:       mgl32.Vec4{0.2, 0.2, 0.25, 1},
		UseAmbientLight:               true,
		ReflectionMultiplier:          1,
		EmissiveExposureNormalization: 1,
		IBLExposureNormalization:      1,
		CameraVisibleLayers:           math.MaxUint32,
		PassAlphaMultiplier:           1,
		RoughnessLimiterAmount:        0.25,
		RoughnessLimiterLimit:         0.18,
		OpaquePrepassThreshold:        0.99,
		FogLightColor:                 mgl32.Vec3{0.5, 0.6, 0.7},
		FogDepthCurve:                 1,
	}
	sd.SetShadowKernels(ShadowKernelSize)
	return sd
}

// SetMonoView fills the main camera matrices and eye 0. Eye 1 is zeroed so
// single-view frames encode deterministically.
func (sd *SceneData) SetMonoView(proj, view mgl32.Mat4) {
	invProj := proj.Inv()
	invView := view.Inv()

	sd.Projection = proj
	sd.InvProjection = invProj
	sd.View = view
	sd.InvView = invView
	sd.MainCamInvView = invView

	sd.ProjectionView[0] = proj
	sd.InvProjectionView[0] = invProj
	sd.EyeOffset[0] = mgl32.Vec4{}
	for i := 1; i < MaxViews; i++ {
		sd.ProjectionView[i] = mgl32.Mat4{}
		sd.InvProjectionView[i] = mgl32.Mat4{}
		sd.EyeOffset[i] = mgl32.Vec4{}
	}
}

// SetStereoView fills one projection and eye offset per view. The main
// projection is eye 0's; view is the shared head transform.
func (sd *SceneData) SetStereoView(proj [MaxViews]mgl32.Mat4, eyeOffset [MaxViews]mgl32.Vec3, view mgl32.Mat4) {
	sd.SetMonoView(proj[0], view)
	for i := 0; i < MaxViews; i++ {
		sd.ProjectionView[i] = proj[i]
		sd.InvProjectionView[i] = proj[i].Inv()
		sd.EyeOffset[i] = eyeOffset[i].Vec4(0)
	}
}

// SetViewport records the output resolution and its reciprocal.
func (sd *SceneData) SetViewport(res Resolution) {
	w, h := float32(res.Width), float32(res.Height)
	sd.ViewportSize = mgl32.Vec2{w, h}
	sd.ScreenPixelSize = mgl32.Vec2{}
	if w > 0 && h > 0 {
		sd.ScreenPixelSize = mgl32.Vec2{1 / w, 1 / h}
	}
}

// SetShadowKernels fills all four kernels with an n-tap Vogel disk. Taps past
// n are zeroed.
func (sd *SceneData) SetShadowKernels(n int) {
	disk := VogelDisk(n)
	sd.DirectionalPenumbraShadowKernel = disk
	sd.DirectionalSoftShadowKernel = disk
	sd.PenumbraShadowKernel = disk
	sd.SoftShadowKernel = disk
}

// VogelDisk returns n golden-angle spiral samples on the unit disk, n clamped
// to [0, ShadowKernelSize].
func VogelDisk(n int) [ShadowKernelSize]mgl32.Vec2 {
	var out [ShadowKernelSize]mgl32.Vec2
	n = min(max(n, 0), ShadowKernelSize)
	const golden = 2.399963229728653 // pi * (3 - sqrt(5))
	for i := 0; i < n; i++ {
		r := math.Sqrt((float64(i) + 0.5) / float64(n))
		theta := float64(i) * golden
		out[i] = mgl32.Vec2{float32(r * math.Cos(theta)), float32(r * math.Sin(theta))}
	}
	return out
}

// Encode writes the frame into dst using the uniform layout.
func (sd *SceneData) Encode(dst []byte) error {
	return SceneDataLayout().Encode(dst, sd)
}

// Bytes returns the encoded frame.
func (sd *SceneData) Bytes() ([]byte, error) {
	return SceneDataLayout().Bytes(sd)
}
