package shaders

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/gekko3d/sdfrt/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	src := "a\n//@sdfrt:include x\n  //@sdfrt:include x\nb\n"
	out, err := Preprocess(src, Includes{"x": "struct X { v: f32, }"})
	require.NoError(t, err)
	assert.Equal(t, "a\nstruct X { v: f32, }\nb\n", out)

	_, err = Preprocess("//@sdfrt:include missing\n", Includes{})
	assert.ErrorIs(t, err, ErrUnknownInclude)
}

func TestRaymarchSource_InjectsGeneratedStructs(t *testing.T) {
	src, err := RaymarchSource()
	require.NoError(t, err)
	assert.NotContains(t, src, includeDirective)
	assert.Contains(t, src, core.SceneDataLayout().WGSL("SceneData"))
	assert.Contains(t, src, core.MarchParamsLayout().WGSL("MarchParams"))
	assert.Equal(t, 1, strings.Count(src, "struct SceneData {"))
}

func TestRaymarch_BindingContract(t *testing.T) {
	assert.Contains(t, RaymarchWGSL, "@group(0) @binding(0) var<uniform> scene: SceneData;")
	assert.Contains(t, RaymarchWGSL, "@group(0) @binding(1) var output_tex: texture_storage_2d<rgba8unorm, write>;")
	assert.Contains(t, RaymarchWGSL, "@group(0) @binding(2) var<uniform> params: MarchParams;")
}

func TestWorkgroupSize(t *testing.T) {
	tile, err := WorkgroupSize(RaymarchWGSL)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultTile, tile)

	tile, err = WorkgroupSize("@compute @workgroup_size(64) fn main() {}")
	require.NoError(t, err)
	assert.Equal(t, core.Tile{X: 64, Y: 1}, tile)

	tile, err = WorkgroupSize("@workgroup_size( 16 , 4 )")
	require.NoError(t, err)
	assert.Equal(t, core.Tile{X: 16, Y: 4}, tile)

	_, err = WorkgroupSize(FullscreenWGSL)
	assert.ErrorIs(t, err, ErrNoWorkgroupSize)
}

// compileOrSkip skips when naga rejects src; naga covers a subset of WGSL and
// the struct contract itself is pinned by the layout tests in rt/core.
func compileOrSkip(t *testing.T, name, src string) []byte {
	t.Helper()
	spirv, err := CompileSPIRV(src)
	if err != nil {
		t.Skipf("Skipping: naga could not compile %s: %v", name, err)
	}
	return spirv
}

func assertSPIRV(t *testing.T, spirv []byte) {
	t.Helper()
	require.GreaterOrEqual(t, len(spirv), 4, "SPIR-V too short")
	assert.Equal(t, uint32(0x07230203), binary.LittleEndian.Uint32(spirv), "SPIR-V magic")
}

// The shipped kernel must always compile; only the generic cases tolerate naga gaps.
func TestCompileSPIRV_Raymarch(t *testing.T) {
	src, err := RaymarchSource()
	require.NoError(t, err)
	spirv, err := CompileSPIRV(src)
	require.NoError(t, err)
	assertSPIRV(t, spirv)
}

func TestRaymarch_SingleLayerWriter(t *testing.T) {
	assert.Contains(t, RaymarchWGSL, "gid.z > 0u")
	assert.NotContains(t, RaymarchWGSL, "all(", "naga cannot lower vector relational builtins")
}

func TestCompileSPIRV_Fullscreen(t *testing.T) {
	assertSPIRV(t, compileOrSkip(t, "fullscreen", FullscreenWGSL))
}

func TestCompileSPIRV_Error(t *testing.T) {
	_, err := CompileSPIRV("fn broken( {")
	assert.ErrorIs(t, err, ErrCompile)
}
