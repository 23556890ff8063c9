// Package shaders embeds the WGSL kernels and resolves their include
// directives against the Go struct layouts.
package shaders

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gekko3d/sdfrt/rt/core"
	"github.com/gogpu/naga"
)

//go:embed raymarch.wgsl
var RaymarchWGSL string

//go:embed fullscreen.wgsl
var FullscreenWGSL string

const includeDirective = "//@sdfrt:include"

var (
	ErrUnknownInclude  = errors.New("shaders: unknown include")
	ErrNoWorkgroupSize = errors.New("shaders: no @workgroup_size found")
	ErrCompile         = errors.New("shaders: compile failed")
	workgroupSizeRe    = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?(?:,\s*(\d+)\s*)?\)`)
)

// Includes maps include names to generated WGSL declarations.
type Includes map[string]string

// DefaultIncludes returns the generated struct declarations bound by the
// raymarch kernel.
func DefaultIncludes() Includes {
	return Includes{
		"scene_data":   core.SceneDataLayout().WGSL("SceneData"),
		"march_params": core.MarchParamsLayout().WGSL("MarchParams"),
	}
}

// Preprocess replaces every `//@sdfrt:include name` line with the named
// declaration. A name included twice is emitted once.
func Preprocess(src string, inc Includes) (string, error) {
	var sb strings.Builder
	seen := make(map[string]bool)
	for i, line := range strings.SplitAfter(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, includeDirective) {
			sb.WriteString(line)
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(trimmed, includeDirective))
		decl, ok := inc[name]
		if !ok {
			return "", fmt.Errorf("%w %q on line %d", ErrUnknownInclude, name, i+1)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		sb.WriteString(decl)
		if !strings.HasSuffix(decl, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// RaymarchSource returns the raymarch kernel with its structs injected.
func RaymarchSource() (string, error) {
	return Preprocess(RaymarchWGSL, DefaultIncludes())
}

// WorkgroupSize parses the first @workgroup_size attribute. Omitted
// dimensions default to 1.
func WorkgroupSize(src string) (core.Tile, error) {
	m := workgroupSizeRe.FindStringSubmatch(src)
	if m == nil {
		return core.Tile{}, ErrNoWorkgroupSize
	}
	dim := func(s string) uint32 {
		if s == "" {
			return 1
		}
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 1
		}
		return uint32(n)
	}
	return core.Tile{X: dim(m[1]), Y: dim(m[2])}, nil
}

// CompileSPIRV validates src by compiling it to SPIR-V.
func CompileSPIRV(src string) ([]byte, error) {
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	return spirv, nil
}
