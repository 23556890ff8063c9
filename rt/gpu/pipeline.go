package gpu

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/sdfrt/rt/core"
)

// Pipeline is a compute pipeline plus the dispatch shape its kernel declares.
type Pipeline struct {
	ID     ResourceID
	Label  string
	Handle *wgpu.ComputePipeline
	Tile   core.Tile
	// Views is the grid z; 0 and 1 both mean a single view. A kernel writing
	// a single-layer output must discard invocations with gid.z > 0.
	Views uint32

	mu      sync.Mutex
	layouts map[uint32]*wgpu.BindGroupLayout
}

func NewPipeline(label string, handle *wgpu.ComputePipeline, tile core.Tile) *Pipeline {
	return &Pipeline{
		ID:      NewResourceID(),
		Label:   label,
		Handle:  handle,
		Tile:    tile,
		Views:   1,
		layouts: make(map[uint32]*wgpu.BindGroupLayout),
	}
}

// BindGroupLayout returns the pipeline's auto-derived layout for group,
// fetched once per group.
func (p *Pipeline) BindGroupLayout(group uint32) *wgpu.BindGroupLayout {
	if p.Handle == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.layouts[group]; ok {
		return l
	}
	if p.layouts == nil {
		p.layouts = make(map[uint32]*wgpu.BindGroupLayout)
	}
	l := p.Handle.GetBindGroupLayout(group)
	p.layouts[group] = l
	return l
}

// Grid returns the workgroup count covering res.
func (p *Pipeline) Grid(res core.Resolution) core.Grid {
	return core.GridFor(res, p.Tile, p.Views)
}

func (p *Pipeline) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for g, l := range p.layouts {
		if l != nil {
			l.Release()
		}
		delete(p.layouts, g)
	}
	if p.Handle != nil {
		p.Handle.Release()
		p.Handle = nil
	}
}
