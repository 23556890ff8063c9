package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeDevice struct {
	buffersCreated     int
	buffersReleased    int
	bindGroupsCreated  int
	bindGroupsReleased int
	writes             int
	lastWrite          []byte
	lastBindGroup      *wgpu.BindGroupDescriptor
	bindGroupErr       error
}

func (f *fakeDevice) CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	f.buffersCreated++
	return &wgpu.Buffer{}, nil
}

func (f *fakeDevice) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	f.writes++
	f.lastWrite = append([]byte(nil), data...)
}

func (f *fakeDevice) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	if f.bindGroupErr != nil {
		return nil, f.bindGroupErr
	}
	f.bindGroupsCreated++
	f.lastBindGroup = desc
	return &wgpu.BindGroup{}, nil
}

func (f *fakeDevice) ReleaseBuffer(buf *wgpu.Buffer)      { f.buffersReleased++ }
func (f *fakeDevice) ReleaseBindGroup(bg *wgpu.BindGroup) { f.bindGroupsReleased++ }

type fakeEncoder struct {
	passes []*fakePass
	endErr error
}

func (e *fakeEncoder) BeginComputePass() ComputePass {
	p := &fakePass{endErr: e.endErr}
	e.passes = append(e.passes, p)
	return p
}

type fakePass struct {
	calls     []string
	pipeline  *wgpu.ComputePipeline
	group     uint32
	bindGroup *wgpu.BindGroup
	grid      [3]uint32
	endErr    error
}

func (p *fakePass) SetPipeline(pl *wgpu.ComputePipeline) {
	p.calls = append(p.calls, "pipeline")
	p.pipeline = pl
}

func (p *fakePass) SetBindGroup(group uint32, bg *wgpu.BindGroup) {
	p.calls = append(p.calls, "bind")
	p.group, p.bindGroup = group, bg
}

func (p *fakePass) DispatchWorkgroups(x, y, z uint32) {
	p.calls = append(p.calls, "dispatch")
	p.grid = [3]uint32{x, y, z}
}

func (p *fakePass) End() error {
	p.calls = append(p.calls, "end")
	return p.endErr
}

type providerFunc func() (BufferHandle, error)

func (f providerFunc) AcquireCurrent() (BufferHandle, error) { return f() }
