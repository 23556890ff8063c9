package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Device is the part of a WebGPU device and its queue that the scene buffer
// and the dispatcher allocate through.
type Device interface {
	CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error)
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)
	CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error)
	ReleaseBuffer(buf *wgpu.Buffer)
	ReleaseBindGroup(bg *wgpu.BindGroup)
}

// Encoder opens compute passes on a command encoder.
type Encoder interface {
	BeginComputePass() ComputePass
}

// ComputePass is the recording sequence of one compute dispatch.
type ComputePass interface {
	SetPipeline(p *wgpu.ComputePipeline)
	SetBindGroup(group uint32, bg *wgpu.BindGroup)
	DispatchWorkgroups(x, y, z uint32)
	End() error
}

type wgpuDevice struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

// NewDevice adapts a wgpu device and its default queue.
func NewDevice(device *wgpu.Device) Device {
	return &wgpuDevice{device: device, queue: device.GetQueue()}
}

func (d *wgpuDevice) CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	return d.device.CreateBuffer(desc)
}

func (d *wgpuDevice) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	d.queue.WriteBuffer(buf, offset, data)
}

func (d *wgpuDevice) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	return d.device.CreateBindGroup(desc)
}

func (d *wgpuDevice) ReleaseBuffer(buf *wgpu.Buffer) {
	if buf != nil {
		buf.Release()
	}
}

func (d *wgpuDevice) ReleaseBindGroup(bg *wgpu.BindGroup) {
	if bg != nil {
		bg.Release()
	}
}

type wgpuEncoder struct {
	enc *wgpu.CommandEncoder
}

// WrapEncoder adapts a wgpu command encoder.
func WrapEncoder(enc *wgpu.CommandEncoder) Encoder {
	return wgpuEncoder{enc: enc}
}

func (e wgpuEncoder) BeginComputePass() ComputePass {
	return wgpuComputePass{pass: e.enc.BeginComputePass(nil)}
}

type wgpuComputePass struct {
	pass *wgpu.ComputePassEncoder
}

func (p wgpuComputePass) SetPipeline(pl *wgpu.ComputePipeline) { p.pass.SetPipeline(pl) }

func (p wgpuComputePass) SetBindGroup(group uint32, bg *wgpu.BindGroup) {
	p.pass.SetBindGroup(group, bg, nil)
}

func (p wgpuComputePass) DispatchWorkgroups(x, y, z uint32) { p.pass.DispatchWorkgroups(x, y, z) }

func (p wgpuComputePass) End() error { return p.pass.End() }
