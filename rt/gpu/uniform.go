package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// UniformBuffer owns one uniform allocation that is rewritten in place and
// grown when a larger payload arrives.
type UniformBuffer struct {
	device Device
	label  string

	buf  *wgpu.Buffer
	size uint64
	used uint64
	id   ResourceID
}

func NewUniformBuffer(device Device, label string) *UniformBuffer {
	return &UniformBuffer{device: device, label: label}
}

// Write uploads data, reallocating first when the buffer is missing or too
// small. It reports whether a new allocation (and so a new ID) was made.
func (u *UniformBuffer) Write(data []byte) (bool, error) {
	if len(data) == 0 {
		return false, fmt.Errorf("%s: empty upload", u.label)
	}
	recreated, err := u.ensure(uint64(len(data)))
	if err != nil {
		return false, err
	}
	u.device.WriteBuffer(u.buf, 0, data)
	u.used = uint64(len(data))
	return recreated, nil
}

func (u *UniformBuffer) ensure(needed uint64) (bool, error) {
	// Uniform bindings are sized in 16-byte units.
	if needed%16 != 0 {
		needed += 16 - needed%16
	}
	if u.buf != nil && u.size >= needed {
		return false, nil
	}
	if u.buf != nil {
		u.device.ReleaseBuffer(u.buf)
		u.buf = nil
	}
	buf, err := u.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            u.label,
		Size:             needed,
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return false, fmt.Errorf("%s: create buffer: %w", u.label, err)
	}
	u.buf = buf
	u.size = needed
	u.id = NewResourceID()
	return true, nil
}

func (u *UniformBuffer) Buffer() *wgpu.Buffer { return u.buf }

func (u *UniformBuffer) ID() ResourceID { return u.id }

// Size is the allocated size; Used is the length of the last upload.
func (u *UniformBuffer) Size() uint64 { return u.size }

func (u *UniformBuffer) Used() uint64 { return u.used }

// Resource binds the uploaded range.
func (u *UniformBuffer) Resource() Resource {
	return Resource{ID: u.id, Kind: UniformBufferKind, Label: u.label, Buffer: u.buf, Size: u.used}
}

func (u *UniformBuffer) Release() {
	if u.buf != nil {
		u.device.ReleaseBuffer(u.buf)
	}
	u.buf, u.size, u.used, u.id = nil, 0, 0, ResourceID{}
}
