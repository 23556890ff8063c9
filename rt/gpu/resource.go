package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// ResourceID identifies one GPU allocation. Reallocating a buffer or texture
// must produce a new ID so cached binding sets referencing it are rebuilt.
type ResourceID uuid.UUID

func NewResourceID() ResourceID { return ResourceID(uuid.New()) }

func (id ResourceID) String() string { return uuid.UUID(id).String() }

func (id ResourceID) IsZero() bool { return id == ResourceID{} }

type ResourceKind int

const (
	UniformBufferKind ResourceKind = iota
	StorageBufferKind
	StorageTextureKind
	SampledTextureKind
	SamplerKind
)

func (k ResourceKind) String() string {
	switch k {
	case UniformBufferKind:
		return "uniform-buffer"
	case StorageBufferKind:
		return "storage-buffer"
	case StorageTextureKind:
		return "storage-texture"
	case SampledTextureKind:
		return "sampled-texture"
	case SamplerKind:
		return "sampler"
	}
	return fmt.Sprintf("ResourceKind(%d)", int(k))
}

// Resource is a bindable GPU object together with its identity.
type Resource struct {
	ID    ResourceID
	Kind  ResourceKind
	Label string

	Buffer      *wgpu.Buffer
	Size        uint64 // bound range for buffers, 0 binds the whole buffer
	TextureView *wgpu.TextureView
	Sampler     *wgpu.Sampler
}

func NewBufferResource(label string, kind ResourceKind, buf *wgpu.Buffer, size uint64) Resource {
	return Resource{ID: NewResourceID(), Kind: kind, Label: label, Buffer: buf, Size: size}
}

func NewStorageTextureResource(label string, view *wgpu.TextureView) Resource {
	return Resource{ID: NewResourceID(), Kind: StorageTextureKind, Label: label, TextureView: view}
}

func NewSampledTextureResource(label string, view *wgpu.TextureView) Resource {
	return Resource{ID: NewResourceID(), Kind: SampledTextureKind, Label: label, TextureView: view}
}

func NewSamplerResource(label string, s *wgpu.Sampler) Resource {
	return Resource{ID: NewResourceID(), Kind: SamplerKind, Label: label, Sampler: s}
}

func (r Resource) entry(binding uint32) wgpu.BindGroupEntry {
	e := wgpu.BindGroupEntry{Binding: binding}
	switch r.Kind {
	case UniformBufferKind, StorageBufferKind:
		e.Buffer = r.Buffer
		e.Size = r.Size
		if e.Size == 0 {
			e.Size = wgpu.WholeSize
		}
	case StorageTextureKind, SampledTextureKind:
		e.TextureView = r.TextureView
	case SamplerKind:
		e.Sampler = r.Sampler
	}
	return e
}

func (r Resource) String() string {
	if r.Label != "" {
		return fmt.Sprintf("%s(%s %s)", r.Kind, r.Label, r.ID)
	}
	return fmt.Sprintf("%s(%s)", r.Kind, r.ID)
}
