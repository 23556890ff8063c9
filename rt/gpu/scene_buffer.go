package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/sdfrt"
	"github.com/gekko3d/sdfrt/rt/core"
	"github.com/gekko3d/sdfrt/rt/layout"
)

// ErrNotAvailable means no scene data exists for the current frame. Callers
// skip the dispatch; it is not a failure.
var ErrNotAvailable = errors.New("gpu: scene data not available")

// BufferHandle references the uniform region holding one published frame.
type BufferHandle struct {
	ID     ResourceID
	Frame  uint64 // 1-based publish counter
	Size   uint64
	Buffer *wgpu.Buffer
}

func (h BufferHandle) Valid() bool {
	return h.Buffer != nil && h.Frame > 0 && h.Size > 0 && !h.ID.IsZero()
}

// SceneDataProvider is the only query the dispatcher makes of the engine.
type SceneDataProvider interface {
	AcquireCurrent() (BufferHandle, error)
}

// SceneBuffer publishes SceneData into a uniform buffer. The engine is the
// single writer; any number of readers may acquire the current handle.
type SceneBuffer struct {
	mu       sync.RWMutex
	uniform  *UniformBuffer
	layout   *layout.Layout
	scratch  []byte
	frame    uint64
	current  bool
	disabled bool
	logger   sdfrt.Logger
}

type SceneBufferOption func(*SceneBuffer)

func WithSceneLogger(l sdfrt.Logger) SceneBufferOption {
	return func(s *SceneBuffer) { s.logger = sdfrt.OrNop(l) }
}

func NewSceneBuffer(device Device, opts ...SceneBufferOption) *SceneBuffer {
	l := core.SceneDataLayout()
	s := &SceneBuffer{
		uniform: NewUniformBuffer(device, "SceneData UBO"),
		layout:  l,
		scratch: make([]byte, l.Size()),
		logger:  sdfrt.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish encodes sd as the current frame. A nil frame clears the current
// handle, so the next acquire reports ErrNotAvailable.
func (s *SceneBuffer) Publish(sd *core.SceneData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sd == nil {
		s.current = false
		return nil
	}
	if err := s.layout.Encode(s.scratch, sd); err != nil {
		s.current = false
		return fmt.Errorf("encode scene data: %w", err)
	}
	recreated, err := s.uniform.Write(s.scratch)
	if err != nil {
		s.current = false
		return fmt.Errorf("upload scene data: %w", err)
	}
	if recreated {
		s.logger.Debugf("scene buffer allocated: %d bytes, id %s", s.uniform.Size(), s.uniform.ID())
	}
	s.frame++
	s.current = true
	return nil
}

// AcquireCurrent returns the handle of the last published frame.
func (s *SceneBuffer) AcquireCurrent() (BufferHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.disabled:
		return BufferHandle{}, fmt.Errorf("%w: source disabled", ErrNotAvailable)
	case !s.current:
		return BufferHandle{}, ErrNotAvailable
	}
	return BufferHandle{
		ID:     s.uniform.ID(),
		Frame:  s.frame,
		Size:   uint64(s.layout.Size()),
		Buffer: s.uniform.Buffer(),
	}, nil
}

// Disable hides the source without dropping the buffer.
func (s *SceneBuffer) Disable() {
	s.mu.Lock()
	s.disabled = true
	s.mu.Unlock()
}

func (s *SceneBuffer) Enable() {
	s.mu.Lock()
	s.disabled = false
	s.mu.Unlock()
}

// Frame is the number of frames published so far.
func (s *SceneBuffer) Frame() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

func (s *SceneBuffer) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uniform.Release()
	s.current = false
}
