package gpu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/sdfrt"
	"github.com/gekko3d/sdfrt/rt/core"
)

const (
	// SceneGroup is the bind group holding the scene data and pass resources.
	SceneGroup uint32 = 0
	// SceneBinding is the slot of the scene data uniform; pass resources follow it.
	SceneBinding uint32 = 0
)

var ErrEmptyGrid = errors.New("gpu: dispatch grid is empty")

// BindingSet is a cached bind group for one pipeline and one ordered list of
// resource identities.
type BindingSet struct {
	Pipeline  ResourceID
	Group     uint32
	BindGroup *wgpu.BindGroup
	Resources []ResourceID // by binding, scene data first

	key string
}

func (b *BindingSet) references(id ResourceID) bool {
	for _, r := range b.Resources {
		if r == id {
			return true
		}
	}
	return false
}

// Stats counts dispatcher outcomes since creation or the last Reset.
type Stats struct {
	Dispatched  uint64
	Skipped     uint64
	CacheHits   uint64
	CacheMisses uint64
	Cached      int
}

// Dispatcher binds scene data and pass resources to a compute pipeline and
// records the dispatch.
type Dispatcher struct {
	device Device
	logger sdfrt.Logger

	mu    sync.Mutex
	sets  map[string]*BindingSet
	stats Stats
}

type DispatcherOption func(*Dispatcher)

func WithDispatchLogger(l sdfrt.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = sdfrt.OrNop(l) }
}

func NewDispatcher(device Device, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		device: device,
		logger: sdfrt.NewNopLogger(),
		sets:   make(map[string]*BindingSet),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func bindingKey(pipeline ResourceID, group uint32, ids []ResourceID) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s/%d", pipeline, group)
	for slot, id := range ids {
		fmt.Fprintf(&sb, "|%d=%s", slot, id)
	}
	return sb.String()
}

// BuildBindingSet returns the bind group with the scene buffer at binding 0
// and resources at bindings 1..N. Equal pipeline and resource identities
// return the same *BindingSet. A pipeline reads one scene buffer, so on a
// miss any cached set of p bound to a different scene buffer (one that was
// reallocated or released) is evicted.
func (d *Dispatcher) BuildBindingSet(p *Pipeline, buf BufferHandle, resources ...Resource) (*BindingSet, error) {
	if !buf.Valid() {
		return nil, fmt.Errorf("build binding set: %w", ErrNotAvailable)
	}
	ids := make([]ResourceID, 0, len(resources)+1)
	ids = append(ids, buf.ID)
	for _, r := range resources {
		ids = append(ids, r.ID)
	}
	key := bindingKey(p.ID, SceneGroup, ids)

	d.mu.Lock()
	defer d.mu.Unlock()

	if set, ok := d.sets[key]; ok {
		d.stats.CacheHits++
		return set, nil
	}
	if n := d.evictStaleSceneLocked(p.ID, buf.ID); n > 0 {
		d.logger.Debugf("%d binding sets for %s dropped after scene buffer change", n, p.Label)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(ids))
	entries = append(entries, wgpu.BindGroupEntry{
		Binding: SceneBinding,
		Buffer:  buf.Buffer,
		Size:    buf.Size,
	})
	for i, r := range resources {
		entries = append(entries, r.entry(SceneBinding+1+uint32(i)))
	}

	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.Label + " group 0",
		Layout:  p.BindGroupLayout(SceneGroup),
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("build binding set for %s: %w", p.Label, err)
	}

	set := &BindingSet{
		Pipeline:  p.ID,
		Group:     SceneGroup,
		BindGroup: bg,
		Resources: ids,
		key:       key,
	}
	d.sets[key] = set
	d.stats.CacheMisses++
	d.logger.Debugf("binding set created for %s with %d entries", p.Label, len(entries))
	return set, nil
}

// Dispatch records begin, set pipeline, set bind group, dispatch, end. A
// cancelled context is checked before the pass is opened; a recorded pass is
// never undone.
func (d *Dispatcher) Dispatch(ctx context.Context, enc Encoder, p *Pipeline, set *BindingSet, grid core.Grid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if grid.Empty() {
		return ErrEmptyGrid
	}

	pass := enc.BeginComputePass()
	pass.SetPipeline(p.Handle)
	pass.SetBindGroup(set.Group, set.BindGroup)
	pass.DispatchWorkgroups(grid.X, grid.Y, grid.Z)
	if err := pass.End(); err != nil {
		return fmt.Errorf("%s pass end: %w", p.Label, err)
	}

	d.mu.Lock()
	d.stats.Dispatched++
	d.mu.Unlock()
	return nil
}

// Frame runs one frame's dispatch. It returns false without touching the
// encoder when scene data is not available, the context is done, or the
// output is empty. Only binding or pass failures are returned as errors.
func (d *Dispatcher) Frame(ctx context.Context, enc Encoder, p *Pipeline, provider SceneDataProvider, res core.Resolution, resources ...Resource) (bool, error) {
	if err := ctx.Err(); err != nil {
		d.skip("context done: %v", err)
		return false, nil
	}
	buf, err := provider.AcquireCurrent()
	if errors.Is(err, ErrNotAvailable) || (err == nil && !buf.Valid()) {
		d.skip("scene data not available")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquire scene data: %w", err)
	}
	grid := p.Grid(res)
	if grid.Empty() {
		d.skip("empty output %dx%d", res.Width, res.Height)
		return false, nil
	}

	set, err := d.BuildBindingSet(p, buf, resources...)
	if err != nil {
		return false, err
	}
	if err := d.Dispatch(ctx, enc, p, set, grid); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			d.skip("context done: %v", err)
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *Dispatcher) skip(format string, args ...any) {
	d.mu.Lock()
	d.stats.Skipped++
	d.mu.Unlock()
	d.logger.Debugf("dispatch skipped: "+format, args...)
}

// Evict releases every cached set built for the pipeline.
func (d *Dispatcher) Evict(pipeline ResourceID) int {
	return d.evictWhere(func(s *BindingSet) bool { return s.Pipeline == pipeline })
}

// EvictResource releases every cached set that binds id, for example an
// output texture replaced on resize.
func (d *Dispatcher) EvictResource(id ResourceID) int {
	return d.evictWhere(func(s *BindingSet) bool { return s.references(id) })
}

func (d *Dispatcher) evictWhere(match func(*BindingSet) bool) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.evictLocked(match)
}

func (d *Dispatcher) evictStaleSceneLocked(pipeline, scene ResourceID) int {
	return d.evictLocked(func(s *BindingSet) bool {
		return s.Pipeline == pipeline && s.Group == SceneGroup && s.Resources[0] != scene
	})
}

func (d *Dispatcher) evictLocked(match func(*BindingSet) bool) int {
	n := 0
	for key, set := range d.sets {
		if match(set) {
			d.device.ReleaseBindGroup(set.BindGroup)
			delete(d.sets, key)
			n++
		}
	}
	return n
}

// Reset releases all cached sets and clears the counters.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, set := range d.sets {
		d.device.ReleaseBindGroup(set.BindGroup)
		delete(d.sets, key)
	}
	d.stats = Stats{}
}

func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.stats
	s.Cached = len(d.sets)
	return s
}
