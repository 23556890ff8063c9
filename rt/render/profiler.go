package render

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/gekko3d/sdfrt/rt/gpu"
)

// Profiler keeps per-scope CPU timings (last sample and a running average)
// plus named counters for the debug overlay and log lines.
type Profiler struct {
	Scopes     map[string]time.Duration
	Averages   map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]uint64
	Order      []string

	now func() time.Time
}

// averageWindow is the smoothing factor of the running average; a new
// sample moves the average by 1/averageWindow of the difference.
const averageWindow = 10

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		Averages:   make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]uint64),
		now:        time.Now,
	}
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = p.now()
	if !slices.Contains(p.Order, name) {
		p.Order = append(p.Order, name)
	}
}

func (p *Profiler) EndScope(name string) {
	start, ok := p.StartTimes[name]
	if !ok {
		return
	}
	delete(p.StartTimes, name)
	d := p.now().Sub(start)
	p.Scopes[name] = d
	if avg, seen := p.Averages[name]; seen {
		p.Averages[name] = avg + (d-avg)/averageWindow
	} else {
		p.Averages[name] = d
	}
}

// Scope starts name and returns the matching end call, for use with defer.
func (p *Profiler) Scope(name string) func() {
	p.BeginScope(name)
	return func() { p.EndScope(name) }
}

func (p *Profiler) SetCount(name string, count uint64) {
	p.Counts[name] = count
}

// RecordDispatch copies the dispatcher counters.
func (p *Profiler) RecordDispatch(s gpu.Stats) {
	p.SetCount("dispatched", s.Dispatched)
	p.SetCount("skipped", s.Skipped)
	p.SetCount("set hits", s.CacheHits)
	p.SetCount("set misses", s.CacheMisses)
	p.SetCount("sets cached", uint64(s.Cached))
}

// Reset clears last-sample timings; averages and order are kept.
func (p *Profiler) Reset() {
	for k := range p.Scopes {
		p.Scopes[k] = 0
	}
}

func (p *Profiler) String() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		fmt.Fprintf(&sb, "  %-15s: %.2f ms (avg %.2f ms)\n", name, ms(p.Scopes[name]), ms(p.Averages[name]))
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.Counts[k])
	}
	return sb.String()
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000.0 }
