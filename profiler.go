package postfx

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler accumulates CPU time per named scope across frames.
type Profiler struct {
	scopes map[string]time.Duration
	starts map[string]time.Time
	counts map[string]int
	order  []string
	frames int
}

func NewProfiler() *Profiler {
	return &Profiler{
		scopes: make(map[string]time.Duration),
		starts: make(map[string]time.Time),
		counts: make(map[string]int),
	}
}

func (p *Profiler) BeginScope(name string) {
	if _, seen := p.scopes[name]; !seen {
		p.order = append(p.order, name)
		p.scopes[name] = 0
	}
	p.starts[name] = time.Now()
}

func (p *Profiler) EndScope(name string) {
	start, ok := p.starts[name]
	if !ok {
		return
	}
	p.scopes[name] += time.Since(start)
	delete(p.starts, name)
}

func (p *Profiler) Add(name string, n int) { p.counts[name] += n }

func (p *Profiler) Count(name string) int { return p.counts[name] }

// EndFrame marks one processed frame; averages are taken over frames.
func (p *Profiler) EndFrame() { p.frames++ }

func (p *Profiler) Frames() int { return p.frames }

// Total returns the time spent in a scope since the last Reset.
func (p *Profiler) Total(name string) time.Duration { return p.scopes[name] }

func (p *Profiler) Reset() {
	for k := range p.scopes {
		p.scopes[k] = 0
	}
	for k := range p.counts {
		delete(p.counts, k)
	}
	p.frames = 0
}

func (p *Profiler) String() string {
	var sb strings.Builder
	frames := p.frames
	if frames == 0 {
		frames = 1
	}
	fmt.Fprintf(&sb, "post effects over %d frames (CPU, avg):\n", p.frames)
	for _, name := range p.order {
		ms := float64(p.scopes[name].Microseconds()) / 1000 / float64(frames)
		fmt.Fprintf(&sb, "  %-15s: %.3f ms\n", name, ms)
	}

	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.counts[k])
	}
	return sb.String()
}
