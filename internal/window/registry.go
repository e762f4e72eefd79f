package window

import (
	"sort"
	"strconv"
)

// registry is the label bookkeeping behind Manager. It is not safe for
// concurrent use; Manager guards it with a single mutex.
type registry struct {
	singletons map[string]*Handle // logical label -> handle
	live       map[string]*Handle // instance label -> handle, every window
	counters   map[string]int     // multi-instance base label -> last N
}

func newRegistry() *registry {
	return &registry{
		singletons: make(map[string]*Handle),
		live:       make(map[string]*Handle),
		counters:   make(map[string]int),
	}
}

// nextInstance reserves the next instance label for a multi-instance base.
// Numbers start at 1 and are never handed out twice.
func (r *registry) nextInstance(base string) string {
	r.counters[base]++
	return base + "-" + strconv.Itoa(r.counters[base])
}

// lookup resolves a singleton label first, then a full instance label.
func (r *registry) lookup(label string) (*Handle, bool) {
	if h, ok := r.singletons[label]; ok {
		return h, true
	}
	h, ok := r.live[label]
	return h, ok
}

func (r *registry) singleton(label string) (*Handle, bool) {
	h, ok := r.singletons[label]
	return h, ok
}

func (r *registry) insert(h *Handle) {
	if h.Singleton {
		r.singletons[h.Label] = h
	}
	r.live[h.InstanceLabel] = h
}

// remove drops h and reports whether anything was removed. Entries that
// now point at a different handle are left alone.
func (r *registry) remove(h *Handle) bool {
	removed := false
	if h.Singleton && r.singletons[h.Label] == h {
		delete(r.singletons, h.Label)
		removed = true
	}
	if r.live[h.InstanceLabel] == h {
		delete(r.live, h.InstanceLabel)
		removed = true
	}
	return removed
}

// handles returns every live handle, oldest first.
func (r *registry) handles() []*Handle {
	out := make([]*Handle, 0, len(r.live))
	for _, h := range r.live {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].InstanceLabel < out[j].InstanceLabel
		}
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

func (r *registry) counter(base string) int {
	return r.counters[base]
}

func (r *registry) reset() {
	r.singletons = make(map[string]*Handle)
	r.live = make(map[string]*Handle)
	r.counters = make(map[string]int)
}

func (r *registry) empty() bool {
	return len(r.singletons) == 0 && len(r.live) == 0 && len(r.counters) == 0
}
