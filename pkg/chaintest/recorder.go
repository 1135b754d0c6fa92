package chaintest

import (
	"maps"
	"sync"
)

// Recorder counts init and reset events per level and keeps a per-component
// state counter (SetState(name, true) increments, false decrements down to 0).
type Recorder struct {
	mu     sync.Mutex
	inits  map[int]int
	resets map[int]int
	states map[string]int
}

func NewRecorder() *Recorder {
	return &Recorder{
		inits:  map[int]int{},
		resets: map[int]int{},
		states: map[string]int{},
	}
}

func (r *Recorder) CountInit(level int) {
	r.mu.Lock()
	r.inits[level]++
	r.mu.Unlock()
}

func (r *Recorder) CountReset(level int) {
	r.mu.Lock()
	r.resets[level]++
	r.mu.Unlock()
}

// Inits returns a copy of the level -> init count map.
func (r *Recorder) Inits() map[int]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.inits)
}

// Resets returns a copy of the level -> reset count map.
func (r *Recorder) Resets() map[int]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.resets)
}

func (r *Recorder) SetState(name string, up bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if up {
		r.states[name]++
		return
	}
	if r.states[name] > 0 {
		r.states[name]--
	}
}

func (r *Recorder) State(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[name]
}

func (r *Recorder) States() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.states)
}
