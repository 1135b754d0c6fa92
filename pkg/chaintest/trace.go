package chaintest

import (
	"fmt"
	"sync"
)

// Trace records callback events in the order they happen, e.g. "init:15".
type Trace struct {
	mu     sync.Mutex
	events []string
}

func (t *Trace) Add(format string, args ...any) {
	t.mu.Lock()
	t.events = append(t.events, fmt.Sprintf(format, args...))
	t.mu.Unlock()
}

func (t *Trace) Events() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.events...)
}

func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

func (t *Trace) Clear() {
	t.mu.Lock()
	t.events = nil
	t.mu.Unlock()
}
