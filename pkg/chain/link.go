package chain

import (
	"context"
	"fmt"
)

// InitFunc initializes a registrant. A non-nil error fails the Run.
type InitFunc func(ctx context.Context, cfg Config) error

// ResetFunc returns a registrant to its uninitialized state. Errors are
// logged and otherwise ignored.
type ResetFunc func(ctx context.Context, cfg Config) error

// Link is one registered unit of ordered work. It is owned by whoever built
// it; the registry only remembers which arena slot points at it.
type Link struct {
	reg   *Registry
	level int
	name  string
	init  InitFunc
	reset ResetFunc

	// written once by insert under the registry's list mutex
	idx int
	seq uint64
}

// NewLink builds a link and inserts it into r: ascending by level, and ahead
// of links already registered at the same level.
func NewLink(r *Registry, level int, init InitFunc, opts ...LinkOption) *Link {
	if r == nil {
		panic("chain: NewLink with nil registry")
	}
	if init == nil {
		panic(fmt.Sprintf("chain: NewLink level %d: init func required", level))
	}
	l := &Link{reg: r, level: level, init: init, idx: nilIdx}
	for _, o := range opts {
		o(l)
	}
	r.insert(l)
	return l
}

func (l *Link) Level() int          { return l.level }
func (l *Link) Name() string        { return l.name }
func (l *Link) HasReset() bool      { return l.reset != nil }
func (l *Link) Registry() *Registry { return l.reg }

// Linked reports whether the link is still part of its registry's list.
func (l *Link) Linked() bool {
	l.reg.listMu.Lock()
	defer l.reg.listMu.Unlock()
	return l.reg.holdsLocked(l)
}

// Release removes the link from its registry. It may be called from inside
// the link's own init or reset callback. Calling it again is a no-op.
func (l *Link) Release() bool {
	return l.reg.unlink(l)
}

// DoInit runs the init callback; errors and panics both come back as false.
func (l *Link) DoInit(ctx context.Context, cfg Config) bool {
	_, err := l.callInit(ctx, cfg)
	return err == nil
}

// DoReset runs the reset callback if there is one, swallowing failures.
func (l *Link) DoReset(ctx context.Context, cfg Config) {
	_, _ = l.callReset(ctx, cfg)
}

func (l *Link) callInit(ctx context.Context, cfg Config) (panicked bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			panicked, err = true, fmt.Errorf("panic: %v", rec)
		}
	}()
	return false, l.init(ctx, cfg)
}

func (l *Link) callReset(ctx context.Context, cfg Config) (panicked bool, err error) {
	if l.reset == nil {
		return false, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			panicked, err = true, fmt.Errorf("panic: %v", rec)
		}
	}()
	return false, l.reset(ctx, cfg)
}

// after reports whether l sorts after o in traversal order.
func (l *Link) after(o *Link) bool {
	if l.level != o.level {
		return l.level > o.level
	}
	return l.seq < o.seq
}
