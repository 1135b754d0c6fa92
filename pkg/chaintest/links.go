package chaintest

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/joeydtaylor/initchain/pkg/chain"
)

// ErrArmed is what an armed Probe's init returns.
var ErrArmed = errors.New("chaintest: armed failure")

// Probe is an instrumented link: it counts into a Recorder, appends to a
// Trace, and can be armed to fail or panic on its next init.
type Probe struct {
	Link *chain.Link

	level int
	rec   *Recorder
	trace *Trace
	fail  atomic.Bool
	boom  atomic.Bool
	done  atomic.Bool
}

// NewProbe registers a probe at level; withReset decides whether it gets a
// reset callback. rec and trace may be nil.
func NewProbe(reg *chain.Registry, level int, withReset bool, rec *Recorder, trace *Trace, opts ...chain.LinkOption) *Probe {
	p := &Probe{level: level, rec: rec, trace: trace}
	if withReset {
		opts = append(opts, chain.WithReset(p.reset))
	}
	p.Link = chain.NewLink(reg, level, p.init, opts...)
	return p
}

// ArmFailure makes the next init return ErrArmed.
func (p *Probe) ArmFailure() { p.fail.Store(true) }

// ArmPanic makes the next init panic.
func (p *Probe) ArmPanic() { p.boom.Store(true) }

// Initialized reports whether the last init succeeded and no reset followed.
func (p *Probe) Initialized() bool { return p.done.Load() }

func (p *Probe) init(context.Context, chain.Config) error {
	level := p.level
	if p.fail.CompareAndSwap(true, false) {
		p.note("fail:%d", level)
		return ErrArmed
	}
	if p.boom.CompareAndSwap(true, false) {
		p.note("panic:%d", level)
		panic("chaintest: armed panic")
	}
	p.note("init:%d", level)
	if p.rec != nil {
		p.rec.CountInit(level)
	}
	p.done.Store(true)
	return nil
}

func (p *Probe) reset(context.Context, chain.Config) error {
	level := p.level
	p.note("reset:%d", level)
	if p.rec != nil {
		p.rec.CountReset(level)
	}
	p.done.Store(false)
	return nil
}

func (p *Probe) note(format string, level int) {
	if p.trace != nil {
		p.trace.Add(format, level)
	}
}
