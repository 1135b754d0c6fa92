package demo

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/joeydtaylor/initchain/pkg/chain"
)

const (
	LevelA = -10
	LevelB = 15
	LevelC = 20
	LevelD = 25
	LevelE = 40 // plus the instance number
)

var (
	// ErrArmedFailure is returned by CompD's init after ArmFailure.
	ErrArmedFailure = errors.New("demo: comp-d armed failure")
	// ErrDuplicateInit means CompD was initialized twice without a reset.
	ErrDuplicateInit = errors.New("demo: comp-d initialized twice")
)

/* ===========================
   CompA: single-shot, runs first
   =========================== */

type CompA struct {
	link *chain.Link
}

func NewCompA(reg *chain.Registry, rec Recorder, log *zap.Logger) *CompA {
	log = orNop(log)
	a := &CompA{}
	a.link = chain.NewLink(reg, LevelA, func(context.Context, chain.Config) error {
		log.Info("component init", zap.String("component", "a"), zap.Int("level", LevelA))
		rec.SetState("a", true)
		rec.CountInit(LevelA)
		return nil
	}, chain.WithLinkName("comp-a"))
	return a
}

func (a *CompA) Link() *chain.Link { return a.link }

/* ===========================
   CompB: resettable
   =========================== */

type CompB struct {
	link  *chain.Link
	ready atomic.Bool
}

func NewCompB(reg *chain.Registry, rec Recorder, log *zap.Logger) *CompB {
	log = orNop(log)
	b := &CompB{}
	b.link = chain.NewLink(reg, LevelB, func(context.Context, chain.Config) error {
		log.Info("component init", zap.String("component", "b"), zap.Int("level", LevelB))
		rec.SetState("b", true)
		rec.CountInit(LevelB)
		b.ready.Store(true)
		return nil
	}, chain.WithLinkName("comp-b"), chain.WithReset(func(context.Context, chain.Config) error {
		log.Info("component reset", zap.String("component", "b"), zap.Int("level", LevelB))
		rec.SetState("b", false)
		rec.CountReset(LevelB)
		b.ready.Store(false)
		return nil
	}))
	return b
}

func (b *CompB) Link() *chain.Link { return b.link }
func (b *CompB) Ready() bool       { return b.ready.Load() }

/* ===========================
   CompC: single-shot, reads config
   =========================== */

type CompC struct {
	link *chain.Link
	mode atomic.Value // string
}

func NewCompC(reg *chain.Registry, rec Recorder, log *zap.Logger) *CompC {
	log = orNop(log)
	c := &CompC{}
	c.link = chain.NewLink(reg, LevelC, func(_ context.Context, cfg chain.Config) error {
		mode := cfg.Get("mode", "default")
		log.Info("component init", zap.String("component", "c"), zap.Int("level", LevelC), zap.String("mode", mode))
		c.mode.Store(mode)
		rec.SetState("c", true)
		rec.CountInit(LevelC)
		return nil
	}, chain.WithLinkName("comp-c"))
	return c
}

func (c *CompC) Link() *chain.Link { return c.link }

// Mode is the "mode" parameter seen by the last init, or "" before one.
func (c *CompC) Mode() string {
	m, _ := c.mode.Load().(string)
	return m
}

/* ===========================
   CompD: owns a per-run instance; can be armed to fail
   =========================== */

// Instance is what CompD's init creates and its reset tears down.
// Generation counts the instances created so far, starting at 1.
type Instance struct {
	Generation int64
}

type CompD struct {
	link        *chain.Link
	instance    atomic.Pointer[Instance]
	generations atomic.Int64
	fail        atomic.Bool
	boom        atomic.Bool
}

func NewCompD(reg *chain.Registry, rec Recorder, log *zap.Logger) *CompD {
	log = orNop(log)
	d := &CompD{}
	log = log.With(zap.String("component", "d"), zap.Int("level", LevelD))
	d.link = chain.NewLink(reg, LevelD, func(context.Context, chain.Config) error {
		if d.fail.CompareAndSwap(true, false) {
			log.Warn("component init will fail")
			return ErrArmedFailure
		}
		if d.boom.CompareAndSwap(true, false) {
			log.Warn("component init will panic")
			panic("demo: comp-d armed panic")
		}
		log.Info("component init")
		rec.SetState("d", true)
		rec.CountInit(LevelD)
		inst := &Instance{Generation: d.generations.Load() + 1}
		if !d.instance.CompareAndSwap(nil, inst) {
			return ErrDuplicateInit
		}
		d.generations.Store(inst.Generation)
		return nil
	}, chain.WithLinkName("comp-d"), chain.WithReset(func(context.Context, chain.Config) error {
		log.Info("component reset")
		rec.SetState("d", false)
		rec.CountReset(LevelD)
		d.instance.Store(nil)
		return nil
	}))
	return d
}

func (d *CompD) Link() *chain.Link { return d.link }

// Instance is nil unless the last init succeeded and no reset followed.
func (d *CompD) Instance() *Instance { return d.instance.Load() }

// Generation is the live instance's generation, or 0 when there is none.
func (d *CompD) Generation() int64 {
	if inst := d.instance.Load(); inst != nil {
		return inst.Generation
	}
	return 0
}

// ArmFailure makes the next init return ErrArmedFailure.
func (d *CompD) ArmFailure() { d.fail.Store(true) }

// ArmPanic makes the next init panic.
func (d *CompD) ArmPanic() { d.boom.Store(true) }

/* ===========================
   CompE: drops its own link from a callback
   =========================== */

// CompE registers at LevelE+n. An odd level releases the link from inside
// its init; a level with bit 1 set releases it from inside its reset.
type CompE struct {
	n    int
	link *chain.Link
	done atomic.Bool
}

func NewCompE(reg *chain.Registry, n int, rec Recorder, log *zap.Logger) *CompE {
	log = orNop(log)
	e := &CompE{n: n}
	level := LevelE + n
	log = log.With(zap.String("component", "e"), zap.Int("level", level))
	e.link = chain.NewLink(reg, level, func(context.Context, chain.Config) error {
		log.Info("component init")
		rec.SetState("e", true)
		rec.CountInit(level)
		e.done.Store(true)
		if level&0x1 != 0 {
			e.link.Release()
		}
		return nil
	}, chain.WithLinkName("comp-e"), chain.WithReset(func(context.Context, chain.Config) error {
		log.Info("component reset")
		rec.SetState("e", false)
		rec.CountReset(level)
		e.done.Store(false)
		if level&0x2 != 0 {
			e.link.Release()
		}
		return nil
	}))
	return e
}

func (e *CompE) Link() *chain.Link { return e.link }
func (e *CompE) Done() bool        { return e.done.Load() }
