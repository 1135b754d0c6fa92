package demo

import (
	"context"
	"sync/atomic"

	"github.com/joeydtaylor/initchain/pkg/chain"
)

// History receives one entry per DynWorker callback. chaintest.Trace
// implements it.
type History interface {
	Add(format string, args ...any)
}

// DynWorker is a heap registrant that can be armed to drop its own link
// from inside its next init or reset.
type DynWorker struct {
	name        string
	link        *chain.Link
	delOnInit   atomic.Bool
	delOnReset  atomic.Bool
	initialized atomic.Bool
}

func NewDynWorker(reg *chain.Registry, level int, name string, hist History) *DynWorker {
	w := &DynWorker{name: name}
	w.link = chain.NewLink(reg, level, func(context.Context, chain.Config) error {
		w.initialized.Store(true)
		if w.delOnInit.Load() {
			hist.Add("%s: init-delete", name)
			w.link.Release()
			return nil
		}
		hist.Add("%s: init", name)
		return nil
	}, chain.WithLinkName(name), chain.WithReset(func(context.Context, chain.Config) error {
		w.initialized.Store(false)
		if w.delOnReset.Load() {
			hist.Add("%s: reset-delete", name)
			w.link.Release()
			return nil
		}
		hist.Add("%s: reset", name)
		return nil
	}))
	return w
}

func (w *DynWorker) Name() string      { return w.name }
func (w *DynWorker) Link() *chain.Link { return w.link }
func (w *DynWorker) Initialized() bool { return w.initialized.Load() }

func (w *DynWorker) ArmDeleteOnInit()  { w.delOnInit.Store(true) }
func (w *DynWorker) ArmDeleteOnReset() { w.delOnReset.Store(true) }
