// Package demo is a set of sample registrants used by the initchain CLI and
// by integration tests. Each component registers its link when it is built
// and reports what happens to it through a Recorder.
package demo

import (
	"go.uber.org/zap"

	"github.com/joeydtaylor/initchain/pkg/chain"
)

// Recorder receives init/reset counts per level and a per-component state.
// chaintest.Recorder implements it.
type Recorder interface {
	CountInit(level int)
	CountReset(level int)
	SetState(name string, up bool)
}

// Set is one instance of every demo component, registered in one chain.
type Set struct {
	A *CompA
	B *CompB
	C *CompC
	D *CompD
	E [2]*CompE
}

// Register builds the components against reg in declaration order. Their
// levels, not that order, decide when they run.
func Register(reg *chain.Registry, rec Recorder, log *zap.Logger) *Set {
	log = orNop(log)
	return &Set{
		A: NewCompA(reg, rec, log),
		B: NewCompB(reg, rec, log),
		C: NewCompC(reg, rec, log),
		D: NewCompD(reg, rec, log),
		E: [2]*CompE{NewCompE(reg, 1, rec, log), NewCompE(reg, 2, rec, log)},
	}
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
