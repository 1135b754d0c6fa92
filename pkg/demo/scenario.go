package demo

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/joeydtaylor/initchain/pkg/chain"
	"github.com/joeydtaylor/initchain/pkg/chaintest"
)

// ErrConflictingModes is returned by Mode.Validate.
var ErrConflictingModes = errors.New("demo: conflicting scenario modes")

// Mode selects which scenario Play drives.
type Mode struct {
	Failure     bool // arm CompD to fail, then reset and retry
	Exception   bool // arm CompD to panic, then reset and retry
	Release     bool // drop every link before running
	LinkRelease bool // drop CompA's link before running
}

func (m Mode) Validate() error {
	if m.Failure && m.Exception {
		return fmt.Errorf("%w: both failure and exception requested", ErrConflictingModes)
	}
	if m.Release && m.LinkRelease {
		return fmt.Errorf("%w: both link-release and release requested", ErrConflictingModes)
	}
	return nil
}

// Step is the outcome of one Run or Reset.
type Step struct {
	Op       string         `json:"op"`
	Err      string         `json:"error,omitempty"`
	States   map[string]int `json:"states"`
	Links    int            `json:"links"`
	Instance int64          `json:"instance"` // comp-d generation, 0 when torn down
}

// Report is everything Play observed.
type Report struct {
	Chain  string      `json:"chain"`
	Steps  []Step      `json:"steps"`
	Inits  map[int]int `json:"inits"`
	Resets map[int]int `json:"resets"`
}

// Play registers a fresh demo Set in reg and drives it through the scenario
// selected by m. Failed steps are recorded in the report, not returned.
func Play(ctx context.Context, reg *chain.Registry, cfg chain.Config, m Mode, log *zap.Logger) (Report, error) {
	if err := m.Validate(); err != nil {
		return Report{}, err
	}
	rec := chaintest.NewRecorder()
	set := Register(reg, rec, log)
	rn := chain.NewRunner(reg)

	rep := Report{Chain: reg.Name()}
	step := func(op string, err error) {
		s := Step{Op: op, States: rec.States(), Links: reg.Len(), Instance: set.D.Generation()}
		if err != nil {
			s.Err = err.Error()
		}
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			if _, ok := s.States[name]; !ok {
				s.States[name] = 0
			}
		}
		rep.Steps = append(rep.Steps, s)
	}

	switch {
	case m.Failure || m.Exception:
		if m.Failure {
			set.D.ArmFailure()
		} else {
			set.D.ArmPanic()
		}
		step("run", rn.Run(ctx, cfg))
		step("reset", rn.Reset(ctx, cfg))
		step("run", rn.Run(ctx, cfg))
	case m.LinkRelease:
		if !rn.ReleaseLink(set.A.Link()) {
			return rep, errors.New("demo: comp-a link was not registered")
		}
		step("release-link", nil)
		step("run", rn.Run(ctx, cfg))
	case m.Release:
		rn.Release()
		step("release", nil)
		step("run", rn.Run(ctx, cfg))
	default:
		step("run", rn.Run(ctx, cfg))
		step("run", rn.Run(ctx, cfg))
		step("reset", rn.Reset(ctx, cfg))
		step("run", rn.Run(ctx, cfg))
	}

	rep.Inits = rec.Inits()
	rep.Resets = rec.Resets()
	return rep, nil
}
