package chain

import "time"

// Op names the callback kind being observed.
type Op string

const (
	OpInit  Op = "init"
	OpReset Op = "reset"
)

// Observer receives timing and outcome of every callback and every pass.
// Implementations must not call back into the registry.
type Observer interface {
	ObserveLink(chain string, op Op, level int, ok bool, d time.Duration)
	ObservePass(chain string, op Op, ok bool, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveLink(string, Op, int, bool, time.Duration) {}
func (nopObserver) ObservePass(string, Op, bool, time.Duration)      {}
