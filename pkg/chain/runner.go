package chain

import "context"

// Runner triggers passes over one registry. It is a plain value; copies
// share the registry and its locks. The zero Runner drives Default().
type Runner struct {
	reg *Registry
}

// NewRunner binds a Runner to r.
func NewRunner(r *Registry) Runner { return Runner{reg: r} }

// RunnerFor binds a Runner to the process-wide registry for tag T.
func RunnerFor[T any]() Runner { return Runner{reg: Of[T]()} }

func (rn Runner) Registry() *Registry {
	if rn.reg == nil {
		return Default()
	}
	return rn.reg
}

// Run invokes every pending init in order and stops at the first failure.
// It returns ErrNotReady without invoking anything when the chain already
// ran or failed, or while a Run or Reset pass is invoking callbacks. A Run
// issued from an init or reset callback of the same chain is refused that
// way instead of deadlocking.
func (rn Runner) Run(ctx context.Context, cfg Config) error {
	r := rn.Registry()
	if r.State() == StateRunning || r.walking.Load() {
		return ErrNotReady
	}
	r.runMu.Lock()
	defer r.runMu.Unlock()
	return r.run(ctx, cfg)
}

// Reset invokes every reset callback and makes the chain runnable again.
// It refuses with ErrPermanentFailure after a failed Run unless the registry
// allows retries. Calling Reset from inside a callback of the same chain
// deadlocks.
func (rn Runner) Reset(ctx context.Context, cfg Config) error {
	r := rn.Registry()
	r.runMu.Lock()
	defer r.runMu.Unlock()
	return r.resetPass(ctx, cfg)
}

// Release drops every link without invoking callbacks and returns how many
// were dropped.
func (rn Runner) Release() int {
	r := rn.Registry()
	r.runMu.Lock()
	defer r.runMu.Unlock()
	return r.release()
}

// ReleaseLink drops one link without invoking callbacks. It reports false
// when the link was not in this registry.
func (rn Runner) ReleaseLink(l *Link) bool {
	r := rn.Registry()
	r.runMu.Lock()
	defer r.runMu.Unlock()
	return r.releaseLink(l)
}
