// Package chain is an ordered init chain: independently built registrants
// add Links (a level, an init callback and an optional reset callback) to a
// Registry, and a Runner later invokes them once, lowest level first.
//
//	reg := chain.New(chain.WithLogger(zl))
//	chain.NewLink(reg, -10, openDB)
//	chain.NewLink(reg, 20, warmCache, chain.WithReset(dropCache))
//
//	rn := chain.NewRunner(reg)
//	if err := rn.Run(ctx, chain.Config{"env": "test"}); err != nil { ... }
//	_ = rn.Reset(ctx, nil) // test harnesses only
//
// Links at the same level run newest first. A Link without a reset callback
// leaves the list after its first successful init, so it is never invoked
// again. Run stops at the first failing init and does not undo earlier ones;
// a failed chain stays failed unless the registry was built with
// WithRetryAfterFailure(true), in which case Reset re-arms it.
//
// Registries for distinct tag types (Of[T]) are fully independent.
package chain
