// Package chaintest holds test-side observers for init chains: a Recorder
// that counts init/reset calls per level and per component, a Trace of
// callback order, and helpers that build instrumented links.
package chaintest
