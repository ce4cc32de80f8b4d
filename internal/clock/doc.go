// Package clock provides a tiny time abstraction.
//
// Production code should depend on the Clocker interface instead of calling
// time.Now() directly. Envelope timestamps and rate-limit reset deltas read
// the injected clock, so tests can pin a deterministic time.
package clock
