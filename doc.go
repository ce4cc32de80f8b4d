// Package otpflow provides an embeddable email one-time-password login client:
// a two-step state machine (collect email → request code → collect code →
// verify code) with mandatory client-side payload encryption and two
// independent one-second countdown engines for code expiry and rate-limit
// cool-down.
//
// The package is designed to sit underneath a UI layer: the UI reads published
// [LoginState] snapshots through [Client.Subscribe] and drives the flow through
// the public commands on [Client]. Construction goes through [Builder.Build].
//
// # Architecture boundaries
//
// otpflow is the public surface. It exposes [Client], [Builder], [Config], and
// value types (LoginState, VerifyResult, UserInfo). All internal coordination —
// envelope sealing, audit dispatch, clock abstraction — lives under internal/
// and is never exported.
//
// # What this package must NOT do
//
//   - Send credentials in plaintext. Every request body is an encrypted
//     envelope; a failed seal aborts the operation before any I/O.
//   - Persist tokens or sessions. The verify success handler receives the
//     normalized result and the caller owns storage from there.
//   - Implement server policy. Rate limiting, code issuance, and token
//     signing belong to the remote OTP service; this client only interprets
//     what the service reports.
//
// # Concurrency contract
//
// A Client is single-flow by design: commands may be called from the UI
// thread while countdown ticks fire from their own goroutines, and every
// individual state update is atomic under the client's state lock. Invoking
// RequestCode or VerifyCode concurrently on one Client is a caller error.
package otpflow
