// Package audit implements async event dispatching for the login flow.
//
// # Components
//
//   - [Sink] — interface for event consumers (channel, JSON writer, no-op).
//   - [Event] — structured record with timestamp, type, step, email hash,
//     success flag, and metadata.
//
// # Architecture boundaries
//
// This package owns the event model and sink delivery. It does NOT decide
// which events to emit — that responsibility belongs to the Client and its
// operations.
//
// # What this package must NOT do
//
//   - Carry plaintext credentials. Events reference the email only through
//     its SHA-256 digest.
//   - Import otpflow or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
