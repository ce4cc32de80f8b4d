// Package envelope seals credential payloads into the versioned encrypted
// container the remote OTP service expects.
//
// # Scheme (fixed for interoperability)
//
//   - PBKDF2-SHA256, 100 000 iterations, fresh 16-byte salt → 32-byte AES key
//   - AES-256-GCM with a fresh 12-byte IV over the JSON plaintext
//   - SHA-256 of the raw pre-shared key as keyHash, for server-side key
//     identification only — it never decrypts anything
//   - all binary fields base64, standard encoding
//
// Any divergence from these parameters is a silent integration failure on the
// receiving side, which is why [Open] exists: conformance tests round-trip
// through the exact scheme instead of trusting field presence.
//
// # What this package must NOT do
//
//   - Fall back to plaintext. A short key fails with [ErrKeyTooShort] and the
//     caller must abort the request.
//   - Reuse salt or IV between calls.
//   - Import otpflow or any sibling internal package.
package envelope
