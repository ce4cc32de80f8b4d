package otpflow

import "errors"

var (
	// ErrInvalidEmail is an exported constant or variable used by the login client.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidCode is an exported constant or variable used by the login client.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrEncryptionKeyInvalid is an exported constant or variable used by the login client.
	ErrEncryptionKeyInvalid = errors.New("encryption key missing or too short")
	// ErrEnvelopeNotSealed is an exported constant or variable used by the login client.
	ErrEnvelopeNotSealed = errors.New("request envelope failed encryption self-check")
	// ErrRateLimited is an exported constant or variable used by the login client.
	ErrRateLimited = errors.New("request rate limited")
	// ErrServerRejected is an exported constant or variable used by the login client.
	ErrServerRejected = errors.New("server rejected request")
	// ErrTransport is an exported constant or variable used by the login client.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedResponse is an exported constant or variable used by the login client.
	ErrMalformedResponse = errors.New("malformed server response")
	// ErrClientDestroyed is an exported constant or variable used by the login client.
	ErrClientDestroyed = errors.New("client already destroyed")
	// ErrWrongStep is an exported constant or variable used by the login client.
	ErrWrongStep = errors.New("command not legal in current step")
	// ErrMissingToken is an exported constant or variable used by the login client.
	ErrMissingToken = errors.New("missing access token")
	// ErrBuilderUsed is an exported constant or variable used by the login client.
	ErrBuilderUsed = errors.New("builder already used")
)
