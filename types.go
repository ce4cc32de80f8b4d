package otpflow

import (
	"io"
	"time"

	internalaudit "github.com/otpflow/otpflow/internal/audit"
)

// Step represents the stage of the two-step login flow.
type Step uint8

const (
	// StepEmail is an exported constant or variable used by the login client.
	StepEmail Step = iota
	// StepOtp is an exported constant or variable used by the login client.
	StepOtp
)

// String returns the wire/display name of the step.
func (s Step) String() string {
	switch s {
	case StepOtp:
		return "otp"
	default:
		return "email"
	}
}

// LoginState is the single mutable record owned by a [Client]. Subscribers
// always receive a defensive copy; mutating a received snapshot has no effect
// on the client.
type LoginState struct {
	Step    Step
	Email   string
	Code    string
	Loading bool

	Error        string
	ErrorCode    string
	ErrorDetails *RateLimitDetails

	// CodeCountdown is the seconds remaining until the issued code expires.
	// Zero means not counting.
	CodeCountdown int

	// RateLimitResetAt is the server-authoritative reset time, retained only
	// for display. RateLimitCountdown is the only value the tick loop
	// decrements; it is never recomputed from RateLimitResetAt after
	// initialization.
	RateLimitResetAt   string
	RateLimitCountdown int
}

// RateLimitDetails carries the structured rate_limit_details object a 429
// response may include. All fields are optional.
type RateLimitDetails struct {
	Limit      int    `json:"limit,omitempty"`
	Remaining  int    `json:"remaining,omitempty"`
	WindowSecs int    `json:"window_seconds,omitempty"`
	Scope      string `json:"scope,omitempty"`
}

// VerifyResult is the normalized success payload passed to the success
// handler after VerifyCode. Raw preserves the decoded response body so
// callers can reach fields this client does not model.
type VerifyResult struct {
	Token       string
	Email       string
	UserID      string
	DisplayName string
	ExpiresAt   time.Time
	Raw         map[string]any
}

// UserInfo is returned by [Client.WhoAmI].
type UserInfo struct {
	UserID      string
	Email       string
	DisplayName string
	Raw         map[string]any
}

// Listener receives a state snapshot after every published state change.
type Listener func(state LoginState)

// SuccessHandler receives the normalized verify payload. Persistence of the
// token is the handler's responsibility, never the client's.
type SuccessHandler func(result VerifyResult)

// ErrorHandler receives the resolved user-facing message and the optional
// machine-readable code for every failure category.
type ErrorHandler func(message, code string)

// AuditEvent is a structured audit record emitted by the client.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the client's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

func cloneState(s LoginState) LoginState {
	out := s
	if s.ErrorDetails != nil {
		details := *s.ErrorDetails
		out.ErrorDetails = &details
	}
	return out
}
