package otpflow

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	internalaudit "github.com/otpflow/otpflow/internal/audit"
	"github.com/otpflow/otpflow/internal/clock"
)

// Client defines a public type used by otpflow APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// The mutable login state is owned exclusively by the client; callers observe
// it through [Client.State] and [Client.Subscribe] snapshots.
type Client struct {
	config   Config
	http     *resty.Client
	logger   *zap.Logger
	clock    clock.Clocker
	audit    *auditDispatcher
	metrics  *Metrics
	validate *validator.Validate

	onSuccess SuccessHandler
	onError   ErrorHandler

	mu        sync.Mutex
	state     LoginState
	listeners map[uint64]Listener
	nextID    uint64
	destroyed bool

	codeTimer      *countdown
	rateLimitTimer *countdown
}

// State returns a defensive copy of the current login state, never the live
// record.
func (c *Client) State() LoginState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneState(c.state)
}

// Subscribe registers a listener that receives a state snapshot after every
// published change. The returned id unsubscribes it.
func (c *Client) Subscribe(listener Listener) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || listener == nil {
		return 0
	}
	c.nextID++
	id := c.nextID
	c.listeners[id] = listener
	return id
}

// Unsubscribe removes a previously registered listener. Unknown ids are
// ignored.
func (c *Client) Unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.listeners, id)
}

// SetEmail stores a trimmed, lowercased email. Pure synchronous setter; no
// validation beyond normalization happens here.
func (c *Client) SetEmail(email string) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	c.mutate(func(s *LoginState) {
		s.Email = normalized
	})
}

// SetCode stores the code with non-digits stripped, truncated to the
// configured OTP length.
func (c *Client) SetCode(code string) {
	normalized := normalizeCode(code, c.config.OTP.Digits)
	c.mutate(func(s *LoginState) {
		s.Code = normalized
	})
}

// GoBack returns from the OTP step to the email step. The code countdown
// stops, code and error surface are cleared, and the email is preserved.
// Calling it on the email step is a no-op.
func (c *Client) GoBack() {
	c.mutate(func(s *LoginState) {
		if s.Step != StepOtp {
			return
		}
		c.codeTimer.stop()
		s.Step = StepEmail
		s.Code = ""
		s.Loading = false
		s.Error = ""
		s.ErrorCode = ""
		s.ErrorDetails = nil
		s.CodeCountdown = 0
	})
}

// Reset returns the client to a pristine email step: all fields cleared and
// both countdowns stopped.
func (c *Client) Reset() {
	c.codeTimer.stop()
	c.rateLimitTimer.stop()
	c.mutate(func(s *LoginState) {
		*s = LoginState{Step: StepEmail}
	})
}

// Destroy stops both countdowns, discards all subscribers, and marks the
// client unusable. It is idempotent; late network results arriving after
// Destroy are silently discarded rather than resurrecting state.
func (c *Client) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.listeners = nil
	c.mu.Unlock()

	c.codeTimer.stop()
	c.rateLimitTimer.stop()

	c.emitAudit(context.Background(), auditEventDestroy, true, nil, nil)
	c.audit.Close()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return c.metrics.Snapshot()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// mutate applies a single atomic state update and fans the resulting snapshot
// out to subscribers. It reports false when the client is destroyed, in which
// case the update is discarded.
func (c *Client) mutate(fn func(s *LoginState)) bool {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return false
	}
	fn(&c.state)
	snapshot := cloneState(c.state)
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
	return true
}

// publishError is the single error-publication path shared by every failure
// category: one atomic state update, then the caller's error handler. No
// category bypasses it. extra, when non-nil, folds additional field changes
// (rate-limit bookkeeping) into the same atomic update. It reports false when
// the client was destroyed and the update was discarded.
func (c *Client) publishError(message, code string, details *RateLimitDetails, extra func(s *LoginState)) bool {
	alive := c.mutate(func(s *LoginState) {
		s.Loading = false
		s.Error = message
		s.ErrorCode = code
		s.ErrorDetails = details
		if extra != nil {
			extra(s)
		}
	})
	if alive && c.onError != nil {
		c.onError(message, code)
	}
	return alive
}

func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	err error,
	metadata func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	c.mu.Lock()
	email := c.state.Email
	step := c.state.Step.String()
	c.mu.Unlock()

	event := AuditEvent{
		Timestamp: c.clock.Now(),
		EventType: eventType,
		Step:      step,
		EmailHash: internalaudit.HashIdentifier(email),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	c.audit.Emit(ctx, event)
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Client) isDestroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

func normalizeCode(raw string, digits int) string {
	var b strings.Builder
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == digits {
			break
		}
	}
	return b.String()
}
