package otpflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type requestCodePayload struct {
	Email string `json:"email"`
}

// RequestCode describes the requestcode operation and its observable behavior.
//
// RequestCode may return an error when input validation, dependency calls, or security checks fail.
// RequestCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) RequestCode(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.isDestroyed() {
		return ErrClientDestroyed
	}

	email := c.State().Email
	if err := c.validate.Var(email, "required,email"); err != nil {
		c.metricInc(MetricValidationFailure)
		c.publishError("Please enter a valid email address", codeInvalidEmail, nil, nil)
		c.emitAudit(ctx, auditEventRequestCode, false, ErrInvalidEmail, nil)
		return ErrInvalidEmail
	}

	c.mutate(func(s *LoginState) {
		s.Loading = true
		s.Error = ""
		s.ErrorCode = ""
		s.ErrorDetails = nil
	})

	sealed, err := c.sealPayload(requestCodePayload{Email: email})
	if err != nil {
		// Plaintext is never a fallback: a failed seal or self-check aborts
		// before any network I/O.
		c.metricInc(MetricEncryptionFailure)
		c.publishError("Could not secure your request. Please contact support.", codeEncryptionFailed, nil, nil)
		c.emitAudit(ctx, auditEventRequestCode, false, err, nil)
		return err
	}

	status, body, err := c.postSealed(ctx, c.config.Service.RequestPath, sealed)
	if err != nil {
		message, code := transportMessage(err)
		c.metricInc(MetricTransportFailure)
		c.publishError(message, code, nil, nil)
		c.emitAudit(ctx, auditEventRequestCode, false, err, nil)
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	reply := parseServerReply(status, body)
	switch reply.kind {
	case replySuccess:
		lifetime := int(c.config.OTP.CodeTTL / time.Second)
		alive := c.mutate(func(s *LoginState) {
			s.Step = StepOtp
			s.Loading = false
			s.Error = ""
			s.ErrorCode = ""
			s.ErrorDetails = nil
			s.CodeCountdown = lifetime
			s.RateLimitCountdown = 0
			s.RateLimitResetAt = ""
		})
		if !alive {
			// Destroyed while the request was in flight; the late result must
			// not restart timers on a dead client.
			return ErrClientDestroyed
		}
		c.codeTimer.start()
		c.metricInc(MetricRequestCodeSuccess)
		c.emitAudit(ctx, auditEventRequestCode, true, nil, nil)
		c.logger.Debug("otp code requested",
			zap.Int("status", status),
			zap.Int("code_lifetime_seconds", lifetime),
		)
		return nil

	case replyRateLimit:
		c.handleRateLimit(ctx, reply)
		return ErrRateLimited

	default:
		c.rateLimitTimer.stop()
		c.metricInc(MetricRequestCodeFailure)
		c.publishError(reply.message, reply.code, nil, func(s *LoginState) {
			s.RateLimitCountdown = 0
			s.RateLimitResetAt = ""
		})
		c.emitAudit(ctx, auditEventRequestCode, false, ErrServerRejected, func() map[string]string {
			return map[string]string{
				"status": fmt.Sprintf("%d", reply.status),
				"code":   reply.code,
			}
		})
		return fmt.Errorf("%w: %s", ErrServerRejected, reply.message)
	}
}

// handleRateLimit installs the 429 verdict: it prefers the server's explicit
// retry seconds over a delta computed from the reset timestamp, so client
// clock skew never stretches or shrinks the cool-down.
func (c *Client) handleRateLimit(ctx context.Context, reply serverReply) {
	seconds := reply.retryAfter
	if seconds <= 0 && reply.resetAt != "" {
		if resetAt, err := time.Parse(time.RFC3339, reply.resetAt); err == nil {
			seconds = int(resetAt.Sub(c.clock.Now()) / time.Second)
		}
	}
	if seconds < 0 {
		seconds = 0
	}

	message := reply.message
	if !messageFromBody(reply) && seconds > 0 {
		message = "Too many requests. Please try again in " + FormatRateLimitCountdown(seconds) + "."
	}

	c.metricInc(MetricRequestCodeRateLimited)
	alive := c.publishError(message, reply.code, reply.details, func(s *LoginState) {
		s.RateLimitResetAt = reply.resetAt
		s.RateLimitCountdown = seconds
	})
	if alive && seconds > 0 {
		c.rateLimitTimer.start()
	}
	c.emitAudit(ctx, auditEventRateLimited, false, ErrRateLimited, func() map[string]string {
		return map[string]string{
			"retry_seconds": fmt.Sprintf("%d", seconds),
			"reset_at":      reply.resetAt,
		}
	})
	c.logger.Debug("request rate limited",
		zap.Int("retry_seconds", seconds),
		zap.String("reset_at", reply.resetAt),
	)
}

// messageFromBody reports whether the reply message came from the response
// body rather than the synthetic status fallback.
func messageFromBody(reply serverReply) bool {
	return stringField(reply.body, "detail", "error", "title") != ""
}
