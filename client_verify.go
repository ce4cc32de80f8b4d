package otpflow

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type verifyCodePayload struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyCode describes the verifycode operation and its observable behavior.
//
// VerifyCode may return an error when input validation, dependency calls, or security checks fail.
// VerifyCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) VerifyCode(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.isDestroyed() {
		return ErrClientDestroyed
	}

	snapshot := c.State()
	if snapshot.Step != StepOtp {
		return ErrWrongStep
	}
	digits := c.config.OTP.Digits
	if !isNumericString(snapshot.Code) || len(snapshot.Code) != digits {
		c.metricInc(MetricValidationFailure)
		c.publishError(
			fmt.Sprintf("Please enter the full %d-digit code sent to your email", digits),
			codeInvalidCode, nil, nil,
		)
		c.emitAudit(ctx, auditEventVerifyCode, false, ErrInvalidCode, nil)
		return ErrInvalidCode
	}

	c.mutate(func(s *LoginState) {
		s.Loading = true
		s.Error = ""
		s.ErrorCode = ""
		s.ErrorDetails = nil
	})

	sealed, err := c.sealPayload(verifyCodePayload{Email: snapshot.Email, OTP: snapshot.Code})
	if err != nil {
		c.metricInc(MetricEncryptionFailure)
		c.publishError("Could not secure your request. Please contact support.", codeEncryptionFailed, nil, nil)
		c.emitAudit(ctx, auditEventVerifyCode, false, err, nil)
		return err
	}

	status, body, err := c.postSealed(ctx, c.config.Service.VerifyPath, sealed)
	if err != nil {
		message, code := transportMessage(err)
		c.metricInc(MetricTransportFailure)
		c.publishError(message, code, nil, nil)
		c.emitAudit(ctx, auditEventVerifyCode, false, err, nil)
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	reply := parseServerReply(status, body)
	if reply.kind != replySuccess {
		// A failed verification keeps the flow on the OTP step; the user can
		// retype the code or go back for a fresh one.
		c.metricInc(MetricVerifyFailure)
		c.publishError(reply.message, reply.code, nil, nil)
		c.emitAudit(ctx, auditEventVerifyCode, false, ErrServerRejected, func() map[string]string {
			return map[string]string{
				"status": fmt.Sprintf("%d", reply.status),
				"code":   reply.code,
			}
		})
		return fmt.Errorf("%w: %s", ErrServerRejected, reply.message)
	}

	result, err := normalizeVerifyResult(reply.body, snapshot.Email)
	if err != nil {
		c.metricInc(MetricVerifyFailure)
		c.publishError("Login response was invalid. Please try again.", codeMalformedResponse, nil, nil)
		c.emitAudit(ctx, auditEventVerifyCode, false, err, nil)
		return err
	}

	c.codeTimer.stop()
	alive := c.mutate(func(s *LoginState) {
		s.Loading = false
		s.Error = ""
		s.ErrorCode = ""
		s.ErrorDetails = nil
		s.CodeCountdown = 0
	})
	if !alive {
		// Destroyed while the request was in flight; the late result is
		// discarded and the success handler never sees it.
		return ErrClientDestroyed
	}

	c.metricInc(MetricVerifySuccess)
	c.emitAudit(ctx, auditEventVerifyCode, true, nil, nil)
	c.logger.Debug("otp code verified", zap.String("user_id", result.UserID))

	// Persistence of the token belongs to the handler; the machine itself has
	// no logged-in state.
	if c.onSuccess != nil {
		c.onSuccess(result)
	}
	return nil
}

// normalizeVerifyResult maps the loosely-typed verify body onto the success
// payload. Token and email are required; the expiry falls back to the JWT exp
// claim (parsed unverified — signature checks are the server's job).
func normalizeVerifyResult(body map[string]any, stateEmail string) (VerifyResult, error) {
	token := stringField(body, "token", "access_token", "accessToken")
	if token == "" {
		return VerifyResult{}, fmt.Errorf("%w: %w", ErrMalformedResponse, ErrMissingToken)
	}

	result := VerifyResult{
		Token:       token,
		Email:       stringField(body, "email"),
		UserID:      stringField(body, "userId", "user_id", "id"),
		DisplayName: stringField(body, "name", "displayName", "display_name"),
		Raw:         body,
	}
	if result.Email == "" {
		result.Email = stateEmail
	}

	if raw := stringField(body, "expires_at", "expiresAt"); raw != "" {
		if expiresAt, err := time.Parse(time.RFC3339, raw); err == nil {
			result.ExpiresAt = expiresAt
		}
	}
	if result.ExpiresAt.IsZero() {
		if expiresAt, ok := tokenExpiry(token); ok {
			result.ExpiresAt = expiresAt
		}
	}
	return result, nil
}

func tokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func isNumericString(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
