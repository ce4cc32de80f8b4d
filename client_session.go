package otpflow

import (
	"context"
	"fmt"
)

// WhoAmI describes the whoami operation and its observable behavior.
//
// WhoAmI may return an error when input validation, dependency calls, or security checks fail.
// WhoAmI does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) WhoAmI(ctx context.Context, token string) (*UserInfo, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.isDestroyed() {
		return nil, ErrClientDestroyed
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	status, body, err := c.getWithToken(ctx, c.config.Service.MePath, token)
	if err != nil {
		c.metricInc(MetricTransportFailure)
		c.emitAudit(ctx, auditEventWhoAmI, false, err, nil)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	reply := parseServerReply(status, body)
	if reply.kind != replySuccess {
		c.emitAudit(ctx, auditEventWhoAmI, false, ErrServerRejected, nil)
		return nil, fmt.Errorf("%w: %s", ErrServerRejected, reply.message)
	}

	c.metricInc(MetricWhoAmI)
	c.emitAudit(ctx, auditEventWhoAmI, true, nil, nil)
	return &UserInfo{
		UserID:      stringField(reply.body, "userId", "user_id", "id"),
		Email:       stringField(reply.body, "email"),
		DisplayName: stringField(reply.body, "name", "displayName", "display_name"),
		Raw:         reply.body,
	}, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Logout(ctx context.Context, token string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.isDestroyed() {
		return ErrClientDestroyed
	}
	if token == "" {
		return ErrMissingToken
	}

	status, body, err := c.postWithToken(ctx, c.config.Service.LogoutPath, token)
	if err != nil {
		c.metricInc(MetricTransportFailure)
		c.emitAudit(ctx, auditEventLogout, false, err, nil)
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	reply := parseServerReply(status, body)
	if reply.kind != replySuccess {
		c.emitAudit(ctx, auditEventLogout, false, ErrServerRejected, nil)
		return fmt.Errorf("%w: %s", ErrServerRejected, reply.message)
	}

	c.metricInc(MetricLogout)
	c.emitAudit(ctx, auditEventLogout, true, nil, nil)
	return nil
}
