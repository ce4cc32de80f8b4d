package otpflow

import (
	"context"
	"encoding/json"
	"errors"
	"net"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/otpflow/otpflow/internal/envelope"
)

// Transport error codes surfaced through the error-publication path.
const (
	codeTimeout           = "TIMEOUT"
	codeNetworkError      = "NETWORK_ERROR"
	codeCanceled          = "CANCELED"
	codeRequestFailed     = "REQUEST_FAILED"
	codeEncryptionFailed  = "ENCRYPTION_FAILED"
	codeInvalidEmail      = "INVALID_EMAIL"
	codeInvalidCode       = "INVALID_CODE"
	codeMalformedResponse = "MALFORMED_RESPONSE"
)

func newHTTPClient(cfg Config) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.Service.BaseURL).
		SetTimeout(cfg.Transport.Timeout).
		SetHeader("Content-Type", "application/json")

	if cfg.Service.APIKey != "" {
		// API keys ride in X-OTP-API-Key; Authorization is reserved for the
		// bearer token on /auth/me and /auth/logout.
		client.SetHeader("X-OTP-API-Key", cfg.Service.APIKey)
	}
	for name, value := range cfg.Service.Headers {
		client.SetHeader(name, value)
	}

	if cfg.Transport.RetryCount > 0 {
		client.SetRetryCount(cfg.Transport.RetryCount)
		client.AddRetryCondition(func(r *resty.Response, err error) bool {
			// Retries cover connection-level failures only. Server verdicts,
			// including 429, must reach the flow exactly once.
			return err != nil
		})
	}

	return client
}

// sealPayload serializes payload, seals it, re-parses the serialized envelope
// and refuses to hand back anything that fails the encrypted self-check.
func (c *Client) sealPayload(payload any) ([]byte, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	env, err := envelope.Seal(plaintext, c.config.Encryption.Key, c.clock.Now())
	if err != nil {
		if errors.Is(err, envelope.ErrKeyTooShort) {
			return nil, ErrEncryptionKeyInvalid
		}
		return nil, err
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	if !envelope.IsSealed(raw) {
		return nil, ErrEnvelopeNotSealed
	}
	return raw, nil
}

func (c *Client) postSealed(ctx context.Context, path string, raw []byte) (int, []byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		SetBody(raw).
		Post(path)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode(), resp.Body(), nil
}

func (c *Client) getWithToken(ctx context.Context, path, token string) (int, []byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		SetAuthToken(token).
		Get(path)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode(), resp.Body(), nil
}

func (c *Client) postWithToken(ctx context.Context, path, token string) (int, []byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()).
		SetAuthToken(token).
		Post(path)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode(), resp.Body(), nil
}

// transportMessage maps a transport-level failure to a human-readable
// category. CORS rejections only exist in browser runtimes, so they collapse
// into the network category here.
func transportMessage(err error) (message, code string) {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out. Please try again.", codeTimeout
	case errors.Is(err, context.Canceled):
		return "Request was canceled.", codeCanceled
	case errors.As(err, &netErr) && netErr.Timeout():
		return "Request timed out. Please try again.", codeTimeout
	case isConnectivityError(err):
		return "Network error. Please check your connection and try again.", codeNetworkError
	default:
		return "Something went wrong. Please try again.", codeRequestFailed
	}
}

func isConnectivityError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
