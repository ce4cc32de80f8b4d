package otpflow

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config defines a public type used by otpflow APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Service    ServiceConfig
	Encryption EncryptionConfig
	OTP        OTPConfig
	Transport  TransportConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
SERVICE CONFIG
====================================
*/

// ServiceConfig defines a public type used by otpflow APIs.
//
// ServiceConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ServiceConfig struct {
	BaseURL     string
	RequestPath string // default "/auth/request-otp"
	VerifyPath  string // default "/auth/verify-otp"
	MePath      string // default "/auth/me"
	LogoutPath  string // default "/auth/logout"

	// APIKey is sent as the X-OTP-API-Key header, never as Authorization.
	APIKey string

	// Headers are merged into every request after the defaults, so a caller
	// header wins over a default of the same name.
	Headers map[string]string
}

/*
====================================
ENCRYPTION CONFIG
====================================
*/

// EncryptionConfig defines a public type used by otpflow APIs.
//
// EncryptionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EncryptionConfig struct {
	// Key is the pre-shared key the remote service derives the same AES key
	// from. Must be at least 32 characters; shorter keys abort operations
	// before any network I/O.
	Key string
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig defines a public type used by otpflow APIs.
//
// OTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPConfig struct {
	// Digits is the exact code length the service issues. SetCode truncates
	// to this length and VerifyCode requires it exactly.
	Digits int

	// CodeTTL is the code lifetime started on a successful RequestCode.
	CodeTTL time.Duration
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig defines a public type used by otpflow APIs.
//
// TransportConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TransportConfig struct {
	Timeout    time.Duration
	RetryCount int // transport-level retries for connection errors only; never retries 4xx/5xx
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by otpflow APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by otpflow APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. BaseURL and the
// encryption key are intentionally empty; every embedding must supply them.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			RequestPath: "/auth/request-otp",
			VerifyPath:  "/auth/verify-otp",
			MePath:      "/auth/me",
			LogoutPath:  "/auth/logout",
		},
		OTP: OTPConfig{
			Digits:  9,
			CodeTTL: 10 * time.Minute,
		},
		Transport: TransportConfig{
			Timeout: 15 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if len(cfg.Service.Headers) > 0 {
		out.Service.Headers = make(map[string]string, len(cfg.Service.Headers))
		for k, v := range cfg.Service.Headers {
			out.Service.Headers[k] = v
		}
	}
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Service
	if strings.TrimSpace(c.Service.BaseURL) == "" {
		return errors.New("Service BaseURL is required")
	}
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("Service BaseURL must be an absolute URL")
	}
	for _, p := range []string{c.Service.RequestPath, c.Service.VerifyPath, c.Service.MePath, c.Service.LogoutPath} {
		if !strings.HasPrefix(p, "/") {
			return errors.New("Service paths must start with '/'")
		}
	}

	// Encryption
	if len(c.Encryption.Key) < 32 {
		return ErrEncryptionKeyInvalid
	}

	// OTP
	if c.OTP.Digits < 4 || c.OTP.Digits > 12 {
		return errors.New("OTP Digits must be between 4 and 12")
	}
	if c.OTP.CodeTTL <= 0 {
		return errors.New("OTP CodeTTL must be > 0")
	}

	// Transport
	if c.Transport.Timeout <= 0 {
		return errors.New("Transport Timeout must be > 0")
	}
	if c.Transport.RetryCount < 0 {
		return errors.New("Transport RetryCount must be >= 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}
