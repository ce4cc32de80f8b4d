package otpflow

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/otpflow/otpflow/internal/clock"
)

// Builder defines a public type used by otpflow APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	http   *resty.Client
	logger *zap.Logger
	clk    clock.Clocker

	auditSink AuditSink
	onSuccess SuccessHandler
	onError   ErrorHandler

	tickInterval time.Duration

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config:       defaultConfig(),
		tickInterval: time.Second,
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithHTTPClient describes the withhttpclient operation and its observable behavior.
//
// WithHTTPClient may return an error when input validation, dependency calls, or security checks fail.
// WithHTTPClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithHTTPClient(client *resty.Client) *Builder {
	b.http = client
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
//
// WithLogger may return an error when input validation, dependency calls, or security checks fail.
// WithLogger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock describes the withclock operation and its observable behavior.
//
// WithClock may return an error when input validation, dependency calls, or security checks fail.
// WithClock does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithClock(clk clock.Clocker) *Builder {
	b.clk = clk
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// OnSuccess describes the onsuccess operation and its observable behavior.
//
// OnSuccess may return an error when input validation, dependency calls, or security checks fail.
// OnSuccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) OnSuccess(handler SuccessHandler) *Builder {
	b.onSuccess = handler
	return b
}

// OnError describes the onerror operation and its observable behavior.
//
// OnError may return an error when input validation, dependency calls, or security checks fail.
// OnError does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) OnError(handler ErrorHandler) *Builder {
	b.onError = handler
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// withTickInterval overrides the countdown tick period. Tests use it to tick
// fast; the flow semantics stay 1 decrement per tick regardless of interval.
func (b *Builder) withTickInterval(interval time.Duration) *Builder {
	b.tickInterval = interval
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	b.built = true

	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.clk == nil {
		b.clk = clock.New()
	}
	if b.http == nil {
		b.http = newHTTPClient(b.config)
	}

	c := &Client{
		config:    b.config,
		http:      b.http,
		logger:    b.logger,
		clock:     b.clk,
		metrics:   NewMetrics(b.config.Metrics),
		validate:  validator.New(),
		onSuccess: b.onSuccess,
		onError:   b.onError,
		state:     LoginState{Step: StepEmail},
		listeners: make(map[uint64]Listener),
	}
	c.audit = newAuditDispatcher(b.config.Audit, b.auditSink)
	c.codeTimer = newCountdown(b.tickInterval, c.tickCode)
	c.rateLimitTimer = newCountdown(b.tickInterval, c.tickRateLimit)

	return c, nil
}
