package otel

import (
	"context"
	"errors"
	"fmt"

	otpflow "github.com/otpflow/otpflow"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// CounterDef defines a public type used by otpflow APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   otpflow.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the login client.
var CounterDefs = []CounterDef{
	{ID: otpflow.MetricRequestCodeSuccess, Name: "otpflow_request_code_success_total", Help: "Successful code requests."},
	{ID: otpflow.MetricRequestCodeFailure, Name: "otpflow_request_code_failure_total", Help: "Server-rejected code requests."},
	{ID: otpflow.MetricRequestCodeRateLimited, Name: "otpflow_request_code_rate_limited_total", Help: "Rate-limited code requests."},
	{ID: otpflow.MetricVerifySuccess, Name: "otpflow_verify_success_total", Help: "Successful code verifications."},
	{ID: otpflow.MetricVerifyFailure, Name: "otpflow_verify_failure_total", Help: "Failed code verifications."},
	{ID: otpflow.MetricValidationFailure, Name: "otpflow_validation_failure_total", Help: "Local input validation failures."},
	{ID: otpflow.MetricEncryptionFailure, Name: "otpflow_encryption_failure_total", Help: "Envelope seal or self-check failures."},
	{ID: otpflow.MetricTransportFailure, Name: "otpflow_transport_failure_total", Help: "Transport-level request failures."},
	{ID: otpflow.MetricCodeExpired, Name: "otpflow_code_expired_total", Help: "Codes that expired before verification."},
	{ID: otpflow.MetricRateLimitLifted, Name: "otpflow_rate_limit_lifted_total", Help: "Rate-limit countdowns that reached zero."},
	{ID: otpflow.MetricLogout, Name: "otpflow_logout_total", Help: "Logout operations."},
	{ID: otpflow.MetricWhoAmI, Name: "otpflow_whoami_total", Help: "WhoAmI lookups."},
}

type metricsSource interface {
	MetricsSnapshot() otpflow.MetricsSnapshot
	AuditDropped() uint64
}

type observedCounter struct {
	id         otpflow.MetricID
	instrument metric.Int64ObservableCounter
}

type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []observedCounter
	auditDropped metric.Int64ObservableCounter
}

func NewOTelExporter(meter metric.Meter, client *otpflow.Client) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, client)
}

func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{
		source:   source,
		counters: make([]observedCounter, 0, len(CounterDefs)),
	}

	observables := make([]metric.Observable, 0, len(CounterDefs)+1)

	for _, def := range CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	auditDropped, err := meter.Int64ObservableCounter(
		"otpflow_audit_dropped_total",
		metric.WithDescription("Dropped audit events due to dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	exporter.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		snapshot := exporter.source.MetricsSnapshot()
		for _, c := range exporter.counters {
			observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
		}
		observer.ObserveInt64(exporter.auditDropped, int64(exporter.source.AuditDropped()))
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
