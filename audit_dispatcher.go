package otpflow

import (
	"context"
	"sync"
	"sync/atomic"
)

// Audit event types emitted by the login flow.
const (
	auditEventRequestCode = "request_code"
	auditEventVerifyCode  = "verify_code"
	auditEventRateLimited = "rate_limited"
	auditEventCodeExpired = "code_expired"
	auditEventWhoAmI      = "whoami"
	auditEventLogout      = "logout"
	auditEventDestroy     = "destroy"
)

// auditDispatcher moves audit events from the login flow to the configured
// sink on a dedicated goroutine, so a slow sink never stalls a state
// transition. A nil dispatcher is valid and drops everything.
type auditDispatcher struct {
	sink       AuditSink
	queue      chan AuditEvent
	quit       chan struct{}
	dropIfFull bool

	worker    sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}

	d := &auditDispatcher{
		sink:       sink,
		queue:      make(chan AuditEvent, buffer),
		quit:       make(chan struct{}),
		dropIfFull: cfg.DropIfFull,
	}
	d.worker.Add(1)
	go d.dispatch()
	return d
}

func (d *auditDispatcher) dispatch() {
	defer d.worker.Done()
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			d.drain()
			return
		}
	}
}

// drain flushes whatever is already queued at close time. Events arriving
// after Close are rejected in Emit, so this terminates.
func (d *auditDispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit enqueues one event. With DropIfFull set it never blocks, counting
// overflow in Dropped; otherwise it waits until the queue accepts the event,
// the context ends, or the dispatcher closes.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		case <-d.quit:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close stops the worker after flushing queued events. Safe to call more than
// once.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.quit)
		d.worker.Wait()
	})
}

// Dropped reports how many events DropIfFull mode has discarded so far.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
