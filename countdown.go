package otpflow

import (
	"context"
	"sync"
	"time"
)

// countdown is the 1Hz engine behind both code-expiry and rate-limit timers.
// Each tick runs exactly one step under the owning client's state lock; the
// step reports whether the countdown should keep running. start on a running
// countdown stops the previous run first, so the same purpose never has two
// overlapping timers.
type countdown struct {
	interval time.Duration
	step     func() bool

	mu   sync.Mutex
	done chan struct{}
}

func newCountdown(interval time.Duration, step func() bool) *countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &countdown{
		interval: interval,
		step:     step,
	}
}

func (cd *countdown) start() {
	cd.stop()

	cd.mu.Lock()
	done := make(chan struct{})
	cd.done = done
	cd.mu.Unlock()

	go cd.run(done)
}

func (cd *countdown) run(done chan struct{}) {
	ticker := time.NewTicker(cd.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !cd.step() {
				cd.stopRun(done)
				return
			}
		case <-done:
			return
		}
	}
}

// stopRun closes done only when it is still the active run, so a restart
// between the tick and this call is never cancelled by the old goroutine.
func (cd *countdown) stopRun(done chan struct{}) {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	if cd.done == done {
		close(cd.done)
		cd.done = nil
	}
}

func (cd *countdown) stop() {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	if cd.done != nil {
		close(cd.done)
		cd.done = nil
	}
}

func (cd *countdown) running() bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.done != nil
}

// tickCode advances the code-expiry countdown by one second. Exposed as a
// client method so tests can drive simulated seconds without sleeping.
func (c *Client) tickCode() bool {
	var remaining int
	alive := c.mutate(func(s *LoginState) {
		if s.CodeCountdown > 0 {
			s.CodeCountdown--
		}
		remaining = s.CodeCountdown
	})
	if !alive {
		return false
	}
	if remaining == 0 {
		c.metricInc(MetricCodeExpired)
		c.emitAudit(context.Background(), auditEventCodeExpired, true, nil, nil)
		return false
	}
	return true
}

// tickRateLimit advances the rate-limit countdown by one second. Reaching
// zero is an event, not just a number: it clears the error surface and the
// reset timestamp so the UI un-blocks without any extra caller action.
func (c *Client) tickRateLimit() bool {
	var remaining int
	alive := c.mutate(func(s *LoginState) {
		if s.RateLimitCountdown > 0 {
			s.RateLimitCountdown--
		}
		remaining = s.RateLimitCountdown
		if remaining == 0 {
			s.Error = ""
			s.ErrorCode = ""
			s.ErrorDetails = nil
			s.RateLimitResetAt = ""
		}
	})
	if !alive {
		return false
	}
	if remaining == 0 {
		c.metricInc(MetricRateLimitLifted)
		return false
	}
	return true
}
