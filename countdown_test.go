package otpflow

import (
	"testing"
	"time"
)

func TestTickCodeDecrementsAndExpires(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0")
	c.mutate(func(s *LoginState) {
		s.Step = StepOtp
		s.CodeCountdown = 3
	})

	for want := 2; want >= 1; want-- {
		if !c.tickCode() {
			t.Fatalf("tickCode stopped early at countdown %d", want)
		}
		if got := c.State().CodeCountdown; got != want {
			t.Fatalf("CodeCountdown = %d, want %d", got, want)
		}
	}

	if c.tickCode() {
		t.Error("tickCode kept running after reaching zero")
	}
	if got := c.State().CodeCountdown; got != 0 {
		t.Errorf("CodeCountdown = %d, want 0", got)
	}

	snap := c.MetricsSnapshot()
	if snap.Counters[MetricCodeExpired] != 1 {
		t.Errorf("expired counter = %d, want 1", snap.Counters[MetricCodeExpired])
	}
}

func TestTickRateLimitClearsErrorSurfaceAtZero(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0")
	c.mutate(func(s *LoginState) {
		s.Error = "Too many requests. Please try again in 2 seconds."
		s.ErrorCode = "RATE_LIMITED"
		s.ErrorDetails = &RateLimitDetails{Limit: 5, Scope: "email"}
		s.RateLimitResetAt = "2026-03-14T09:01:30Z"
		s.RateLimitCountdown = 2
	})

	if !c.tickRateLimit() {
		t.Fatal("tickRateLimit stopped with 1 second remaining")
	}
	mid := c.State()
	if mid.RateLimitCountdown != 1 {
		t.Fatalf("RateLimitCountdown = %d, want 1", mid.RateLimitCountdown)
	}
	if mid.Error == "" {
		t.Error("error cleared before countdown reached zero")
	}

	if c.tickRateLimit() {
		t.Error("tickRateLimit kept running after reaching zero")
	}

	state := c.State()
	if state.RateLimitCountdown != 0 {
		t.Errorf("RateLimitCountdown = %d, want 0", state.RateLimitCountdown)
	}
	if state.Error != "" || state.ErrorCode != "" || state.ErrorDetails != nil || state.RateLimitResetAt != "" {
		t.Errorf("error surface not cleared at zero: %+v", state)
	}

	snap := c.MetricsSnapshot()
	if snap.Counters[MetricRateLimitLifted] != 1 {
		t.Errorf("lifted counter = %d, want 1", snap.Counters[MetricRateLimitLifted])
	}
}

func TestTickAfterDestroyReportsStopped(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0")
	c.mutate(func(s *LoginState) {
		s.CodeCountdown = 10
		s.RateLimitCountdown = 10
	})
	c.Destroy()

	if c.tickCode() {
		t.Error("tickCode kept running on destroyed client")
	}
	if c.tickRateLimit() {
		t.Error("tickRateLimit kept running on destroyed client")
	}
}

func TestCountdownRunLoopStopsItself(t *testing.T) {
	b := New().
		WithConfig(testClientConfig("http://127.0.0.1:0")).
		withTickInterval(time.Millisecond)
	c, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(c.Destroy)

	c.mutate(func(s *LoginState) {
		s.Step = StepOtp
		s.CodeCountdown = 5
	})
	c.codeTimer.start()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State().CodeCountdown == 0 && !c.codeTimer.running() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("countdown did not run to zero and stop: countdown=%d running=%v",
		c.State().CodeCountdown, c.codeTimer.running())
}

func TestCountdownStartStopsPreviousRun(t *testing.T) {
	cd := newCountdown(time.Hour, func() bool { return true })
	cd.start()
	first := cd.done

	cd.start()
	if cd.done == first {
		t.Error("restart reused the previous run channel")
	}
	select {
	case <-first:
	default:
		t.Error("previous run channel not closed on restart")
	}

	cd.stop()
	if cd.running() {
		t.Error("countdown reports running after stop")
	}
	cd.stop() // idempotent
}
