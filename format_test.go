package otpflow

import "testing"

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{9, "0:09"},
		{59, "0:59"},
		{60, "1:00"},
		{90, "1:30"},
		{600, "10:00"},
		{3661, "61:01"},
	}

	for _, tc := range cases {
		if got := FormatCountdown(tc.seconds); got != tc.want {
			t.Errorf("FormatCountdown(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestFormatRateLimitCountdown(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "0 seconds"},
		{-1, "0 seconds"},
		{1, "1 second"},
		{30, "30 seconds"},
		{60, "1 minute"},
		{61, "1 minute and 1 second"},
		{90, "1 minute and 30 seconds"},
		{120, "2 minutes"},
		{3600, "1 hour"},
		{3605, "1 hour"},
		{3661, "1 hour and 1 minute"},
		{7322, "2 hours and 2 minutes"},
	}

	for _, tc := range cases {
		if got := FormatRateLimitCountdown(tc.seconds); got != tc.want {
			t.Errorf("FormatRateLimitCountdown(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
