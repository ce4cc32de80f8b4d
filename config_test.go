package otpflow

import (
	"strings"
	"testing"
)

func validTestConfig() Config {
	cfg := defaultConfig()
	cfg.Service.BaseURL = "https://auth.example.com"
	cfg.Encryption.Key = strings.Repeat("k", 32)
	return cfg
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing base url", func(c *Config) { c.Service.BaseURL = "" }, true},
		{"relative base url", func(c *Config) { c.Service.BaseURL = "auth.example.com" }, true},
		{"path without slash", func(c *Config) { c.Service.VerifyPath = "auth/verify-otp" }, true},
		{"short key", func(c *Config) { c.Encryption.Key = strings.Repeat("k", 31) }, true},
		{"digits too small", func(c *Config) { c.OTP.Digits = 3 }, true},
		{"digits too large", func(c *Config) { c.OTP.Digits = 13 }, true},
		{"zero code ttl", func(c *Config) { c.OTP.CodeTTL = 0 }, true},
		{"zero timeout", func(c *Config) { c.Transport.Timeout = 0 }, true},
		{"negative retries", func(c *Config) { c.Transport.RetryCount = -1 }, true},
		{"audit enabled zero buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}, true},
		{"audit disabled zero buffer ok", func(c *Config) {
			c.Audit.Enabled = false
			c.Audit.BufferSize = 0
		}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("Validate accepted an invalid config")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Validate rejected a valid config: %v", err)
			}
		})
	}
}

func TestCloneConfigCopiesHeaders(t *testing.T) {
	cfg := validTestConfig()
	cfg.Service.Headers = map[string]string{"X-Tenant": "acme"}

	clone := cloneConfig(cfg)
	clone.Service.Headers["X-Tenant"] = "evil"

	if cfg.Service.Headers["X-Tenant"] != "acme" {
		t.Error("cloneConfig shares the headers map with the source")
	}
}

func TestDefaultConfigIsCopy(t *testing.T) {
	a := DefaultConfig()
	a.OTP.Digits = 4
	if b := DefaultConfig(); b.OTP.Digits != 9 {
		t.Errorf("DefaultConfig leaked mutation: Digits = %d", b.OTP.Digits)
	}
}
