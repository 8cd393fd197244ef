package authcore

import (
	"strings"
	"testing"
	"time"
)

func TestBuildRequiresSigningKey(t *testing.T) {
	mr, rdb := newTestRedis(t)
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	cfg := testConfig()
	cfg.JWT.PrivateKey = nil

	_, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithSubjectStore(newFakeSubjectStore()).
		WithCaptcha(&fakeCaptcha{ok: true}).
		WithCodeSender(&fakeSender{}).
		Build()
	if err == nil || !strings.Contains(err.Error(), "signing key") {
		t.Fatalf("expected signing key error, got %v", err)
	}
}

func TestBuildRequiresRedis(t *testing.T) {
	_, err := New().
		WithConfig(testConfig()).
		WithSubjectStore(newFakeSubjectStore()).
		WithCaptcha(&fakeCaptcha{ok: true}).
		WithCodeSender(&fakeSender{}).
		Build()
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Fatalf("expected redis error, got %v", err)
	}
}

func TestBuildRequiresCaptchaWhenEnabled(t *testing.T) {
	mr, rdb := newTestRedis(t)
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	_, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithSubjectStore(newFakeSubjectStore()).
		WithCodeSender(&fakeSender{}).
		Build()
	if err == nil || !strings.Contains(err.Error(), "captcha") {
		t.Fatalf("expected captcha error, got %v", err)
	}
}

func TestBuildFillsDefaults(t *testing.T) {
	mr, rdb := newTestRedis(t)
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	cfg := Config{
		JWT: JWTConfig{
			SigningMethod: "hs256",
			PrivateKey:    []byte("test-secret-key-for-hs256-signing"),
		},
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithSubjectStore(newFakeSubjectStore()).
		WithCaptcha(&fakeCaptcha{ok: true}).
		WithCodeSender(&fakeSender{}).
		Build()
	if err != nil {
		t.Fatalf("Build with partial config failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if engine.config.JWT.AccessTTL != 10*time.Minute {
		t.Fatalf("expected default access TTL, got %v", engine.config.JWT.AccessTTL)
	}
	if engine.config.Verification.CodeDigits != 6 {
		t.Fatalf("expected default code digits, got %d", engine.config.Verification.CodeDigits)
	}
	if engine.config.Token.RedisPrefix != "rt" {
		t.Fatalf("expected default token prefix, got %q", engine.config.Token.RedisPrefix)
	}
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative access TTL", func(c *Config) { c.JWT.AccessTTL = -time.Minute }},
		{"refresh not exceeding access", func(c *Config) { c.Token.RefreshTTL = c.JWT.AccessTTL }},
		{"negative retention grace", func(c *Config) { c.Token.RetentionGrace = -time.Hour }},
		{"code digits too small", func(c *Config) { c.Verification.CodeDigits = 3 }},
		{"code digits too large", func(c *Config) { c.Verification.CodeDigits = 11 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if err := validateConfig(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
