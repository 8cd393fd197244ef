package authcore

import (
	"errors"
	"time"
)

// Config is the full engine configuration. Zero values are filled in from
// defaultConfig by [Builder.Build]; the struct is treated as immutable after
// Build returns.
type Config struct {
	JWT          JWTConfig
	Token        TokenConfig
	Login        LoginConfig
	RateLimit    RateLimitConfig
	Verification VerificationConfig
	Password     PasswordConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

// JWTConfig controls access-token issuance and validation.
type JWTConfig struct {
	AccessTTL     time.Duration
	SigningMethod string // "ed25519" (default) or "hs256"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// TokenConfig controls refresh-token records.
//
// RetentionGrace extends the Redis TTL of a record past its logical expiry so
// rotated and revoked tokens remain visible for replay detection and audit.
type TokenConfig struct {
	RefreshTTL     time.Duration
	RetentionGrace time.Duration
	RedisPrefix    string
}

// LoginConfig bounds failed password attempts per identifier and, when a
// client IP is attached to the context, per IP.
type LoginConfig struct {
	MaxAttempts      int
	AttemptWindow    time.Duration
	EnableIPThrottle bool
}

// RateLimitConfig holds the fixed cooldown per action kind. An action is
// permitted only when the cooldown since the last recorded action for the
// same identifier has fully elapsed.
type RateLimitConfig struct {
	SendCodeCooldown time.Duration
	RedisPrefix      string
}

// VerificationConfig controls one-time-code issuance and checking.
type VerificationConfig struct {
	CodeTTL       time.Duration
	CodeDigits    int
	MaxAttempts   int
	AttemptWindow time.Duration
	RequireCaptcha bool
}

// PasswordConfig holds argon2id parameters.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     10 * time.Minute,
			SigningMethod: "ed25519",
			Leeway:        30 * time.Second,
		},
		Token: TokenConfig{
			RefreshTTL:     14 * 24 * time.Hour,
			RetentionGrace: 24 * time.Hour,
			RedisPrefix:    "rt",
		},
		Login: LoginConfig{
			MaxAttempts:      10,
			AttemptWindow:    15 * time.Minute,
			EnableIPThrottle: true,
		},
		RateLimit: RateLimitConfig{
			SendCodeCooldown: 60 * time.Second,
			RedisPrefix:      "cool",
		},
		Verification: VerificationConfig{
			CodeTTL:        10 * time.Minute,
			CodeDigits:     6,
			MaxAttempts:    5,
			AttemptWindow:  15 * time.Minute,
			RequireCaptcha: true,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if cfg.JWT.AccessTTL <= 0 {
		return errors.New("authcore: access TTL must be positive")
	}
	if len(cfg.JWT.PrivateKey) == 0 {
		// Signing-key absence is a configuration fault, never a runtime one.
		return errors.New("authcore: signing key is required")
	}
	if cfg.Token.RefreshTTL <= cfg.JWT.AccessTTL {
		return errors.New("authcore: refresh TTL must exceed access TTL")
	}
	if cfg.Token.RetentionGrace < 0 {
		return errors.New("authcore: retention grace must not be negative")
	}
	if cfg.RateLimit.SendCodeCooldown <= 0 {
		return errors.New("authcore: send-code cooldown must be positive")
	}
	if cfg.Verification.MaxAttempts <= 0 {
		return errors.New("authcore: max verification attempts must be positive")
	}
	if cfg.Verification.AttemptWindow <= 0 {
		return errors.New("authcore: verification attempt window must be positive")
	}
	if cfg.Verification.CodeDigits < 4 || cfg.Verification.CodeDigits > 10 {
		return errors.New("authcore: code digits must be between 4 and 10")
	}
	if cfg.Login.MaxAttempts <= 0 || cfg.Login.AttemptWindow <= 0 {
		return errors.New("authcore: login limiter configuration invalid")
	}
	return nil
}
