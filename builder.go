package authcore

import (
	"errors"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/cafeplatform/authcore/internal/audit"
	"github.com/cafeplatform/authcore/internal/limiters"
	internalmetrics "github.com/cafeplatform/authcore/internal/metrics"
	"github.com/cafeplatform/authcore/internal/rate"
	"github.com/cafeplatform/authcore/internal/stores"
	"github.com/cafeplatform/authcore/jwt"
	"github.com/cafeplatform/authcore/password"
	"github.com/cafeplatform/authcore/permission"
	"github.com/cafeplatform/authcore/tokenstore"
)

// Builder assembles an [Engine]. Construction is allocation-only; nothing
// touches Redis until the first Engine method call.
type Builder struct {
	config    Config
	hasConfig bool
	redis     redis.UniversalClient

	permTable *permission.Table

	subjects SubjectStore
	captcha  CaptchaVerifier
	sender   CodeSender

	auditSink AuditSink
}

// New starts a Builder with defaults.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the default configuration. Zero-valued sections keep
// their defaults at Build time.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	b.hasConfig = true
	return b
}

// WithRedis sets the Redis client backing all shared keyed state.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPermissionTable overrides the static role table. The default is
// [permission.DefaultTable].
func (b *Builder) WithPermissionTable(t *permission.Table) *Builder {
	b.permTable = t
	return b
}

// WithSubjectStore sets the platform user-store collaborator.
func (b *Builder) WithSubjectStore(s SubjectStore) *Builder {
	b.subjects = s
	return b
}

// WithCaptcha sets the external captcha verifier. Required only when
// Verification.RequireCaptcha is enabled.
func (b *Builder) WithCaptcha(c CaptchaVerifier) *Builder {
	b.captcha = c
	return b
}

// WithCodeSender sets the external one-time-code dispatcher.
func (b *Builder) WithCodeSender(s CodeSender) *Builder {
	b.sender = s
	return b
}

// WithAuditSink sets the sink receiving audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration and wires the engine. A missing
// signing key or Redis client is a configuration error; nothing in the
// engine degrades silently.
func (b *Builder) Build() (*Engine, error) {
	cfg := b.config
	if b.hasConfig {
		cfg = mergeDefaults(cfg)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, errors.New("authcore: redis client is required")
	}
	if b.subjects == nil {
		return nil, errors.New("authcore: subject store is required")
	}
	if cfg.Verification.RequireCaptcha && b.captcha == nil {
		return nil, errors.New("authcore: captcha verifier is required when captcha is enabled")
	}
	if b.sender == nil {
		return nil, errors.New("authcore: code sender is required")
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cfg.JWT.PrivateKey,
		PublicKey:     cfg.JWT.PublicKey,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	passwordHash, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	table := b.permTable
	if table == nil {
		table = permission.DefaultTable()
	}

	engine := &Engine{
		config:     cfg,
		jwtManager: jwtManager,
		tokens: tokenstore.NewStore(
			b.redis,
			cfg.Token.RedisPrefix,
			cfg.Token.RefreshTTL,
			cfg.Token.RetentionGrace,
		),
		permTable: table,
		loginLimiter: limiters.NewLoginLimiter(b.redis, limiters.LoginConfig{
			MaxAttempts:      cfg.Login.MaxAttempts,
			Window:           cfg.Login.AttemptWindow,
			EnableIPThrottle: cfg.Login.EnableIPThrottle,
		}),
		attemptTracker: limiters.NewAttemptTracker(b.redis, limiters.AttemptConfig{
			MaxAttempts: cfg.Verification.MaxAttempts,
			Window:      cfg.Verification.AttemptWindow,
		}),
		sendGate: rate.New(b.redis, rate.Config{
			Cooldown: cfg.RateLimit.SendCodeCooldown,
			Prefix:   cfg.RateLimit.RedisPrefix + ":send",
		}),
		codeStore:    stores.NewCodeStore(b.redis, ""),
		passwordHash: passwordHash,
		subjects:     b.subjects,
		captcha:      b.captcha,
		sender:       b.sender,
		metrics:      internalmetrics.New(internalmetrics.Config{Enabled: cfg.Metrics.Enabled}),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	return engine, nil
}

// mergeDefaults fills zero-valued knobs of a caller-supplied Config so
// partial configs stay usable.
func mergeDefaults(cfg Config) Config {
	def := defaultConfig()

	if cfg.JWT.AccessTTL == 0 {
		cfg.JWT.AccessTTL = def.JWT.AccessTTL
	}
	if cfg.JWT.SigningMethod == "" {
		cfg.JWT.SigningMethod = def.JWT.SigningMethod
	}
	if cfg.JWT.Leeway == 0 {
		cfg.JWT.Leeway = def.JWT.Leeway
	}
	if cfg.Token.RefreshTTL == 0 {
		cfg.Token.RefreshTTL = def.Token.RefreshTTL
	}
	if cfg.Token.RetentionGrace == 0 {
		cfg.Token.RetentionGrace = def.Token.RetentionGrace
	}
	if cfg.Token.RedisPrefix == "" {
		cfg.Token.RedisPrefix = def.Token.RedisPrefix
	}
	if cfg.Login.MaxAttempts == 0 {
		cfg.Login.MaxAttempts = def.Login.MaxAttempts
	}
	if cfg.Login.AttemptWindow == 0 {
		cfg.Login.AttemptWindow = def.Login.AttemptWindow
	}
	if cfg.RateLimit.SendCodeCooldown == 0 {
		cfg.RateLimit.SendCodeCooldown = def.RateLimit.SendCodeCooldown
	}
	if cfg.RateLimit.RedisPrefix == "" {
		cfg.RateLimit.RedisPrefix = def.RateLimit.RedisPrefix
	}
	if cfg.Verification.CodeTTL == 0 {
		cfg.Verification.CodeTTL = def.Verification.CodeTTL
	}
	if cfg.Verification.CodeDigits == 0 {
		cfg.Verification.CodeDigits = def.Verification.CodeDigits
	}
	if cfg.Verification.MaxAttempts == 0 {
		cfg.Verification.MaxAttempts = def.Verification.MaxAttempts
	}
	if cfg.Verification.AttemptWindow == 0 {
		cfg.Verification.AttemptWindow = def.Verification.AttemptWindow
	}
	if cfg.Password.Memory == 0 {
		cfg.Password = def.Password
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}

	return cfg
}
