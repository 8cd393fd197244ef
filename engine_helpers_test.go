package authcore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cafeplatform/authcore/password"
)

const testPassword = "correct-password-123"

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     5 * time.Minute,
			SigningMethod: "hs256",
			PrivateKey:    []byte("test-secret-key-for-hs256-signing"),
			Issuer:        "authcore-test",
		},
		Token: TokenConfig{
			RefreshTTL:     time.Hour,
			RetentionGrace: time.Hour,
		},
		Login: LoginConfig{
			MaxAttempts:      3,
			AttemptWindow:    time.Minute,
			EnableIPThrottle: true,
		},
		RateLimit: RateLimitConfig{
			SendCodeCooldown: 30 * time.Second,
		},
		Verification: VerificationConfig{
			CodeTTL:        5 * time.Minute,
			CodeDigits:     6,
			MaxAttempts:    3,
			AttemptWindow:  time.Minute,
			RequireCaptcha: true,
		},
		Password: PasswordConfig{
			Memory:      8 * 1024,
			Time:        1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   16,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

type fakeSubjectStore struct {
	mu       sync.Mutex
	byIdent  map[string]SubjectRecord
	roles    map[string][]string
	storeErr error
}

func newFakeSubjectStore() *fakeSubjectStore {
	return &fakeSubjectStore{
		byIdent: make(map[string]SubjectRecord),
		roles:   make(map[string][]string),
	}
}

func (f *fakeSubjectStore) add(record SubjectRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIdent[record.Identifier] = record
	f.roles[record.SubjectID] = record.Roles
}

func (f *fakeSubjectStore) GetByIdentifier(_ context.Context, identifier string) (SubjectRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return SubjectRecord{}, f.storeErr
	}
	record, ok := f.byIdent[identifier]
	if !ok {
		return SubjectRecord{}, ErrSubjectNotFound
	}
	return record, nil
}

func (f *fakeSubjectStore) RolesFor(_ context.Context, subjectID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	roles, ok := f.roles[subjectID]
	if !ok {
		return nil, ErrSubjectNotFound
	}
	return roles, nil
}

type fakeCaptcha struct {
	ok  bool
	err error
}

func (f *fakeCaptcha) Verify(context.Context, string) (bool, error) {
	return f.ok, f.err
}

type sentCode struct {
	target string
	code   string
}

type fakeSender struct {
	mu   sync.Mutex
	fail error
	sent []sentCode
}

func (f *fakeSender) Send(_ context.Context, target, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sentCode{target: target, code: code})
	return nil
}

func (f *fakeSender) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].code
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()

	hasher, err := password.NewArgon2(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	hash, err := hasher.Hash(plain)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	return hash
}

type testEngineEnv struct {
	engine   *Engine
	redis    *miniredis.Miniredis
	subjects *fakeSubjectStore
	captcha  *fakeCaptcha
	sender   *fakeSender
}

func newTestEngine(t *testing.T, cfg Config) *testEngineEnv {
	t.Helper()

	mr, rdb := newTestRedis(t)

	subjects := newFakeSubjectStore()
	subjects.add(SubjectRecord{
		SubjectID:    "subj-1",
		Identifier:   "alice@example.com",
		PasswordHash: mustHash(t, testPassword),
		Roles:        []string{"client"},
	})
	subjects.add(SubjectRecord{
		SubjectID:    "subj-2",
		Identifier:   "root@example.com",
		PasswordHash: mustHash(t, testPassword),
		Roles:        []string{"admin"},
	})

	captcha := &fakeCaptcha{ok: true}
	sender := &fakeSender{}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithSubjectStore(subjects).
		WithCaptcha(captcha).
		WithCodeSender(sender).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	t.Cleanup(func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	})

	return &testEngineEnv{
		engine:   engine,
		redis:    mr,
		subjects: subjects,
		captcha:  captcha,
		sender:   sender,
	}
}
