package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cafeplatform/authcore/internal"
	internalaudit "github.com/cafeplatform/authcore/internal/audit"
	"github.com/cafeplatform/authcore/internal/flows"
	"github.com/cafeplatform/authcore/internal/limiters"
	internalmetrics "github.com/cafeplatform/authcore/internal/metrics"
	"github.com/cafeplatform/authcore/internal/rate"
	"github.com/cafeplatform/authcore/internal/stores"
	"github.com/cafeplatform/authcore/jwt"
	"github.com/cafeplatform/authcore/password"
	"github.com/cafeplatform/authcore/permission"
	"github.com/cafeplatform/authcore/tokenstore"
)

// Engine is the access-control facade. All methods are safe for concurrent
// use after [Builder.Build].
type Engine struct {
	config     Config
	jwtManager *jwt.Manager
	tokens     *tokenstore.Store
	permTable  *permission.Table

	loginLimiter   *limiters.LoginLimiter
	attemptTracker *limiters.AttemptTracker
	sendGate       *rate.Gate
	codeStore      *stores.CodeStore

	passwordHash *password.Argon2

	subjects SubjectStore
	captcha  CaptchaVerifier
	sender   CodeSender

	metrics *internalmetrics.Metrics
	audit   *internalaudit.Dispatcher
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Login performs first-party password authentication and roots a new
// refresh-token family. Unknown identifiers and wrong passwords both come
// back as ErrInvalidCredentials.
func (e *Engine) Login(ctx context.Context, identifier, pass string) (TokenPair, error) {
	if e == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	ip := clientIPFromContext(ctx)
	result := flows.RunLogin(ctx, identifier, pass, flows.LoginDeps{
		ClientIP:       ip,
		Limiter:        e.loginLimiter,
		RateLimitedErr: limiters.ErrLoginRateLimited,
		GetSubject: func(ctx context.Context, identifier string) (flows.LoginSubject, error) {
			record, err := e.subjects.GetByIdentifier(ctx, identifier)
			if err != nil {
				return flows.LoginSubject{}, err
			}
			return flows.LoginSubject{
				SubjectID:    record.SubjectID,
				PasswordHash: record.PasswordHash,
				Role:         primaryRole(record.Roles),
			}, nil
		},
		NotFoundErr:    ErrSubjectNotFound,
		VerifyPassword: e.passwordHash.Verify,
		IssuePair:      e.issuePair,
	})

	switch result.Failure {
	case flows.LoginFailureNone:
		e.metrics.Inc(internalmetrics.MetricLoginSuccess)
		e.emitAudit(ctx, internalaudit.Event{
			EventType: "login.success",
			SubjectID: result.SubjectID,
			FamilyID:  result.FamilyID,
			IP:        ip,
			Success:   true,
		})
		return e.pair(result.AccessToken, result.RefreshToken), nil
	case flows.LoginFailureRateLimited:
		e.metrics.Inc(internalmetrics.MetricLoginRateLimited)
		e.emitAudit(ctx, internalaudit.Event{
			EventType: "login.rate_limited",
			IP:        ip,
			Error:     "attempt budget exhausted",
		})
		return TokenPair{}, ErrLoginRateLimited
	case flows.LoginFailureUnknownSubject, flows.LoginFailureBadPassword:
		e.metrics.Inc(internalmetrics.MetricLoginFailure)
		e.emitAudit(ctx, internalaudit.Event{
			EventType: "login.failure",
			SubjectID: result.SubjectID,
			IP:        ip,
			Error:     "invalid credentials",
		})
		return TokenPair{}, ErrInvalidCredentials
	case flows.LoginFailureStore:
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Err)
	default:
		return TokenPair{}, result.Err
	}
}

// ValidateAccess checks signature and expiry of an access token and
// returns its claims. Pure: no Redis round trips, safe on the hot path.
func (e *Engine) ValidateAccess(token string) (*jwt.AccessClaims, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.jwtManager.ParseAccess(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}

// Refresh exchanges a live refresh token for a fresh pair, revoking the
// presented token. A token can win this exchange exactly once; presenting
// it again is treated as theft and revokes the whole family before
// ErrReplayDetected is returned.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if e == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	result := flows.RunRefresh(ctx, refreshToken, flows.RefreshDeps{
		NewRefreshToken: internal.NewRefreshToken,
		IssueAccess:     e.jwtManager.CreateAccess,
		Now:             time.Now,
		Store:           e.tokens,
	})

	switch result.Failure {
	case flows.RefreshFailureNone:
		e.metrics.Inc(internalmetrics.MetricRefreshSuccess)
		e.emitAudit(ctx, internalaudit.Event{
			EventType: "refresh.success",
			SubjectID: result.SubjectID,
			FamilyID:  result.FamilyID,
			IP:        clientIPFromContext(ctx),
			Success:   true,
		})
		return e.pair(result.AccessToken, result.RefreshToken), nil
	case flows.RefreshFailureReplay:
		// The store has already revoked the family inside the rotation
		// script; this path only reports and records the security event.
		e.metrics.Inc(internalmetrics.MetricReplayDetected)
		e.metrics.Inc(internalmetrics.MetricFamilyRevoked)
		e.emitAudit(ctx, internalaudit.Event{
			EventType: "refresh.replay_detected",
			IP:        clientIPFromContext(ctx),
			Error:     "rotated refresh token presented again; family revoked",
		})
		return TokenPair{}, ErrReplayDetected
	case flows.RefreshFailureUnknown:
		e.metrics.Inc(internalmetrics.MetricRefreshFailure)
		return TokenPair{}, ErrRefreshInvalid
	case flows.RefreshFailureExpired:
		e.metrics.Inc(internalmetrics.MetricRefreshFailure)
		return TokenPair{}, ErrRefreshExpired
	case flows.RefreshFailureStore:
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Err)
	default:
		return TokenPair{}, result.Err
	}
}

// Logout revokes the presented refresh token together with its whole
// family. Revoking only the presented branch would leave earlier rotated
// tokens as a theft canary that never fires after an explicit logout, so
// the policy mirrors replay handling.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	family, _, err := e.tokens.RevokeByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, tokenstore.ErrTokenNotFound) {
			return ErrRefreshInvalid
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metrics.Inc(internalmetrics.MetricLogout)
	e.emitAudit(ctx, internalaudit.Event{
		EventType: "logout",
		FamilyID:  family,
		IP:        clientIPFromContext(ctx),
		Success:   true,
	})
	return nil
}

// issuePair roots a new token family for the subject.
func (e *Engine) issuePair(ctx context.Context, subjectID, role string) (string, string, string, error) {
	refresh, err := internal.NewRefreshToken()
	if err != nil {
		return "", "", "", err
	}
	familyID := uuid.NewString()

	if _, err := e.tokens.Create(ctx, refresh, subjectID, role, familyID, time.Now()); err != nil {
		return "", "", "", err
	}

	access, err := e.jwtManager.CreateAccess(subjectID, role)
	if err != nil {
		return "", "", "", err
	}

	return access, refresh, familyID, nil
}

func (e *Engine) pair(access, refresh string) TokenPair {
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(e.config.JWT.AccessTTL.Seconds()),
	}
}

func (e *Engine) emitAudit(ctx context.Context, event internalaudit.Event) {
	if e.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	e.audit.Emit(ctx, event)
}

// AuditDropped reports how many audit events were discarded under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func primaryRole(roles []string) string {
	if len(roles) == 0 {
		return "client"
	}
	return roles[0]
}
