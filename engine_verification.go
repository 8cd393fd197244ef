package authcore

import (
	"context"
	"fmt"

	"github.com/cafeplatform/authcore/internal"
	internalaudit "github.com/cafeplatform/authcore/internal/audit"
	"github.com/cafeplatform/authcore/internal/flows"
	internalmetrics "github.com/cafeplatform/authcore/internal/metrics"
)

// SendVerificationCode drives a phone/email verification send: captcha
// gate, per-(subject,target) cooldown, code persistence, external
// dispatch. The cooldown is recorded only after a successful dispatch, so
// a failed delivery can be retried immediately.
func (e *Engine) SendVerificationCode(ctx context.Context, subjectID, target, captchaChallenge string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	result := flows.RunSendCode(ctx, subjectID, target, captchaChallenge, flows.SendDeps{
		RequireCaptcha: e.config.Verification.RequireCaptcha,
		VerifyCaptcha:  e.verifyCaptcha,
		Gate:           e.sendGate,
		NewCode:        e.newCode,
		HashCode:       internal.HashCode,
		CodeTTL:        e.config.Verification.CodeTTL,
		CodeStore:      e.codeStore,
		Dispatch:       e.sender.Send,
	})

	switch result.Failure {
	case flows.SendFailureNone:
		e.metrics.Inc(internalmetrics.MetricCodeSent)
		e.emitAudit(ctx, internalaudit.Event{
			EventType: "verification.code_sent",
			SubjectID: subjectID,
			Target:    target,
			IP:        clientIPFromContext(ctx),
			Success:   true,
		})
		return nil
	case flows.SendFailureCaptcha:
		e.metrics.Inc(internalmetrics.MetricCaptchaRejected)
		e.emitAudit(ctx, internalaudit.Event{
			EventType: "verification.captcha_rejected",
			SubjectID: subjectID,
			Target:    target,
			IP:        clientIPFromContext(ctx),
			Error:     "captcha rejected or unavailable",
		})
		if result.Err != nil {
			return fmt.Errorf("%w: %v", ErrCaptchaFailed, result.Err)
		}
		return ErrCaptchaFailed
	case flows.SendFailureRateLimited:
		e.metrics.Inc(internalmetrics.MetricCodeSendRateLimited)
		e.emitAudit(ctx, internalaudit.Event{
			EventType: "verification.rate_limited",
			SubjectID: subjectID,
			Target:    target,
			IP:        clientIPFromContext(ctx),
			Error:     fmt.Sprintf("retry in %ds", result.RemainingSeconds),
		})
		return fmt.Errorf("%w: retry in %ds", ErrRateLimited, result.RemainingSeconds)
	case flows.SendFailureDispatch:
		return fmt.Errorf("%w: %v", ErrSendFailed, result.Err)
	case flows.SendFailureStore:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Err)
	default:
		return result.Err
	}
}

// VerifyCode checks a submitted one-time code. A mismatch burns one
// attempt from the (subject, target) budget; success clears both the code
// and the budget.
func (e *Engine) VerifyCode(ctx context.Context, subjectID, target, code string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	result := flows.RunVerifyCode(ctx, subjectID, target, code, flows.VerifyDeps{
		Tracker:   e.attemptTracker,
		CodeStore: e.codeStore,
		HashCode:  internal.HashCode,
	})

	switch result.Failure {
	case flows.VerifyFailureNone:
		e.metrics.Inc(internalmetrics.MetricVerifySuccess)
		e.emitAudit(ctx, internalaudit.Event{
			EventType: "verification.success",
			SubjectID: subjectID,
			Target:    target,
			IP:        clientIPFromContext(ctx),
			Success:   true,
		})
		return nil
	case flows.VerifyFailureAttempts:
		e.metrics.Inc(internalmetrics.MetricVerifyAttemptsExceeded)
		e.emitAudit(ctx, internalaudit.Event{
			EventType: "verification.attempts_exceeded",
			SubjectID: subjectID,
			Target:    target,
			IP:        clientIPFromContext(ctx),
			Error:     "attempt budget exhausted",
		})
		return ErrAttemptsExhausted
	case flows.VerifyFailureNotFound:
		e.metrics.Inc(internalmetrics.MetricVerifyFailure)
		return ErrCodeNotFound
	case flows.VerifyFailureMismatch:
		e.metrics.Inc(internalmetrics.MetricVerifyFailure)
		e.emitAudit(ctx, internalaudit.Event{
			EventType: "verification.failure",
			SubjectID: subjectID,
			Target:    target,
			IP:        clientIPFromContext(ctx),
			Error:     "code mismatch",
		})
		return ErrCodeMismatch
	case flows.VerifyFailureStore:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Err)
	default:
		return result.Err
	}
}

// RateLimitRemaining reports the seconds left before another code may be
// sent to (subject, target). Zero means a send would pass the gate.
func (e *Engine) RateLimitRemaining(ctx context.Context, subjectID, target string) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	remaining, err := e.sendGate.RemainingSeconds(ctx, subjectID+":"+target)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return remaining, nil
}

// VerifyAttemptsRemaining reports how many code checks remain in the
// current window for (subject, target).
func (e *Engine) VerifyAttemptsRemaining(ctx context.Context, subjectID, target string) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	remaining, err := e.attemptTracker.Remaining(ctx, subjectID, target)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return remaining, nil
}

func (e *Engine) verifyCaptcha(ctx context.Context, challenge string) (bool, error) {
	if e.captcha == nil {
		return false, nil
	}
	return e.captcha.Verify(ctx, challenge)
}

func (e *Engine) newCode() (string, error) {
	return internal.NewOTP(e.config.Verification.CodeDigits)
}
