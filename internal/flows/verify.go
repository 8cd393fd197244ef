package flows

import (
	"context"
	"errors"
	"time"

	"github.com/cafeplatform/authcore/internal/limiters"
	"github.com/cafeplatform/authcore/internal/stores"
)

// SendFailureKind classifies code-send failures.
type SendFailureKind int

const (
	SendFailureNone SendFailureKind = iota
	SendFailureCaptcha
	SendFailureRateLimited
	SendFailureStore
	SendFailureNewCode
	SendFailureDispatch
)

// SendResult carries the outcome of a code-send request.
type SendResult struct {
	Failure SendFailureKind
	Err     error
	// RemainingSeconds is set on SendFailureRateLimited for retry-after
	// surfaces.
	RemainingSeconds int
}

// VerifyFailureKind classifies code-check failures.
type VerifyFailureKind int

const (
	VerifyFailureNone VerifyFailureKind = iota
	VerifyFailureAttempts
	VerifyFailureNotFound
	VerifyFailureMismatch
	VerifyFailureStore
)

// VerifyResult carries the outcome of a code-check request.
type VerifyResult struct {
	Failure VerifyFailureKind
	Err     error
}

// CooldownGate is the send-side throttle surface.
type CooldownGate interface {
	CanProceed(ctx context.Context, identifier string) (bool, error)
	RecordAction(ctx context.Context, identifier string) error
	RemainingSeconds(ctx context.Context, identifier string) (int, error)
}

// AttemptGate is the check-side budget surface.
type AttemptGate interface {
	CanVerify(ctx context.Context, subjectID, target string) (bool, error)
	RecordFailure(ctx context.Context, subjectID, target string) error
	Reset(ctx context.Context, subjectID, target string) error
}

// CodeStore is the pending-code persistence surface.
type CodeStore interface {
	Save(ctx context.Context, subjectID, target string, codeHash [32]byte, ttl time.Duration) error
	Consume(ctx context.Context, subjectID, target string, providedHash [32]byte) error
}

// SendDeps captures code-send flow dependencies.
type SendDeps struct {
	RequireCaptcha bool
	VerifyCaptcha  func(ctx context.Context, challenge string) (bool, error)
	Gate           CooldownGate
	NewCode        func() (string, error)
	HashCode       func(string) [32]byte
	CodeTTL        time.Duration
	CodeStore      CodeStore
	Dispatch       func(ctx context.Context, target, code string) error
}

// RunSendCode sequences a send request: captcha gate, cooldown gate, code
// persistence, external dispatch, and only then the cooldown record. A
// failed dispatch does not consume the cooldown.
func RunSendCode(ctx context.Context, subjectID, target, challenge string, deps SendDeps) SendResult {
	if deps.RequireCaptcha {
		ok, err := deps.VerifyCaptcha(ctx, challenge)
		if err != nil || !ok {
			// Provider errors fail closed.
			return SendResult{Failure: SendFailureCaptcha, Err: err}
		}
	}

	identifier := gateIdentifier(subjectID, target)
	ok, err := deps.Gate.CanProceed(ctx, identifier)
	if err != nil {
		return SendResult{Failure: SendFailureStore, Err: err}
	}
	if !ok {
		remaining, remErr := deps.Gate.RemainingSeconds(ctx, identifier)
		if remErr != nil {
			remaining = 0
		}
		return SendResult{Failure: SendFailureRateLimited, RemainingSeconds: remaining}
	}

	code, err := deps.NewCode()
	if err != nil {
		return SendResult{Failure: SendFailureNewCode, Err: err}
	}

	if err := deps.CodeStore.Save(ctx, subjectID, target, deps.HashCode(code), deps.CodeTTL); err != nil {
		return SendResult{Failure: SendFailureStore, Err: err}
	}

	if err := deps.Dispatch(ctx, target, code); err != nil {
		return SendResult{Failure: SendFailureDispatch, Err: err}
	}

	if err := deps.Gate.RecordAction(ctx, identifier); err != nil {
		return SendResult{Failure: SendFailureStore, Err: err}
	}

	return SendResult{Failure: SendFailureNone}
}

// VerifyDeps captures code-check flow dependencies.
type VerifyDeps struct {
	Tracker   AttemptGate
	CodeStore CodeStore
	HashCode  func(string) [32]byte
}

// RunVerifyCode sequences a check request: attempt budget, atomic
// consume-on-match, then budget bookkeeping. Only a mismatch burns an
// attempt; an expired or absent code does not.
func RunVerifyCode(ctx context.Context, subjectID, target, code string, deps VerifyDeps) VerifyResult {
	ok, err := deps.Tracker.CanVerify(ctx, subjectID, target)
	if err != nil {
		return VerifyResult{Failure: VerifyFailureStore, Err: err}
	}
	if !ok {
		return VerifyResult{Failure: VerifyFailureAttempts}
	}

	err = deps.CodeStore.Consume(ctx, subjectID, target, deps.HashCode(code))
	if err != nil {
		switch {
		case errors.Is(err, stores.ErrCodeNotFound):
			return VerifyResult{Failure: VerifyFailureNotFound, Err: err}
		case errors.Is(err, stores.ErrCodeMismatch):
			if recErr := deps.Tracker.RecordFailure(ctx, subjectID, target); recErr != nil {
				if errors.Is(recErr, limiters.ErrAttemptsExceeded) {
					// This mismatch spent the last attempt.
					return VerifyResult{Failure: VerifyFailureAttempts, Err: recErr}
				}
				return VerifyResult{Failure: VerifyFailureStore, Err: recErr}
			}
			return VerifyResult{Failure: VerifyFailureMismatch, Err: err}
		default:
			return VerifyResult{Failure: VerifyFailureStore, Err: err}
		}
	}

	if err := deps.Tracker.Reset(ctx, subjectID, target); err != nil {
		// The verification itself succeeded; a failed reset only means the
		// window keeps counting until its TTL.
		return VerifyResult{Failure: VerifyFailureNone, Err: err}
	}

	return VerifyResult{Failure: VerifyFailureNone}
}

func gateIdentifier(subjectID, target string) string {
	return subjectID + ":" + target
}
