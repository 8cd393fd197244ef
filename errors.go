package authcore

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the identifier is
	// unknown or the password does not match. The two cases are not
	// distinguished to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginRateLimited is returned by Login when the failed-attempt
	// budget for the identifier or client IP is exhausted.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrTokenInvalid is returned by ValidateAccess for malformed tokens,
	// bad signatures, and unexpected signing algorithms.
	ErrTokenInvalid = errors.New("invalid access token")
	// ErrTokenExpired is returned by ValidateAccess for structurally valid
	// tokens past their expiry.
	ErrTokenExpired = errors.New("access token expired")
	// ErrRefreshInvalid is returned by Refresh and Logout when the presented
	// refresh token is unknown or structurally invalid.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrRefreshExpired is returned by Refresh when the record exists but is
	// past its expiry.
	ErrRefreshExpired = errors.New("refresh token expired")
	// ErrReplayDetected is returned by Refresh when an already-rotated
	// refresh token is presented again. The whole token family is revoked
	// before this error is returned; callers must force a full re-login.
	ErrReplayDetected = errors.New("refresh token replay detected")
	// ErrPermissionDenied is returned by Require when the subject's roles do
	// not grant the needed permission.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrRateLimited is returned by SendVerificationCode while the cooldown
	// for the identifier has not elapsed. Use RateLimitRemaining for the
	// retry-after value.
	ErrRateLimited = errors.New("rate limited")
	// ErrAttemptsExhausted is returned by VerifyCode once the failure budget
	// for the (subject, target) pair is spent. It clears when the attempt
	// window expires or after a successful verification.
	ErrAttemptsExhausted = errors.New("verification attempts exhausted")
	// ErrCaptchaFailed is returned by SendVerificationCode when the captcha
	// collaborator rejects the challenge or cannot be reached.
	ErrCaptchaFailed = errors.New("captcha verification failed")
	// ErrCodeMismatch is returned by VerifyCode when the submitted code does
	// not match the pending one.
	ErrCodeMismatch = errors.New("verification code mismatch")
	// ErrCodeNotFound is returned by VerifyCode when no code is pending for
	// the (subject, target) pair, typically because it expired.
	ErrCodeNotFound = errors.New("no pending verification code")
	// ErrStoreUnavailable wraps Redis transport failures. Token rotation
	// surfaces it as a retriable error; rate limiting and verification fail
	// closed instead of granting.
	ErrStoreUnavailable = errors.New("state store unavailable")
	// ErrSendFailed is returned by SendVerificationCode when the external
	// code dispatcher reports a delivery failure. No cooldown is recorded.
	ErrSendFailed = errors.New("code dispatch failed")
	// ErrEngineNotReady is returned when an Engine method is called on a nil
	// or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrSubjectNotFound must be returned by SubjectStore implementations for
	// unknown identifiers or subject ids. Login folds it into
	// ErrInvalidCredentials.
	ErrSubjectNotFound = errors.New("subject not found")
)
