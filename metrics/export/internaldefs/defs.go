package internaldefs

import (
	authcore "github.com/cafeplatform/authcore"
)

// CounterDef binds a core counter slot to its exported name and help text.
// Both exporters iterate this table so the two surfaces never drift.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful login attempts."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed login attempts."},
	{ID: authcore.MetricLoginRateLimited, Name: "authcore_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: authcore.MetricRefreshSuccess, Name: "authcore_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: authcore.MetricRefreshFailure, Name: "authcore_refresh_failure_total", Help: "Failed refresh rotations."},
	{ID: authcore.MetricReplayDetected, Name: "authcore_replay_detected_total", Help: "Rotated refresh tokens presented again."},
	{ID: authcore.MetricFamilyRevoked, Name: "authcore_family_revoked_total", Help: "Token families revoked after replay."},
	{ID: authcore.MetricLogout, Name: "authcore_logout_total", Help: "Logout operations."},
	{ID: authcore.MetricPermissionDenied, Name: "authcore_permission_denied_total", Help: "Permission checks that denied access."},
	{ID: authcore.MetricCodeSent, Name: "authcore_verification_code_sent_total", Help: "Verification codes dispatched."},
	{ID: authcore.MetricCodeSendRateLimited, Name: "authcore_verification_send_rate_limited_total", Help: "Code sends blocked by the cooldown gate."},
	{ID: authcore.MetricCaptchaRejected, Name: "authcore_captcha_rejected_total", Help: "Code sends blocked by captcha."},
	{ID: authcore.MetricVerifySuccess, Name: "authcore_verification_success_total", Help: "Successful code verifications."},
	{ID: authcore.MetricVerifyFailure, Name: "authcore_verification_failure_total", Help: "Failed code verifications."},
	{ID: authcore.MetricVerifyAttemptsExceeded, Name: "authcore_verification_attempts_exceeded_total", Help: "Verifications blocked by the attempt budget."},
}
