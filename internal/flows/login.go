package flows

import (
	"context"
	"errors"
)

// LoginFailureKind classifies login failures for root-level error mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureRateLimited
	LoginFailureUnknownSubject
	LoginFailureBadPassword
	LoginFailureStore
	LoginFailureIssue
)

// LoginResult carries either the issued token pair or failure metadata.
type LoginResult struct {
	Failure      LoginFailureKind
	Err          error
	SubjectID    string
	Role         string
	FamilyID     string
	AccessToken  string
	RefreshToken string
}

// LoginSubject is the flow-local account view.
type LoginSubject struct {
	SubjectID    string
	PasswordHash string
	Role         string
}

// LoginThrottle is the failed-attempt budget surface.
type LoginThrottle interface {
	Check(ctx context.Context, identifier, ip string) error
	RecordFailure(ctx context.Context, identifier, ip string) error
	Reset(ctx context.Context, identifier, ip string) error
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	ClientIP       string
	Limiter        LoginThrottle
	RateLimitedErr error
	// GetSubject returns the flow-local account view or NotFoundErr.
	GetSubject     func(ctx context.Context, identifier string) (LoginSubject, error)
	NotFoundErr    error
	VerifyPassword func(password, hash string) (bool, error)
	// IssuePair roots a new token family and returns both tokens.
	IssuePair func(ctx context.Context, subjectID, role string) (access, refresh, familyID string, err error)
}

// RunLogin executes first-party password login. Unknown identifiers and
// wrong passwords are both reported as LoginFailureBadPassword upstream of
// the limiter so callers cannot probe for account existence, but the
// distinct kinds are kept for audit.
func RunLogin(ctx context.Context, identifier, password string, deps LoginDeps) LoginResult {
	if err := deps.Limiter.Check(ctx, identifier, deps.ClientIP); err != nil {
		if errors.Is(err, deps.RateLimitedErr) {
			return LoginResult{Failure: LoginFailureRateLimited, Err: err}
		}
		return LoginResult{Failure: LoginFailureStore, Err: err}
	}

	subject, err := deps.GetSubject(ctx, identifier)
	if err != nil {
		if deps.NotFoundErr != nil && errors.Is(err, deps.NotFoundErr) {
			// Unknown identifiers burn an attempt like wrong passwords do.
			_ = deps.Limiter.RecordFailure(ctx, identifier, deps.ClientIP)
			return LoginResult{Failure: LoginFailureUnknownSubject, Err: err}
		}
		return LoginResult{Failure: LoginFailureStore, Err: err}
	}

	ok, err := deps.VerifyPassword(password, subject.PasswordHash)
	if err != nil {
		return LoginResult{Failure: LoginFailureStore, Err: err, SubjectID: subject.SubjectID}
	}
	if !ok {
		if recErr := deps.Limiter.RecordFailure(ctx, identifier, deps.ClientIP); recErr != nil {
			return LoginResult{Failure: LoginFailureStore, Err: recErr, SubjectID: subject.SubjectID}
		}
		return LoginResult{Failure: LoginFailureBadPassword, SubjectID: subject.SubjectID}
	}

	access, refresh, familyID, err := deps.IssuePair(ctx, subject.SubjectID, subject.Role)
	if err != nil {
		return LoginResult{Failure: LoginFailureIssue, Err: err, SubjectID: subject.SubjectID}
	}

	_ = deps.Limiter.Reset(ctx, identifier, deps.ClientIP)

	return LoginResult{
		Failure:      LoginFailureNone,
		SubjectID:    subject.SubjectID,
		Role:         subject.Role,
		FamilyID:     familyID,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}
