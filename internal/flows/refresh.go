package flows

import (
	"context"
	"errors"
	"time"

	"github.com/cafeplatform/authcore/tokenstore"
)

// RefreshFailureKind classifies refresh flow failures for root-level error
// mapping and metrics.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureUnknown
	RefreshFailureReplay
	RefreshFailureExpired
	RefreshFailureStore
	RefreshFailureNewToken
	RefreshFailureIssueAccess
)

// RefreshResult carries either the issued token pair or failure metadata.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	SubjectID    string
	Role         string
	FamilyID     string
	AccessToken  string
	RefreshToken string
}

// RefreshTokenStore is the rotation surface the flow needs.
type RefreshTokenStore interface {
	Rotate(ctx context.Context, presentedToken, successorToken string, now time.Time) (*tokenstore.Rotation, error)
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	NewRefreshToken func() (string, error)
	IssueAccess     func(subjectID, role string) (string, error)
	Now             func() time.Time
	Store           RefreshTokenStore
}

// RunRefresh executes single-use refresh rotation. The successor token is
// generated before the store call so the whole mutation is one script
// round trip; on replay the store has already revoked the family by the
// time the error surfaces here.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	successor, err := deps.NewRefreshToken()
	if err != nil {
		return RefreshResult{Failure: RefreshFailureNewToken, Err: err}
	}

	rotation, err := deps.Store.Rotate(ctx, refreshToken, successor, deps.Now())
	if err != nil {
		switch {
		case errors.Is(err, tokenstore.ErrTokenRevoked):
			return RefreshResult{Failure: RefreshFailureReplay, Err: err}
		case errors.Is(err, tokenstore.ErrTokenNotFound):
			return RefreshResult{Failure: RefreshFailureUnknown, Err: err}
		case errors.Is(err, tokenstore.ErrTokenExpired):
			return RefreshResult{Failure: RefreshFailureExpired, Err: err}
		default:
			return RefreshResult{Failure: RefreshFailureStore, Err: err}
		}
	}

	access, err := deps.IssueAccess(rotation.SubjectID, rotation.Role)
	if err != nil {
		return RefreshResult{
			Failure:   RefreshFailureIssueAccess,
			Err:       err,
			SubjectID: rotation.SubjectID,
			Role:      rotation.Role,
			FamilyID:  rotation.FamilyID,
		}
	}

	return RefreshResult{
		Failure:      RefreshFailureNone,
		SubjectID:    rotation.SubjectID,
		Role:         rotation.Role,
		FamilyID:     rotation.FamilyID,
		AccessToken:  access,
		RefreshToken: successor,
	}
}
